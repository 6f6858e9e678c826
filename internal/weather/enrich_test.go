package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weatherflow-forecast/internal/derived"
)

func onlineReading(at time.Time) StationReading {
	return StationReading{
		StationID:                1001,
		Timestamp:                at,
		DataAvailable:            true,
		Temperature:              derived.Ptr(10.0),
		Humidity:                 derived.Ptr(80.0),
		DewPoint:                 derived.Ptr(6.7),
		StationPressure:          derived.Ptr(1001.0),
		SeaLevelPressure:         derived.Ptr(1013.0),
		WindAvg:                  derived.Ptr(5.0),
		WindDirection:            derived.Ptr(90.0),
		UVIndex:                  derived.Ptr(2.0),
		PrecipitationRate:        derived.Ptr(2.0),
		PrecipitationType:        derived.Ptr(PrecipitationRain),
		LightningStrikeLastEpoch: derived.Ptr(at.Add(-5 * time.Minute).Unix()),
		Voltage:                  derived.Ptr(2.42),
	}
}

func TestEnrichOnline(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	r := Enrich(onlineReading(at), 100)

	require.NotNil(t, r.FreezingAltitude)
	assert.InDelta(t, 100+192.30769*10, *r.FreezingAltitude, 0.5)
	require.NotNil(t, r.Beaufort)
	assert.Equal(t, 3, *r.Beaufort)
	require.NotNil(t, r.WindCardinal)
	assert.Equal(t, "E", *r.WindCardinal)
	require.NotNil(t, r.UVDescription)
	assert.Equal(t, "low", *r.UVDescription)
	require.NotNil(t, r.PrecipitationTypeText)
	assert.Equal(t, "rain", *r.PrecipitationTypeText)
	require.NotNil(t, r.PrecipitationIntensity)
	assert.Equal(t, "moderate", *r.PrecipitationIntensity)
	assert.True(t, r.LightningActive)

	require.NotNil(t, r.PowerSaveMode)
	assert.Equal(t, 1, *r.PowerSaveMode)
	require.NotNil(t, r.PowerSaveModeText)
	require.NotNil(t, r.BatteryPercent)
	assert.Equal(t, 45, *r.BatteryPercent)
	assert.NotNil(t, r.AbsoluteHumidity)
	assert.NotNil(t, r.CloudBase)
}

func TestEnrichLeavesInputUntouched(t *testing.T) {
	in := onlineReading(time.Now().UTC())
	_ = Enrich(in, 0)
	assert.Nil(t, in.FreezingAltitude)
	assert.Nil(t, in.BatteryPercent)
}

func TestEnrichEstimatesElevationFromPressure(t *testing.T) {
	r := onlineReading(time.Now().UTC())
	r.Temperature = derived.Ptr(-2.0)

	enriched := Enrich(r, 0)
	require.NotNil(t, enriched.FreezingAltitude)
	// Below freezing the freezing level is the station itself.
	assert.InDelta(t, 100, *enriched.FreezingAltitude, 15)
}

func TestEnrichOfflineDefaults(t *testing.T) {
	r := Enrich(StationReading{StationID: 1001}, 100)

	assert.False(t, r.DataAvailable)
	require.NotNil(t, r.Voltage)
	assert.Equal(t, 0.0, *r.Voltage)
	require.NotNil(t, r.BatteryPercent)
	assert.Equal(t, 0, *r.BatteryPercent)
	require.NotNil(t, r.PowerSaveMode)
	assert.Equal(t, 0, *r.PowerSaveMode)

	require.NotNil(t, r.PowerSaveModeText)
	assert.Equal(t, "full performance", *r.PowerSaveModeText)
	assert.Nil(t, r.FreezingAltitude)
	assert.Nil(t, r.Beaufort)
	assert.Nil(t, r.PrecipitationTypeText)
	assert.False(t, r.LightningActive)
}

func TestEnrichMissingVoltage(t *testing.T) {
	r := onlineReading(time.Now().UTC())
	r.Voltage = nil

	enriched := Enrich(r, 0)
	assert.Nil(t, enriched.BatteryPercent)
	assert.Nil(t, enriched.PowerSaveMode)
	assert.Nil(t, enriched.PowerSaveModeText)
}

func TestEnrichStaleLightning(t *testing.T) {
	at := time.Now().UTC()
	r := onlineReading(at)
	r.LightningStrikeLastEpoch = derived.Ptr(at.Add(-LightningWindow - time.Minute).Unix())

	assert.False(t, Enrich(r, 0).LightningActive)
}

func TestEnrichUnknownPrecipitationType(t *testing.T) {
	r := onlineReading(time.Now().UTC())
	r.PrecipitationType = derived.Ptr(PrecipitationType(9))

	enriched := Enrich(r, 0)
	assert.Nil(t, enriched.PrecipitationTypeText)
	assert.Equal(t, "unknown", enriched.PrecipitationType.String())
}
