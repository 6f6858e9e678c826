package providers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weatherflow-forecast/internal/weather"
)

func decode[T any](t *testing.T, raw string) *T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return &v
}

const stationObsJSON = `{
	"station_id": 1001,
	"obs": [{
		"timestamp": 1717243200,
		"air_temperature": 12.3,
		"relative_humidity": null,
		"precip": 0.1,
		"lightning_strike_count": 0
	}],
	"status": {"status_code": 0, "status_message": "SUCCESS"}
}`

func TestNormalizeReadingNulls(t *testing.T) {
	obs := decode[stationObservationPayload](t, stationObsJSON)
	r := normalizeReading(1001, obs, nil)

	assert.True(t, r.DataAvailable)
	assert.Equal(t, int64(1717243200), r.Timestamp.Unix())
	require.NotNil(t, r.Temperature)
	assert.Equal(t, 12.3, *r.Temperature)
	assert.Nil(t, r.Humidity)
	assert.Nil(t, r.WindAvg)
	require.NotNil(t, r.PrecipitationRate)
	assert.InDelta(t, 6.0, *r.PrecipitationRate, 1e-9)
	require.NotNil(t, r.LightningStrikeCount)
	assert.Equal(t, 0, *r.LightningStrikeCount)
	assert.Nil(t, r.PrecipitationType)
}

func TestNormalizeReadingPrecipitationCodes(t *testing.T) {
	obs := decode[stationObservationPayload](t, stationObsJSON)

	tests := []struct {
		code float64
		want weather.PrecipitationType
		text string
	}{
		{0, weather.PrecipitationNone, "none"},
		{1, weather.PrecipitationRain, "rain"},
		{2, weather.PrecipitationHail, "hail"},
		{3, weather.PrecipitationRainHail, "rain+hail"},
	}
	for _, tt := range tests {
		row := make([]*float64, 18)
		code := tt.code
		row[13] = &code
		dev := &deviceObservationPayload{Type: "obs_st", Obs: [][]*float64{row}}

		r := weather.Enrich(normalizeReading(1001, obs, dev), 0)
		require.NotNil(t, r.PrecipitationType, tt.text)
		assert.Equal(t, tt.want, *r.PrecipitationType)
		require.NotNil(t, r.PrecipitationTypeText, tt.text)
		assert.Equal(t, tt.text, *r.PrecipitationTypeText)
		assert.Equal(t, r.PrecipitationType.String(), *r.PrecipitationTypeText)
	}
}

func TestNormalizeReadingDeviceLayouts(t *testing.T) {
	obs := decode[stationObservationPayload](t, stationObsJSON)

	sky := decode[deviceObservationPayload](t, `{
		"type": "obs_sky",
		"obs": [[1717243200, 9000, 3.1, 0.2, 1.0, 2.0, 3.0, 180, 3.4, 3, 500, 0.1, 2, 3]]
	}`)
	r := normalizeReading(1001, obs, sky)
	require.NotNil(t, r.PrecipitationType)
	assert.Equal(t, weather.PrecipitationHail, *r.PrecipitationType)
	// SKY devices do not report the Tempest battery voltage.
	assert.Nil(t, r.Voltage)

	air := decode[deviceObservationPayload](t, `{"type": "obs_air", "obs": [[1717243200, 1010.2, 12.3, 80, 0, 0, 3.46, 1]]}`)
	r = normalizeReading(1001, obs, air)
	assert.Nil(t, r.PrecipitationType)
	assert.Nil(t, r.Voltage)
}

func TestNormalizeReadingShortAndNullRows(t *testing.T) {
	obs := decode[stationObservationPayload](t, stationObsJSON)

	short := decode[deviceObservationPayload](t, `{"type": "obs_st", "obs": [[1717243200, null, 2.0]]}`)
	var r weather.StationReading
	require.NotPanics(t, func() { r = normalizeReading(1001, obs, short) })
	assert.Nil(t, r.PrecipitationType)
	assert.Nil(t, r.Voltage)

	nulls := decode[deviceObservationPayload](t, `{"type": "obs_st", "obs": [[null, null, null, null, null, null, null, null, null, null, null, null, null, null, null, null, null, null]]}`)
	require.NotPanics(t, func() { r = normalizeReading(1001, obs, nulls) })
	assert.Nil(t, r.Voltage)

	unknown := &deviceObservationPayload{Type: "obs_new", Obs: [][]*float64{{}}}
	require.NotPanics(t, func() { r = normalizeReading(1001, obs, unknown) })
	assert.Nil(t, r.Voltage)
}

func TestNormalizeReadingOffline(t *testing.T) {
	obs := decode[stationObservationPayload](t, `{"station_id": 1001, "obs": [], "status": {"status_code": 0}}`)
	r := normalizeReading(1001, obs, nil)
	assert.False(t, r.DataAvailable)
	assert.True(t, r.Timestamp.IsZero())
	assert.Equal(t, 1001, r.StationID)

	r = normalizeReading(1001, nil, nil)
	assert.False(t, r.DataAvailable)
}

func TestNormalizeStationPicksRequestedStation(t *testing.T) {
	p := decode[stationsPayload](t, `{
		"stations": [
			{"station_id": 1, "name": "one"},
			{"station_id": 2, "name": "two", "devices": [{"device_id": 9, "device_type": "SK", "firmware_revision": 91}]}
		]
	}`)
	info, err := normalizeStation(p, 2)
	require.NoError(t, err)
	assert.Equal(t, "two", info.Name)

	dev, ok := info.PrecipitationDevice()
	require.True(t, ok)
	assert.Equal(t, "91", dev.FirmwareRevision)

	assert.Equal(t, weather.DeviceTypeSky, dev.DeviceType)
}

func TestNormalizeStationRejectsOtherStation(t *testing.T) {
	p := decode[stationsPayload](t, `{"stations": [{"station_id": 7, "name": "seven"}]}`)
	_, err := normalizeStation(p, 5)
	assert.ErrorIs(t, err, weather.ErrStationNotFound)

	// Payloads that omit the id are attributed to the requested station.
	p = decode[stationsPayload](t, `{"stations": [{"name": "anonymous"}]}`)
	info, err := normalizeStation(p, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, info.StationID)
}

func TestNormalizeForecastEmpty(t *testing.T) {
	f := normalizeForecast(1001, &forecastPayload{})
	assert.Empty(t, f.Hourly)
	assert.Empty(t, f.Daily)
	assert.True(t, f.Current.Time.IsZero())
	assert.Equal(t, "exceptional", f.Current.Icon)
}
