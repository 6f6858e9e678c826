package weather

import (
	"time"

	"github.com/i474232898/weatherflow-forecast/internal/derived"
)

// LightningWindow is how recent the last strike must be for lightning to count as active.
const LightningWindow = 15 * time.Minute

// Enrich returns a copy of r with derived values filled in. Elevation is the
// station altitude in metres; when zero it is estimated from pressure.
//
// A reading without data carries no derived numbers, but voltage, battery and
// power-save mode are defaulted to zero (with the matching mode text) so
// consumers never branch on nil for them.
func Enrich(r StationReading, elevation float64) StationReading {
	out := r
	if !r.DataAvailable {
		out.AbsoluteHumidity = nil
		out.Beaufort = nil
		out.BeaufortDescription = nil
		out.FreezingAltitude = nil
		out.CloudBase = nil
		out.UVDescription = nil
		out.WindCardinal = nil
		out.PrecipitationTypeText = nil
		out.PrecipitationIntensity = nil
		out.LightningActive = false
		out.Voltage = derived.Ptr(0.0)
		out.BatteryPercent = derived.Ptr(0)
		out.PowerSaveMode = derived.Ptr(0)
		out.PowerSaveModeText = derived.PowerSaveModeText(out.PowerSaveMode)
		return out
	}

	if elevation == 0 {
		if est := derived.ElevationFromPressure(r.StationPressure, r.SeaLevelPressure); est != nil {
			elevation = *est
		}
	}

	out.AbsoluteHumidity = derived.AbsoluteHumidity(r.Temperature, r.Humidity)
	out.Beaufort = derived.Beaufort(r.WindAvg)
	out.BeaufortDescription = derived.BeaufortDescription(out.Beaufort)
	out.FreezingAltitude = derived.FreezingAltitude(r.Temperature, elevation)
	out.CloudBase = derived.CloudBase(r.Temperature, r.DewPoint, elevation)
	out.UVDescription = derived.UVDescription(r.UVIndex)
	out.WindCardinal = derived.WindCardinal(r.WindDirection)
	out.PrecipitationTypeText = nil
	if r.PrecipitationType != nil {
		out.PrecipitationTypeText = r.PrecipitationType.Text()
	}
	out.PrecipitationIntensity = derived.PrecipitationIntensity(r.PrecipitationRate)
	out.LightningActive = derived.LightningActive(r.LightningStrikeLastEpoch, r.Timestamp, LightningWindow)
	out.BatteryPercent = derived.BatteryPercent(r.Voltage)
	out.PowerSaveMode = derived.PowerSaveMode(r.Voltage)
	out.PowerSaveModeText = derived.PowerSaveModeText(out.PowerSaveMode)
	return out
}
