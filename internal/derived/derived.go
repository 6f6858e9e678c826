// Package derived computes values a WeatherFlow station does not report directly.
// Every function accepts nil inputs and returns nil instead of guessing.
package derived

import (
	"math"
	"time"
)

// Tempest battery voltage range used for the percentage estimate.
const (
	BatteryMinVoltage = 2.11
	BatteryMaxVoltage = 2.80
)

// Power-save mode entry thresholds (volts) for Tempest devices.
const (
	powerSaveMode1Voltage = 2.455
	powerSaveMode2Voltage = 2.41
	powerSaveMode3Voltage = 2.375
)

// metres of altitude per degree Celsius above freezing.
const freezingLapse = 192.30769

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// BatteryPercent estimates the remaining battery charge from a Tempest voltage.
func BatteryPercent(voltage *float64) *int {
	if voltage == nil {
		return nil
	}
	pct := (*voltage - BatteryMinVoltage) / (BatteryMaxVoltage - BatteryMinVoltage) * 100
	pct = math.Max(0, math.Min(100, pct))
	return Ptr(int(math.Round(pct)))
}

// PowerSaveMode returns the Tempest power-save mode (0-3) implied by a voltage.
func PowerSaveMode(voltage *float64) *int {
	if voltage == nil {
		return nil
	}
	v := *voltage
	switch {
	case v >= powerSaveMode1Voltage:
		return Ptr(0)
	case v >= powerSaveMode2Voltage:
		return Ptr(1)
	case v >= powerSaveMode3Voltage:
		return Ptr(2)
	default:
		return Ptr(3)
	}
}

var powerSaveModeText = map[int]string{
	0: "full performance",
	1: "wind every 6 seconds",
	2: "wind every 30 seconds",
	3: "wind every 5 minutes, rain and lightning off",
}

// PowerSaveModeText describes what a power-save mode does to sampling.
func PowerSaveModeText(mode *int) *string {
	if mode == nil {
		return nil
	}
	text, ok := powerSaveModeText[*mode]
	if !ok {
		return nil
	}
	return &text
}

// AbsoluteHumidity returns water vapour density in g/m3.
func AbsoluteHumidity(tempC, relativeHumidity *float64) *float64 {
	if tempC == nil || relativeHumidity == nil {
		return nil
	}
	t := *tempC
	saturation := 6.112 * math.Exp((17.67*t)/(t+243.5))
	ah := (saturation * *relativeHumidity * 2.1674) / (273.15 + t)
	return Ptr(round(ah, 2))
}

// Upper bound (m/s, exclusive) of Beaufort numbers 0 through 11.
var beaufortLimits = []float64{0.3, 1.6, 3.4, 5.5, 8.0, 10.8, 13.9, 17.2, 20.8, 24.5, 28.5, 32.7}

// Beaufort converts a wind speed in m/s to the Beaufort scale.
func Beaufort(windMS *float64) *int {
	if windMS == nil {
		return nil
	}
	for i, limit := range beaufortLimits {
		if *windMS < limit {
			return Ptr(i)
		}
	}
	return Ptr(len(beaufortLimits))
}

var beaufortText = []string{
	"calm",
	"light air",
	"light breeze",
	"gentle breeze",
	"moderate breeze",
	"fresh breeze",
	"strong breeze",
	"near gale",
	"gale",
	"strong gale",
	"storm",
	"violent storm",
	"hurricane",
}

// BeaufortDescription returns the name of a Beaufort number.
func BeaufortDescription(beaufort *int) *string {
	if beaufort == nil || *beaufort < 0 || *beaufort >= len(beaufortText) {
		return nil
	}
	return Ptr(beaufortText[*beaufort])
}

// FreezingAltitude estimates the altitude (m) of the 0 C level. Below freezing
// the station itself is the freezing level.
func FreezingAltitude(tempC *float64, elevation float64) *float64 {
	if tempC == nil {
		return nil
	}
	if *tempC <= 0 {
		return Ptr(round(elevation, 0))
	}
	return Ptr(round(elevation+freezingLapse*(*tempC), 0))
}

// ElevationFromPressure estimates station elevation (m) from station and
// sea-level pressure using the barometric formula.
func ElevationFromPressure(stationPressure, seaLevelPressure *float64) *float64 {
	if stationPressure == nil || seaLevelPressure == nil || *stationPressure <= 0 || *seaLevelPressure <= 0 {
		return nil
	}
	h := 44330.0 * (1 - math.Pow(*stationPressure / *seaLevelPressure, 1/5.255))
	return Ptr(round(h, 0))
}

// CloudBase estimates the cloud base altitude (m) from the dew point spread.
func CloudBase(tempC, dewPointC *float64, elevation float64) *float64 {
	if tempC == nil || dewPointC == nil {
		return nil
	}
	spread := math.Max(0, *tempC-*dewPointC)
	return Ptr(round(spread*126+elevation, 0))
}

// UVDescription returns the WHO exposure category for a UV index.
func UVDescription(uv *float64) *string {
	if uv == nil {
		return nil
	}
	switch u := *uv; {
	case u < 3:
		return Ptr("low")
	case u < 6:
		return Ptr("moderate")
	case u < 8:
		return Ptr("high")
	case u < 11:
		return Ptr("very-high")
	default:
		return Ptr("extreme")
	}
}

var precipitationTypeText = []string{"none", "rain", "hail", "rain+hail"}

// PrecipitationTypeText maps a device precipitation code to its name.
func PrecipitationTypeText(code *int) *string {
	if code == nil || *code < 0 || *code >= len(precipitationTypeText) {
		return nil
	}
	return Ptr(precipitationTypeText[*code])
}

// PrecipitationIntensity classifies a rain rate in mm/h.
func PrecipitationIntensity(rateMMh *float64) *string {
	if rateMMh == nil {
		return nil
	}
	switch r := *rateMMh; {
	case r <= 0:
		return Ptr("none")
	case r < 0.25:
		return Ptr("very light")
	case r < 1:
		return Ptr("light")
	case r < 4:
		return Ptr("moderate")
	case r < 16:
		return Ptr("heavy")
	case r < 50:
		return Ptr("very heavy")
	default:
		return Ptr("extreme")
	}
}

var cardinals = []string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// WindCardinal converts a bearing in degrees to a 16-point compass direction.
func WindCardinal(degrees *float64) *string {
	if degrees == nil {
		return nil
	}
	d := math.Mod(*degrees, 360)
	if d < 0 {
		d += 360
	}
	idx := int(math.Round(d/22.5)) % len(cardinals)
	return Ptr(cardinals[idx])
}

// LightningActive reports whether the last strike happened within window of at.
func LightningActive(lastStrikeEpoch *int64, at time.Time, window time.Duration) bool {
	if lastStrikeEpoch == nil || *lastStrikeEpoch <= 0 {
		return false
	}
	age := at.Sub(time.Unix(*lastStrikeEpoch, 0))
	return age >= 0 && age <= window
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
