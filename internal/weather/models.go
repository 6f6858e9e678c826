package weather

import (
	"strconv"
	"time"

	"github.com/i474232898/weatherflow-forecast/internal/derived"
)

// PrecipitationType is the precipitation code reported by Tempest and SKY devices.
type PrecipitationType int

const (
	PrecipitationNone     PrecipitationType = 0
	PrecipitationRain     PrecipitationType = 1
	PrecipitationHail     PrecipitationType = 2
	PrecipitationRainHail PrecipitationType = 3
)

// Text returns the name of the code, or nil for a code outside 0-3.
func (p PrecipitationType) Text() *string {
	code := int(p)
	return derived.PrecipitationTypeText(&code)
}

func (p PrecipitationType) String() string {
	if text := p.Text(); text != nil {
		return *text
	}
	return "unknown"
}

// Device types as reported in station metadata.
const (
	DeviceTypeTempest = "ST"
	DeviceTypeSky     = "SK"
)

// DeviceInfo describes one device attached to a station.
type DeviceInfo struct {
	DeviceID         int    `json:"device_id"`
	SerialNumber     string `json:"serial_number"`
	DeviceType       string `json:"device_type"`
	FirmwareRevision string `json:"firmware_revision"`
	HardwareRevision string `json:"hardware_revision"`
}

// StationInfo is the station metadata returned by the stations endpoint.
type StationInfo struct {
	StationID  int          `json:"station_id"`
	Name       string       `json:"name"`
	PublicName string       `json:"public_name"`
	Latitude   float64      `json:"latitude"`
	Longitude  float64      `json:"longitude"`
	Elevation  float64      `json:"elevation"`
	Timezone   string       `json:"timezone"`
	Devices    []DeviceInfo `json:"devices"`
}

// StationKey returns the key used for a station id.
func StationKey(stationID int) string {
	return strconv.Itoa(stationID)
}

// PrecipitationDevice returns the device that reports precipitation type,
// preferring a Tempest over a SKY.
func (s StationInfo) PrecipitationDevice() (DeviceInfo, bool) {
	if d, ok := s.device(DeviceTypeTempest); ok {
		return d, true
	}
	return s.device(DeviceTypeSky)
}

func (s StationInfo) device(deviceType string) (DeviceInfo, bool) {
	for _, d := range s.Devices {
		if d.DeviceType == deviceType {
			return d, true
		}
	}
	return DeviceInfo{}, false
}

// StationReading is the normalized snapshot produced by one polling cycle.
// Optional values are nil when the station did not report them.
type StationReading struct {
	StationID     int       `json:"station_id"`
	Timestamp     time.Time `json:"timestamp"` // always UTC
	DataAvailable bool      `json:"data_available"`

	Temperature      *float64 `json:"temperature"`
	Humidity         *float64 `json:"humidity"`
	DewPoint         *float64 `json:"dew_point"`
	FeelsLike        *float64 `json:"feels_like"`
	StationPressure  *float64 `json:"station_pressure"`
	SeaLevelPressure *float64 `json:"sea_level_pressure"`
	PressureTrend    *string  `json:"pressure_trend"`

	WindAvg       *float64 `json:"wind_avg"`
	WindGust      *float64 `json:"wind_gust"`
	WindLull      *float64 `json:"wind_lull"`
	WindDirection *float64 `json:"wind_direction"`

	UVIndex        *float64 `json:"uv_index"`
	SolarRadiation *float64 `json:"solar_radiation"`
	Brightness     *float64 `json:"brightness"`

	PrecipitationRate      *float64           `json:"precipitation_rate"` // mm/h
	PrecipitationLastHour  *float64           `json:"precipitation_last_hour"`
	PrecipitationToday     *float64           `json:"precipitation_today"`
	PrecipitationYesterday *float64           `json:"precipitation_yesterday"`
	PrecipitationMinutes   *int               `json:"precipitation_minutes_today"`
	PrecipitationType      *PrecipitationType `json:"precipitation_type"`
	PrecipitationTypeText  *string            `json:"precipitation_type_text"`
	PrecipitationIntensity *string            `json:"precipitation_intensity"`

	LightningStrikeLastEpoch    *int64   `json:"lightning_strike_last_epoch"`
	LightningStrikeLastDistance *float64 `json:"lightning_strike_last_distance"`
	LightningStrikeCount        *int     `json:"lightning_strike_count"`
	LightningStrikeCountLast1h  *int     `json:"lightning_strike_count_last_1hr"`
	LightningStrikeCountLast3h  *int     `json:"lightning_strike_count_last_3hr"`
	LightningActive             bool     `json:"lightning_active"`

	Voltage           *float64 `json:"voltage"`
	BatteryPercent    *int     `json:"battery"`
	PowerSaveMode     *int     `json:"power_save_mode"`
	PowerSaveModeText *string  `json:"power_save_mode_text"`

	AbsoluteHumidity    *float64 `json:"absolute_humidity"`
	Beaufort            *int     `json:"beaufort"`
	BeaufortDescription *string  `json:"beaufort_description"`
	FreezingAltitude    *float64 `json:"freezing_altitude"`
	CloudBase           *float64 `json:"cloud_base"`
	UVDescription       *string  `json:"uv_description"`
	WindCardinal        *string  `json:"wind_cardinal"`
}

// CurrentConditions is the current-conditions block of the forecast endpoint.
type CurrentConditions struct {
	Time                     time.Time `json:"time"`
	Condition                string    `json:"condition"`
	Icon                     string    `json:"icon"`
	Temperature              *float64  `json:"temperature"`
	ApparentTemperature      *float64  `json:"apparent_temperature"`
	DewPoint                 *float64  `json:"dew_point"`
	Humidity                 *float64  `json:"humidity"`
	Pressure                 *float64  `json:"pressure"`
	PressureTrend            string    `json:"pressure_trend"`
	WindSpeed                *float64  `json:"wind_speed"`
	WindGustSpeed            *float64  `json:"wind_gust_speed"`
	WindBearing              *float64  `json:"wind_bearing"`
	UVIndex                  *float64  `json:"uv_index"`
	PrecipitationProbability *int      `json:"precipitation_probability"`
	PrecipitationToday       *float64  `json:"precipitation_today"`
}

// ForecastDaily is one day of the forecast.
type ForecastDaily struct {
	ValidTime                time.Time `json:"valid_time"`
	Temperature              *float64  `json:"temperature"`
	TempLow                  *float64  `json:"temp_low"`
	Condition                string    `json:"condition"`
	Icon                     string    `json:"icon"`
	PrecipitationProbability *int      `json:"precipitation_probability"`
}

// ForecastHourly is one hour of the forecast.
type ForecastHourly struct {
	ValidTime                time.Time `json:"valid_time"`
	Temperature              *float64  `json:"temperature"`
	ApparentTemperature      *float64  `json:"apparent_temperature"`
	Condition                string    `json:"condition"`
	Icon                     string    `json:"icon"`
	Humidity                 *float64  `json:"humidity"`
	Precipitation            *float64  `json:"precipitation"`
	PrecipitationProbability *int      `json:"precipitation_probability"`
	Pressure                 *float64  `json:"pressure"`
	WindBearing              *float64  `json:"wind_bearing"`
	WindGustSpeed            *float64  `json:"wind_gust_speed"`
	WindSpeed                *float64  `json:"wind_speed"`
	UVIndex                  *float64  `json:"uv_index"`
}

// ForecastData bundles current conditions with the daily and hourly forecast.
// Entries are ordered by ValidTime ascending.
type ForecastData struct {
	StationID int               `json:"station_id"`
	Timezone  string            `json:"timezone"`
	Current   CurrentConditions `json:"current"`
	Daily     []ForecastDaily   `json:"daily"`
	Hourly    []ForecastHourly  `json:"hourly"`
}

// WithHours returns a copy holding at most hours hourly entries.
func (f ForecastData) WithHours(hours int) ForecastData {
	if hours < 0 {
		hours = 0
	}
	out := f
	n := min(hours, len(f.Hourly))
	out.Hourly = append([]ForecastHourly(nil), f.Hourly[:n]...)
	return out
}
