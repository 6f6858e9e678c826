package providers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/i474232898/weatherflow-forecast/internal/common"
)

// apiStatus is the status block WeatherFlow embeds in every response body.
type apiStatus struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

// err maps a body-level failure onto a StatusError. WeatherFlow sometimes
// answers 200 with the real outcome only in the body.
func (s apiStatus) err() error {
	notFound := common.HasAny(s.StatusMessage, "not found", "invalid station", "invalid device")
	unauthorized := common.HasAny(s.StatusMessage, "unauthorized", "invalid token")
	if s.StatusCode == 0 && !notFound && !unauthorized {
		return nil
	}

	code := s.StatusCode
	switch {
	case notFound:
		code = http.StatusNotFound
	case unauthorized:
		code = http.StatusUnauthorized
	case code < 400:
		code = http.StatusBadRequest
	}
	return &StatusError{Code: code, Body: s.StatusMessage}
}

type statusCarrier interface {
	apiErr() error
}

// flexString accepts both JSON strings and numbers; revision fields change type
// between firmware generations.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(b)
	return nil
}

type stationsPayload struct {
	Stations []struct {
		StationID   int     `json:"station_id"`
		Name        string  `json:"name"`
		PublicName  string  `json:"public_name"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
		Timezone    string  `json:"timezone"`
		StationMeta struct {
			Elevation float64 `json:"elevation"`
		} `json:"station_meta"`
		Devices []struct {
			DeviceID         int        `json:"device_id"`
			SerialNumber     string     `json:"serial_number"`
			DeviceType       string     `json:"device_type"`
			FirmwareRevision flexString `json:"firmware_revision"`
			HardwareRevision flexString `json:"hardware_revision"`
		} `json:"devices"`
	} `json:"stations"`
	Status apiStatus `json:"status"`
}

func (p *stationsPayload) apiErr() error { return p.Status.err() }

type stationObservation struct {
	Timestamp                   int64    `json:"timestamp"`
	AirTemperature              *float64 `json:"air_temperature"`
	RelativeHumidity            *float64 `json:"relative_humidity"`
	DewPoint                    *float64 `json:"dew_point"`
	FeelsLike                   *float64 `json:"feels_like"`
	StationPressure             *float64 `json:"station_pressure"`
	SeaLevelPressure            *float64 `json:"sea_level_pressure"`
	PressureTrend               *string  `json:"pressure_trend"`
	WindAvg                     *float64 `json:"wind_avg"`
	WindGust                    *float64 `json:"wind_gust"`
	WindLull                    *float64 `json:"wind_lull"`
	WindDirection               *float64 `json:"wind_direction"`
	UV                          *float64 `json:"uv"`
	SolarRadiation              *float64 `json:"solar_radiation"`
	Brightness                  *float64 `json:"brightness"`
	Precip                      *float64 `json:"precip"` // mm in the last minute
	PrecipAccumLast1hr          *float64 `json:"precip_accum_last_1hr"`
	PrecipAccumLocalDay         *float64 `json:"precip_accum_local_day"`
	PrecipAccumLocalYesterday   *float64 `json:"precip_accum_local_yesterday"`
	PrecipMinutesLocalDay       *int     `json:"precip_minutes_local_day"`
	LightningStrikeLastEpoch    *int64   `json:"lightning_strike_last_epoch"`
	LightningStrikeLastDistance *float64 `json:"lightning_strike_last_distance"`
	LightningStrikeCount        *int     `json:"lightning_strike_count"`
	LightningStrikeCountLast1hr *int     `json:"lightning_strike_count_last_1hr"`
	LightningStrikeCountLast3hr *int     `json:"lightning_strike_count_last_3hr"`
}

type stationObservationPayload struct {
	StationID   int                  `json:"station_id"`
	StationName string               `json:"station_name"`
	Obs         []stationObservation `json:"obs"`
	Status      apiStatus            `json:"status"`
}

func (p *stationObservationPayload) apiErr() error { return p.Status.err() }

// deviceObservationPayload carries positional observation rows; the layout
// depends on Type (obs_st, obs_sky, obs_air).
type deviceObservationPayload struct {
	DeviceID int          `json:"device_id"`
	Type     string       `json:"type"`
	Obs      [][]*float64 `json:"obs"`
	Status   apiStatus    `json:"status"`
}

func (p *deviceObservationPayload) apiErr() error { return p.Status.err() }

type currentConditionsPayload struct {
	Time                int64    `json:"time"`
	Conditions          string   `json:"conditions"`
	Icon                string   `json:"icon"`
	AirTemperature      *float64 `json:"air_temperature"`
	FeelsLike           *float64 `json:"feels_like"`
	DewPoint            *float64 `json:"dew_point"`
	RelativeHumidity    *float64 `json:"relative_humidity"`
	SeaLevelPressure    *float64 `json:"sea_level_pressure"`
	PressureTrend       string   `json:"pressure_trend"`
	WindAvg             *float64 `json:"wind_avg"`
	WindGust            *float64 `json:"wind_gust"`
	WindDirection       *float64 `json:"wind_direction"`
	UV                  *float64 `json:"uv"`
	PrecipProbability   *int     `json:"precip_probability"`
	PrecipAccumLocalDay *float64 `json:"precip_accum_local_day"`
}

type dailyForecastPayload struct {
	DayStartLocal     int64    `json:"day_start_local"`
	Conditions        string   `json:"conditions"`
	Icon              string   `json:"icon"`
	AirTempHigh       *float64 `json:"air_temp_high"`
	AirTempLow        *float64 `json:"air_temp_low"`
	PrecipProbability *int     `json:"precip_probability"`
}

type hourlyForecastPayload struct {
	Time              int64    `json:"time"`
	Conditions        string   `json:"conditions"`
	Icon              string   `json:"icon"`
	AirTemperature    *float64 `json:"air_temperature"`
	FeelsLike         *float64 `json:"feels_like"`
	Precip            *float64 `json:"precip"`
	PrecipProbability *int     `json:"precip_probability"`
	RelativeHumidity  *float64 `json:"relative_humidity"`
	SeaLevelPressure  *float64 `json:"sea_level_pressure"`
	UV                *float64 `json:"uv"`
	WindAvg           *float64 `json:"wind_avg"`
	WindGust          *float64 `json:"wind_gust"`
	WindDirection     *float64 `json:"wind_direction"`
}

type forecastPayload struct {
	Timezone          string                   `json:"timezone"`
	CurrentConditions currentConditionsPayload `json:"current_conditions"`
	Forecast          struct {
		Daily  []dailyForecastPayload  `json:"daily"`
		Hourly []hourlyForecastPayload `json:"hourly"`
	} `json:"forecast"`
	Status apiStatus `json:"status"`
}

func (p *forecastPayload) apiErr() error { return p.Status.err() }
