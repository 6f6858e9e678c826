package providers

import (
	"fmt"
	"math"
	"time"

	"github.com/i474232898/weatherflow-forecast/internal/weather"
)

// deviceLayout gives the array positions of the fields we read from a device
// observation row. -1 means the device type does not report the field.
type deviceLayout struct {
	timestamp         int
	precipitationType int
	voltage           int
}

var deviceLayouts = map[string]deviceLayout{
	"obs_st":  {timestamp: 0, precipitationType: 13, voltage: 16},
	"obs_sky": {timestamp: 0, precipitationType: 12, voltage: -1},
	"obs_air": {timestamp: 0, precipitationType: -1, voltage: -1},
}

func field(row []*float64, idx int) *float64 {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}

func precipitationTypeField(row []*float64, idx int) *weather.PrecipitationType {
	v := field(row, idx)
	if v == nil {
		return nil
	}
	pt := weather.PrecipitationType(math.Round(*v))
	return &pt
}

func unixUTC(epoch int64) time.Time {
	if epoch <= 0 {
		return time.Time{}
	}
	return time.Unix(epoch, 0).UTC()
}

func normalizeStation(p *stationsPayload, stationID int) (weather.StationInfo, error) {
	for _, s := range p.Stations {
		// A zero id means the payload omitted it.
		if s.StationID != 0 && s.StationID != stationID {
			continue
		}
		info := weather.StationInfo{
			StationID:  s.StationID,
			Name:       s.Name,
			PublicName: s.PublicName,
			Latitude:   s.Latitude,
			Longitude:  s.Longitude,
			Elevation:  s.StationMeta.Elevation,
			Timezone:   s.Timezone,
		}
		if info.StationID == 0 {
			info.StationID = stationID
		}
		for _, d := range s.Devices {
			info.Devices = append(info.Devices, weather.DeviceInfo{
				DeviceID:         d.DeviceID,
				SerialNumber:     d.SerialNumber,
				DeviceType:       d.DeviceType,
				FirmwareRevision: string(d.FirmwareRevision),
				HardwareRevision: string(d.HardwareRevision),
			})
		}
		return info, nil
	}
	return weather.StationInfo{}, fmt.Errorf("station %d: %w", stationID, weather.ErrStationNotFound)
}

// normalizeReading builds a StationReading from the station observation and,
// when present, the latest device observation row. An empty station
// observation yields a reading with DataAvailable=false.
func normalizeReading(stationID int, obs *stationObservationPayload, dev *deviceObservationPayload) weather.StationReading {
	r := weather.StationReading{StationID: stationID}
	if obs == nil || len(obs.Obs) == 0 {
		return r
	}

	o := obs.Obs[len(obs.Obs)-1]
	r.DataAvailable = true
	r.Timestamp = unixUTC(o.Timestamp)

	r.Temperature = o.AirTemperature
	r.Humidity = o.RelativeHumidity
	r.DewPoint = o.DewPoint
	r.FeelsLike = o.FeelsLike
	r.StationPressure = o.StationPressure
	r.SeaLevelPressure = o.SeaLevelPressure
	r.PressureTrend = o.PressureTrend

	r.WindAvg = o.WindAvg
	r.WindGust = o.WindGust
	r.WindLull = o.WindLull
	r.WindDirection = o.WindDirection

	r.UVIndex = o.UV
	r.SolarRadiation = o.SolarRadiation
	r.Brightness = o.Brightness

	if o.Precip != nil {
		rate := *o.Precip * 60
		r.PrecipitationRate = &rate
	}
	r.PrecipitationLastHour = o.PrecipAccumLast1hr
	r.PrecipitationToday = o.PrecipAccumLocalDay
	r.PrecipitationYesterday = o.PrecipAccumLocalYesterday
	r.PrecipitationMinutes = o.PrecipMinutesLocalDay

	r.LightningStrikeLastEpoch = o.LightningStrikeLastEpoch
	r.LightningStrikeLastDistance = o.LightningStrikeLastDistance
	r.LightningStrikeCount = o.LightningStrikeCount
	r.LightningStrikeCountLast1h = o.LightningStrikeCountLast1hr
	r.LightningStrikeCountLast3h = o.LightningStrikeCountLast3hr

	if dev != nil && len(dev.Obs) > 0 {
		if layout, ok := deviceLayouts[dev.Type]; ok {
			row := dev.Obs[len(dev.Obs)-1]
			r.PrecipitationType = precipitationTypeField(row, layout.precipitationType)
			r.Voltage = field(row, layout.voltage)
			if r.Timestamp.IsZero() {
				if ts := field(row, layout.timestamp); ts != nil {
					r.Timestamp = unixUTC(int64(*ts))
				}
			}
		}
	}

	return r
}

func normalizeForecast(stationID int, p *forecastPayload) weather.ForecastData {
	cc := p.CurrentConditions
	f := weather.ForecastData{
		StationID: stationID,
		Timezone:  p.Timezone,
		Current: weather.CurrentConditions{
			Time:                     unixUTC(cc.Time),
			Condition:                cc.Conditions,
			Icon:                     mapIcon(cc.Icon),
			Temperature:              cc.AirTemperature,
			ApparentTemperature:      cc.FeelsLike,
			DewPoint:                 cc.DewPoint,
			Humidity:                 cc.RelativeHumidity,
			Pressure:                 cc.SeaLevelPressure,
			PressureTrend:            cc.PressureTrend,
			WindSpeed:                cc.WindAvg,
			WindGustSpeed:            cc.WindGust,
			WindBearing:              cc.WindDirection,
			UVIndex:                  cc.UV,
			PrecipitationProbability: cc.PrecipProbability,
			PrecipitationToday:       cc.PrecipAccumLocalDay,
		},
		Daily:  make([]weather.ForecastDaily, 0, len(p.Forecast.Daily)),
		Hourly: make([]weather.ForecastHourly, 0, len(p.Forecast.Hourly)),
	}

	for _, d := range p.Forecast.Daily {
		f.Daily = append(f.Daily, weather.ForecastDaily{
			ValidTime:                unixUTC(d.DayStartLocal),
			Temperature:              d.AirTempHigh,
			TempLow:                  d.AirTempLow,
			Condition:                d.Conditions,
			Icon:                     mapIcon(d.Icon),
			PrecipitationProbability: d.PrecipProbability,
		})
	}

	for _, h := range p.Forecast.Hourly {
		f.Hourly = append(f.Hourly, weather.ForecastHourly{
			ValidTime:                unixUTC(h.Time),
			Temperature:              h.AirTemperature,
			ApparentTemperature:      h.FeelsLike,
			Condition:                h.Conditions,
			Icon:                     mapIcon(h.Icon),
			Humidity:                 h.RelativeHumidity,
			Precipitation:            h.Precip,
			PrecipitationProbability: h.PrecipProbability,
			Pressure:                 h.SeaLevelPressure,
			WindBearing:              h.WindDirection,
			WindGustSpeed:            h.WindGust,
			WindSpeed:                h.WindAvg,
			UVIndex:                  h.UV,
		})
	}

	return f
}
