package weather

import (
	"math"
	"time"
)

// ReadingSummary condenses a range of stored readings.
type ReadingSummary struct {
	StationID int       `json:"station_id"`
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`
	Count     int       `json:"count"`

	TemperatureMin *float64 `json:"temperature_min"`
	TemperatureMax *float64 `json:"temperature_max"`
	TemperatureAvg *float64 `json:"temperature_avg"`
	HumidityAvg    *float64 `json:"humidity_avg"`
	WindAvg        *float64 `json:"wind_avg"`
	WindGustMax    *float64 `json:"wind_gust_max"`
	UVIndexMax     *float64 `json:"uv_index_max"`

	LightningStrikes int  `json:"lightning_strikes"`
	LightningSeen    bool `json:"lightning_seen"`
}

type runningStat struct {
	sum      float64
	min, max float64
	n        int
}

func (s *runningStat) add(v *float64) {
	if v == nil {
		return
	}
	if s.n == 0 {
		s.min, s.max = *v, *v
	}
	s.sum += *v
	s.min = math.Min(s.min, *v)
	s.max = math.Max(s.max, *v)
	s.n++
}

func (s *runningStat) avg() *float64 {
	if s.n == 0 {
		return nil
	}
	v := s.sum / float64(s.n)
	return &v
}

func (s *runningStat) minimum() *float64 {
	if s.n == 0 {
		return nil
	}
	v := s.min
	return &v
}

func (s *runningStat) maximum() *float64 {
	if s.n == 0 {
		return nil
	}
	v := s.max
	return &v
}

// SummarizeReadings combines readings into a ReadingSummary. Readings without
// data are skipped; numeric fields stay nil when no reading reported them.
func SummarizeReadings(stationID int, readings []StationReading) ReadingSummary {
	summary := ReadingSummary{StationID: stationID}

	var temp, humidity, wind, gust, uv runningStat
	for _, r := range readings {
		if !r.DataAvailable {
			continue
		}
		summary.Count++

		if summary.From.IsZero() || r.Timestamp.Before(summary.From) {
			summary.From = r.Timestamp
		}
		if r.Timestamp.After(summary.To) {
			summary.To = r.Timestamp
		}

		temp.add(r.Temperature)
		humidity.add(r.Humidity)
		wind.add(r.WindAvg)
		gust.add(r.WindGust)
		uv.add(r.UVIndex)

		if r.LightningStrikeCount != nil {
			summary.LightningStrikes += *r.LightningStrikeCount
		}
		if r.LightningActive {
			summary.LightningSeen = true
		}
	}

	summary.TemperatureMin = temp.minimum()
	summary.TemperatureMax = temp.maximum()
	summary.TemperatureAvg = temp.avg()
	summary.HumidityAvg = humidity.avg()
	summary.WindAvg = wind.avg()
	summary.WindGustMax = gust.maximum()
	summary.UVIndexMax = uv.maximum()
	return summary
}
