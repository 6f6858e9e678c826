// Package weatherflowtest provides an in-process fake of the WeatherFlow REST API.
package weatherflowtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Token is the API token the fake server accepts.
const Token = "test-token"

// Station describes one station served by the fake API.
type Station struct {
	StationID  int
	Name       string
	DeviceID   int
	DeviceType string // ST, SK or AR; empty for a hub-only station
	Elevation  float64

	// Offline stations answer with an empty observation list.
	Offline bool

	// Observation holds the named station observation fields.
	Observation map[string]any
	// DeviceRow is the positional device observation row.
	DeviceRow []any

	// Forecast shape.
	CurrentTime time.Time
	HourlyCount int
	DailyCount  int
}

// Tempest returns an online Tempest station with plausible readings.
func Tempest(stationID int) Station {
	now := time.Now().UTC().Truncate(time.Minute)
	ts := now.Unix()
	return Station{
		StationID:  stationID,
		Name:       "Backyard",
		DeviceID:   stationID * 10,
		DeviceType: "ST",
		Elevation:  60,
		Observation: map[string]any{
			"timestamp":                       ts,
			"air_temperature":                 21.5,
			"relative_humidity":               62,
			"dew_point":                       13.9,
			"feels_like":                      21.5,
			"station_pressure":                1006.1,
			"sea_level_pressure":              1013.3,
			"pressure_trend":                  "steady",
			"wind_avg":                        4.2,
			"wind_gust":                       6.8,
			"wind_lull":                       1.1,
			"wind_direction":                  250,
			"uv":                              6.4,
			"solar_radiation":                 540,
			"brightness":                      72000,
			"precip":                          0.05,
			"precip_accum_last_1hr":           0.8,
			"precip_accum_local_day":          2.4,
			"precip_accum_local_yesterday":    0,
			"precip_minutes_local_day":        12,
			"lightning_strike_last_epoch":     ts - 300,
			"lightning_strike_last_distance":  12,
			"lightning_strike_count":          2,
			"lightning_strike_count_last_1hr": 5,
			"lightning_strike_count_last_3hr": 9,
		},
		// obs_st: epoch, lull, avg, gust, dir, interval, pressure, temp, rh,
		// lux, uv, solar, rain, precip type, strike dist, strike count,
		// battery, report interval.
		DeviceRow:   []any{ts, 1.1, 4.2, 6.8, 250, 3, 1006.1, 21.5, 62, 72000, 6.4, 540, 0.05, 1, 12, 2, 2.62, 1},
		CurrentTime: now,
		HourlyCount: 240,
		DailyCount:  10,
	}
}

// Server is a fake WeatherFlow API.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	stations map[int]Station
	hits     map[string]int
	failures map[string][]int
}

// NewServer starts a fake API serving the given stations. Close it when done.
func NewServer(stations ...Station) *Server {
	s := &Server{
		stations: make(map[int]Station),
		hits:     make(map[string]int),
		failures: make(map[string][]int),
	}
	for _, st := range stations {
		s.stations[st.StationID] = st
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /stations/{id}", s.handleStation)
	mux.HandleFunc("GET /observations/station/{id}", s.handleStationObservation)
	mux.HandleFunc("GET /observations/device/{id}", s.handleDeviceObservation)
	mux.HandleFunc("GET /better_forecast", s.handleForecast)
	s.Server = httptest.NewServer(s.auth(mux))
	return s
}

// Hits returns how many requests reached the endpoint (e.g. "stations").
func (s *Server) Hits(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[endpoint]
}

// FailNext makes the next requests to endpoint answer with the given statuses, in order.
func (s *Server) FailNext(endpoint string, statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[endpoint] = append(s.failures[endpoint], statuses...)
}

// SetStation adds or replaces a station.
func (s *Server) SetStation(st Station) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stations[st.StationID] = st
}

func endpointOf(path string) string {
	switch {
	case strings.HasPrefix(path, "/stations/"):
		return "stations"
	case strings.HasPrefix(path, "/observations/station/"):
		return "observations/station"
	case strings.HasPrefix(path, "/observations/device/"):
		return "observations/device"
	default:
		return strings.TrimPrefix(path, "/")
	}
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		endpoint := endpointOf(r.URL.Path)

		s.mu.Lock()
		s.hits[endpoint]++
		var fail int
		if queue := s.failures[endpoint]; len(queue) > 0 {
			fail, s.failures[endpoint] = queue[0], queue[1:]
		}
		s.mu.Unlock()

		if fail != 0 {
			writeStatus(w, fail, http.StatusText(fail))
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+Token {
			writeStatus(w, http.StatusUnauthorized, "UNAUTHORIZED")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeStatus(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]any{
		"status": map[string]any{"status_code": code, "status_message": message},
	})
}

var success = map[string]any{"status_code": 0, "status_message": "SUCCESS"}

func (s *Server) lookup(raw string) (Station, bool) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return Station{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stations[id]
	return st, ok
}

func (s *Server) handleStation(w http.ResponseWriter, r *http.Request) {
	st, ok := s.lookup(r.PathValue("id"))
	if !ok {
		writeStatus(w, http.StatusNotFound, "NOT FOUND")
		return
	}

	devices := []map[string]any{{
		"device_id":         st.StationID*10 + 1,
		"serial_number":     "HB-00000001",
		"device_type":       "HB",
		"firmware_revision": "177",
		"hardware_revision": "1",
	}}
	if st.DeviceType != "" {
		devices = append(devices, map[string]any{
			"device_id":         st.DeviceID,
			"serial_number":     st.DeviceType + "-00012345",
			"device_type":       st.DeviceType,
			"firmware_revision": 172,
			"hardware_revision": "1",
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"stations": []map[string]any{{
			"station_id":   st.StationID,
			"name":         st.Name,
			"public_name":  st.Name,
			"latitude":     55.6761,
			"longitude":    12.5683,
			"timezone":     "Europe/Copenhagen",
			"station_meta": map[string]any{"elevation": st.Elevation},
			"devices":      devices,
		}},
		"status": success,
	})
}

func (s *Server) handleStationObservation(w http.ResponseWriter, r *http.Request) {
	st, ok := s.lookup(r.PathValue("id"))
	if !ok {
		writeStatus(w, http.StatusNotFound, "NOT FOUND")
		return
	}

	obs := []map[string]any{}
	if !st.Offline {
		obs = append(obs, st.Observation)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"station_id":   st.StationID,
		"station_name": st.Name,
		"obs":          obs,
		"status":       success,
	})
}

func (s *Server) handleDeviceObservation(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(r.PathValue("id"))

	s.mu.Lock()
	var (
		st    Station
		found bool
	)
	for _, candidate := range s.stations {
		if candidate.DeviceID == id && candidate.DeviceType != "" {
			st, found = candidate, true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		writeStatus(w, http.StatusNotFound, "NOT FOUND")
		return
	}

	obsType := map[string]string{"ST": "obs_st", "SK": "obs_sky", "AR": "obs_air"}[st.DeviceType]
	var obs [][]any
	if !st.Offline && st.DeviceRow != nil {
		obs = append(obs, st.DeviceRow)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"device_id": st.DeviceID,
		"type":      obsType,
		"obs":       obs,
		"status":    success,
	})
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	st, ok := s.lookup(r.URL.Query().Get("station_id"))
	if !ok {
		writeStatus(w, http.StatusNotFound, "NOT FOUND")
		return
	}

	icons := []string{"clear-day", "partly-cloudy-night", "possibly-rainy-day", "some-new-icon"}

	base := st.CurrentTime.Truncate(time.Hour)
	hourly := make([]map[string]any, 0, st.HourlyCount)
	for i := 0; i < st.HourlyCount; i++ {
		hourly = append(hourly, map[string]any{
			"time":               base.Add(time.Duration(i+1) * time.Hour).Unix(),
			"conditions":         "Partly Cloudy",
			"icon":               icons[i%len(icons)],
			"air_temperature":    15 + i%8,
			"feels_like":         14 + i%8,
			"precip":             0,
			"precip_probability": (i * 5) % 100,
			"relative_humidity":  70,
			"sea_level_pressure": 1012.4,
			"uv":                 i % 7,
			"wind_avg":           3.1,
			"wind_gust":          5.5,
			"wind_direction":     200,
		})
	}

	daily := make([]map[string]any, 0, st.DailyCount)
	for i := 0; i < st.DailyCount; i++ {
		daily = append(daily, map[string]any{
			"day_start_local":    base.AddDate(0, 0, i).Unix(),
			"conditions":         "Clear",
			"icon":               icons[i%len(icons)],
			"air_temp_high":      20 + i,
			"air_temp_low":       10 + i,
			"precip_probability": 10 * (i % 10),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"timezone": "Europe/Copenhagen",
		"current_conditions": map[string]any{
			"time":                   st.CurrentTime.Unix(),
			"conditions":             "Clear",
			"icon":                   "cc-clear-day",
			"air_temperature":        21.5,
			"feels_like":             21.5,
			"dew_point":              13.9,
			"relative_humidity":      62,
			"sea_level_pressure":     1013.3,
			"pressure_trend":         "steady",
			"wind_avg":               4.2,
			"wind_gust":              6.8,
			"wind_direction":         250,
			"uv":                     6,
			"precip_probability":     10,
			"precip_accum_local_day": 2.4,
		},
		"forecast": map[string]any{"daily": daily, "hourly": hourly},
		"status":   success,
	})
}
