package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/i474232898/weatherflow-forecast/internal/metrics"
)

// DefaultForecastHours is the number of hourly forecast entries returned when
// the caller does not ask for a specific count.
const DefaultForecastHours = 48

// Service orchestrates the provider, caches and the reading store.
type Service struct {
	store     Store
	provider  Provider
	stations  Cache
	forecasts Cache
	metrics   *metrics.Metrics
	logger    logrus.FieldLogger

	forecastHours int
	elevation     float64
	now           func() time.Time
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithStationCache caches station metadata between polling cycles.
func WithStationCache(c Cache) ServiceOption {
	return func(s *Service) { s.stations = c }
}

// WithForecastCache reuses forecasts while their current conditions are fresh.
func WithForecastCache(c Cache) ServiceOption {
	return func(s *Service) { s.forecasts = c }
}

// WithForecastHours sets the default number of hourly forecast entries.
func WithForecastHours(hours int) ServiceOption {
	return func(s *Service) {
		if hours > 0 {
			s.forecastHours = hours
		}
	}
}

// WithElevation overrides the station elevation used for derived values.
func WithElevation(meters float64) ServiceOption {
	return func(s *Service) { s.elevation = meters }
}

// WithMetrics records poll outcomes.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the service logger.
func WithLogger(l logrus.FieldLogger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

var errNoProvider = errors.New("no weather provider configured")

// NewService creates a new Service. A nil provider leaves only the stored
// history available; upstream operations fail.
func NewService(store Store, provider Provider, opts ...ServiceOption) *Service {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Service{
		store:         store,
		provider:      provider,
		logger:        discard,
		forecastHours: DefaultForecastHours,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Poll runs one polling cycle for a station: it resolves the station metadata,
// performs the combined observation fetch, enriches the result and stores it.
func (s *Service) Poll(ctx context.Context, stationID int) (StationReading, error) {
	log := s.logger.WithField("station_id", stationID)
	if s.provider == nil {
		return StationReading{}, errNoProvider
	}

	station, err := s.Station(ctx, stationID)
	if err != nil {
		s.metrics.ObservePoll(pollResult(err, false))
		return StationReading{}, err
	}

	raw, err := s.provider.FetchReading(ctx, station)
	if err != nil {
		s.metrics.ObservePoll(pollResult(err, false))
		return StationReading{}, fmt.Errorf("fetching reading for station %d: %w", stationID, err)
	}

	reading := Enrich(raw, s.elevationFor(station))
	if reading.Timestamp.IsZero() {
		reading.Timestamp = s.now().UTC()
	}
	s.store.SaveReading(reading)
	s.metrics.ObservePoll(pollResult(nil, reading.DataAvailable))

	if !reading.DataAvailable {
		log.Warn("station reported no recent observation")
	} else {
		log.WithField("timestamp", reading.Timestamp).Debug("stored reading")
	}
	return reading, nil
}

// Current returns the latest stored reading, polling when none is stored or
// when refresh is set.
func (s *Service) Current(ctx context.Context, stationID int, refresh bool) (StationReading, error) {
	if !refresh {
		if r, err := s.store.GetLatest(stationID); err == nil {
			return r, nil
		}
	}
	return s.Poll(ctx, stationID)
}

// Station returns station metadata, cached between calls.
func (s *Service) Station(ctx context.Context, stationID int) (StationInfo, error) {
	key := StationKey(stationID)
	if s.stations != nil {
		if v, ok := s.stations.Get(key); ok {
			if info, ok := v.(StationInfo); ok {
				return info, nil
			}
		}
	}

	if s.provider == nil {
		return StationInfo{}, errNoProvider
	}
	info, err := s.provider.FetchStation(ctx, stationID)
	if err != nil {
		return StationInfo{}, fmt.Errorf("fetching station %d: %w", stationID, err)
	}
	if s.stations != nil {
		s.stations.Put(key, info, s.now())
	}
	return info, nil
}

// Forecast returns the station forecast with at most hours hourly entries.
// A non-positive hours uses the configured default.
func (s *Service) Forecast(ctx context.Context, stationID int, hours int) (ForecastData, error) {
	if hours <= 0 {
		hours = s.forecastHours
	}

	key := StationKey(stationID)
	if s.forecasts != nil {
		if v, ok := s.forecasts.Get(key); ok {
			if f, ok := v.(ForecastData); ok {
				return f.WithHours(hours), nil
			}
		}
	}

	if s.provider == nil {
		return ForecastData{}, errNoProvider
	}
	f, err := s.provider.FetchForecast(ctx, stationID)
	if err != nil {
		return ForecastData{}, fmt.Errorf("fetching forecast for station %d: %w", stationID, err)
	}

	if s.forecasts != nil {
		asOf := f.Current.Time
		if asOf.IsZero() {
			asOf = s.now()
		}
		s.forecasts.Put(key, f, asOf)
	}
	return f.WithHours(hours), nil
}

// History returns the stored readings between from and to, inclusive.
func (s *Service) History(stationID int, from, to time.Time) ([]StationReading, error) {
	return s.store.GetRange(stationID, from, to)
}

// Summary summarizes the stored readings between from and to.
func (s *Service) Summary(stationID int, from, to time.Time) (ReadingSummary, error) {
	readings, err := s.store.GetRange(stationID, from, to)
	if err != nil {
		return ReadingSummary{}, err
	}
	return SummarizeReadings(stationID, readings), nil
}

func (s *Service) elevationFor(station StationInfo) float64 {
	if s.elevation != 0 {
		return s.elevation
	}
	return station.Elevation
}

func pollResult(err error, dataAvailable bool) string {
	switch {
	case errors.Is(err, ErrStationNotFound):
		return "not_found"
	case err != nil:
		return "error"
	case !dataAvailable:
		return "offline"
	default:
		return "ok"
	}
}
