package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/weatherflow-forecast/internal/weather"
)

var (
	// ErrNotFound is returned when no reading is stored for a station or range.
	ErrNotFound = errors.New("no readings for station")
)

// ReadingHistory holds a time-ordered list of readings for a station.
type ReadingHistory struct {
	Readings []weather.StationReading
}

// MemoryStore is a concurrency-safe in-memory implementation of weather.Store.
type MemoryStore struct {
	mu sync.RWMutex

	// key: station key, value: history
	data map[string]*ReadingHistory

	// retention configuration
	maxHistory int           // max number of readings per station
	maxAge     time.Duration // optional max age for readings

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*ReadingHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveReading appends a reading for its station and enforces retention.
// Readings older than the newest stored one are kept in order.
func (s *MemoryStore) SaveReading(reading weather.StationReading) {
	key := weather.StationKey(reading.StationID)

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[key]
	if !ok {
		history = &ReadingHistory{}
		s.data[key] = history
	}

	i := len(history.Readings)
	for i > 0 && history.Readings[i-1].Timestamp.After(reading.Timestamp) {
		i--
	}
	history.Readings = append(history.Readings, weather.StationReading{})
	copy(history.Readings[i+1:], history.Readings[i:])
	history.Readings[i] = reading

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.Readings) > s.maxHistory {
		over := len(history.Readings) - s.maxHistory
		history.Readings = history.Readings[over:]
	}

	// Enforce retention by age, always keeping the newest reading.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Readings)-1; i++ {
			if !history.Readings[i].Timestamp.Before(cutoff) {
				break
			}
		}
		history.Readings = history.Readings[i:]
	}
}

// GetLatest returns the most recent reading for a station.
func (s *MemoryStore) GetLatest(stationID int) (weather.StationReading, error) {
	key := weather.StationKey(stationID)

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Readings) == 0 {
		return weather.StationReading{}, ErrNotFound
	}
	return history.Readings[len(history.Readings)-1], nil
}

// GetRange returns all readings for a station between from and to (inclusive).
func (s *MemoryStore) GetRange(stationID int, from, to time.Time) ([]weather.StationReading, error) {
	key := weather.StationKey(stationID)

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Readings) == 0 {
		return nil, ErrNotFound
	}

	var result []weather.StationReading
	for _, r := range history.Readings {
		if !r.Timestamp.Before(from) && !r.Timestamp.After(to) {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}
