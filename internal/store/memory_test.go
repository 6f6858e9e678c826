package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weatherflow-forecast/internal/weather"
)

func reading(stationID int, ts time.Time) weather.StationReading {
	return weather.StationReading{StationID: stationID, Timestamp: ts, DataAvailable: true}
}

func TestGetLatestEmpty(t *testing.T) {
	s := NewMemoryStore(10, time.Hour)
	_, err := s.GetLatest(1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveAndGetLatest(t *testing.T) {
	s := NewMemoryStore(10, 0)
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	s.SaveReading(reading(1, base))
	s.SaveReading(reading(1, base.Add(2*time.Minute)))
	s.SaveReading(reading(1, base.Add(time.Minute)))
	s.SaveReading(reading(2, base.Add(10*time.Minute)))

	latest, err := s.GetLatest(1)
	require.NoError(t, err)
	assert.Equal(t, base.Add(2*time.Minute), latest.Timestamp)

	all, err := s.GetRange(1, base, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, base.Add(time.Minute), all[1].Timestamp)
}

func TestRetentionByCount(t *testing.T) {
	s := NewMemoryStore(2, 0)
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s.SaveReading(reading(1, base.Add(time.Duration(i)*time.Minute)))
	}

	all, err := s.GetRange(1, base, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, base.Add(3*time.Minute), all[0].Timestamp)
}

func TestRetentionByAge(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(0, time.Hour)
	s.now = func() time.Time { return now }

	s.SaveReading(reading(1, now.Add(-3*time.Hour)))
	s.SaveReading(reading(1, now.Add(-30*time.Minute)))

	all, err := s.GetRange(1, now.Add(-24*time.Hour), now)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, now.Add(-30*time.Minute), all[0].Timestamp)
}

func TestRetentionByAgeKeepsNewest(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(0, time.Hour)
	s.now = func() time.Time { return now }

	s.SaveReading(reading(1, now.Add(-5*time.Hour)))

	latest, err := s.GetLatest(1)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-5*time.Hour), latest.Timestamp)
}

func TestGetRangeOutside(t *testing.T) {
	s := NewMemoryStore(10, 0)
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	s.SaveReading(reading(1, base))

	_, err := s.GetRange(1, base.Add(time.Hour), base.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrNotFound)
}
