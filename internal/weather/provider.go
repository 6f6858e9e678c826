package weather

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrStationNotFound is returned when the station id does not exist upstream.
	ErrStationNotFound = errors.New("station not found")
	// ErrUnauthorized is returned when the API token is rejected.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrBadRequest is returned when the upstream API rejects the request.
	ErrBadRequest = errors.New("bad request")
	// ErrUpstream is returned for upstream server failures.
	ErrUpstream = errors.New("upstream server error")
)

// Provider abstracts the WeatherFlow REST API.
type Provider interface {
	FetchStation(ctx context.Context, stationID int) (StationInfo, error)
	// FetchReading performs the combined observation and device-status fetch
	// for one polling cycle. An offline station is not an error.
	FetchReading(ctx context.Context, station StationInfo) (StationReading, error)
	FetchForecast(ctx context.Context, stationID int) (ForecastData, error)
}

// Store is the contract the in-memory store (and any future persistent store) must satisfy.
type Store interface {
	SaveReading(reading StationReading)
	GetLatest(stationID int) (StationReading, error)
	GetRange(stationID int, from, to time.Time) ([]StationReading, error)
}

// Cache holds recently fetched upstream payloads.
type Cache interface {
	Get(key string) (any, bool)
	Put(key string, value any, asOf time.Time)
}
