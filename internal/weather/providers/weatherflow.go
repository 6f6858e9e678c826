package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/i474232898/weatherflow-forecast/internal/metrics"
	"github.com/i474232898/weatherflow-forecast/internal/weather"
)

// WeatherFlowBaseURL is the WeatherFlow Smart Weather REST API.
const WeatherFlowBaseURL = "https://swd.weatherflow.com/swd/rest"

// API endpoint labels, also used as metric labels.
const (
	endpointStations           = "stations"
	endpointStationObservation = "observations/station"
	endpointDeviceObservation  = "observations/device"
	endpointForecast           = "better_forecast"
)

// WeatherFlowProvider implements the weather.Provider interface for the WeatherFlow API.
type WeatherFlowProvider struct {
	token   string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
	logger  logrus.FieldLogger
}

// Option customizes a WeatherFlowProvider.
type Option func(*WeatherFlowProvider)

// WithBaseURL points the provider at another API root.
func WithBaseURL(u string) Option {
	return func(p *WeatherFlowProvider) { p.baseURL = u }
}

// WithBackoff replaces the retry settings.
func WithBackoff(b BackoffConfig) Option {
	return func(p *WeatherFlowProvider) { p.httpCfg.Backoff = b }
}

// WithRateLimiter paces outbound requests.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(p *WeatherFlowProvider) { p.httpCfg.Limiter = l }
}

// WithProviderMetrics records request counts and latency.
func WithProviderMetrics(m *metrics.Metrics) Option {
	return func(p *WeatherFlowProvider) { p.metrics = m }
}

// WithProviderLogger sets the provider logger.
func WithProviderLogger(l logrus.FieldLogger) Option {
	return func(p *WeatherFlowProvider) { p.logger = l }
}

// NewWeatherFlowProvider creates a provider authenticating with token. Requests
// are retried three times with backoff unless WithBackoff says otherwise.
func NewWeatherFlowProvider(client *http.Client, token string, opts ...Option) *WeatherFlowProvider {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	p := &WeatherFlowProvider{
		token:   token,
		baseURL: WeatherFlowBaseURL,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: newCircuitBreaker("weatherflow"),
		logger:  discard,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FetchStation returns the metadata and device list of a station.
func (p *WeatherFlowProvider) FetchStation(ctx context.Context, stationID int) (weather.StationInfo, error) {
	var payload stationsPayload
	if err := p.getJSON(ctx, endpointStations, "/stations/"+strconv.Itoa(stationID), nil, &payload); err != nil {
		return weather.StationInfo{}, err
	}
	return normalizeStation(&payload, stationID)
}

// FetchReading fetches the station observation and the observation of the
// device that reports voltage and precipitation type as one combined request.
// A device without observations, or one that has been removed, leaves the
// device fields nil instead of failing the cycle.
func (p *WeatherFlowProvider) FetchReading(ctx context.Context, station weather.StationInfo) (weather.StationReading, error) {
	var (
		obs stationObservationPayload
		dev *deviceObservationPayload
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.getJSON(gctx, endpointStationObservation, "/observations/station/"+strconv.Itoa(station.StationID), nil, &obs)
	})

	if device, ok := station.PrecipitationDevice(); ok {
		g.Go(func() error {
			var payload deviceObservationPayload
			err := p.getJSON(gctx, endpointDeviceObservation, "/observations/device/"+strconv.Itoa(device.DeviceID), nil, &payload)
			if errors.Is(err, weather.ErrStationNotFound) {
				p.logger.WithFields(logrus.Fields{
					"station_id": station.StationID,
					"device_id":  device.DeviceID,
				}).Warn("device not found; skipping device status")
				return nil
			}
			if err != nil {
				return err
			}
			dev = &payload
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return weather.StationReading{}, err
	}
	return normalizeReading(station.StationID, &obs, dev), nil
}

// FetchForecast returns current conditions with the daily and hourly forecast.
func (p *WeatherFlowProvider) FetchForecast(ctx context.Context, stationID int) (weather.ForecastData, error) {
	query := url.Values{}
	query.Set("station_id", strconv.Itoa(stationID))

	var payload forecastPayload
	if err := p.getJSON(ctx, endpointForecast, "/better_forecast", query, &payload); err != nil {
		return weather.ForecastData{}, err
	}
	return normalizeForecast(stationID, &payload), nil
}

// getJSON issues a GET against the API and decodes the body into out,
// checking the status block WeatherFlow embeds in the body.
func (p *WeatherFlowProvider) getJSON(ctx context.Context, endpoint, path string, query url.Values, out statusCarrier) (err error) {
	if p.token == "" {
		return fmt.Errorf("weatherflow api token is not configured")
	}

	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		p.metrics.ObserveRequest(endpoint, outcome, time.Since(start))
	}()

	buildRequest := func() (*http.Request, error) {
		u := p.baseURL + path
		if len(query) > 0 {
			u = fmt.Sprintf("%s?%s", u, query.Encode())
		}
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+p.token)
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		p.logger.WithField("endpoint", endpoint).WithError(err).Debug("weatherflow request failed")
		return fmt.Errorf("%s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", endpoint, err)
	}
	if err := out.apiErr(); err != nil {
		return fmt.Errorf("%s: %w", endpoint, err)
	}
	return nil
}
