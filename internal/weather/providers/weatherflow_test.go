package providers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weatherflow-forecast/internal/metrics"
	"github.com/i474232898/weatherflow-forecast/internal/weather"
	"github.com/i474232898/weatherflow-forecast/internal/weatherflowtest"
)

var fastBackoff = BackoffConfig{
	MaxRetries:      2,
	InitialInterval: time.Millisecond,
	MaxInterval:     2 * time.Millisecond,
}

func newTestProvider(srv *weatherflowtest.Server, token string, opts ...Option) *WeatherFlowProvider {
	opts = append([]Option{WithBaseURL(srv.URL), WithBackoff(fastBackoff)}, opts...)
	return NewWeatherFlowProvider(srv.Client(), token, opts...)
}

func TestFetchStation(t *testing.T) {
	srv := weatherflowtest.NewServer(weatherflowtest.Tempest(1001))
	defer srv.Close()

	p := newTestProvider(srv, weatherflowtest.Token)
	info, err := p.FetchStation(context.Background(), 1001)
	require.NoError(t, err)

	assert.Equal(t, 1001, info.StationID)
	assert.Equal(t, "Backyard", info.Name)
	assert.Equal(t, 60.0, info.Elevation)
	assert.Equal(t, "Europe/Copenhagen", info.Timezone)
	require.Len(t, info.Devices, 2)

	tempest, ok := info.PrecipitationDevice()
	require.True(t, ok)
	assert.Equal(t, weather.DeviceTypeTempest, tempest.DeviceType)
	assert.Equal(t, 10010, tempest.DeviceID)
	// Numeric firmware revisions decode as strings.
	assert.Equal(t, "172", tempest.FirmwareRevision)
	assert.Equal(t, "177", info.Devices[0].FirmwareRevision)
}

func TestFetchStationNotFound(t *testing.T) {
	srv := weatherflowtest.NewServer()
	defer srv.Close()

	p := newTestProvider(srv, weatherflowtest.Token)
	_, err := p.FetchStation(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, errors.Is(err, weather.ErrStationNotFound), "got %v", err)
	// Not found is permanent and must not be retried.
	assert.Equal(t, 1, srv.Hits("stations"))
}

func TestFetchStationNotFoundInBody(t *testing.T) {
	p := &stationsPayload{Status: apiStatus{StatusCode: 0, StatusMessage: "NOT FOUND"}}
	err := p.apiErr()
	require.Error(t, err)
	assert.True(t, errors.Is(err, weather.ErrStationNotFound))

	ok := &stationsPayload{Status: apiStatus{StatusCode: 0, StatusMessage: "SUCCESS"}}
	assert.NoError(t, ok.apiErr())

	empty := &stationsPayload{}
	_, err = normalizeStation(empty, 7)
	assert.True(t, errors.Is(err, weather.ErrStationNotFound))
}

func TestFetchUnauthorized(t *testing.T) {
	srv := weatherflowtest.NewServer(weatherflowtest.Tempest(1001))
	defer srv.Close()

	p := newTestProvider(srv, "wrong-token")
	_, err := p.FetchStation(context.Background(), 1001)
	require.Error(t, err)
	assert.True(t, errors.Is(err, weather.ErrUnauthorized), "got %v", err)
	assert.NotContains(t, err.Error(), "wrong-token")
	assert.Equal(t, 1, srv.Hits("stations"))
}

func TestMissingToken(t *testing.T) {
	srv := weatherflowtest.NewServer(weatherflowtest.Tempest(1001))
	defer srv.Close()

	p := newTestProvider(srv, "")
	_, err := p.FetchStation(context.Background(), 1001)
	require.Error(t, err)
	assert.Zero(t, srv.Hits("stations"))
}

func TestFetchRetriesServerErrors(t *testing.T) {
	srv := weatherflowtest.NewServer(weatherflowtest.Tempest(1001))
	defer srv.Close()
	srv.FailNext("stations", http.StatusBadGateway, http.StatusServiceUnavailable)

	p := newTestProvider(srv, weatherflowtest.Token)
	info, err := p.FetchStation(context.Background(), 1001)
	require.NoError(t, err)
	assert.Equal(t, 1001, info.StationID)
	assert.Equal(t, 3, srv.Hits("stations"))
}

func TestFetchGivesUpAfterRetries(t *testing.T) {
	srv := weatherflowtest.NewServer(weatherflowtest.Tempest(1001))
	defer srv.Close()
	srv.FailNext("stations", 500, 500, 500, 500)

	p := newTestProvider(srv, weatherflowtest.Token)
	_, err := p.FetchStation(context.Background(), 1001)
	require.Error(t, err)
	assert.True(t, errors.Is(err, weather.ErrUpstream), "got %v", err)
	assert.Equal(t, fastBackoff.MaxRetries+1, srv.Hits("stations"))
}

func TestFetchReadingTempest(t *testing.T) {
	st := weatherflowtest.Tempest(1001)
	srv := weatherflowtest.NewServer(st)
	defer srv.Close()

	p := newTestProvider(srv, weatherflowtest.Token)
	ctx := context.Background()
	info, err := p.FetchStation(ctx, 1001)
	require.NoError(t, err)

	r, err := p.FetchReading(ctx, info)
	require.NoError(t, err)

	assert.True(t, r.DataAvailable)
	assert.True(t, st.CurrentTime.Equal(r.Timestamp))
	require.NotNil(t, r.Temperature)
	assert.Equal(t, 21.5, *r.Temperature)
	require.NotNil(t, r.PrecipitationRate)
	assert.InDelta(t, 3.0, *r.PrecipitationRate, 1e-9)
	require.NotNil(t, r.PrecipitationType)
	assert.Equal(t, weather.PrecipitationRain, *r.PrecipitationType)
	require.NotNil(t, r.Voltage)
	assert.Equal(t, 2.62, *r.Voltage)
	require.NotNil(t, r.LightningStrikeLastEpoch)
	assert.Equal(t, st.CurrentTime.Unix()-300, *r.LightningStrikeLastEpoch)

	assert.Equal(t, 1, srv.Hits("observations/station"))
	assert.Equal(t, 1, srv.Hits("observations/device"))
}

func TestFetchReadingOffline(t *testing.T) {
	st := weatherflowtest.Tempest(1001)
	st.Offline = true
	srv := weatherflowtest.NewServer(st)
	defer srv.Close()

	p := newTestProvider(srv, weatherflowtest.Token)
	ctx := context.Background()
	info, err := p.FetchStation(ctx, 1001)
	require.NoError(t, err)

	r, err := p.FetchReading(ctx, info)
	require.NoError(t, err)
	assert.False(t, r.DataAvailable)
	assert.Nil(t, r.Temperature)
	assert.Nil(t, r.Voltage)
}

func TestFetchReadingSkipsMissingDevice(t *testing.T) {
	st := weatherflowtest.Tempest(1001)
	srv := weatherflowtest.NewServer(st)
	defer srv.Close()

	p := newTestProvider(srv, weatherflowtest.Token)
	ctx := context.Background()
	info, err := p.FetchStation(ctx, 1001)
	require.NoError(t, err)

	// The device was swapped out after the metadata was cached.
	info.Devices[1].DeviceID = 999999

	r, err := p.FetchReading(ctx, info)
	require.NoError(t, err)
	assert.True(t, r.DataAvailable)
	assert.Nil(t, r.Voltage)
	assert.Nil(t, r.PrecipitationType)
	require.NotNil(t, r.Temperature)
}

func TestFetchReadingHubOnly(t *testing.T) {
	st := weatherflowtest.Tempest(1001)
	st.DeviceType = ""
	srv := weatherflowtest.NewServer(st)
	defer srv.Close()

	p := newTestProvider(srv, weatherflowtest.Token)
	ctx := context.Background()
	info, err := p.FetchStation(ctx, 1001)
	require.NoError(t, err)

	r, err := p.FetchReading(ctx, info)
	require.NoError(t, err)
	assert.True(t, r.DataAvailable)
	assert.Zero(t, srv.Hits("observations/device"))
}

func TestFetchForecast(t *testing.T) {
	st := weatherflowtest.Tempest(1001)
	srv := weatherflowtest.NewServer(st)
	defer srv.Close()

	p := newTestProvider(srv, weatherflowtest.Token)
	f, err := p.FetchForecast(context.Background(), 1001)
	require.NoError(t, err)

	assert.Equal(t, 1001, f.StationID)
	assert.True(t, st.CurrentTime.Equal(f.Current.Time))
	assert.Equal(t, "sunny", f.Current.Icon)
	require.Len(t, f.Hourly, 240)
	require.Len(t, f.Daily, 10)

	assert.Equal(t, "sunny", f.Hourly[0].Icon)
	assert.Equal(t, "partlycloudy", f.Hourly[1].Icon)
	assert.Equal(t, "rainy", f.Hourly[2].Icon)
	assert.Equal(t, "exceptional", f.Hourly[3].Icon)
	assert.True(t, f.Hourly[1].ValidTime.After(f.Hourly[0].ValidTime))
}

func TestProviderRecordsMetrics(t *testing.T) {
	srv := weatherflowtest.NewServer(weatherflowtest.Tempest(1001))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	p := newTestProvider(srv, weatherflowtest.Token, WithProviderMetrics(m))

	_, err := p.FetchStation(context.Background(), 1001)
	require.NoError(t, err)
	_, err = p.FetchStation(context.Background(), 5)
	require.Error(t, err)

	// One series per outcome.
	n, err := testutil.GatherAndCount(reg, "weatherflow_api_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMapIcon(t *testing.T) {
	assert.Equal(t, "lightning-rainy", mapIcon("possibly-thunderstorm-night"))
	assert.Equal(t, "clear-night", mapIcon("cc-clear-night"))
	assert.Equal(t, "exceptional", mapIcon(""))
}
