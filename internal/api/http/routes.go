package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weatherflow-forecast/internal/store"
	"github.com/i474232898/weatherflow-forecast/internal/weather"
)

var validate = validator.New()

// defaultHistoryWindow is used when the history endpoint gets no range.
const defaultHistoryWindow = 24 * time.Hour

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	v1 := app.Group("/api/v1")
	stations := v1.Group("/stations/:id")

	stations.Get("/", func(c *fiber.Ctx) error {
		id, err := parseStationID(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		info, err := service.Station(c.UserContext(), id)
		if err != nil {
			return upstreamError(err, "failed to fetch station metadata")
		}
		return c.JSON(info)
	})

	stations.Get("/current", func(c *fiber.Ctx) error {
		id, err := parseStationID(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		reading, err := service.Current(c.UserContext(), id, c.QueryBool("refresh"))
		if err != nil {
			return upstreamError(err, "failed to fetch current reading")
		}
		return c.JSON(reading)
	})

	stations.Get("/lightning", func(c *fiber.Ctx) error {
		id, err := parseStationID(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		reading, err := service.Current(c.UserContext(), id, false)
		if err != nil {
			return upstreamError(err, "failed to fetch current reading")
		}
		return c.JSON(fiber.Map{
			"station_id":           id,
			"timestamp":            reading.Timestamp,
			"lightning_active":     reading.LightningActive,
			"last_strike_epoch":    reading.LightningStrikeLastEpoch,
			"last_strike_distance": reading.LightningStrikeLastDistance,
			"strike_count_1hr":     reading.LightningStrikeCountLast1h,
		})
	})

	stations.Get("/forecast", func(c *fiber.Ctx) error {
		id, err := parseStationID(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var q forecastQuery
		if err := c.QueryParser(&q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "hours must be an integer")
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "hours must be between 1 and 240")
		}

		forecast, err := service.Forecast(c.UserContext(), id, q.Hours)
		if err != nil {
			return upstreamError(err, "failed to fetch forecast")
		}
		return c.JSON(forecast)
	})

	stations.Get("/history", func(c *fiber.Ctx) error {
		id, err := parseStationID(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var req historyQuery
		if err := req.bind(c, time.Now().UTC()); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "to must not be before from")
		}

		readings, err := service.History(id, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no readings for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch reading history")
		}
		summary, err := service.Summary(id, req.From, req.To)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to summarize reading history")
		}

		return c.JSON(fiber.Map{
			"station_id": id,
			"from":       req.From,
			"to":         req.To,
			"readings":   readings,
			"summary":    summary,
		})
	})
}

// upstreamError maps service errors onto HTTP errors.
func upstreamError(err error, message string) error {
	switch {
	case errors.Is(err, weather.ErrStationNotFound), errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "station not found")
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(fiber.StatusGatewayTimeout, message)
	default:
		return fiber.NewError(fiber.StatusBadGateway, message)
	}
}

type stationParams struct {
	StationID int `validate:"gt=0"`
}

func parseStationID(c *fiber.Ctx) (int, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return 0, errors.New("station id must be an integer")
	}
	if err := validate.Struct(stationParams{StationID: id}); err != nil {
		return 0, errors.New("station id must be positive")
	}
	return id, nil
}

// forecastQuery holds query parameters for the forecast endpoint. Zero hours
// means the configured default.
type forecastQuery struct {
	Hours int `query:"hours" validate:"omitempty,gte=1,lte=240"`
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

// bind reads from and to; a missing bound defaults to the last 24 hours
// before now.
func (h *historyQuery) bind(c *fiber.Ctx, now time.Time) error {
	h.To = now
	if toStr := c.Query("to"); toStr != "" {
		to, err := parseTime(toStr)
		if err != nil {
			return err
		}
		h.To = to
	}

	h.From = h.To.Add(-defaultHistoryWindow)
	if fromStr := c.Query("from"); fromStr != "" {
		from, err := parseTime(fromStr)
		if err != nil {
			return err
		}
		h.From = from
	}
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC(), nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
