package httpapi

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/i474232898/farmer-weather-forecast/internal/metrics"
	"github.com/i474232898/farmer-weather-forecast/internal/weather"
)

// ForecastResponse is the envelope of a successful forecast.
type ForecastResponse struct {
	Status    string           `json:"status"`
	Data      weather.Forecast `json:"data"`
	Timestamp string           `json:"timestamp"`
	RequestID string           `json:"request_id,omitempty"`
}

// LocationInfo is one entry of GET /locations.
type LocationInfo struct {
	weather.Location
	Supported bool `json:"supported"`
}

// Options configures the Fiber app.
type Options struct {
	// AccessLog enables the Fiber request logger.
	AccessLog bool
	// Now overrides the clock used for response timestamps.
	Now func() time.Time
}

// NewApp builds the Fiber app with middleware, error handling and routes.
func NewApp(service *weather.Service, collector *metrics.Collector, opts Options) *fiber.App {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	app := fiber.New(fiber.Config{
		AppName:               "farmer-weather-forecast",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          60 * time.Second,
		ErrorHandler:          errorHandler(now),
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	if opts.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${status} - ${latency} ${method} ${path} ${respHeader:X-Request-ID}\n",
		}))
	}
	// Any origin is reflected back so credentials stay allowed.
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(string) bool { return true },
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowCredentials: true,
	}))
	if collector != nil {
		app.Use(metricsMiddleware(collector))
		app.Get("/metrics", adaptor.HTTPHandler(collector.Handler()))
	}

	RegisterRoutes(app, service, collector, now)
	return app
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, collector *metrics.Collector, now func() time.Time) {
	h := &handler{service: service, metrics: collector, now: now}

	app.Get("/health", h.health)
	app.Get("/locations", h.locations)
	app.Post("/forecast", h.forecast)
}

type handler struct {
	service *weather.Service
	metrics *metrics.Collector
	now     func() time.Time
}

func (h *handler) timestamp() string {
	return h.now().UTC().Format(time.RFC3339)
}

func (h *handler) forecast(c *fiber.Ctx) error {
	started := time.Now()

	var req ForecastRequest
	if err := c.BodyParser(&req); err != nil {
		return validationError("request body must be a JSON object with latitude, longitude and location", nil)
	}

	query, details := req.toQuery()
	if details != nil {
		return validationError("invalid forecast request", details)
	}

	result, err := h.service.Forecast(c.UserContext(), query)
	if err != nil {
		apiErr := forecastError(err)
		if apiErr.Code == codeCanceled {
			log.Printf("INFO: forecast for %q canceled by client (request %s)", query.Location, c.GetRespHeader(fiber.HeaderXRequestID))
		} else {
			log.Printf("ERROR: forecast for %q failed (request %s): %v", query.Location, c.GetRespHeader(fiber.HeaderXRequestID), err)
		}
		if h.metrics != nil {
			// Request names are unbounded, so failures are not labelled by location.
			h.metrics.RecordForecast("", apiErr.Code, time.Since(started))
		}
		return apiErr
	}

	if h.metrics != nil {
		h.metrics.RecordForecast(result.Location.Name, statusSuccess, time.Since(started))
		for _, a := range result.Alerts {
			h.metrics.RecordAlert(string(a.Type), a.Severity.String())
		}
	}

	return c.JSON(ForecastResponse{
		Status:    statusSuccess,
		Data:      result,
		Timestamp: h.timestamp(),
		RequestID: c.GetRespHeader(fiber.HeaderXRequestID),
	})
}

func (h *handler) health(c *fiber.Ctx) error {
	if !h.service.Ready() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":    "not_ready",
			"timestamp": h.timestamp(),
		})
	}

	return c.JSON(fiber.Map{
		"status":        "ready",
		"predictor":     h.service.PredictorName(),
		"locations":     len(h.service.Locations()),
		"forecast_days": h.service.ForecastDays(),
		"timestamp":     h.timestamp(),
	})
}

func (h *handler) locations(c *fiber.Ctx) error {
	locs := h.service.Locations()
	out := make([]LocationInfo, 0, len(locs))
	for _, loc := range locs {
		out = append(out, LocationInfo{Location: loc, Supported: h.service.Supports(loc)})
	}

	return c.JSON(fiber.Map{
		"status":    statusSuccess,
		"data":      out,
		"timestamp": h.timestamp(),
	})
}

// metricsMiddleware records request counts and latency per route.
// Errors are rendered here so the recorded status matches the response.
func metricsMiddleware(collector *metrics.Collector) fiber.Handler {
	return func(c *fiber.Ctx) error {
		started := time.Now()

		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		endpoint := c.Route().Path
		collector.RecordAPIRequest(endpoint, c.Method(), strconv.Itoa(status), time.Since(started))
		if status >= fiber.StatusBadRequest {
			collector.RecordAPIError(strconv.Itoa(status), endpoint)
		}
		return nil
	}
}
