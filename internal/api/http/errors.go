package httpapi

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/farmer-weather-forecast/internal/weather"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

const (
	codeValidation  = "validation_error"
	codeNotFound    = "not_found"
	codeUnavailable = "service_unavailable"
	codeTimeout     = "gateway_timeout"
	codeInternal    = "internal_error"
	codeCanceled    = "client_closed_request"
)

// statusClientClosedRequest is the nginx convention for a request the client abandoned.
const statusClientClosedRequest = 499

// ErrorBody is the error description carried by every failed response.
type ErrorBody struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

// ErrorResponse is the envelope of every failed response.
type ErrorResponse struct {
	Status    string    `json:"status"`
	Error     ErrorBody `json:"error"`
	Timestamp string    `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// apiError is returned by handlers and rendered by errorHandler.
type apiError struct {
	Status  int
	Code    string
	Message string
	Details []FieldError
}

func (e *apiError) Error() string {
	return e.Code + ": " + e.Message
}

func validationError(message string, details []FieldError) *apiError {
	return &apiError{
		Status:  fiber.StatusUnprocessableEntity,
		Code:    codeValidation,
		Message: message,
		Details: details,
	}
}

// forecastError maps a service error onto the HTTP taxonomy with a user-safe message.
func forecastError(err error) *apiError {
	switch {
	case errors.Is(err, weather.ErrLocationNotFound):
		return &apiError{Status: fiber.StatusNotFound, Code: codeNotFound, Message: "location is not supported and no supported location is near the given coordinates"}
	case errors.Is(err, weather.ErrUnsupportedLocation):
		return &apiError{Status: fiber.StatusNotFound, Code: codeNotFound, Message: "no forecast model is available for the requested location"}
	case errors.Is(err, weather.ErrCanceled):
		return &apiError{Status: statusClientClosedRequest, Code: codeCanceled, Message: "request was canceled by the client"}
	case errors.Is(err, weather.ErrTimeout):
		return &apiError{Status: fiber.StatusGatewayTimeout, Code: codeTimeout, Message: "forecast timed out, try again later"}
	case errors.Is(err, weather.ErrPredictorNotReady), errors.Is(err, weather.ErrModelNotReady):
		return &apiError{Status: fiber.StatusServiceUnavailable, Code: codeUnavailable, Message: "forecast model is not ready"}
	case errors.Is(err, weather.ErrDataUnavailable):
		return &apiError{Status: fiber.StatusServiceUnavailable, Code: codeUnavailable, Message: "weather data is temporarily unavailable"}
	default:
		return &apiError{Status: fiber.StatusInternalServerError, Code: codeInternal, Message: "failed to generate forecast"}
	}
}

// errorHandler renders every error as an ErrorResponse.
func errorHandler(now func() time.Time) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		apiErr, ok := err.(*apiError)
		if !ok {
			apiErr = &apiError{Status: fiber.StatusInternalServerError, Code: codeInternal, Message: "internal server error"}

			var fe *fiber.Error
			if errors.As(err, &fe) {
				apiErr.Status = fe.Code
				apiErr.Message = fe.Message
				switch fe.Code {
				case fiber.StatusNotFound:
					apiErr.Code = codeNotFound
				case fiber.StatusUnprocessableEntity, fiber.StatusBadRequest:
					apiErr.Code = codeValidation
				default:
					apiErr.Code = "http_error"
				}
			} else {
				log.Printf("ERROR: unhandled error on %s %s: %v", c.Method(), c.Path(), err)
			}
		}

		return c.Status(apiErr.Status).JSON(ErrorResponse{
			Status: statusError,
			Error: ErrorBody{
				Code:    apiErr.Code,
				Message: apiErr.Message,
				Details: apiErr.Details,
			},
			Timestamp: now().UTC().Format(time.RFC3339),
			RequestID: c.GetRespHeader(fiber.HeaderXRequestID),
		})
	}
}
