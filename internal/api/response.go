package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"SignalDesk/internal/model"
)

// Response is the envelope of every API reply.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func dataResponse(c echo.Context, status int, data any) error {
	return c.JSON(status, Response{
		Status:  status,
		Message: http.StatusText(status),
		Data:    data,
	})
}

func successResponse(c echo.Context, data any) error {
	return dataResponse(c, http.StatusOK, data)
}

func badRequestResponse(c echo.Context, errs []ValidationError) error {
	return dataResponse(c, http.StatusBadRequest, errs)
}

// errorResponse maps domain errors onto HTTP statuses.
func errorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, model.ErrUnknownSymbol):
		return dataResponse(c, http.StatusNotFound, []ValidationError{{Code: "ERR_UNKNOWN_SYMBOL", Message: err.Error()}})
	case errors.Is(err, model.ErrInvalidInput):
		return badRequestResponse(c, []ValidationError{{Code: "ERR_INVALID_INPUT", Message: err.Error()}})
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return dataResponse(c, http.StatusInternalServerError, "Something went wrong")
	}
}
