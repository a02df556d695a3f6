package api

import (
	"errors"
	"net/http"

	"github.com/yourusername/tablabaki/internal/positionid"
	"github.com/yourusername/tablabaki/pkg/engine"
	"github.com/yourusername/tablabaki/pkg/variant"
)

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrGameExists     = errors.New("game already exists")
	ErrGameOver       = errors.New("game is over")
	ErrNoDice         = errors.New("must roll dice first")
	ErrInvalidRequest = errors.New("invalid request")
	ErrBusy           = errors.New("server busy")
)

// errorStatus maps a service error to an HTTP status and error code.
func errorStatus(err error) (int, string) {
	var (
		notFound   *engine.NotFoundError
		illegal    *engine.IllegalMoveError
		state      *engine.StateError
		structural *engine.StructuralError
	)
	switch {
	case errors.Is(err, ErrGameNotFound):
		return http.StatusNotFound, "GAME_NOT_FOUND"
	case errors.Is(err, variant.ErrVariantNotFound):
		return http.StatusNotFound, "VARIANT_NOT_FOUND"
	case errors.As(err, &notFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, ErrGameExists):
		return http.StatusConflict, "GAME_EXISTS"
	case errors.Is(err, ErrGameOver):
		return http.StatusConflict, "GAME_OVER"
	case errors.Is(err, ErrNoDice):
		return http.StatusBadRequest, "NO_DICE"
	case errors.As(err, &illegal):
		return http.StatusBadRequest, "ILLEGAL_MOVE"
	case errors.As(err, &structural):
		return http.StatusBadRequest, "MALFORMED_MOVE"
	case errors.As(err, &state):
		return http.StatusBadRequest, "INVALID_STATE"
	case errors.Is(err, positionid.ErrInvalidPositionID):
		return http.StatusBadRequest, "INVALID_POSITION"
	case errors.Is(err, variant.ErrInvalidVariant):
		return http.StatusInternalServerError, "INVALID_VARIANT"
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, ErrBusy):
		return http.StatusServiceUnavailable, "SERVER_BUSY"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}
