// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"alquipc/internal/modules/pricing"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Field string `json:"field,omitempty"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// decodeJSON keeps numbers as json.Number so that 5.5 is rejected as a count
// instead of being truncated.
func decodeJSON(c *gin.Context, v any) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	return dec.Decode(v)
}

func writePricingError(c *gin.Context, err error) {
	var ve *pricing.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(c, http.StatusBadRequest, errorResponse{Error: ve.Error(), Kind: string(ve.Kind), Field: ve.Field})
	case errors.Is(err, pricing.ErrTariffNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, pricing.ErrAmountOverflow):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
