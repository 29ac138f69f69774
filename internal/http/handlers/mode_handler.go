package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"alquipc/internal/maps"
)

type ModeResolver interface {
	Resolve(ctx context.Context, address string) (maps.Resolution, error)
}

type ModeHandler struct {
	resolver ModeResolver
}

// NewModeHandler accepts a nil resolver; the endpoint then answers 503.
func NewModeHandler(r ModeResolver) *ModeHandler {
	return &ModeHandler{resolver: r}
}

type resolveModeReq struct {
	Address string `json:"address"`
}

func (h *ModeHandler) Resolve(c *gin.Context) {
	if h.resolver == nil {
		writeError(c, http.StatusServiceUnavailable, "mode resolution is not configured")
		return
	}
	var req resolveModeReq
	if err := decodeJSON(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	res, err := h.resolver.Resolve(c.Request.Context(), req.Address)
	switch {
	case errors.Is(err, maps.ErrEmptyAddress):
		writeError(c, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, maps.ErrAddressNotFound):
		writeError(c, http.StatusNotFound, err.Error())
		return
	case err != nil:
		_ = c.Error(err)
		writeError(c, http.StatusBadGateway, "geocoding failed")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"mode":              res.Mode,
		"locality":          res.Locality,
		"formatted_address": res.FormattedAddress,
	})
}
