package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"alquipc/internal/modules/pricing"
)

type TariffHandler struct {
	pricing *pricing.Service
}

func NewTariffHandler(svc *pricing.Service) *TariffHandler {
	return &TariffHandler{pricing: svc}
}

func (h *TariffHandler) Get(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		writeError(c, http.StatusBadRequest, "missing tariff code")
		return
	}
	t, err := h.pricing.Tariff(c.Request.Context(), code)
	if err != nil {
		writePricingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, t)
}
