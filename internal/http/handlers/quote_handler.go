// README: Quote handlers; price a rental and render its e-mail summary.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"alquipc/internal/modules/pricing"
	"alquipc/internal/modules/summary"
)

type QuoteHandler struct {
	pricing *pricing.Service
}

func NewQuoteHandler(svc *pricing.Service) *QuoteHandler {
	return &QuoteHandler{pricing: svc}
}

type quoteReq struct {
	EquipmentCount any    `json:"equipment_count"`
	InitialDays    any    `json:"initial_days"`
	ExtraDays      any    `json:"extra_days"`
	Mode           string `json:"mode"`
	Tariff         string `json:"tariff"`
}

type rentalResp struct {
	EquipmentCount int          `json:"equipment_count"`
	InitialDays    int          `json:"initial_days"`
	ExtraDays      int          `json:"extra_days"`
	Mode           pricing.Mode `json:"mode"`
}

type quoteResp struct {
	Total       float64           `json:"total"`
	Currency    string            `json:"currency"`
	AmountMinor int64             `json:"amount_minor"`
	Tariff      string            `json:"tariff"`
	Rental      rentalResp        `json:"rental"`
	Breakdown   pricing.Breakdown `json:"breakdown"`
	Summary     string            `json:"summary"`
}

func (h *QuoteHandler) quote(c *gin.Context) (pricing.Quote, bool) {
	var req quoteReq
	if err := decodeJSON(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return pricing.Quote{}, false
	}
	q, err := h.pricing.QuoteRaw(c.Request.Context(), pricing.RawRental{
		EquipmentCount: req.EquipmentCount,
		InitialDays:    req.InitialDays,
		ExtraDays:      req.ExtraDays,
		Mode:           req.Mode,
	}, req.Tariff)
	if err != nil {
		writePricingError(c, err)
		return pricing.Quote{}, false
	}
	return q, true
}

// Create prices a rental and returns the breakdown together with the summary text.
func (h *QuoteHandler) Create(c *gin.Context) {
	q, ok := h.quote(c)
	if !ok {
		return
	}
	writeJSON(c, http.StatusOK, quoteResp{
		Total:       q.Total.Float64(),
		Currency:    q.Total.Currency,
		AmountMinor: q.Total.Amount,
		Tariff:      q.TariffCode,
		Rental: rentalResp{
			EquipmentCount: q.Request.EquipmentCount,
			InitialDays:    q.Request.InitialDays,
			ExtraDays:      q.Request.ExtraDays,
			Mode:           q.Request.Mode,
		},
		Breakdown: q.Breakdown,
		Summary:   summary.Format(q.Request, q.Total),
	})
}

// Summary returns only the e-mail text.
func (h *QuoteHandler) Summary(c *gin.Context) {
	q, ok := h.quote(c)
	if !ok {
		return
	}
	c.String(http.StatusOK, summary.Format(q.Request, q.Total))
}
