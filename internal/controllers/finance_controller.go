package controllers

import (
	"net/http"

	"github.com/DENNISVILL/makipartner/internal/dtos"
	"github.com/DENNISVILL/makipartner/internal/provider"
	"github.com/DENNISVILL/makipartner/internal/utils"
)

// FinanceController serves read-only accounting data through the provider.
type FinanceController struct {
	provider provider.Provider
}

func NewFinanceController(p provider.Provider) *FinanceController {
	return &FinanceController{provider: p}
}

// GET /finance/invoices
func (c *FinanceController) ListInvoices(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	var filters []provider.Filter
	if state := r.URL.Query().Get("state"); state != "" {
		filters = append(filters, provider.Filter{Field: "state", Op: "=", Value: state})
	}
	if paymentState := r.URL.Query().Get("payment_state"); paymentState != "" {
		filters = append(filters, provider.Filter{Field: "payment_state", Op: "=", Value: paymentState})
	}

	records, err := c.provider.Query(r.Context(), provider.EntityInvoice, filters, limit, offset)
	if err != nil {
		respondProviderError(w, err)
		return
	}
	count, err := c.provider.Count(r.Context(), provider.EntityInvoice, filters)
	if err != nil {
		respondProviderError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.ListResponse{
		Records: records,
		Count:   count,
		Limit:   limit,
		Offset:  offset,
	})
}
