package controllers

import (
	"net/http"
	"time"

	"github.com/DENNISVILL/makipartner/internal/dtos"
	"github.com/DENNISVILL/makipartner/internal/provider"
	"github.com/DENNISVILL/makipartner/internal/utils"
)

// DashboardController aggregates headline business numbers.
type DashboardController struct {
	provider provider.Provider
}

func NewDashboardController(p provider.Provider) *DashboardController {
	return &DashboardController{provider: p}
}

// GET /dashboard/overview?period=today|week|month|year
func (c *DashboardController) Overview(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "month"
	}
	since, ok := periodStart(period, time.Now())
	if !ok {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"Invalid period; expected today, week, month or year", nil,
		)
		return
	}

	ctx := r.Context()
	orderFilters := []provider.Filter{{Field: "date_order", Op: ">=", Value: since}}
	invoiceFilters := []provider.Filter{{Field: "invoice_date", Op: ">=", Value: since}}

	orderCount, err := c.provider.Count(ctx, provider.EntitySaleOrder, orderFilters)
	if err != nil {
		respondProviderError(w, err)
		return
	}
	orderTotal, err := c.provider.Sum(ctx, provider.EntitySaleOrder, "amount_total", orderFilters)
	if err != nil {
		respondProviderError(w, err)
		return
	}
	invoiceCount, err := c.provider.Count(ctx, provider.EntityInvoice, invoiceFilters)
	if err != nil {
		respondProviderError(w, err)
		return
	}
	invoiceTotal, err := c.provider.Sum(ctx, provider.EntityInvoice, "amount_total", invoiceFilters)
	if err != nil {
		respondProviderError(w, err)
		return
	}
	overdue, err := c.provider.Sum(ctx, provider.EntityInvoice, "amount_residual",
		[]provider.Filter{{Field: "payment_state", Op: "!=", Value: "paid"}})
	if err != nil {
		respondProviderError(w, err)
		return
	}
	customerCount, err := c.provider.Count(ctx, provider.EntityCustomer, nil)
	if err != nil {
		respondProviderError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.DashboardOverview{
		Period:        period,
		OrderCount:    orderCount,
		OrderTotal:    orderTotal,
		InvoiceCount:  invoiceCount,
		InvoiceTotal:  invoiceTotal,
		OverdueAmount: overdue,
		CustomerCount: customerCount,
	})
}

func periodStart(period string, now time.Time) (time.Time, bool) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch period {
	case "today":
		return midnight, true
	case "week":
		return midnight.AddDate(0, 0, -7), true
	case "month":
		return midnight.AddDate(0, -1, 0), true
	case "year":
		return midnight.AddDate(-1, 0, 0), true
	default:
		return time.Time{}, false
	}
}
