package controllers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/DENNISVILL/makipartner/internal/dtos"
	"github.com/DENNISVILL/makipartner/internal/provider"
	"github.com/DENNISVILL/makipartner/internal/utils"
)

// SalesController serves read-only sales data through the provider.
type SalesController struct {
	provider provider.Provider
}

func NewSalesController(p provider.Provider) *SalesController {
	return &SalesController{provider: p}
}

// GET /sales/orders
func (c *SalesController) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	var filters []provider.Filter
	if state := r.URL.Query().Get("state"); state != "" {
		filters = append(filters, provider.Filter{Field: "state", Op: "=", Value: state})
	}

	records, err := c.provider.Query(r.Context(), provider.EntitySaleOrder, filters, limit, offset)
	if err != nil {
		respondProviderError(w, err)
		return
	}
	count, err := c.provider.Count(r.Context(), provider.EntitySaleOrder, filters)
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

// GET /sales/orders/{id}
func (c *SalesController) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid order id", nil,
		)
		return
	}

	records, err := c.provider.Query(r.Context(), provider.EntitySaleOrder,
		[]provider.Filter{{Field: "id", Op: "=", Value: id}}, 1, 0)
	if err != nil {
		respondProviderError(w, err)
		return
	}
	if len(records) == 0 {
		utils.RespondErrorWithCode(
			w, http.StatusNotFound, utils.ErrCodeNotFound, "Order not found", nil,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, records[0])
}

// GET /sales/customers
func (c *SalesController) ListCustomers(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	var filters []provider.Filter
	if search := r.URL.Query().Get("search"); search != "" {
		filters = append(filters, provider.Filter{Field: "name", Op: "ilike", Value: "%" + search + "%"})
	}

	records, err := c.provider.Query(r.Context(), provider.EntityCustomer, filters, limit, offset)
	if err != nil {
		respondProviderError(w, err)
		return
	}
	count, err := c.provider.Count(r.Context(), provider.EntityCustomer, filters)
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

func pagination(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}

func respondProviderError(w http.ResponseWriter, err error) {
	utils.RespondErrorWithCode(
		w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to load business data", nil, err,
	)
}
