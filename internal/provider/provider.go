// Package provider exposes read-only access to the business database the
// gateway fronts. The gateway owns none of that schema; every query goes
// through entity, field, and operator whitelists.
package provider

import (
	"context"
	"fmt"
)

// Filter is one condition on a whitelisted field.
type Filter struct {
	Field string
	Op    string // one of =, !=, >, >=, <, <=, ilike
	Value interface{}
}

// Provider is the business-data collaborator.
type Provider interface {
	// Query returns rows of the entity as field→value maps, restricted to
	// the entity's whitelisted fields.
	Query(ctx context.Context, entity string, filters []Filter, limit, offset int) ([]map[string]interface{}, error)
	// Count returns how many rows of the entity match the filters.
	Count(ctx context.Context, entity string, filters []Filter) (int, error)
	// Sum totals a whitelisted numeric field over the matching rows.
	Sum(ctx context.Context, entity, field string, filters []Filter) (float64, error)
}

// Entities the gateway may read.
const (
	EntitySaleOrder = "sale_order"
	EntityCustomer  = "customer"
	EntityInvoice   = "invoice"
)

type entitySpec struct {
	table  string
	fields []string // whitelist; first entry is the primary key
}

var entitySpecs = map[string]entitySpec{
	EntitySaleOrder: {
		table: "sale_orders",
		fields: []string{
			"id", "name", "partner_name", "date_order", "amount_total", "state",
		},
	},
	EntityCustomer: {
		table: "customers",
		fields: []string{
			"id", "name", "email", "phone", "city", "country", "create_date",
		},
	},
	EntityInvoice: {
		table: "invoices",
		fields: []string{
			"id", "name", "partner_name", "invoice_date", "amount_total",
			"amount_residual", "state", "payment_state",
		},
	},
}

var allowedOps = map[string]string{
	"=":     "=",
	"!=":    "<>",
	">":     ">",
	">=":    ">=",
	"<":     "<",
	"<=":    "<=",
	"ilike": "ILIKE",
}

func specFor(entity string) (entitySpec, error) {
	spec, ok := entitySpecs[entity]
	if !ok {
		return entitySpec{}, fmt.Errorf("unknown entity %q", entity)
	}
	return spec, nil
}

func (s entitySpec) hasField(name string) bool {
	for _, f := range s.fields {
		if f == name {
			return true
		}
	}
	return false
}
