package dtos

// ListResponse wraps a page of provider records.
type ListResponse struct {
	Records []map[string]interface{} `json:"records"`
	Count   int                      `json:"count"`
	Limit   int                      `json:"limit"`
	Offset  int                      `json:"offset"`
}

// DashboardOverview aggregates headline business numbers for a period.
type DashboardOverview struct {
	Period        string  `json:"period"` // today, week, month, year
	OrderCount    int     `json:"order_count"`
	OrderTotal    float64 `json:"order_total"`
	InvoiceCount  int     `json:"invoice_count"`
	InvoiceTotal  float64 `json:"invoice_total"`
	OverdueAmount float64 `json:"overdue_amount"`
	CustomerCount int     `json:"customer_count"`
}
