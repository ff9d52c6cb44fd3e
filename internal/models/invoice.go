package models

import "time"

type Invoice struct {
	ID            string  `json:"id" db:"id"`
	InvoiceNumber string  `json:"invoice_number" db:"invoice_number"`
	CustomerCode  string  `json:"customer_code" db:"customer_code"`
	Amount        float64 `json:"amount" db:"amount"`
	TaxID         *string `json:"tax_id" db:"tax_id"`
	PaymentTermID *string `json:"payment_term_id" db:"payment_term_id"`
	Status        string  `json:"status" db:"status"` // pending, dispatched, delivered, paid, void
	IssuedAt      int64   `json:"issued_at" db:"issued_at"`
	CreatedAt     int64   `json:"created_at" db:"created_at"`
	UpdatedAt     int64   `json:"updated_at" db:"updated_at"`
}

type InvoiceResponse struct {
	ID            string  `json:"id"`
	InvoiceNumber string  `json:"invoice_number"`
	CustomerCode  string  `json:"customer_code"`
	Amount        float64 `json:"amount"`
	TaxID         *string `json:"tax_id,omitempty"`
	PaymentTermID *string `json:"payment_term_id,omitempty"`
	Status        string  `json:"status"`
	IssuedAtISO   string  `json:"issued_at_iso"`
	CreatedAtISO  string  `json:"created_at_iso"`
}

func (i *Invoice) ToResponse() InvoiceResponse {
	return InvoiceResponse{
		ID:            i.ID,
		InvoiceNumber: i.InvoiceNumber,
		CustomerCode:  i.CustomerCode,
		Amount:        i.Amount,
		TaxID:         i.TaxID,
		PaymentTermID: i.PaymentTermID,
		Status:        i.Status,
		IssuedAtISO:   time.Unix(i.IssuedAt, 0).Format(time.RFC3339),
		CreatedAtISO:  time.Unix(i.CreatedAt, 0).Format(time.RFC3339),
	}
}
