package models

type PaymentTerm struct {
	ID        string `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	Days      int    `json:"days" db:"days"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
	UpdatedAt int64  `json:"updated_at" db:"updated_at"`
}

type Tax struct {
	ID        string  `json:"id" db:"id"`
	Name      string  `json:"name" db:"name"`
	Rate      float64 `json:"rate" db:"rate"` // percentage, e.g. 12.0
	CreatedAt int64   `json:"created_at" db:"created_at"`
	UpdatedAt int64   `json:"updated_at" db:"updated_at"`
}
