package models

import "time"

// ReservationStatus tracks the lifecycle of a table reservation.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationSeated    ReservationStatus = "seated"
	ReservationCancelled ReservationStatus = "cancelled"
)

// Reservation is a table booking handled by the back-office CRUD screens.
type Reservation struct {
	ID        int64             `json:"id"`
	Name      string            `json:"name"`
	Phone     string            `json:"phone"`
	PartySize int               `json:"party_size"`
	Date      string            `json:"date"` // YYYY-MM-DD
	Time      string            `json:"time"` // HH:MM
	Notes     string            `json:"notes,omitempty"`
	Status    ReservationStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

// TimeEntry is one staff clock-in/clock-out pair. ClockOut is nil while the
// shift is still open.
type TimeEntry struct {
	ID       int64      `json:"id"`
	Staff    string     `json:"staff"`
	ClockIn  time.Time  `json:"clock_in"`
	ClockOut *time.Time `json:"clock_out,omitempty"`
}

// InvoiceLine is one billed item on an invoice.
type InvoiceLine struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// Invoice is a simple issued bill. Totals are computed server-side from the
// lines so clients cannot send inconsistent amounts.
type Invoice struct {
	ID       int64         `json:"id"`
	Number   string        `json:"number"`
	Customer string        `json:"customer"`
	Lines    []InvoiceLine `json:"lines"`
	Total    float64       `json:"total"`
	IssuedAt time.Time     `json:"issued_at"`
}

// ComputeTotal sums the invoice lines.
func (i *Invoice) ComputeTotal() float64 {
	var total float64
	for _, l := range i.Lines {
		total += float64(l.Quantity) * l.UnitPrice
	}
	return total
}
