package domain

import "time"

// Ticket is one booked seat for a showtime. Tickets are hard-deleted on
// cancellation; a stored ticket is an active ticket.
type Ticket struct {
	ID           string    `json:"id" bson:"id"`
	ShowtimeID   string    `json:"showtime_id" bson:"showtime_id"`
	CustomerID   string    `json:"customer_id" bson:"customer_id"`
	SeatNumber   string    `json:"seat_number" bson:"seat_number"`
	Price        float64   `json:"price" bson:"price"`
	IsUsed       bool      `json:"is_used" bson:"is_used"`
	PurchaseDate time.Time `json:"purchase_date" bson:"purchase_date"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// CanTransitionTo reports whether is_used may move to used. The only
// transition is unused -> used.
func (t *Ticket) CanTransitionTo(used bool) bool {
	return !t.IsUsed && used
}

// TicketEventType names a ticket lifecycle event.
type TicketEventType string

const (
	TicketBooked    TicketEventType = "ticket.booked"
	TicketCancelled TicketEventType = "ticket.cancelled"
	TicketUsed      TicketEventType = "ticket.used"
)

// TicketEvent is emitted after a ticket lifecycle change has been persisted.
type TicketEvent struct {
	Type       TicketEventType `json:"type"`
	TicketID   string          `json:"ticket_id"`
	ShowtimeID string          `json:"showtime_id"`
	CustomerID string          `json:"customer_id"`
	SeatNumber string          `json:"seat_number"`
	OccurredAt time.Time       `json:"occurred_at"`
}
