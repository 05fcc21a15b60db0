package domain

import "time"

// Showtime is a scheduled performance of a play. AvailableSeats is the
// remaining inventory; it only moves through the inventory controller.
type Showtime struct {
	ID             string    `json:"id" bson:"id"`
	PlayID         string    `json:"play_id" bson:"play_id"`
	DateTime       time.Time `json:"date_time" bson:"date_time"`
	Venue          string    `json:"venue" bson:"venue"`
	AvailableSeats int       `json:"available_seats" bson:"available_seats"`
	Price          float64   `json:"price" bson:"price"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}
