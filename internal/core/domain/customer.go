package domain

import "time"

// Customer is the booking profile of a user. Tickets mirrors the tickets
// whose customer_id points here.
type Customer struct {
	ID        string    `json:"id" bson:"id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Phone     string    `json:"phone,omitempty" bson:"phone"`
	Address   string    `json:"address,omitempty" bson:"address"`
	Tickets   []string  `json:"tickets" bson:"tickets"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
