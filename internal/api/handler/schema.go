package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Catalog ---

type createPlayRequest struct {
	Title           string   `json:"title"            validate:"required"`
	Description     string   `json:"description"`
	Genre           string   `json:"genre"`
	DurationMinutes int      `json:"duration_minutes" validate:"gte=0"`
	DirectorID      string   `json:"director_id"`
	Actors          []string `json:"actors"`
}

type updatePlayRequest struct {
	Title           *string   `json:"title"            validate:"omitempty,min=1"`
	Description     *string   `json:"description"`
	Genre           *string   `json:"genre"`
	DurationMinutes *int      `json:"duration_minutes" validate:"omitempty,gte=0"`
	DirectorID      *string   `json:"director_id"`
	Actors          *[]string `json:"actors"`
}

type createActorRequest struct {
	Name        string     `json:"name" validate:"required"`
	Bio         string     `json:"bio"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Plays       []string   `json:"plays"`
}

type updateActorRequest struct {
	Name        *string    `json:"name" validate:"omitempty,min=1"`
	Bio         *string    `json:"bio"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Plays       *[]string  `json:"plays"`
}

type createDirectorRequest struct {
	Name  string   `json:"name" validate:"required"`
	Bio   string   `json:"bio"`
	Plays []string `json:"plays"`
}

type updateDirectorRequest struct {
	Name  *string   `json:"name" validate:"omitempty,min=1"`
	Bio   *string   `json:"bio"`
	Plays *[]string `json:"plays"`
}

// --- Showtimes ---

type createShowtimeRequest struct {
	PlayID         string    `json:"play_id"         validate:"required"`
	DateTime       time.Time `json:"date_time"       validate:"required"`
	Venue          string    `json:"venue"           validate:"required"`
	AvailableSeats int       `json:"available_seats" validate:"gte=0"`
	Price          float64   `json:"price"           validate:"gte=0"`
}

type updateShowtimeRequest struct {
	PlayID         *string    `json:"play_id"         validate:"omitempty,min=1"`
	DateTime       *time.Time `json:"date_time"`
	Venue          *string    `json:"venue"           validate:"omitempty,min=1"`
	AvailableSeats *int       `json:"available_seats" validate:"omitempty,gte=0"`
	Price          *float64   `json:"price"           validate:"omitempty,gte=0"`
}

// --- Customers ---

type createCustomerRequest struct {
	UserID  string `json:"user_id"`
	Name    string `json:"name"    validate:"required"`
	Email   string `json:"email"   validate:"required,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type updateCustomerRequest struct {
	Name    *string `json:"name"  validate:"omitempty,min=1"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// --- Tickets ---

type createTicketRequest struct {
	ShowtimeID string  `json:"showtime_id" validate:"required"`
	CustomerID string  `json:"customer_id" validate:"required"`
	SeatNumber string  `json:"seat_number" validate:"required"`
	Price      float64 `json:"price"       validate:"gte=0"`
}

type updateTicketRequest struct {
	ShowtimeID *string  `json:"showtime_id" validate:"omitempty,min=1"`
	CustomerID *string  `json:"customer_id" validate:"omitempty,min=1"`
	SeatNumber *string  `json:"seat_number" validate:"omitempty,min=1"`
	Price      *float64 `json:"price"       validate:"omitempty,gte=0"`
	IsUsed     *bool    `json:"is_used"`
}

// --- Auth ---

type registerRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	Username string `json:"username"  validate:"required,min=3"`
	Password string `json:"password"  validate:"required,min=6"`
	FullName string `json:"full_name"`
	Role     string `json:"role"      validate:"omitempty,oneof=admin staff customer"`
}

// tokenRequest accepts the OAuth2 password form as well as JSON.
type tokenRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
