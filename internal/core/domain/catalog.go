package domain

import "time"

// Play is a production in the association's repertoire. It is the owning
// side of both its director and actor relationships.
type Play struct {
	ID              string    `json:"id" bson:"id"`
	Title           string    `json:"title" bson:"title"`
	Description     string    `json:"description" bson:"description"`
	Genre           string    `json:"genre" bson:"genre"`
	DurationMinutes int       `json:"duration_minutes" bson:"duration_minutes"`
	DirectorID      string    `json:"director_id" bson:"director_id"`
	Actors          []string  `json:"actors" bson:"actors"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updated_at"`
}

// DirectorIDs returns the director reference as a set of zero or one ids.
func (p *Play) DirectorIDs() []string {
	return UniqueIDs([]string{p.DirectorID})
}

// Actor performs in plays.
type Actor struct {
	ID          string     `json:"id" bson:"id"`
	Name        string     `json:"name" bson:"name"`
	Bio         string     `json:"bio,omitempty" bson:"bio"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty" bson:"date_of_birth,omitempty"`
	Plays       []string   `json:"plays" bson:"plays"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
}

// Director directs plays.
type Director struct {
	ID        string    `json:"id" bson:"id"`
	Name      string    `json:"name" bson:"name"`
	Bio       string    `json:"bio,omitempty" bson:"bio"`
	Plays     []string  `json:"plays" bson:"plays"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
