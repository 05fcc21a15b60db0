package domain

// Collection names in the document store.
const (
	CollectionUsers     = "users"
	CollectionPlays     = "plays"
	CollectionActors    = "actors"
	CollectionDirectors = "directors"
	CollectionShowtimes = "showtimes"
	CollectionCustomers = "customers"
	CollectionTickets   = "tickets"
)

// Field names shared by the services and the store adapters.
const (
	FieldID             = "id"
	FieldCreatedAt      = "created_at"
	FieldUpdatedAt      = "updated_at"
	FieldPlays          = "plays"
	FieldActors         = "actors"
	FieldDirectorID     = "director_id"
	FieldPlayID         = "play_id"
	FieldTickets        = "tickets"
	FieldCustomerID     = "customer_id"
	FieldShowtimeID     = "showtime_id"
	FieldSeatNumber     = "seat_number"
	FieldAvailableSeats = "available_seats"
	FieldIsUsed         = "is_used"
	FieldUserID         = "user_id"
	FieldEmail          = "email"
	FieldUsername       = "username"
	FieldDateTime       = "date_time"
)

// UniqueKey is a set of fields whose combined value must be unique within a
// collection. Both store adapters enforce these.
type UniqueKey struct {
	Collection string
	Fields     []string
}

// UniqueKeys lists every uniqueness constraint of the data model.
var UniqueKeys = []UniqueKey{
	{Collection: CollectionUsers, Fields: []string{FieldID}},
	{Collection: CollectionUsers, Fields: []string{FieldEmail}},
	{Collection: CollectionUsers, Fields: []string{FieldUsername}},
	{Collection: CollectionPlays, Fields: []string{FieldID}},
	{Collection: CollectionActors, Fields: []string{FieldID}},
	{Collection: CollectionDirectors, Fields: []string{FieldID}},
	{Collection: CollectionShowtimes, Fields: []string{FieldID}},
	{Collection: CollectionCustomers, Fields: []string{FieldID}},
	{Collection: CollectionCustomers, Fields: []string{FieldUserID}},
	{Collection: CollectionTickets, Fields: []string{FieldID}},
	{Collection: CollectionTickets, Fields: []string{FieldShowtimeID, FieldSeatNumber}},
}
