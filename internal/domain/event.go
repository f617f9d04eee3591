package domain

// Routing keys published by the scheduling backend.
const (
	EventAppointmentCreated = "appointments.created"
	EventAppointmentDeleted = "appointments.deleted"
	EventReviewCreated      = "reviews.created"
)

// Event is a notification decoded from a queue message. Every variant except
// Unrecognized carries the internal id of the master it is addressed to.
type Event interface {
	// Recipient returns the master's internal id and whether one is present.
	// Events without a recipient cannot be delivered and are discarded.
	Recipient() (int64, bool)
}

type AppointmentCreated struct {
	AppointmentID int64
	MasterID      int64
	Time          string
}

func (e AppointmentCreated) Recipient() (int64, bool) { return e.MasterID, e.MasterID != 0 }

type AppointmentDeleted struct {
	AppointmentID int64
	MasterID      int64
	Time          string
}

func (e AppointmentDeleted) Recipient() (int64, bool) { return e.MasterID, e.MasterID != 0 }

type ReviewCreated struct {
	MasterID int64
	Text     string
}

func (e ReviewCreated) Recipient() (int64, bool) { return e.MasterID, e.MasterID != 0 }

// Unrecognized keeps the raw routing key and payload of a message that could
// not be decoded, for diagnostics only. It never reaches the end user.
type Unrecognized struct {
	RoutingKey string
	Payload    []byte
}

func (e Unrecognized) Recipient() (int64, bool) { return 0, false }
