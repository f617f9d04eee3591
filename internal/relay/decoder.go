package relay

import (
	"encoding/json"

	"github.com/strawberrylab/masterbot/internal/domain"
)

// envelope is the superset of fields the scheduling backend puts on the wire.
// Appointments carry appointment_id/master_id/time; reviews carry
// user_id/master_id/message. Unknown fields are ignored, missing ones stay
// zero.
type envelope struct {
	AppointmentID int64  `json:"appointment_id"`
	MasterID      int64  `json:"master_id"`
	UserID        int64  `json:"user_id"`
	Time          string `json:"time"`
	Text          string `json:"text"`
	Message       string `json:"message"`
}

// recipient prefers master_id; older backend payloads only set user_id.
func (e envelope) recipient() int64 {
	if e.MasterID != 0 {
		return e.MasterID
	}
	return e.UserID
}

func (e envelope) reviewText() string {
	if e.Text != "" {
		return e.Text
	}
	return e.Message
}

// Decode turns a raw queue message into a typed event. It never fails: bodies
// that do not parse as JSON, and routing keys outside the known set, come back
// as Unrecognized with the raw payload preserved for diagnostics. A malformed
// or evolving upstream payload must not stall the consumer.
func Decode(routingKey string, body []byte) domain.Event {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return domain.Unrecognized{RoutingKey: routingKey, Payload: body}
	}

	switch routingKey {
	case domain.EventAppointmentCreated:
		return domain.AppointmentCreated{
			AppointmentID: env.AppointmentID,
			MasterID:      env.recipient(),
			Time:          env.Time,
		}
	case domain.EventAppointmentDeleted:
		return domain.AppointmentDeleted{
			AppointmentID: env.AppointmentID,
			MasterID:      env.recipient(),
			Time:          env.Time,
		}
	case domain.EventReviewCreated:
		return domain.ReviewCreated{
			MasterID: env.recipient(),
			Text:     env.reviewText(),
		}
	default:
		return domain.Unrecognized{RoutingKey: routingKey, Payload: body}
	}
}
