package relay

import (
	"fmt"

	"github.com/strawberrylab/masterbot/internal/domain"
)

// fallbackText is shown when an event has nothing better to say. Raw payloads
// never reach the end user.
const fallbackText = "Новое уведомление о записи"

// Format renders an event as the message the master sees in the chat. Pure;
// every variant has exactly one template.
func Format(event domain.Event) string {
	switch e := event.(type) {
	case domain.AppointmentCreated:
		return fmt.Sprintf("Новая запись:\nID: %d\nВремя: %s", e.AppointmentID, e.Time)
	case domain.AppointmentDeleted:
		return fmt.Sprintf("Запись отменена:\nID: %d\nВремя: %s", e.AppointmentID, e.Time)
	case domain.ReviewCreated:
		if e.Text == "" {
			return fallbackText
		}
		return fmt.Sprintf("Новый отзыв:\n%s", e.Text)
	default:
		return fallbackText
	}
}
