package bot

import (
	"strings"
	"time"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// weekdays maps the Russian weekday names users type to the identifiers the
// backend expects.
var weekdays = map[string]string{
	"понедельник": "monday",
	"вторник":     "tuesday",
	"среда":       "wednesday",
	"четверг":     "thursday",
	"пятница":     "friday",
	"суббота":     "saturday",
	"воскресенье": "sunday",
}

// parseDates splits free-form input (spaces or newlines) into valid
// YYYY-MM-DD dates and the tokens that failed to parse.
func parseDates(raw string) (valid []time.Time, invalid []string) {
	for _, token := range strings.Fields(raw) {
		d, err := time.Parse(dateLayout, token)
		if err != nil {
			invalid = append(invalid, token)
			continue
		}
		valid = append(valid, d)
	}
	return valid, invalid
}

// parseTimes does the same for HH:MM times.
func parseTimes(raw string) (valid []time.Time, invalid []string) {
	for _, token := range strings.Fields(raw) {
		t, err := time.Parse(timeLayout, token)
		if err != nil {
			invalid = append(invalid, token)
			continue
		}
		valid = append(valid, t)
	}
	return valid, invalid
}
