package bot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDates(t *testing.T) {
	valid, invalid := parseDates("2024-12-25\n2024-12-26 31-12-2024 abc")

	require.Len(t, valid, 2)
	require.Equal(t, "2024-12-25", valid[0].Format(dateLayout))
	require.Equal(t, "2024-12-26", valid[1].Format(dateLayout))
	require.Equal(t, []string{"31-12-2024", "abc"}, invalid)
}

func TestParseDatesEmptyInput(t *testing.T) {
	valid, invalid := parseDates("   \n  ")
	require.Empty(t, valid)
	require.Empty(t, invalid)
}

func TestParseTimes(t *testing.T) {
	valid, invalid := parseTimes("10:00 14:30 25:99")

	require.Len(t, valid, 2)
	require.Equal(t, "10:00", valid[0].Format(timeLayout))
	require.Equal(t, "14:30", valid[1].Format(timeLayout))
	require.Equal(t, []string{"25:99"}, invalid)
}

func TestParseSlotRangeSortsTimes(t *testing.T) {
	slots, err := parseSlotRange("14:30 10:00")
	require.NoError(t, err)
	require.Equal(t, []string{"10:00", "14:30"}, slots)
}

func TestParseSlotRangeRejectsBadInput(t *testing.T) {
	_, err := parseSlotRange("10:00")
	require.Error(t, err)

	_, err = parseSlotRange("10:00 11:00 12:00")
	require.Error(t, err)

	_, err = parseSlotRange("10:00 zz:zz")
	require.Error(t, err)
}

func TestWeekdayMapping(t *testing.T) {
	require.Equal(t, "monday", weekdays["понедельник"])
	require.Equal(t, "sunday", weekdays["воскресенье"])

	_, known := weekdays["каждый день"]
	require.False(t, known)
}
