package reminder

import (
	"fmt"
	"regexp"
	c "remindbot/internal/core/domain/common"
	"strconv"
	"strings"
	"time"
)

// Location is the single wall clock zone used to interpret and display
// user supplied times (+09:00, no daylight saving).
var Location = time.FixedZone("JST", 9*60*60)

const DisplayLayout = "2006/01/02 15:04"

// Spaces include the ideographic space users type with Japanese input methods.
const space = `[\s\p{Zs}]`

var schedulePattern = regexp.MustCompile(
	`^(\d{4})/(\d{1,2})/(\d{1,2})` + space + `+(\d{1,2}):(\d{2})` + space + `+(.+?)(?:` + space + `+(\d+))?$`,
)

type Schedule struct {
	Title     string
	ExecuteAt time.Time
	// RemindBeforeMinutes is absent when the text has no trailing lead time.
	RemindBeforeMinutes c.Optional[uint32]
}

// ParseSchedule recognises "YYYY/M/D H:MM <title> [<minutes>]". Date parts are
// not range checked: out of range values roll over the way time.Date does.
// ExecuteAt is returned in UTC.
func ParseSchedule(text string) (s Schedule, ok bool) {
	m := schedulePattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return s, false
	}

	var parts [5]int
	for ix := range parts {
		v, err := strconv.Atoi(m[ix+1])
		if err != nil {
			return s, false
		}
		parts[ix] = v
	}

	title := strings.TrimSpace(m[6])
	if title == "" {
		return s, false
	}

	if m[7] != "" {
		minutes, err := strconv.ParseUint(m[7], 10, 32)
		if err != nil {
			return s, false
		}
		s.RemindBeforeMinutes = c.Present(uint32(minutes))
	}

	s.Title = title
	s.ExecuteAt = time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], 0, 0, Location).UTC()
	return s, true
}

// FormatSchedule renders a schedule back into the text form ParseSchedule accepts.
func FormatSchedule(s Schedule) string {
	text := fmt.Sprintf("%s %s", s.ExecuteAt.In(Location).Format("2006/1/2 15:04"), s.Title)
	if s.RemindBeforeMinutes.IsPresent {
		text = fmt.Sprintf("%s %d", text, s.RemindBeforeMinutes.Value)
	}
	return text
}

func FormatTime(t time.Time) string {
	return t.In(Location).Format(DisplayLayout)
}
