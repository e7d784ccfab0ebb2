package roster

import (
	"fmt"
	"strings"
	"time"
)

// Weekday indexes a day of the week Monday-first, matching the calendar
// grid layout. The canonical wire form is the single-character Korean
// token (월..일), not the numeric index.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayTokens = [...]string{"월", "화", "수", "목", "금", "토", "일"}

func (d Weekday) String() string {
	if d < Monday || d > Sunday {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayTokens[d]
}

func (d Weekday) MarshalText() ([]byte, error) {
	if d < Monday || d > Sunday {
		return nil, fmt.Errorf("weekday out of range: %d", int(d))
	}
	return []byte(weekdayTokens[d]), nil
}

func (d *Weekday) UnmarshalText(text []byte) error {
	token := strings.TrimSpace(string(text))
	for i, t := range weekdayTokens {
		if token == t {
			*d = Weekday(i)
			return nil
		}
	}
	return fmt.Errorf("unknown weekday token %q", token)
}

// WeekdayOfDate maps a calendar date to its Monday-first weekday.
func WeekdayOfDate(t time.Time) Weekday {
	return Weekday((int(t.Weekday()) + 6) % 7)
}

var daySeparators = []string{"|", "/", ";", " ", "·", "ㆍ"}

// ParseAvailableDays turns free-text weekday availability into an ordered,
// duplicate-free token sequence. Lists may be separated by comma, slash,
// pipe, semicolon, space, or interpunct; a run-together string such as
// "월수금" is split greedily at each weekday character. Each piece is
// resolved to the first canonical token it contains, scanning 월..일;
// pieces that match nothing are dropped.
func ParseAvailableDays(text string) []Weekday {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil
	}

	for _, sep := range daySeparators {
		s = strings.ReplaceAll(s, sep, ",")
	}

	var parts []string
	if strings.Contains(s, ",") {
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
	} else {
		var buf strings.Builder
		for _, r := range s {
			buf.WriteRune(r)
			if isWeekdayRune(r) {
				parts = append(parts, buf.String())
				buf.Reset()
			}
		}
		if buf.Len() > 0 {
			parts = append(parts, buf.String())
		}
	}

	var days []Weekday
	for _, p := range parts {
		for i, token := range weekdayTokens {
			if strings.Contains(p, token) {
				days = append(days, Weekday(i))
				break
			}
		}
	}
	return dedupeWeekdays(days)
}

func isWeekdayRune(r rune) bool {
	for _, token := range weekdayTokens {
		if string(r) == token {
			return true
		}
	}
	return false
}

func dedupeWeekdays(days []Weekday) []Weekday {
	seen := make(map[Weekday]struct{}, len(days))
	var out []Weekday
	for _, d := range days {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}

func joinWeekdays(days []Weekday) string {
	tokens := make([]string, 0, len(days))
	for _, d := range days {
		tokens = append(tokens, d.String())
	}
	return strings.Join(tokens, ",")
}
