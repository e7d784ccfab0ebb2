package roster

import (
	"strconv"
	"strings"
	"time"
)

// EmploymentType carries the product's Korean category labels. The order
// of EmploymentTypes is canonical: the first entry is the fallback for
// unrecognized input.
type EmploymentType string

const (
	EmploymentInsuredStandard EmploymentType = "4대보험"
	EmploymentShortHour       EmploymentType = "초단시간"
	EmploymentBusinessIncome  EmploymentType = "사업소득"
	EmploymentDailyWorker     EmploymentType = "일용직"
)

var EmploymentTypes = []EmploymentType{
	EmploymentInsuredStandard,
	EmploymentShortHour,
	EmploymentBusinessIncome,
	EmploymentDailyWorker,
}

// NormalizeEmploymentType resolves raw input to a recognized category,
// falling back to the first category rather than failing.
func NormalizeEmploymentType(raw string) EmploymentType {
	trimmed := strings.TrimSpace(raw)
	for _, t := range EmploymentTypes {
		if trimmed == string(t) {
			return t
		}
	}
	return EmploymentTypes[0]
}

type Employee struct {
	Name           string         `json:"name"`
	Phone          string         `json:"phone"`
	Role           string         `json:"role"`
	EmploymentType EmploymentType `json:"employmentType"`
	AvailableDays  []Weekday      `json:"availableDays"`
	Photo          []byte         `json:"photo,omitempty"`
	PhotoMime      string         `json:"photoMime,omitempty"`
}

func (e Employee) AvailableOn(day Weekday) bool {
	for _, d := range e.AvailableDays {
		if d == day {
			return true
		}
	}
	return false
}

func (e Employee) HasPhoto() bool {
	return len(e.Photo) > 0
}

const (
	DefaultClockIn      = "09:00"
	DefaultClockOut     = "18:00"
	DefaultBreakMinutes = 60
	DefaultHourlyWage   = 10000
)

type ShiftAssignment struct {
	EmployeeName   string         `json:"employeeName"`
	EmploymentType EmploymentType `json:"employmentType"`
	ClockIn        string         `json:"clockIn"`
	ClockOut       string         `json:"clockOut"`
	BreakMinutes   int            `json:"breakMinutes"`
	HourlyWage     float64        `json:"hourlyWage"`
}

// Minutes is the paid span of the shift: clock-out minus clock-in minus
// break, clamped at zero. Times are same-day wall clock; a clock-out
// before clock-in clamps to zero rather than wrapping overnight.
func (a ShiftAssignment) Minutes() int {
	in, okIn := clockToMinutes(a.ClockIn)
	out, okOut := clockToMinutes(a.ClockOut)
	if !okIn || !okOut {
		return 0
	}
	brk := a.BreakMinutes
	if brk < 0 {
		brk = 0
	}
	mins := out - in - brk
	if mins < 0 {
		return 0
	}
	return mins
}

func (a ShiftAssignment) Cost() float64 {
	return float64(a.Minutes()) / 60.0 * a.HourlyWage
}

func clockToMinutes(clock string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(clock), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil || hh < 0 || hh > 23 {
		return 0, false
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil || mm < 0 || mm > 59 {
		return 0, false
	}
	return hh*60 + mm, true
}

const (
	FlagFiveOrMore = "5인 이상"
	FlagUnderFive  = "5인 미만"
)

// ThresholdReport is the monthly staffing verdict. Operating is the
// displayed denominator: open-day count floored at 1.
type ThresholdReport struct {
	Flag      string `json:"flag"`
	Meet      int    `json:"meet"`
	Operating int    `json:"operating"`
}

// SkippedRow reports one import row that was rejected. Row is the 1-based
// spreadsheet row number, counting the header as row 1.
type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// AssignmentCost pairs a roster row with its computed pay span.
type AssignmentCost struct {
	ShiftAssignment
	Minutes int     `json:"minutes"`
	Cost    float64 `json:"cost"`
}

// DaySummary lists one date's roster with per-row and total costs.
type DaySummary struct {
	Date         string           `json:"date"`
	Rows         []AssignmentCost `json:"rows"`
	TotalMinutes int              `json:"totalMinutes"`
	TotalCost    float64          `json:"totalCost"`
}

const stateVersion = 1

// State is the serializable form of a whole session, used by the
// snapshot download/upload feature.
type State struct {
	Version    int                          `json:"version"`
	SessionID  string                       `json:"sessionId"`
	CreatedAt  time.Time                    `json:"createdAt"`
	SavedAt    time.Time                    `json:"savedAt"`
	Employees  []Employee                   `json:"employees"`
	Roster     map[string][]ShiftAssignment `json:"roster"`
	ClosedDays map[string][]int             `json:"closedDays"`
}
