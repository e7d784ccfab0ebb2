package roster

import (
	"fmt"
	"time"
)

// MonthWeeks lays out a month as Monday-first weeks of seven slots.
// A slot holds the day number 1..last, or 0 for padding cells that
// belong to the neighboring months. Callers normalize month to 1..12
// and year to 2000..2100.
func MonthWeeks(year, month int) [][]int {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	slot := int(WeekdayOfDate(first))
	last := DaysInMonth(year, month)

	var weeks [][]int
	week := make([]int, 7)
	for day := 1; day <= last; day++ {
		week[slot] = day
		slot++
		if slot == 7 {
			weeks = append(weeks, week)
			week = make([]int, 7)
			slot = 0
		}
	}
	if slot > 0 {
		weeks = append(weeks, week)
	}
	return weeks
}

func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func MonthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

func DateKey(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// AutoAssign fills every open day of the month: each employee whose
// availability covers the day's weekday and who is not already on that
// date's list gets a default shift appended, in directory order. Running
// it again without directory changes adds nothing; running it after new
// registrations adds only the newly eligible rows. Returns the number of
// assignments created.
func (s *Session) AutoAssign(year, month int) int {
	closed := s.closed[MonthKey(year, month)]
	last := DaysInMonth(year, month)

	added := 0
	for day := 1; day <= last; day++ {
		if _, ok := closed[day]; ok {
			continue
		}
		date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		weekday := WeekdayOfDate(date)
		key := DateKey(year, month, day)

		present := make(map[string]struct{}, len(s.roster[key]))
		for _, r := range s.roster[key] {
			present[r.EmployeeName] = struct{}{}
		}
		for _, emp := range s.employees {
			if !emp.AvailableOn(weekday) {
				continue
			}
			if _, ok := present[emp.Name]; ok {
				continue
			}
			s.roster[key] = append(s.roster[key], ShiftAssignment{
				EmployeeName:   emp.Name,
				EmploymentType: emp.EmploymentType,
				ClockIn:        DefaultClockIn,
				ClockOut:       DefaultClockOut,
				BreakMinutes:   DefaultBreakMinutes,
				HourlyWage:     DefaultHourlyWage,
			})
			present[emp.Name] = struct{}{}
			added++
		}
	}
	return added
}

// EvaluateThreshold reports the month's staffing verdict. Closed days are
// excluded from the denominator; a day meets the threshold when at least
// five distinct names are assigned, not counting business-income rows.
// The flag compares meet against half the open days using integer math.
func (s *Session) EvaluateThreshold(year, month int) ThresholdReport {
	closed := s.closed[MonthKey(year, month)]
	last := DaysInMonth(year, month)

	operating := 0
	meet := 0
	for day := 1; day <= last; day++ {
		if _, ok := closed[day]; ok {
			continue
		}
		operating++
		distinct := make(map[string]struct{})
		for _, r := range s.roster[DateKey(year, month, day)] {
			if r.EmploymentType == EmploymentBusinessIncome {
				continue
			}
			distinct[r.EmployeeName] = struct{}{}
		}
		if len(distinct) >= 5 {
			meet++
		}
	}

	denom := operating
	if denom < 1 {
		denom = 1
	}
	flag := FlagUnderFive
	if meet*2 >= denom {
		flag = FlagFiveOrMore
	}
	return ThresholdReport{Flag: flag, Meet: meet, Operating: denom}
}
