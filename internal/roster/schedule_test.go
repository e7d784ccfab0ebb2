package roster

import (
	"fmt"
	"testing"
)

func TestMonthWeeksShape(t *testing.T) {
	cases := []struct{ year, month int }{
		{2026, 1}, {2026, 2}, {2026, 6}, {2024, 2}, {2021, 2}, {2100, 12}, {2000, 1},
	}
	for _, c := range cases {
		weeks := MonthWeeks(c.year, c.month)
		seen := 0
		prev := 0
		for _, week := range weeks {
			if len(week) != 7 {
				t.Fatalf("%04d-%02d: week length %d, want 7", c.year, c.month, len(week))
			}
			for _, d := range week {
				if d == 0 {
					continue
				}
				if d != prev+1 {
					t.Fatalf("%04d-%02d: day %d follows %d", c.year, c.month, d, prev)
				}
				prev = d
				seen++
			}
		}
		if want := DaysInMonth(c.year, c.month); seen != want {
			t.Fatalf("%04d-%02d: %d day slots, want %d", c.year, c.month, seen, want)
		}
	}
}

func TestMonthWeeksMondayAlignment(t *testing.T) {
	// January 2026 begins on a Thursday.
	weeks := MonthWeeks(2026, 1)
	first := weeks[0]
	want := []int{0, 0, 0, 1, 2, 3, 4}
	for i := range want {
		if first[i] != want[i] {
			t.Fatalf("first week = %v, want %v", first, want)
		}
	}

	// February 2021 begins on a Monday and fills exactly four weeks.
	weeks = MonthWeeks(2021, 2)
	if len(weeks) != 4 {
		t.Fatalf("2021-02 week count = %d, want 4", len(weeks))
	}
	if weeks[0][0] != 1 || weeks[3][6] != 28 {
		t.Fatalf("2021-02 layout = %v", weeks)
	}
}

func TestDaysInMonth(t *testing.T) {
	if got := DaysInMonth(2024, 2); got != 29 {
		t.Fatalf("2024-02 = %d, want 29", got)
	}
	if got := DaysInMonth(2026, 2); got != 28 {
		t.Fatalf("2026-02 = %d, want 28", got)
	}
	if got := DaysInMonth(2026, 12); got != 31 {
		t.Fatalf("2026-12 = %d, want 31", got)
	}
}

func TestAutoAssignUsesAvailabilityAndDefaults(t *testing.T) {
	s := NewSession()
	if err := s.AddEmployee(Employee{Name: "김철수", EmploymentType: EmploymentInsuredStandard, AvailableDays: []Weekday{Monday}}); err != nil {
		t.Fatalf("add employee: %v", err)
	}
	if err := s.AddEmployee(Employee{Name: "이영희", EmploymentType: EmploymentShortHour, AvailableDays: []Weekday{Monday, Tuesday}}); err != nil {
		t.Fatalf("add employee: %v", err)
	}

	added := s.AutoAssign(2026, 1)
	if added == 0 {
		t.Fatalf("expected assignments to be created")
	}

	monday := s.Assignments("2026-01-05")
	if len(monday) != 2 {
		t.Fatalf("monday rows = %d, want 2", len(monday))
	}
	if monday[0].EmployeeName != "김철수" || monday[1].EmployeeName != "이영희" {
		t.Fatalf("directory order not preserved: %v", monday)
	}
	first := monday[0]
	if first.ClockIn != "09:00" || first.ClockOut != "18:00" || first.BreakMinutes != 60 || first.HourlyWage != 10000 {
		t.Fatalf("defaults not applied: %+v", first)
	}
	if first.EmploymentType != EmploymentInsuredStandard {
		t.Fatalf("employment type not copied: %q", first.EmploymentType)
	}

	tuesday := s.Assignments("2026-01-06")
	if len(tuesday) != 1 || tuesday[0].EmployeeName != "이영희" {
		t.Fatalf("tuesday rows = %v", tuesday)
	}
}

func TestAutoAssignSkipsClosedDays(t *testing.T) {
	s := NewSession()
	if err := s.AddEmployee(Employee{Name: "김철수", AvailableDays: []Weekday{Monday}}); err != nil {
		t.Fatalf("add employee: %v", err)
	}
	s.SetClosedDays("2026-01", []int{5})

	s.AutoAssign(2026, 1)
	if rows := s.Assignments("2026-01-05"); len(rows) != 0 {
		t.Fatalf("closed day was assigned: %v", rows)
	}
	// The next Monday is open and should be filled.
	if rows := s.Assignments("2026-01-12"); len(rows) != 1 {
		t.Fatalf("open monday rows = %d, want 1", len(rows))
	}
}

func TestAutoAssignIdempotent(t *testing.T) {
	s := NewSession()
	if err := s.AddEmployee(Employee{Name: "김철수", AvailableDays: []Weekday{Monday, Friday}}); err != nil {
		t.Fatalf("add employee: %v", err)
	}

	first := s.AutoAssign(2026, 1)
	if first == 0 {
		t.Fatalf("first run added nothing")
	}
	second := s.AutoAssign(2026, 1)
	if second != 0 {
		t.Fatalf("second run added %d rows, want 0", second)
	}
	for _, date := range s.RosterDates() {
		if len(s.Assignments(date)) != 1 {
			t.Fatalf("%s holds %d rows, want 1", date, len(s.Assignments(date)))
		}
	}
}

func TestAutoAssignAddsOnlyNewEmployeesOnRerun(t *testing.T) {
	s := NewSession()
	if err := s.AddEmployee(Employee{Name: "김철수", AvailableDays: []Weekday{Monday}}); err != nil {
		t.Fatalf("add employee: %v", err)
	}
	s.AutoAssign(2026, 1)

	// Shorten an existing row so a rerun would reveal overwrites.
	if err := s.UpdateAssignment("2026-01-05", 0, ShiftAssignment{
		EmployeeName: "김철수", ClockIn: "10:00", ClockOut: "14:00", BreakMinutes: 0, HourlyWage: 12000,
	}); err != nil {
		t.Fatalf("update assignment: %v", err)
	}
	if err := s.AddEmployee(Employee{Name: "이영희", AvailableDays: []Weekday{Monday}}); err != nil {
		t.Fatalf("add employee: %v", err)
	}

	s.AutoAssign(2026, 1)
	rows := s.Assignments("2026-01-05")
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].ClockIn != "10:00" || rows[0].HourlyWage != 12000 {
		t.Fatalf("existing row was altered: %+v", rows[0])
	}
	if rows[1].EmployeeName != "이영희" || rows[1].ClockIn != "09:00" {
		t.Fatalf("new employee row = %+v", rows[1])
	}
}

func TestEvaluateThresholdOperatingCount(t *testing.T) {
	s := NewSession()
	// June 2026 has 30 days; closing two leaves 28 in the denominator.
	s.SetClosedDays("2026-06", []int{1, 2})
	report := s.EvaluateThreshold(2026, 6)
	if report.Operating != 28 {
		t.Fatalf("operating = %d, want 28", report.Operating)
	}
	if report.Meet != 0 || report.Flag != FlagUnderFive {
		t.Fatalf("empty roster report = %+v", report)
	}
}

func TestEvaluateThresholdFloorsDenominator(t *testing.T) {
	s := NewSession()
	days := make([]int, 0, 28)
	for d := 1; d <= DaysInMonth(2026, 2); d++ {
		days = append(days, d)
	}
	s.SetClosedDays("2026-02", days)
	report := s.EvaluateThreshold(2026, 2)
	if report.Operating != 1 || report.Meet != 0 || report.Flag != FlagUnderFive {
		t.Fatalf("all-closed month report = %+v, want {5인 미만 0 1}", report)
	}
}

func TestEvaluateThresholdHalfwayExample(t *testing.T) {
	s := NewSession()
	s.SetClosedDays("2026-06", []int{1, 2})

	// 14 of the 28 open days staffed with five insured employees each.
	for day := 3; day <= 16; day++ {
		date := DateKey(2026, 6, day)
		for i := 1; i <= 5; i++ {
			err := s.AddAssignment(date, ShiftAssignment{
				EmployeeName:   fmt.Sprintf("직원%d", i),
				EmploymentType: EmploymentInsuredStandard,
				ClockIn:        "09:00",
				ClockOut:       "18:00",
				BreakMinutes:   60,
				HourlyWage:     10000,
			})
			if err != nil {
				t.Fatalf("add assignment: %v", err)
			}
		}
	}

	report := s.EvaluateThreshold(2026, 6)
	if report.Meet != 14 || report.Operating != 28 {
		t.Fatalf("report = %+v, want meet=14 operating=28", report)
	}
	if report.Flag != FlagFiveOrMore {
		t.Fatalf("flag = %q, want %q", report.Flag, FlagFiveOrMore)
	}
}

func TestEvaluateThresholdExcludesBusinessIncome(t *testing.T) {
	s := NewSession()
	date := DateKey(2026, 6, 3)
	for i := 1; i <= 4; i++ {
		err := s.AddAssignment(date, ShiftAssignment{
			EmployeeName:   fmt.Sprintf("직원%d", i),
			EmploymentType: EmploymentInsuredStandard,
			ClockIn:        "09:00",
			ClockOut:       "18:00",
		})
		if err != nil {
			t.Fatalf("add assignment: %v", err)
		}
	}
	err := s.AddAssignment(date, ShiftAssignment{
		EmployeeName:   "외주직원",
		EmploymentType: EmploymentBusinessIncome,
		ClockIn:        "09:00",
		ClockOut:       "18:00",
	})
	if err != nil {
		t.Fatalf("add assignment: %v", err)
	}

	report := s.EvaluateThreshold(2026, 6)
	if report.Meet != 0 {
		t.Fatalf("business-income row counted toward threshold: %+v", report)
	}

	err = s.AddAssignment(date, ShiftAssignment{
		EmployeeName:   "직원5",
		EmploymentType: EmploymentInsuredStandard,
		ClockIn:        "09:00",
		ClockOut:       "18:00",
	})
	if err != nil {
		t.Fatalf("add assignment: %v", err)
	}
	if report = s.EvaluateThreshold(2026, 6); report.Meet != 1 {
		t.Fatalf("five insured names should meet the threshold: %+v", report)
	}
}
