package roster

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Session owns the employee directory, the roster store, and the
// closed-day store for one operator session. All state lives in memory
// for the session's lifetime; callers serialize access (see apiapp).
type Session struct {
	id        string
	createdAt time.Time
	employees []Employee
	roster    map[string][]ShiftAssignment
	closed    map[string]map[int]struct{}
}

func NewSession() *Session {
	return &Session{
		id:        uuid.NewString(),
		createdAt: time.Now().UTC(),
		roster:    make(map[string][]ShiftAssignment),
		closed:    make(map[string]map[int]struct{}),
	}
}

func (s *Session) ID() string           { return s.id }
func (s *Session) CreatedAt() time.Time { return s.createdAt }

func (s *Session) Employees() []Employee {
	out := make([]Employee, len(s.employees))
	copy(out, s.employees)
	return out
}

func (s *Session) Employee(name string) (Employee, bool) {
	idx := s.findEmployee(name)
	if idx < 0 {
		return Employee{}, false
	}
	return s.employees[idx], true
}

func (s *Session) findEmployee(name string) int {
	for i, e := range s.employees {
		if e.Name == name {
			return i
		}
	}
	return -1
}

func (s *Session) AddEmployee(e Employee) error {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return fmt.Errorf("%w: employee name is required", ErrValidation)
	}
	if s.findEmployee(name) >= 0 {
		return fmt.Errorf("%w: employee %q already exists", ErrDuplicate, name)
	}
	s.employees = append(s.employees, Employee{
		Name:           name,
		Phone:          strings.TrimSpace(e.Phone),
		Role:           strings.TrimSpace(e.Role),
		EmploymentType: NormalizeEmploymentType(string(e.EmploymentType)),
		AvailableDays:  sanitizeWeekdays(e.AvailableDays),
		Photo:          append([]byte(nil), e.Photo...),
		PhotoMime:      strings.TrimSpace(e.PhotoMime),
	})
	return nil
}

// UpdateEmployee replaces the mutable fields of the named employee. The
// name is the directory key and cannot change; the photo is managed by
// the photo operations below and is left untouched here.
func (s *Session) UpdateEmployee(name string, e Employee) error {
	idx := s.findEmployee(name)
	if idx < 0 {
		return fmt.Errorf("%w: employee %q", ErrNotFound, name)
	}
	if updated := strings.TrimSpace(e.Name); updated != "" && updated != name {
		return fmt.Errorf("%w: employee name cannot be changed", ErrValidation)
	}
	cur := &s.employees[idx]
	cur.Phone = strings.TrimSpace(e.Phone)
	cur.Role = strings.TrimSpace(e.Role)
	cur.EmploymentType = NormalizeEmploymentType(string(e.EmploymentType))
	cur.AvailableDays = sanitizeWeekdays(e.AvailableDays)
	return nil
}

// RemoveEmployee deletes the directory entry and cascades: every shift
// assignment carrying the name is removed, and date keys whose lists
// become empty are dropped from the roster store entirely.
func (s *Session) RemoveEmployee(name string) error {
	idx := s.findEmployee(name)
	if idx < 0 {
		return fmt.Errorf("%w: employee %q", ErrNotFound, name)
	}
	s.employees = append(s.employees[:idx], s.employees[idx+1:]...)
	for key, rows := range s.roster {
		kept := rows[:0]
		for _, r := range rows {
			if r.EmployeeName != name {
				kept = append(kept, r)
			}
		}
		if len(kept) == 0 {
			delete(s.roster, key)
		} else {
			s.roster[key] = kept
		}
	}
	return nil
}

// EnsureEmployee registers a minimal directory entry when the name is
// unknown, with the given weekday as the sole initial availability.
// Reports whether a new entry was created.
func (s *Session) EnsureEmployee(name string, et EmploymentType, day Weekday) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, fmt.Errorf("%w: employee name is required", ErrValidation)
	}
	if day < Monday || day > Sunday {
		return false, fmt.Errorf("%w: weekday out of range", ErrValidation)
	}
	if s.findEmployee(name) >= 0 {
		return false, nil
	}
	s.employees = append(s.employees, Employee{
		Name:           name,
		EmploymentType: NormalizeEmploymentType(string(et)),
		AvailableDays:  []Weekday{day},
	})
	return true, nil
}

func (s *Session) SetEmployeePhoto(name string, data []byte, mime string) error {
	idx := s.findEmployee(name)
	if idx < 0 {
		return fmt.Errorf("%w: employee %q", ErrNotFound, name)
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: photo data is required", ErrValidation)
	}
	mime = strings.TrimSpace(mime)
	if mime == "" {
		return fmt.Errorf("%w: photo mime type is required", ErrValidation)
	}
	s.employees[idx].Photo = append([]byte(nil), data...)
	s.employees[idx].PhotoMime = mime
	return nil
}

func (s *Session) EmployeePhoto(name string) ([]byte, string, error) {
	idx := s.findEmployee(name)
	if idx < 0 {
		return nil, "", fmt.Errorf("%w: employee %q", ErrNotFound, name)
	}
	e := s.employees[idx]
	if len(e.Photo) == 0 {
		return nil, "", fmt.Errorf("%w: employee %q has no photo", ErrNotFound, name)
	}
	return append([]byte(nil), e.Photo...), e.PhotoMime, nil
}

func (s *Session) RemoveEmployeePhoto(name string) error {
	idx := s.findEmployee(name)
	if idx < 0 {
		return fmt.Errorf("%w: employee %q", ErrNotFound, name)
	}
	s.employees[idx].Photo = nil
	s.employees[idx].PhotoMime = ""
	return nil
}

// SetClosedDays replaces the closed-day set for a year-month key. An
// empty set removes the key; absent means no closed days.
func (s *Session) SetClosedDays(ym string, days []int) {
	set := make(map[int]struct{}, len(days))
	for _, d := range days {
		set[d] = struct{}{}
	}
	if len(set) == 0 {
		delete(s.closed, ym)
		return
	}
	s.closed[ym] = set
}

func (s *Session) ClosedDays(ym string) []int {
	set := s.closed[ym]
	if len(set) == 0 {
		return nil
	}
	out := make([]int, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}

func (s *Session) Assignments(date string) []ShiftAssignment {
	rows := s.roster[date]
	if len(rows) == 0 {
		return nil
	}
	out := make([]ShiftAssignment, len(rows))
	copy(out, rows)
	return out
}

func (s *Session) AddAssignment(date string, a ShiftAssignment) error {
	if err := validateDateKey(date); err != nil {
		return err
	}
	name := strings.TrimSpace(a.EmployeeName)
	if name == "" {
		return fmt.Errorf("%w: employee name is required", ErrValidation)
	}
	if err := validateAssignmentFields(a); err != nil {
		return err
	}
	for _, r := range s.roster[date] {
		if r.EmployeeName == name {
			return fmt.Errorf("%w: employee %q already assigned on %s", ErrDuplicate, name, date)
		}
	}
	a.EmployeeName = name
	a.EmploymentType = NormalizeEmploymentType(string(a.EmploymentType))
	s.roster[date] = append(s.roster[date], a)
	return nil
}

func (s *Session) UpdateAssignment(date string, index int, a ShiftAssignment) error {
	if err := validateDateKey(date); err != nil {
		return err
	}
	rows, ok := s.roster[date]
	if !ok || index < 0 || index >= len(rows) {
		return fmt.Errorf("%w: no assignment at %s index %d", ErrNotFound, date, index)
	}
	name := strings.TrimSpace(a.EmployeeName)
	if name == "" {
		return fmt.Errorf("%w: employee name is required", ErrValidation)
	}
	if err := validateAssignmentFields(a); err != nil {
		return err
	}
	for i, r := range rows {
		if i != index && r.EmployeeName == name {
			return fmt.Errorf("%w: employee %q already assigned on %s", ErrDuplicate, name, date)
		}
	}
	a.EmployeeName = name
	a.EmploymentType = NormalizeEmploymentType(string(a.EmploymentType))
	rows[index] = a
	return nil
}

func (s *Session) RemoveAssignment(date string, index int) error {
	rows, ok := s.roster[date]
	if !ok || index < 0 || index >= len(rows) {
		return fmt.Errorf("%w: no assignment at %s index %d", ErrNotFound, date, index)
	}
	rows = append(rows[:index], rows[index+1:]...)
	if len(rows) == 0 {
		delete(s.roster, date)
		return nil
	}
	s.roster[date] = rows
	return nil
}

func (s *Session) DaySummary(date string) DaySummary {
	rows := s.roster[date]
	summary := DaySummary{Date: date, Rows: make([]AssignmentCost, 0, len(rows))}
	for _, r := range rows {
		mins := r.Minutes()
		cost := r.Cost()
		summary.Rows = append(summary.Rows, AssignmentCost{ShiftAssignment: r, Minutes: mins, Cost: cost})
		summary.TotalMinutes += mins
		summary.TotalCost += cost
	}
	return summary
}

func (s *Session) RosterDates() []string {
	out := make([]string, 0, len(s.roster))
	for key := range s.roster {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func (s *Session) ClosedMonths() []string {
	out := make([]string, 0, len(s.closed))
	for key := range s.closed {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// State deep-copies the whole session into its serializable form.
func (s *Session) State() State {
	st := State{
		Version:    stateVersion,
		SessionID:  s.id,
		CreatedAt:  s.createdAt,
		SavedAt:    time.Now().UTC(),
		Employees:  make([]Employee, 0, len(s.employees)),
		Roster:     make(map[string][]ShiftAssignment, len(s.roster)),
		ClosedDays: make(map[string][]int, len(s.closed)),
	}
	for _, e := range s.employees {
		copied := e
		copied.AvailableDays = append([]Weekday(nil), e.AvailableDays...)
		copied.Photo = append([]byte(nil), e.Photo...)
		st.Employees = append(st.Employees, copied)
	}
	for key, rows := range s.roster {
		st.Roster[key] = append([]ShiftAssignment(nil), rows...)
	}
	for key := range s.closed {
		st.ClosedDays[key] = s.ClosedDays(key)
	}
	return st
}

// LoadState replaces every piece of session state with the snapshot's,
// including the session identity when the snapshot carries one.
func (s *Session) LoadState(st State) error {
	if st.Version != stateVersion {
		return fmt.Errorf("%w: unsupported snapshot version %d", ErrValidation, st.Version)
	}
	employees := make([]Employee, 0, len(st.Employees))
	for _, e := range st.Employees {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return fmt.Errorf("%w: snapshot contains an employee without a name", ErrValidation)
		}
		copied := e
		copied.Name = name
		copied.AvailableDays = sanitizeWeekdays(e.AvailableDays)
		copied.Photo = append([]byte(nil), e.Photo...)
		employees = append(employees, copied)
	}
	roster := make(map[string][]ShiftAssignment, len(st.Roster))
	for key, rows := range st.Roster {
		if len(rows) == 0 {
			continue
		}
		roster[key] = append([]ShiftAssignment(nil), rows...)
	}
	closed := make(map[string]map[int]struct{}, len(st.ClosedDays))
	for key, days := range st.ClosedDays {
		if len(days) == 0 {
			continue
		}
		set := make(map[int]struct{}, len(days))
		for _, d := range days {
			set[d] = struct{}{}
		}
		closed[key] = set
	}

	s.employees = employees
	s.roster = roster
	s.closed = closed
	if st.SessionID != "" {
		s.id = st.SessionID
	}
	if !st.CreatedAt.IsZero() {
		s.createdAt = st.CreatedAt
	}
	return nil
}

func sanitizeWeekdays(days []Weekday) []Weekday {
	valid := make([]Weekday, 0, len(days))
	for _, d := range days {
		if d >= Monday && d <= Sunday {
			valid = append(valid, d)
		}
	}
	return dedupeWeekdays(valid)
}

func validateAssignmentFields(a ShiftAssignment) error {
	if _, ok := clockToMinutes(a.ClockIn); !ok {
		return fmt.Errorf("%w: invalid clock-in %q (want HH:MM)", ErrValidation, a.ClockIn)
	}
	if _, ok := clockToMinutes(a.ClockOut); !ok {
		return fmt.Errorf("%w: invalid clock-out %q (want HH:MM)", ErrValidation, a.ClockOut)
	}
	if a.BreakMinutes < 0 {
		return fmt.Errorf("%w: break minutes must not be negative", ErrValidation)
	}
	if a.HourlyWage < 0 {
		return fmt.Errorf("%w: hourly wage must not be negative", ErrValidation)
	}
	return nil
}

func validateDateKey(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("%w: invalid date key %q (want YYYY-MM-DD)", ErrValidation, date)
	}
	return nil
}
