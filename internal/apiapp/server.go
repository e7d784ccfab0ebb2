package apiapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/phillip-england/shiftsuite/internal/envutil"
	"github.com/phillip-england/shiftsuite/internal/middleware"
	"github.com/phillip-england/shiftsuite/internal/roster"
)

type Config struct {
	Addr string
}

type employeeRequest struct {
	Name           string           `json:"name"`
	Phone          string           `json:"phone"`
	Role           string           `json:"role"`
	EmploymentType string           `json:"employmentType"`
	AvailableDays  []roster.Weekday `json:"availableDays"`
}

type assignmentRequest struct {
	EmployeeName   string   `json:"employeeName"`
	EmploymentType string   `json:"employmentType"`
	ClockIn        string   `json:"clockIn"`
	ClockOut       string   `json:"clockOut"`
	BreakMinutes   *int     `json:"breakMinutes"`
	HourlyWage     *float64 `json:"hourlyWage"`
}

type setClosedDaysRequest struct {
	Days []int `json:"days"`
}

type parseDaysRequest struct {
	Text string `json:"text"`
}

type employeeView struct {
	Name           string   `json:"name"`
	Phone          string   `json:"phone"`
	Role           string   `json:"role"`
	EmploymentType string   `json:"employmentType"`
	AvailableDays  []string `json:"availableDays"`
	HasPhoto       bool     `json:"hasPhoto"`
}

// server owns the single live session. Core operations assume one
// mutator, so every session-touching handler serializes on mu.
type server struct {
	mu      sync.Mutex
	session *roster.Session
}

func newServer() *server {
	return &server{session: roster.NewSession()}
}

func DefaultConfigFromEnv() Config {
	return Config{
		Addr: envutil.Get("API_ADDR", ":8080"),
	}
}

func Run(ctx context.Context, cfg Config) error {
	s := newServer()

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(s),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("api listening on http://localhost%s", cfg.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func newHandler(s *server) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/health", http.HandlerFunc(s.health))
	mux.Handle("/api/session", http.HandlerFunc(s.sessionInfo))
	mux.Handle("/api/session/reset", http.HandlerFunc(s.sessionReset))
	mux.Handle("/api/session/snapshot", http.HandlerFunc(s.sessionSnapshotHandler))
	mux.Handle("/api/employees", http.HandlerFunc(s.employeesHandler))
	mux.Handle("/api/employees/", http.HandlerFunc(s.employeeByNameHandler))
	mux.Handle("/api/months/", http.HandlerFunc(s.monthHandler))
	mux.Handle("/api/days/", http.HandlerFunc(s.dayHandler))
	mux.Handle("/api/available-days/parse", http.HandlerFunc(s.parseAvailableDaysHandler))

	csp := strings.Join([]string{
		"default-src 'self'",
		"img-src 'self' data:",
		"connect-src 'self'",
		"frame-ancestors 'none'",
	}, "; ")

	return middleware.Chain(
		mux,
		middleware.RequestLog,
		middleware.SecurityHeaders(middleware.SecurityHeadersConfig{ContentSecurityPolicy: csp}),
	)
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) sessionInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"id":           s.session.ID(),
		"createdAt":    s.session.CreatedAt().Format(time.RFC3339),
		"employees":    len(s.session.Employees()),
		"rosterDates":  len(s.session.RosterDates()),
		"closedMonths": len(s.session.ClosedMonths()),
	})
}

func (s *server) sessionReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = roster.NewSession()
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "session reset",
		"id":      s.session.ID(),
	})
}

func (s *server) employeesHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch r.Method {
	case http.MethodGet:
		s.listEmployees(w, r)
	case http.MethodPost:
		s.createEmployee(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *server) employeeByNameHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trimmed := strings.TrimPrefix(r.URL.Path, "/api/employees/")
	trimmed = strings.Trim(trimmed, "/")
	if trimmed == "" {
		http.NotFound(w, r)
		return
	}
	parts := strings.Split(trimmed, "/")

	if len(parts) == 1 {
		switch parts[0] {
		case "import":
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			s.importEmployees(w, r)
			return
		case "export.xlsx":
			if r.Method != http.MethodGet {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			s.exportEmployeesWorkbook(w, r)
			return
		case "template.xlsx":
			if r.Method != http.MethodGet {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			s.templateWorkbook(w, r)
			return
		}
	}

	name, err := url.PathUnescape(parts[0])
	if err != nil || strings.TrimSpace(name) == "" {
		http.NotFound(w, r)
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.getEmployee(w, r, name)
		case http.MethodPut:
			s.updateEmployee(w, r, name)
		case http.MethodDelete:
			s.deleteEmployee(w, r, name)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if len(parts) == 2 && parts[1] == "photo" {
		switch r.Method {
		case http.MethodGet:
			s.getEmployeePhoto(w, r, name)
		case http.MethodPut:
			s.uploadEmployeePhoto(w, r, name)
		case http.MethodDelete:
			s.deleteEmployeePhoto(w, r, name)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	http.NotFound(w, r)
}

func (s *server) monthHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trimmed := strings.TrimPrefix(r.URL.Path, "/api/months/")
	trimmed = strings.Trim(trimmed, "/")
	if trimmed == "" {
		http.NotFound(w, r)
		return
	}
	parts := strings.Split(trimmed, "/")
	ym, err := url.PathUnescape(parts[0])
	if err != nil || strings.TrimSpace(ym) == "" {
		http.NotFound(w, r)
		return
	}
	year, month, err := parseYearMonth(ym)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}

	switch parts[1] {
	case "calendar":
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.getMonthCalendar(w, r, year, month)
	case "closed-days":
		switch r.Method {
		case http.MethodGet:
			s.getClosedDays(w, r, year, month)
		case http.MethodPut:
			s.putClosedDays(w, r, year, month)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	case "auto-assign":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.runAutoAssign(w, r, year, month)
	case "threshold":
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.getThreshold(w, r, year, month)
	case "roster.xlsx":
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.exportMonthRoster(w, r, year, month)
	default:
		http.NotFound(w, r)
	}
}

func (s *server) dayHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trimmed := strings.TrimPrefix(r.URL.Path, "/api/days/")
	trimmed = strings.Trim(trimmed, "/")
	if trimmed == "" {
		http.NotFound(w, r)
		return
	}
	parts := strings.Split(trimmed, "/")
	date, err := url.PathUnescape(parts[0])
	if err != nil || strings.TrimSpace(date) == "" {
		http.NotFound(w, r)
		return
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid date key %q (want YYYY-MM-DD)", date))
		return
	}
	if len(parts) < 2 || parts[1] != "assignments" {
		http.NotFound(w, r)
		return
	}

	if len(parts) == 2 {
		switch r.Method {
		case http.MethodGet:
			s.getDayAssignments(w, r, date)
		case http.MethodPost:
			s.createDayAssignment(w, r, date)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if len(parts) == 3 {
		index, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil || index < 0 {
			writeError(w, http.StatusBadRequest, "invalid assignment index")
			return
		}
		switch r.Method {
		case http.MethodPut:
			s.updateDayAssignment(w, r, date, index)
		case http.MethodDelete:
			s.deleteDayAssignment(w, r, date, index)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	http.NotFound(w, r)
}

func (s *server) parseAvailableDaysHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req parseDaysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	days := roster.ParseAvailableDays(req.Text)
	tokens := make([]string, 0, len(days))
	for _, d := range days {
		tokens = append(tokens, d.String())
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": tokens})
}

func (s *server) listEmployees(w http.ResponseWriter, r *http.Request) {
	employees := s.session.Employees()
	views := make([]employeeView, 0, len(employees))
	for _, e := range employees {
		views = append(views, employeeViewOf(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":     len(views),
		"employees": views,
	})
}

func (s *server) createEmployee(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.session.AddEmployee(employeeFromRequest(req)); err != nil {
		writeCoreError(w, err)
		return
	}
	e, _ := s.session.Employee(strings.TrimSpace(req.Name))
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "employee added",
		"employee": employeeViewOf(e),
	})
}

func (s *server) getEmployee(w http.ResponseWriter, r *http.Request, name string) {
	e, ok := s.session.Employee(name)
	if !ok {
		writeError(w, http.StatusNotFound, "employee not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"employee": employeeViewOf(e)})
}

func (s *server) updateEmployee(w http.ResponseWriter, r *http.Request, name string) {
	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.session.UpdateEmployee(name, employeeFromRequest(req)); err != nil {
		writeCoreError(w, err)
		return
	}
	e, _ := s.session.Employee(name)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "employee updated",
		"employee": employeeViewOf(e),
	})
}

func (s *server) deleteEmployee(w http.ResponseWriter, r *http.Request, name string) {
	if err := s.session.RemoveEmployee(name); err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "employee removed"})
}

func (s *server) getMonthCalendar(w http.ResponseWriter, r *http.Request, year, month int) {
	writeJSON(w, http.StatusOK, map[string]any{
		"year":  year,
		"month": month,
		"weeks": roster.MonthWeeks(year, month),
	})
}

func (s *server) getClosedDays(w http.ResponseWriter, r *http.Request, year, month int) {
	days := s.session.ClosedDays(roster.MonthKey(year, month))
	if days == nil {
		days = []int{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days})
}

func (s *server) putClosedDays(w http.ResponseWriter, r *http.Request, year, month int) {
	var req setClosedDaysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	last := roster.DaysInMonth(year, month)
	for _, d := range req.Days {
		if d < 1 || d > last {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("closed day %d out of range 1..%d", d, last))
			return
		}
	}
	ym := roster.MonthKey(year, month)
	s.session.SetClosedDays(ym, req.Days)
	days := s.session.ClosedDays(ym)
	if days == nil {
		days = []int{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "closed days updated",
		"days":    days,
	})
}

func (s *server) runAutoAssign(w http.ResponseWriter, r *http.Request, year, month int) {
	added := s.session.AutoAssign(year, month)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "auto-assignment complete",
		"added":   added,
	})
}

func (s *server) getThreshold(w http.ResponseWriter, r *http.Request, year, month int) {
	writeJSON(w, http.StatusOK, s.session.EvaluateThreshold(year, month))
}

func (s *server) getDayAssignments(w http.ResponseWriter, r *http.Request, date string) {
	writeJSON(w, http.StatusOK, s.session.DaySummary(date))
}

func (s *server) createDayAssignment(w http.ResponseWriter, r *http.Request, date string) {
	var req assignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	row := assignmentFromRequest(req)

	// The date was validated by the dispatcher; its weekday seeds the
	// availability of an implicitly created employee.
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid date key %q (want YYYY-MM-DD)", date))
		return
	}
	created, err := s.session.EnsureEmployee(row.EmployeeName, row.EmploymentType, roster.WeekdayOfDate(parsed))
	if err != nil {
		writeCoreError(w, err)
		return
	}
	if err := s.session.AddAssignment(date, row); err != nil {
		if created {
			_ = s.session.RemoveEmployee(row.EmployeeName)
		}
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":         "assignment added",
		"employeeCreated": created,
	})
}

func (s *server) updateDayAssignment(w http.ResponseWriter, r *http.Request, date string, index int) {
	var req assignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.session.UpdateAssignment(date, index, assignmentFromRequest(req)); err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "assignment updated"})
}

func (s *server) deleteDayAssignment(w http.ResponseWriter, r *http.Request, date string, index int) {
	if err := s.session.RemoveAssignment(date, index); err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "assignment removed"})
}

func employeeFromRequest(req employeeRequest) roster.Employee {
	return roster.Employee{
		Name:           req.Name,
		Phone:          req.Phone,
		Role:           req.Role,
		EmploymentType: roster.EmploymentType(req.EmploymentType),
		AvailableDays:  req.AvailableDays,
	}
}

func assignmentFromRequest(req assignmentRequest) roster.ShiftAssignment {
	a := roster.ShiftAssignment{
		EmployeeName:   strings.TrimSpace(req.EmployeeName),
		EmploymentType: roster.EmploymentType(strings.TrimSpace(req.EmploymentType)),
		ClockIn:        strings.TrimSpace(req.ClockIn),
		ClockOut:       strings.TrimSpace(req.ClockOut),
		BreakMinutes:   roster.DefaultBreakMinutes,
		HourlyWage:     roster.DefaultHourlyWage,
	}
	if a.ClockIn == "" {
		a.ClockIn = roster.DefaultClockIn
	}
	if a.ClockOut == "" {
		a.ClockOut = roster.DefaultClockOut
	}
	if req.BreakMinutes != nil {
		a.BreakMinutes = *req.BreakMinutes
	}
	if req.HourlyWage != nil {
		a.HourlyWage = *req.HourlyWage
	}
	return a
}

func employeeViewOf(e roster.Employee) employeeView {
	days := make([]string, 0, len(e.AvailableDays))
	for _, d := range e.AvailableDays {
		days = append(days, d.String())
	}
	return employeeView{
		Name:           e.Name,
		Phone:          e.Phone,
		Role:           e.Role,
		EmploymentType: string(e.EmploymentType),
		AvailableDays:  days,
		HasPhoto:       e.HasPhoto(),
	}
}

func parseYearMonth(ym string) (int, int, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(ym))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month key %q (want YYYY-MM)", ym)
	}
	year := t.Year()
	if year < 2000 || year > 2100 {
		return 0, 0, fmt.Errorf("year %d out of range 2000..2100", year)
	}
	return year, int(t.Month()), nil
}

func writeCoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, roster.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, roster.ErrDuplicate):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, roster.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
