package roster

import (
	"strings"
	"unicode"
)

// The canonical export column order. Import accepts many more spellings
// via the alias table below; export always writes exactly these headers.
var exportColumns = []string{"name", "phone", "role", "employment_type", "available_days"}

// Ordered (canonical field, alias list) pairs. Aliases are compared in
// their cleaned form; the first alias present in the source header wins.
var headerAliases = []struct {
	field   string
	aliases []string
}{
	{"name", []string{"name", "이름", "성명"}},
	{"phone", []string{"phone", "연락처", "전화", "전화번호", "휴대폰", "핸드폰", "mobile"}},
	{"role", []string{"role", "포지션", "메모", "직무", "직책", "비고"}},
	{"employment_type", []string{"employmenttype", "고용형태", "고용", "형태", "구분", "신분"}},
	{"available_days", []string{"availabledays", "가용요일", "근무요일", "요일", "가능요일"}},
}

const headerNoiseChars = "_-()/[]{}·."

// cleanColumnName lower-cases a header and strips whitespace and the
// punctuation/bracket characters spreadsheets tend to decorate headers
// with, so "고용 형태", "[고용형태]" and "employment_type" all collapse
// to comparable keys.
func cleanColumnName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsSpace(r) || strings.ContainsRune(headerNoiseChars, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// resolveColumns maps each canonical field to its source column index,
// or -1 when no alias matches. Duplicate cleaned headers resolve to the
// rightmost source column.
func resolveColumns(header []string) map[string]int {
	byCleaned := make(map[string]int, len(header))
	for i, h := range header {
		byCleaned[cleanColumnName(h)] = i
	}
	cols := make(map[string]int, len(headerAliases))
	for _, entry := range headerAliases {
		cols[entry.field] = -1
		for _, alias := range entry.aliases {
			if idx, ok := byCleaned[cleanColumnName(alias)]; ok {
				cols[entry.field] = idx
				break
			}
		}
	}
	return cols
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ImportEmployees consumes a raw table (row 0 is the header row) and
// appends the valid rows to the directory. Rows are never fatal: a row
// with no name is skipped with reason "missing name", a name already in
// the directory or earlier in the same table with "duplicate name".
// Unrecognized employment types fall back to the first category. The
// reported row numbers are 1-based spreadsheet rows (header = 1).
func (s *Session) ImportEmployees(table [][]string) ([]Employee, []SkippedRow) {
	if len(table) == 0 {
		return nil, nil
	}
	cols := resolveColumns(table[0])

	var added []Employee
	var skipped []SkippedRow
	for i := 1; i < len(table); i++ {
		rowNo := i + 1
		row := table[i]

		name := cellAt(row, cols["name"])
		if name == "" {
			skipped = append(skipped, SkippedRow{Row: rowNo, Reason: "missing name"})
			continue
		}
		if s.findEmployee(name) >= 0 {
			skipped = append(skipped, SkippedRow{Row: rowNo, Reason: "duplicate name"})
			continue
		}

		emp := Employee{
			Name:           name,
			Phone:          cellAt(row, cols["phone"]),
			Role:           cellAt(row, cols["role"]),
			EmploymentType: NormalizeEmploymentType(cellAt(row, cols["employment_type"])),
			AvailableDays:  ParseAvailableDays(cellAt(row, cols["available_days"])),
		}
		s.employees = append(s.employees, emp)
		added = append(added, emp)
	}
	return added, skipped
}

// ExportEmployees renders the directory as a table in the fixed column
// order, days comma-joined, header row first.
func (s *Session) ExportEmployees() [][]string {
	table := make([][]string, 0, len(s.employees)+1)
	table = append(table, append([]string(nil), exportColumns...))
	for _, e := range s.employees {
		table = append(table, []string{
			e.Name,
			e.Phone,
			e.Role,
			string(e.EmploymentType),
			joinWeekdays(e.AvailableDays),
		})
	}
	return table
}

// TemplateTable is the upload template: the export header plus one
// sample row showing the expected cell formats.
func TemplateTable() [][]string {
	return [][]string{
		append([]string(nil), exportColumns...),
		{"홍길동", "01012345678", "홀서빙", string(EmploymentInsuredStandard), "월,수,금"},
	}
}
