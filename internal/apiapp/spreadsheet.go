package apiapp

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/phillip-england/shiftsuite/internal/roster"
	"github.com/xuri/excelize/v2"
)

const workbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *server) importEmployees(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("employee_file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "employee spreadsheet file is required")
		return
	}
	defer file.Close()

	rows, err := readRowsFromSpreadsheet(file, header.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	added, skipped := s.session.ImportEmployees(rows)
	views := make([]employeeView, 0, len(added))
	for _, e := range added {
		views = append(views, employeeViewOf(e))
	}
	if skipped == nil {
		skipped = []roster.SkippedRow{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "import complete",
		"added":     len(views),
		"employees": views,
		"skipped":   skipped,
	})
}

func (s *server) exportEmployeesWorkbook(w http.ResponseWriter, r *http.Request) {
	workbook, err := workbookFromTable("employees", s.session.ExportEmployees())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "unable to build workbook")
		return
	}
	serveWorkbook(w, workbook, "employees_current.xlsx")
}

func (s *server) templateWorkbook(w http.ResponseWriter, r *http.Request) {
	workbook, err := workbookFromTable("employees", roster.TemplateTable())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "unable to build workbook")
		return
	}
	serveWorkbook(w, workbook, "employees_template.xlsx")
}

func (s *server) exportMonthRoster(w http.ResponseWriter, r *http.Request, year, month int) {
	workbook, err := buildMonthRosterWorkbook(s.session, year, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "unable to build workbook")
		return
	}
	serveWorkbook(w, workbook, fmt.Sprintf("roster_%s.xlsx", roster.MonthKey(year, month)))
}

func readRowsFromSpreadsheet(reader io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xls", ".xsl":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, err
		}
		if workbook.NumSheets() == 0 {
			return nil, fmt.Errorf("no worksheet found")
		}
		if workbook.NumSheets() > 1 {
			return nil, fmt.Errorf("multiple worksheets found; please upload a file with a single sheet")
		}
		rows := workbook.ReadAllCells(100000)
		if len(rows) == 0 {
			return nil, fmt.Errorf("worksheet is empty")
		}
		return rows, nil
	default:
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer func() { _ = file.Close() }()

		sheetName := file.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("no worksheet found")
		}

		rows, err := file.GetRows(sheetName)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("worksheet is empty")
		}
		return rows, nil
	}
}

// workbookFromTable renders a header-plus-rows table as a single-sheet
// workbook with a shaded header row and uniform column widths.
func workbookFromTable(sheet string, table [][]string) (*excelize.File, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	if sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(index)

	for rowIdx, row := range table {
		for colIdx, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	if len(table) == 0 || len(table[0]) == 0 {
		return f, nil
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(table[0]), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		return nil, err
	}
	for colIdx := range table[0] {
		name, err := excelize.ColumnNumberToName(colIdx + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, name, name, 18); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// buildMonthRosterWorkbook lays the month out one row per day: day
// number, weekday token, then one column per employee in directory
// order holding "HH:MM~HH:MM" for assigned shifts. Closed days collapse
// the employee columns into a single red 휴무 cell.
func buildMonthRosterWorkbook(session *roster.Session, year, month int) (*excelize.File, error) {
	ym := roster.MonthKey(year, month)
	employees := session.Employees()

	f := excelize.NewFile()
	index, err := f.NewSheet(ym)
	if err != nil {
		return nil, err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	gridBorder := []excelize.Border{
		{Type: "left", Color: "BFBFBF", Style: 1},
		{Type: "right", Color: "BFBFBF", Style: 1},
		{Type: "top", Color: "BFBFBF", Style: 1},
		{Type: "bottom", Color: "BFBFBF", Style: 1},
	}
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    gridBorder,
	})
	if err != nil {
		return nil, err
	}
	cellStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    gridBorder,
	})
	if err != nil {
		return nil, err
	}
	closedStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FF0000"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    gridBorder,
	})
	if err != nil {
		return nil, err
	}

	columns := 2 + len(employees)
	if columns < 3 {
		columns = 3
	}
	lastColumn, err := excelize.ColumnNumberToName(columns)
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf("%d년 %d월 근무표", year, month)
	if err := f.SetCellValue(ym, "A1", title); err != nil {
		return nil, err
	}
	if err := f.MergeCell(ym, "A1", lastColumn+"1"); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(ym, "A1", lastColumn+"1", titleStyle); err != nil {
		return nil, err
	}

	header := []string{"날짜", "요일"}
	for _, e := range employees {
		header = append(header, e.Name)
	}
	for colIdx, value := range header {
		cell, err := excelize.CoordinatesToCellName(colIdx+1, 2)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(ym, cell, value); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(ym, "A2", lastColumn+"2", headerStyle); err != nil {
		return nil, err
	}

	closed := make(map[int]struct{})
	for _, d := range session.ClosedDays(ym) {
		closed[d] = struct{}{}
	}

	last := roster.DaysInMonth(year, month)
	for day := 1; day <= last; day++ {
		rowNo := day + 2
		date := roster.DateKey(year, month, day)
		weekday := roster.WeekdayOfDate(dateOf(year, month, day))

		dayCell, err := excelize.CoordinatesToCellName(1, rowNo)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(ym, dayCell, day); err != nil {
			return nil, err
		}
		weekdayCell, err := excelize.CoordinatesToCellName(2, rowNo)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(ym, weekdayCell, weekday.String()); err != nil {
			return nil, err
		}

		rowEnd := fmt.Sprintf("%s%d", lastColumn, rowNo)
		if err := f.SetCellStyle(ym, dayCell, rowEnd, cellStyle); err != nil {
			return nil, err
		}

		if _, isClosed := closed[day]; isClosed {
			firstEmployeeCell, err := excelize.CoordinatesToCellName(3, rowNo)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(ym, firstEmployeeCell, "휴무"); err != nil {
				return nil, err
			}
			if firstEmployeeCell != rowEnd {
				if err := f.MergeCell(ym, firstEmployeeCell, rowEnd); err != nil {
					return nil, err
				}
			}
			if err := f.SetCellStyle(ym, firstEmployeeCell, rowEnd, closedStyle); err != nil {
				return nil, err
			}
			continue
		}

		shiftsByName := make(map[string]roster.ShiftAssignment)
		for _, a := range session.Assignments(date) {
			shiftsByName[a.EmployeeName] = a
		}
		for colIdx, e := range employees {
			a, ok := shiftsByName[e.Name]
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(colIdx+3, rowNo)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(ym, cell, a.ClockIn+"~"+a.ClockOut); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetColWidth(ym, "A", "B", 8); err != nil {
		return nil, err
	}
	if len(employees) > 0 {
		firstEmployeeColumn, err := excelize.ColumnNumberToName(3)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(ym, firstEmployeeColumn, lastColumn, 14); err != nil {
			return nil, err
		}
	}
	if err := f.SetHeaderFooter(ym, &excelize.HeaderFooterOptions{
		OddHeader: "&C" + title,
		OddFooter: "&C&P / &N",
	}); err != nil {
		return nil, err
	}
	return f, nil
}

func dateOf(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func serveWorkbook(w http.ResponseWriter, f *excelize.File, filename string) {
	w.Header().Set("Content-Type", workbookContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := f.Write(w); err != nil {
		log.Printf("write workbook %s: %v", filename, err)
	}
}
