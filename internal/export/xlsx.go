package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"studentportal/internal/student"
)

// XLSXName is the download name of the course spreadsheet.
const XLSXName = "Courses.xlsx"

const courseSheet = "Courses"

var courseHeader = []string{
	"Course Code", "Course Name", "Instructor", "Credit Hours", "Timing",
	"Duration", "Days", "Room", "Course Type", "Syllabus",
}

// CoursesXLSX writes courses as a one-sheet workbook in collection order.
func CoursesXLSX(w io.Writer, courses []student.Course) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", courseSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header := make([]any, len(courseHeader))
	for i, h := range courseHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(courseSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, c := range courses {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			c.CourseCode, c.CourseName, c.Instructor, c.CreditHours, c.Timing,
			c.Duration, strings.Join(c.Days, ", "), c.Room, c.CourseType, c.Syllabus,
		}
		if err := f.SetSheetRow(courseSheet, cell, &row); err != nil {
			return fmt.Errorf("write course %s: %w", c.ID, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DCE6F1"}},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(courseHeader))
	if err := f.SetCellStyle(courseSheet, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}
	if err := f.SetColWidth(courseSheet, "A", lastCol, 18); err != nil {
		return fmt.Errorf("set widths: %w", err)
	}
	if err := f.SetPanes(courseSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
