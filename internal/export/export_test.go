package export

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"

	"timegrid/internal/catalog"
	"timegrid/internal/engine"
	"timegrid/internal/grid"
)

func solvedTimetable(t *testing.T) (*engine.Timetable, *catalog.Catalog, *grid.Grid) {
	t.Helper()

	cat, err := catalog.FromInput(catalog.Input{
		Courses: []catalog.CourseRow{
			{CourseID: "CS101", Department: "CSE", Semester: 1, Section: "A", Teacher: "T1", TheoryHours: 3, Year: 1},
			{CourseID: "CS102", Department: "CSE", Semester: 1, Section: "A", Teacher: "T2", LabHours: 2, Year: 1},
		},
		Rooms: []catalog.RoomRow{
			{RoomID: "R001", Name: "Theory Room 1", Capacity: 60},
			{RoomID: "CL001", Name: "Computer Lab 1", Capacity: 30},
		},
	})
	assert.Nil(t, err)

	g := grid.Build(cat, 0, 0, nil)
	m, err := engine.BuildModel(cat, g, nil)
	assert.Nil(t, err)

	result, err := engine.NewSolver(engine.NewLibrary(nil), nil).Solve(context.Background(), m, engine.Options{})
	assert.Nil(t, err)
	assert.Equal(t, engine.Solved, result.Status)

	timetable, err := engine.Extract(m, result)
	assert.Nil(t, err)
	return timetable, cat, g
}

func TestWorkbook(t *testing.T) {
	// Arrange
	timetable, cat, g := solvedTimetable(t)

	// Act
	buf, err := NewExporter(nil).Workbook(timetable, cat, g)

	// Assert
	assert.Nil(t, err)

	f, err := excelize.OpenReader(buf)
	assert.Nil(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Len(t, sheets, 5)
	assert.Contains(t, sheets, "Monday")
	assert.Contains(t, sheets, "Friday")
	assert.NotContains(t, sheets, "Sheet1")

	// Header row carries the room names.
	header, err := f.GetCellValue("Monday", "C1")
	assert.Nil(t, err)
	assert.Contains(t, []string{"Theory Room 1", "Computer Lab 1"}, header)

	// Every scheduled session appears exactly once across all sheets.
	found := 0
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		assert.Nil(t, err)
		for _, row := range rows {
			for _, value := range row {
				if value == "CS101 A (T1)" || value == "CS102 A (T2)" {
					found++
				}
			}
		}
	}
	assert.Equal(t, 5, found)
}

func TestWorkbookEmptyTimetable(t *testing.T) {
	buf, err := NewExporter(nil).Workbook(&engine.Timetable{}, nil, nil)

	assert.Nil(t, buf)
	assert.ErrorIs(t, err, ErrNoEntries)
}

func TestWriteFile(t *testing.T) {
	timetable, cat, g := solvedTimetable(t)
	path := t.TempDir() + "/timetable.xlsx"

	err := NewExporter(nil).WriteFile(path, timetable, cat, g)

	assert.Nil(t, err)
	f, err := excelize.OpenFile(path)
	assert.Nil(t, err)
	defer f.Close()
	assert.Len(t, f.GetSheetList(), 5)
}
