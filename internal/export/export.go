package export

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"timegrid/internal/catalog"
	"timegrid/internal/engine"
	"timegrid/internal/grid"
)

var (
	ErrNoEntries     = errors.New("timetable has no scheduled sessions")
	ErrGenerateSheet = errors.New("cannot generate workbook")
)

// Exporter renders a solved timetable as an Excel workbook: one sheet per
// working day, one row per slot, one column per room.
type Exporter struct {
	logger *zap.Logger
}

func NewExporter(logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{logger: logger}
}

// Workbook writes the timetable into an in-memory xlsx buffer.
func (e *Exporter) Workbook(timetable *engine.Timetable, cat *catalog.Catalog, g *grid.Grid) (*bytes.Buffer, error) {
	entries := timetable.Entries()
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}

	// Cell index: (slot key, room) -> session text.
	cells := make(map[string]string, len(entries))
	for _, entry := range entries {
		key := entry.Slot.Key() + "|" + entry.Room.ID
		cells[key] = fmt.Sprintf("%v %v (%v)", entry.Section.CourseID, entry.Section.Section, entry.Section.Teacher)
	}

	rooms := cat.Rooms()

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, ErrGenerateSheet
	}
	lunchStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9D9D9"}, Pattern: 1},
	})
	if err != nil {
		return nil, ErrGenerateSheet
	}

	for _, day := range g.Days() {
		sheet := sheetName(day)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, ErrGenerateSheet
		}

		f.SetColWidth(sheet, "A", "A", 10)
		f.SetColWidth(sheet, "B", "B", 16)
		lastCol, _ := excelize.ColumnNumberToName(2 + len(rooms))
		f.SetColWidth(sheet, "C", lastCol, 24)

		f.SetCellValue(sheet, "A1", "Session")
		f.SetCellValue(sheet, "B1", "Time")
		for i, room := range rooms {
			col, _ := excelize.ColumnNumberToName(3 + i)
			f.SetCellValue(sheet, col+"1", room.Name)
		}
		f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle)

		daySlots := lo.Filter(g.AllSlots(), func(slot grid.Slot, _ int) bool {
			return slot.Day == day
		})

		row := 2
		for _, slot := range daySlots {
			f.SetCellValue(sheet, cell("A", row), fmt.Sprintf("%v %v", slot.Kind, slot.Index+1))
			f.SetCellValue(sheet, cell("B", row), slot.Time)
			for i, room := range rooms {
				col, _ := excelize.ColumnNumberToName(3 + i)
				if text, ok := cells[slot.Key()+"|"+room.ID]; ok {
					f.SetCellValue(sheet, cell(col, row), text)
				} else if slot.Lunch {
					f.SetCellValue(sheet, cell(col, row), "lunch")
					f.SetCellStyle(sheet, cell(col, row), cell(col, row), lunchStyle)
				}
			}
			row++
		}
	}

	f.DeleteSheet("Sheet1")
	if index, err := f.GetSheetIndex(sheetName(g.Days()[0])); err == nil {
		f.SetActiveSheet(index)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		e.logger.Error("cannot write workbook", zap.Error(err))
		return nil, ErrGenerateSheet
	}

	e.logger.Info("workbook generated",
		zap.Int("sessions", len(entries)),
		zap.Int("sheets", len(g.Days())))
	return buf, nil
}

// WriteFile renders the timetable and saves it at path.
func (e *Exporter) WriteFile(path string, timetable *engine.Timetable, cat *catalog.Catalog, g *grid.Grid) error {
	buf, err := e.Workbook(timetable, cat, g)
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func sheetName(day catalog.Weekday) string {
	return day.String()
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
