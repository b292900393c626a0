package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"timegrid/internal/catalog"
	"timegrid/internal/grid"
)

func solvedFixture(t *testing.T) (*Model, Result) {
	t.Helper()
	result, m := solve(t, catalog.Input{
		Courses: []catalog.CourseRow{
			{CourseID: "CS101", Department: "CSE", Semester: 1, Section: "A", Teacher: "T1", TheoryHours: 3, Year: 1},
			{CourseID: "CS102", Department: "CSE", Semester: 1, Section: "A", Teacher: "T2", LabHours: 2, Year: 1},
		},
		Rooms: defaultRooms(),
	}, nil, Options{})
	assert.Equal(t, Solved, result.Status)
	return m, result
}

func TestExtract(t *testing.T) {
	// Arrange
	m, result := solvedFixture(t)

	// Act
	timetable, err := Extract(m, result)

	// Assert
	assert.Nil(t, err)
	assert.Len(t, timetable.Entries(), 5)
	assert.Len(t, timetable.BySection("CS101/CSE/1/A"), 3)
	assert.Len(t, timetable.BySection("CS102/CSE/1/A"), 2)
	assert.Len(t, timetable.ByTeacher("T1"), 3)
	assert.Len(t, timetable.ByTeacher("T2"), 2)

	total := 0
	for _, roomID := range []string{"R001", "R002", "CL001"} {
		total += len(timetable.ByRoom(roomID))
	}
	assert.Equal(t, 5, total)
}

func TestExtractRejectsUnsolvedResult(t *testing.T) {
	m, result := solvedFixture(t)
	result.Status = Infeasible

	timetable, err := Extract(m, result)

	assert.Nil(t, timetable)
	var extractionErr *ExtractionError
	assert.ErrorAs(t, err, &extractionErr)
}

func TestExtractRejectsTamperedAssignment(t *testing.T) {
	t.Run("unknown variable id", func(t *testing.T) {
		m, result := solvedFixture(t)
		result.Assignment[0].ID = len(m.Variables()) + 7

		_, err := Extract(m, result)

		var extractionErr *ExtractionError
		assert.ErrorAs(t, err, &extractionErr)
		assert.Contains(t, extractionErr.Reason, "unknown variable")
	})

	t.Run("duplicated variable", func(t *testing.T) {
		m, result := solvedFixture(t)
		result.Assignment[1] = result.Assignment[0]

		_, err := Extract(m, result)

		var extractionErr *ExtractionError
		assert.ErrorAs(t, err, &extractionErr)
		assert.Contains(t, extractionErr.Reason, "assigned twice")
	})

	t.Run("dropped session breaks hour coverage", func(t *testing.T) {
		m, result := solvedFixture(t)
		result.Assignment = result.Assignment[:len(result.Assignment)-1]

		_, err := Extract(m, result)

		var extractionErr *ExtractionError
		assert.ErrorAs(t, err, &extractionErr)
	})

	t.Run("forbidden variable set true", func(t *testing.T) {
		cat := testCatalog(t, catalog.Input{
			Courses: []catalog.CourseRow{
				{CourseID: "CS101", Department: "CSE", Semester: 1, Section: "A", Teacher: "T1", TheoryHours: 1, Year: 1},
			},
			Rooms: defaultRooms(),
		})
		m, err := BuildModel(cat, grid.Build(cat, 0, 0, nil), nil)
		assert.Nil(t, err)

		library := NewLibrary(nil)
		assert.Nil(t, library.Register(LunchExclusionUnit{}))
		result, err := NewSolver(library, nil).Solve(context.Background(), m, Options{})
		assert.Nil(t, err)
		assert.Equal(t, Solved, result.Status)

		// Swap the scheduled session for a lunch slot the unit forbade.
		forbidden := m.Variables()[m.forbidden[0]]
		result.Assignment = []Variable{forbidden}

		_, extractErr := Extract(m, result)

		var extractionErr *ExtractionError
		assert.ErrorAs(t, extractErr, &extractionErr)
		assert.Contains(t, extractionErr.Reason, "forbidden")
	})
}
