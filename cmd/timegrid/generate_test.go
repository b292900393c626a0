package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"timegrid/internal/catalog"
	"timegrid/internal/engine"
	"timegrid/internal/grid"
)

const coursesCSV = `course_id,department,semester,section,teacher_id,lab_hours,theory_hours,year
CS101,CSE,1,A,T1,0,3,1
`

const roomsCSV = `room_id,room_name,capacity
R001,Theory Room 1,60
`

const preferencesCSV = `teacher_id,day,weight
T1,monday,5
`

func TestSolveScorerWiring(t *testing.T) {
	t.Run("no preference data keeps first-feasible search", func(t *testing.T) {
		// Arrange
		cat, err := catalog.Load(catalog.Sources{
			Courses: strings.NewReader(coursesCSV),
			Rooms:   strings.NewReader(roomsCSV),
		})
		assert.Nil(t, err)

		// Act & Assert
		assert.Nil(t, solveScorer(cat))
	})

	t.Run("preference data engages the scorer", func(t *testing.T) {
		// Arrange
		cat, err := catalog.Load(catalog.Sources{
			Courses:     strings.NewReader(coursesCSV),
			Rooms:       strings.NewReader(roomsCSV),
			Preferences: strings.NewReader(preferencesCSV),
		})
		assert.Nil(t, err)

		// Act
		scorer := solveScorer(cat)

		// Assert
		assert.NotNil(t, scorer)
		assignment := []engine.Variable{{
			Section: catalog.Section{CourseID: "CS101", Teacher: "T1"},
			Slot:    grid.Slot{Day: catalog.Monday},
		}}
		assert.Equal(t, 5.0, scorer(assignment))
	})
}

func TestEntriesOf(t *testing.T) {
	assignment := []engine.Variable{{
		ID:      3,
		Section: catalog.Section{CourseID: "CS101", Section: "A", Teacher: "T1"},
		Room:    catalog.Room{ID: "R001", Name: "Theory Room 1"},
		Slot:    grid.Slot{Day: catalog.Monday, Index: 2, Kind: catalog.Theory},
	}}

	entries := entriesOf(assignment)

	assert.Len(t, entries, 1)
	assert.Equal(t, "CS101", entries[0].Section.CourseID)
	assert.Equal(t, "R001", entries[0].Room.ID)
	assert.Equal(t, catalog.Monday, entries[0].Slot.Day)
}
