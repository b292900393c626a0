package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"timegrid/internal/catalog"
	"timegrid/internal/grid"
)

func TestCapacityFeasible(t *testing.T) {
	t.Run("distinct pairs exist for every hour", func(t *testing.T) {
		cat := testCatalog(t, catalog.Input{
			Courses: []catalog.CourseRow{
				{CourseID: "CS101", Department: "CSE", Semester: 1, Section: "A", Teacher: "T1", TheoryHours: 3, Year: 1},
			},
			Rooms: defaultRooms(),
		})
		m, err := BuildModel(cat, grid.Build(cat, 0, 0, nil), nil)
		assert.Nil(t, err)

		assert.True(t, capacityFeasible(m))
	})

	t.Run("more hours than pairs is a deficit", func(t *testing.T) {
		cat := testCatalog(t, catalog.Input{
			Courses: []catalog.CourseRow{
				{CourseID: "CS101", Department: "CSE", Semester: 1, Section: "A", Teacher: "T1", TheoryHours: 2, Year: 1},
			},
			Rooms: []catalog.RoomRow{{RoomID: "R001", Name: "Theory Room 1", Capacity: 60}},
		})
		m, err := BuildModel(cat, grid.Build(cat, 1, 1, []catalog.Weekday{catalog.Monday}), nil)
		assert.Nil(t, err)

		assert.False(t, capacityFeasible(m))
	})

	t.Run("forbidden variables shrink the candidate pairs", func(t *testing.T) {
		cat := testCatalog(t, catalog.Input{
			Courses: []catalog.CourseRow{
				{CourseID: "CS101", Department: "CSE", Semester: 1, Section: "A", Teacher: "T1", TheoryHours: 1, Year: 1},
			},
			Rooms: []catalog.RoomRow{{RoomID: "R001", Name: "Theory Room 1", Capacity: 60}},
		})
		m, err := BuildModel(cat, grid.Build(cat, 1, 1, []catalog.Weekday{catalog.Monday}), nil)
		assert.Nil(t, err)
		assert.True(t, capacityFeasible(m))

		for id := range m.Variables() {
			assert.Nil(t, m.Forbid(id))
		}
		assert.False(t, capacityFeasible(m))
	})
}
