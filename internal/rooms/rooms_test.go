package rooms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForSection(t *testing.T) {
	cases := []struct {
		grade   string
		section int
		want    string
	}{
		{"1", 1, "Room 101 - Building A"},
		{"1", 8, "Room 108 - Building A"},
		{"2", 3, "Room 203 - Building B"},
		{"3", 5, "Room 305 - Building A"},
		{"4", 2, "Room 402 - Building B"},
		{"5", 7, "Room 507 - Building A"},
		{"6", 8, "Room 608 - Building B"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ForSection(tc.grade, tc.section))
	}
}

func TestForSectionFallback(t *testing.T) {
	// Sections past the mapped eight and unknown grades fall back to a
	// generic room name.
	assert.Equal(t, "Room 109", ForSection("1", 9))
	assert.Equal(t, "Room 712", ForSection("7", 12))
	assert.Equal(t, "Room K01", ForSection("K", 1))
}

func TestForGrade(t *testing.T) {
	byPlan := ForGrade("4")
	assert.Len(t, byPlan, 8)
	assert.Equal(t, "Room 401 - Building B", byPlan[1])
	assert.Equal(t, "Room 408 - Building B", byPlan[8])

	assert.Empty(t, ForGrade("0"))
	assert.Empty(t, ForGrade("kindergarten"))
}

func TestBuildingForGrade(t *testing.T) {
	assert.Equal(t, "Building A - Ground Floor", BuildingForGrade("1"))
	assert.Equal(t, "Building B - Ground Floor", BuildingForGrade("2"))
	assert.Equal(t, "Building A - Second Floor", BuildingForGrade("3"))
	assert.Equal(t, "Building B - Second Floor", BuildingForGrade("4"))
	assert.Equal(t, "Building A - Third Floor", BuildingForGrade("5"))
	assert.Equal(t, "Building B - Third Floor", BuildingForGrade("6"))
	assert.Equal(t, "TBD", BuildingForGrade("7"))
}
