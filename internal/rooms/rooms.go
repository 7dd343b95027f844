// Package rooms resolves the physical room for a grade level and
// section. The school keeps eight named rooms per grade: odd grades sit
// in Building A, even grades in Building B, two grades per floor.
package rooms

import (
	"fmt"
	"strconv"
)

const sectionsPerGrade = 8

// ForSection returns the named room for the grade and section, or a
// generic fallback for sections without a mapped room.
func ForSection(gradeLevel string, section int) string {
	grade, ok := parseGrade(gradeLevel)
	if ok && section >= 1 && section <= sectionsPerGrade {
		return fmt.Sprintf("Room %d%02d - %s", grade, section, buildingName(grade))
	}
	return fmt.Sprintf("Room %s%02d", gradeLevel, section)
}

// ForGrade returns every mapped room for the grade, keyed by section.
func ForGrade(gradeLevel string) map[int]string {
	result := make(map[int]string)
	grade, ok := parseGrade(gradeLevel)
	if !ok {
		return result
	}
	for section := 1; section <= sectionsPerGrade; section++ {
		result[section] = fmt.Sprintf("Room %d%02d - %s", grade, section, buildingName(grade))
	}
	return result
}

// BuildingForGrade returns the building and floor hosting the grade.
func BuildingForGrade(gradeLevel string) string {
	grade, ok := parseGrade(gradeLevel)
	if !ok {
		return "TBD"
	}
	return buildingName(grade) + " - " + floorName(grade)
}

func parseGrade(gradeLevel string) (int, bool) {
	grade, err := strconv.Atoi(gradeLevel)
	if err != nil || grade < 1 || grade > 6 {
		return 0, false
	}
	return grade, true
}

func buildingName(grade int) string {
	if grade%2 == 1 {
		return "Building A"
	}
	return "Building B"
}

func floorName(grade int) string {
	switch (grade + 1) / 2 {
	case 1:
		return "Ground Floor"
	case 2:
		return "Second Floor"
	default:
		return "Third Floor"
	}
}
