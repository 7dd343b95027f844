package models

// SectionCapacity tracks the open section per grade level.
type SectionCapacity struct {
	GradeLevel               string `db:"grade_level" json:"grade_level"`
	CurrentSection           int    `db:"current_section" json:"current_section"`
	StudentsInCurrentSection int    `db:"students_in_current_section" json:"students_in_current_section"`
}

// Allocate assigns a seat in the current section, advancing to the next
// section first when the current one has reached the limit. It mutates
// the receiver and returns the section the student landed in.
func (c *SectionCapacity) Allocate(limit int) int {
	if c.CurrentSection < 1 {
		c.CurrentSection = 1
	}
	if c.StudentsInCurrentSection >= limit {
		c.CurrentSection++
		c.StudentsInCurrentSection = 0
	}
	c.StudentsInCurrentSection++
	return c.CurrentSection
}

// SectionOverview summarizes a populated section for admin listings.
type SectionOverview struct {
	GradeLevel   string `db:"grade_level" json:"grade_level"`
	Section      int    `db:"section" json:"section"`
	Room         string `json:"room"`
	StudentCount int    `db:"student_count" json:"student_count"`
}
