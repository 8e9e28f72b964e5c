package models

import "time"

// Student represents a learner registered in the institution. ControlNumber is
// the external, human-assigned business key and never changes once assigned.
type Student struct {
	ID              string    `db:"id" json:"id"`
	ControlNumber   string    `db:"control_number" json:"control_number"`
	FirstName       string    `db:"first_name" json:"first_name"`
	PaternalSurname string    `db:"paternal_surname" json:"paternal_surname"`
	MaternalSurname string    `db:"maternal_surname" json:"maternal_surname"`
	ProgramID       *string   `db:"program_id" json:"program_id,omitempty"`
	CurrentSemester int       `db:"current_semester" json:"current_semester"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	ProgramID string
	Page      int
	PageSize  int
}

// StudentDetail contains student information with program context.
type StudentDetail struct {
	Student
	ProgramName *string `db:"program_name" json:"program_name,omitempty"`
}
