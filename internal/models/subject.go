package models

import "time"

// Subject represents a course (materia), optionally tied to a program and
// nominal semester.
type Subject struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      *string   `db:"code" json:"code,omitempty"`
	Semester  int       `db:"semester" json:"semester"`
	ProgramID *string   `db:"program_id" json:"program_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SubjectFilter narrows subject listings.
type SubjectFilter struct {
	ProgramID string
}
