package models

import "time"

// RecordStatus enumerates the lifecycle states of an enrollment record.
type RecordStatus string

const (
	RecordStatusInProgress RecordStatus = "in_progress"
	RecordStatusApproved   RecordStatus = "approved"
	RecordStatusFailed     RecordStatus = "failed"
	RecordStatusWithdrawn  RecordStatus = "withdrawn"
)

// Valid reports whether the status is one of the known enum values.
func (s RecordStatus) Valid() bool {
	switch s {
	case RecordStatusInProgress, RecordStatusApproved, RecordStatusFailed, RecordStatusWithdrawn:
		return true
	}
	return false
}

// EnrollmentRecord is one student's attempt at one subject in one semester,
// carrying the three unit grades, the derived final grade and outcome status.
type EnrollmentRecord struct {
	ID                   string       `db:"id" json:"id"`
	StudentID            string       `db:"student_id" json:"student_id"`
	SubjectID            string       `db:"subject_id" json:"subject_id"`
	Semester             int          `db:"semester" json:"semester"`
	Unit1Grade           *float64     `db:"unit1_grade" json:"unit1_grade,omitempty"`
	Unit2Grade           *float64     `db:"unit2_grade" json:"unit2_grade,omitempty"`
	Unit3Grade           *float64     `db:"unit3_grade" json:"unit3_grade,omitempty"`
	FinalGrade           *float64     `db:"final_grade" json:"final_grade,omitempty"`
	AttendancePercentage *float64     `db:"attendance_percentage" json:"attendance_percentage,omitempty"`
	Status               RecordStatus `db:"status" json:"status"`
	CreatedAt            time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time    `db:"updated_at" json:"updated_at"`
}

// RecordFilter narrows enrollment record listings.
type RecordFilter struct {
	Status    RecordStatus
	StudentID string
	SubjectID string
	Page      int
	PageSize  int
}

// EnrollmentRecordDetail decorates a record with display fields and the number
// of risk factor associations attached to it.
type EnrollmentRecordDetail struct {
	EnrollmentRecord
	ControlNumber   string `db:"control_number" json:"control_number"`
	StudentName     string `db:"student_name" json:"student_name"`
	SubjectName     string `db:"subject_name" json:"subject_name"`
	RiskFactorCount int    `db:"risk_factor_count" json:"risk_factor_count"`
}
