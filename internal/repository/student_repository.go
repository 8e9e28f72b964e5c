package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edutrack-mx/sira-api/internal/models"
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	base := "FROM students s LEFT JOIN programs p ON p.id = s.program_id"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.ProgramID != "" {
		conditions = append(conditions, fmt.Sprintf("s.program_id = $%d", len(args)+1))
		args = append(args, filter.ProgramID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.first_name || ' ' || s.paternal_surname || ' ' || s.maternal_surname) LIKE $%d OR LOWER(s.control_number) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT s.id, s.control_number, s.first_name, s.paternal_surname, s.maternal_surname, s.program_id, s.current_semester, s.created_at, s.updated_at,
        p.name AS program_name
        %s ORDER BY s.control_number LIMIT %d OFFSET %d`, base, size, offset)

	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(s.id) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student detail by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	const query = `SELECT s.id, s.control_number, s.first_name, s.paternal_surname, s.maternal_surname, s.program_id, s.current_semester, s.created_at, s.updated_at,
        p.name AS program_name
        FROM students s
        LEFT JOIN programs p ON p.id = s.program_id
        WHERE s.id = $1`
	var detail models.StudentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// FindByControlNumber fetches a student by the immutable business key.
// Returns sql.ErrNoRows when no student carries the control number.
func (r *StudentRepository) FindByControlNumber(ctx context.Context, controlNumber string) (*models.Student, error) {
	const query = `SELECT id, control_number, first_name, paternal_surname, maternal_surname, program_id, current_semester, created_at, updated_at
        FROM students WHERE control_number = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, controlNumber); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, control_number, first_name, paternal_surname, maternal_surname, program_id, current_semester, created_at, updated_at)
        VALUES (:id, :control_number, :first_name, :paternal_surname, :maternal_surname, :program_id, :current_semester, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies the mutable fields of an existing student. The control
// number is deliberately left out of the SET clause.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET first_name = :first_name, paternal_surname = :paternal_surname, maternal_surname = :maternal_surname, program_id = :program_id, current_semester = :current_semester, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}
