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

// RecordRepository manages persistence for enrollment records.
type RecordRepository struct {
	db *sqlx.DB
}

// NewRecordRepository constructs a RecordRepository.
func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// List returns enrollment records with student/subject display fields and the
// count of attached risk factor associations.
func (r *RecordRepository) List(ctx context.Context, filter models.RecordFilter) ([]models.EnrollmentRecordDetail, int, error) {
	base := "FROM enrollment_records er JOIN students s ON s.id = er.student_id JOIN subjects sub ON sub.id = er.subject_id"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("er.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("er.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("er.subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
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

	query := fmt.Sprintf(`SELECT er.id, er.student_id, er.subject_id, er.semester, er.unit1_grade, er.unit2_grade, er.unit3_grade, er.final_grade, er.attendance_percentage, er.status, er.created_at, er.updated_at,
        s.control_number, s.first_name || ' ' || s.paternal_surname || ' ' || s.maternal_surname AS student_name, sub.name AS subject_name,
        (SELECT COUNT(*) FROM student_risk_factors srf WHERE srf.record_id = er.id) AS risk_factor_count
        %s ORDER BY er.created_at DESC LIMIT %d OFFSET %d`, base, size, offset)

	var records []models.EnrollmentRecordDetail
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list records: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(er.id) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count records: %w", err)
	}
	return records, total, nil
}

// FindByID fetches an enrollment record by ID.
func (r *RecordRepository) FindByID(ctx context.Context, id string) (*models.EnrollmentRecord, error) {
	const query = `SELECT id, student_id, subject_id, semester, unit1_grade, unit2_grade, unit3_grade, final_grade, attendance_percentage, status, created_at, updated_at
        FROM enrollment_records WHERE id = $1`
	var record models.EnrollmentRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// FindDetailByID fetches a record with joined display fields.
func (r *RecordRepository) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentRecordDetail, error) {
	const query = `SELECT er.id, er.student_id, er.subject_id, er.semester, er.unit1_grade, er.unit2_grade, er.unit3_grade, er.final_grade, er.attendance_percentage, er.status, er.created_at, er.updated_at,
        s.control_number, s.first_name || ' ' || s.paternal_surname || ' ' || s.maternal_surname AS student_name, sub.name AS subject_name,
        (SELECT COUNT(*) FROM student_risk_factors srf WHERE srf.record_id = er.id) AS risk_factor_count
        FROM enrollment_records er
        JOIN students s ON s.id = er.student_id
        JOIN subjects sub ON sub.id = er.subject_id
        WHERE er.id = $1`
	var detail models.EnrollmentRecordDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Create inserts a new enrollment record. Resubmission for the same
// student/subject/semester inserts another row; there is no composite key.
func (r *RecordRepository) Create(ctx context.Context, record *models.EnrollmentRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	const query = `INSERT INTO enrollment_records (id, student_id, subject_id, semester, unit1_grade, unit2_grade, unit3_grade, final_grade, attendance_percentage, status, created_at, updated_at)
        VALUES (:id, :student_id, :subject_id, :semester, :unit1_grade, :unit2_grade, :unit3_grade, :final_grade, :attendance_percentage, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

// Withdraw inserts the high-severity risk factor association and flips the
// record status to withdrawn inside a single transaction, so a failure on
// either write leaves no orphan association behind.
func (r *RecordRepository) Withdraw(ctx context.Context, recordID string, assoc *models.StudentRiskFactor) error {
	if assoc.ID == "" {
		assoc.ID = uuid.NewString()
	}
	if assoc.CreatedAt.IsZero() {
		assoc.CreatedAt = time.Now().UTC()
	}
	assoc.RecordID = recordID

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin withdraw: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertQuery = `INSERT INTO student_risk_factors (id, record_id, risk_factor_id, severity, notes, created_at)
        VALUES (:id, :record_id, :risk_factor_id, :severity, :notes, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertQuery, assoc); err != nil {
		return fmt.Errorf("create risk association: %w", err)
	}

	const updateQuery = `UPDATE enrollment_records SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, updateQuery, recordID, models.RecordStatusWithdrawn, time.Now().UTC()); err != nil {
		return fmt.Errorf("set record withdrawn: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit withdraw: %w", err)
	}
	return nil
}
