package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campus-hub/student-records/internal/domain/shared"
	"github.com/campus-hub/student-records/internal/domain/student"
)

// studentColumns whitelists the fields that query filters may reference.
var studentColumns = map[string]string{
	"first_name": "first_name",
	"last_name":  "last_name",
	"phone":      "phone",
	"class":      "class",
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT STORE IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StudentStore implements student.Store for PostgreSQL.
type StudentStore struct {
	conn *Connection
}

// NewStudentStore creates a new StudentStore.
func NewStudentStore(conn *Connection) *StudentStore {
	return &StudentStore{conn: conn}
}

// Insert persists a new student and returns the store-assigned id.
// Uniqueness of the phone number is checked up front so callers get the
// typed duplicate error; the UNIQUE constraint remains the arbiter for
// concurrent inserts racing past the check.
func (r *StudentStore) Insert(ctx context.Context, s *student.Student) (string, error) {
	taken, err := r.phoneExists(ctx, s.Phone)
	if err != nil {
		return "", err
	}
	if taken {
		return "", shared.ErrPhoneTaken
	}

	gradesJSON, err := json.Marshal(s.Grades)
	if err != nil {
		return "", fmt.Errorf("failed to marshal grades: %w", err)
	}

	id := uuid.NewString()
	now := time.Now().UTC()

	query := `
		INSERT INTO students (id, first_name, last_name, phone, class, grades, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.conn.Exec(ctx, query,
		id,
		s.FirstName,
		s.LastName,
		s.Phone,
		s.Class,
		gradesJSON,
		now,
		now,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return "", shared.ErrPhoneTaken
		}
		return "", shared.WrapError("student", "Insert", shared.ErrStoreUnavailable, "insert failed", err)
	}

	return id, nil
}

// GetByID returns a student by id.
func (r *StudentStore) GetByID(ctx context.Context, id string) (*student.Student, error) {
	query := `
		SELECT id, first_name, last_name, phone, class, grades, created_at, updated_at
		FROM students
		WHERE id = $1
	`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanStudent(row)
}

// GetByPhone returns a student by phone number.
func (r *StudentStore) GetByPhone(ctx context.Context, phone string) (*student.Student, error) {
	query := `
		SELECT id, first_name, last_name, phone, class, grades, created_at, updated_at
		FROM students
		WHERE phone = $1
	`

	row := r.conn.QueryRow(ctx, query, phone)
	return r.scanStudent(row)
}

// Update overwrites the full attribute set of an existing student.
// Last writer wins: there is no version check.
func (r *StudentStore) Update(ctx context.Context, s *student.Student) error {
	gradesJSON, err := json.Marshal(s.Grades)
	if err != nil {
		return fmt.Errorf("failed to marshal grades: %w", err)
	}

	query := `
		UPDATE students SET
			first_name = $1,
			last_name = $2,
			phone = $3,
			class = $4,
			grades = $5,
			updated_at = $6
		WHERE id = $7
	`

	result, err := r.conn.Exec(ctx, query,
		s.FirstName,
		s.LastName,
		s.Phone,
		s.Class,
		gradesJSON,
		time.Now().UTC(),
		s.ID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrPhoneTaken
		}
		return shared.WrapError("student", "Update", shared.ErrStoreUnavailable, "update failed", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrStudentNotFound
	}

	return nil
}

// Delete removes a student by id.
func (r *StudentStore) Delete(ctx context.Context, id string) error {
	result, err := r.conn.Exec(ctx, "DELETE FROM students WHERE id = $1", id)
	if err != nil {
		return shared.WrapError("student", "Delete", shared.ErrStoreUnavailable, "delete failed", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrStudentNotFound
	}

	return nil
}

// Query returns students matching all filters, in storage-defined order.
func (r *StudentStore) Query(ctx context.Context, filters []shared.Filter) ([]*student.Student, error) {
	where, args, err := buildWhere(filters, studentColumns)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, first_name, last_name, phone, class, grades, created_at, updated_at
		FROM students
	` + where

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, shared.WrapError("student", "Query", shared.ErrStoreUnavailable, "query failed", err)
	}
	defer rows.Close()

	return r.scanStudents(rows)
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *StudentStore) phoneExists(ctx context.Context, phone string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM students WHERE phone = $1)",
		phone,
	).Scan(&exists)
	if err != nil {
		return false, shared.WrapError("student", "Insert", shared.ErrStoreUnavailable, "uniqueness check failed", err)
	}
	return exists, nil
}

// scanStudent scans a single student from a row.
func (r *StudentStore) scanStudent(row pgx.Row) (*student.Student, error) {
	var s student.Student
	var gradesJSON []byte

	err := row.Scan(
		&s.ID,
		&s.FirstName,
		&s.LastName,
		&s.Phone,
		&s.Class,
		&gradesJSON,
		&s.CreatedAt,
		&s.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, shared.ErrStudentNotFound
	}
	if err != nil {
		return nil, shared.WrapError("student", "Get", shared.ErrStoreUnavailable, "scan failed", err)
	}

	s.Grades = unmarshalGrades(gradesJSON)

	return &s, nil
}

// scanStudents scans multiple students from rows.
func (r *StudentStore) scanStudents(rows pgx.Rows) ([]*student.Student, error) {
	var students []*student.Student

	for rows.Next() {
		var s student.Student
		var gradesJSON []byte

		err := rows.Scan(
			&s.ID,
			&s.FirstName,
			&s.LastName,
			&s.Phone,
			&s.Class,
			&gradesJSON,
			&s.CreatedAt,
			&s.UpdatedAt,
		)
		if err != nil {
			return nil, shared.WrapError("student", "Query", shared.ErrStoreUnavailable, "scan failed", err)
		}

		s.Grades = unmarshalGrades(gradesJSON)
		students = append(students, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, shared.WrapError("student", "Query", shared.ErrStoreUnavailable, "rows iteration failed", err)
	}

	return students, nil
}

// unmarshalGrades decodes the JSONB grade map, tolerating empty values.
func unmarshalGrades(data []byte) map[string]float64 {
	grades := make(map[string]float64)
	if len(data) == 0 {
		return grades
	}
	_ = json.Unmarshal(data, &grades)
	return grades
}
