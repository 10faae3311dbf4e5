package database

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"attendance-backend/internal/models"
)

var ErrNoActiveSession = errors.New("no active attendance session")

// AttendanceSessionRepo owns the attendance window lifecycle for each
// class: at most one session per class may be live (expires_at > now)
// at any instant. Expiry is lazy; expired rows are kept for audit.
type AttendanceSessionRepo struct {
	// Now is the time source; tests override it to drive expiry.
	Now func() time.Time
}

// NewAttendanceSessionRepo creates a new attendance session repository
func NewAttendanceSessionRepo() *AttendanceSessionRepo {
	return &AttendanceSessionRepo{Now: time.Now}
}

// OpenOrRefresh returns the live session for a class, creating one if
// none is live. The whole find-or-create runs in one IMMEDIATE
// transaction so two racing lecturer requests cannot each create a
// session with its own secret. Returns the session and whether it was
// newly created.
func (r *AttendanceSessionRepo) OpenOrRefresh(classID, secret, lecturerIP string, lifetime time.Duration) (*models.AttendanceSession, bool, error) {
	now := r.Now()

	tx, err := DB.Begin()
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	session, err := findActiveTx(tx, classID, now)
	if err == nil {
		if err := tx.Commit(); err != nil {
			return nil, false, err
		}
		return session, false, nil
	}
	if !errors.Is(err, ErrNoActiveSession) {
		return nil, false, err
	}

	session = &models.AttendanceSession{
		ID:         uuid.New().String(),
		ClassID:    classID,
		Secret:     secret,
		CreatedAt:  now,
		ExpiresAt:  now.Add(lifetime),
		Active:     true,
		LecturerIP: lecturerIP,
	}

	_, err = tx.Exec(`
		INSERT INTO attendance_sessions (id, class_id, secret, created_at, expires_at, active, lecturer_ip)
		VALUES (?, ?, ?, ?, ?, 1, ?)
	`, session.ID, session.ClassID, session.Secret, session.CreatedAt, session.ExpiresAt, session.LecturerIP)
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}

	return session, true, nil
}

// FindActive retrieves the live session for a class, if any
func (r *AttendanceSessionRepo) FindActive(classID string) (*models.AttendanceSession, error) {
	return findActiveTx(DB, classID, r.Now())
}

type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

func findActiveTx(q querier, classID string, now time.Time) (*models.AttendanceSession, error) {
	session := &models.AttendanceSession{}
	var lecturerIP sql.NullString

	err := q.QueryRow(`
		SELECT id, class_id, secret, created_at, expires_at, active, lecturer_ip
		FROM attendance_sessions
		WHERE class_id = ? AND active = 1 AND expires_at > ?
		ORDER BY created_at DESC LIMIT 1
	`, classID, now).Scan(
		&session.ID, &session.ClassID, &session.Secret,
		&session.CreatedAt, &session.ExpiresAt, &session.Active, &lecturerIP,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNoActiveSession
	}
	if err != nil {
		return nil, err
	}

	session.LecturerIP = lecturerIP.String
	return session, nil
}

// DeactivateExpired flips the active flag on sessions past expiry.
// Bookkeeping only: every read already filters on expires_at, so
// nothing depends on this running.
func (r *AttendanceSessionRepo) DeactivateExpired() (int64, error) {
	result, err := DB.Exec("UPDATE attendance_sessions SET active = 0 WHERE active = 1 AND expires_at <= ?", r.Now())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ListByClass retrieves all sessions ever opened for a class, newest first
func (r *AttendanceSessionRepo) ListByClass(classID string) ([]*models.AttendanceSession, error) {
	rows, err := DB.Query(`
		SELECT id, class_id, secret, created_at, expires_at, active, lecturer_ip
		FROM attendance_sessions WHERE class_id = ? ORDER BY created_at DESC
	`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.AttendanceSession
	for rows.Next() {
		session := &models.AttendanceSession{}
		var lecturerIP sql.NullString
		err := rows.Scan(
			&session.ID, &session.ClassID, &session.Secret,
			&session.CreatedAt, &session.ExpiresAt, &session.Active, &lecturerIP,
		)
		if err != nil {
			return nil, err
		}
		session.LecturerIP = lecturerIP.String
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}
