// Package attendance orchestrates the one-time-code flow: lecturers
// open a time-bounded window and display a rotating code, students
// submit the current code to be marked present exactly once per day.
package attendance

import (
	"errors"
	"time"

	"attendance-backend/internal/database"
	"attendance-backend/internal/models"
	"attendance-backend/internal/otp"
)

var (
	ErrNoActiveSession  = errors.New("no active attendance session for this class")
	ErrInvalidCode      = errors.New("invalid or expired code")
	ErrNotClassLecturer = errors.New("not the lecturer for this class")
)

const (
	// DefaultSessionLifetime bounds code validity while covering one
	// class period
	DefaultSessionLifetime = 2 * time.Hour
)

// Service composes the session store, the code deriver and the
// attendance ledger behind the two external operations
type Service struct {
	sessions *database.AttendanceSessionRepo
	marks    *database.AttendanceRepo
	classes  *database.ClassRepo
	settings *database.SettingsRepo
	deriver  *otp.Deriver
}

// NewService creates a new attendance service
func NewService() *Service {
	return &Service{
		sessions: database.NewAttendanceSessionRepo(),
		marks:    database.NewAttendanceRepo(),
		classes:  database.NewClassRepo(),
		settings: database.NewSettingsRepo(),
		deriver:  otp.NewDeriver(),
	}
}

// SetClock pins every time read (code steps, session expiry, mark
// dates) to the given source. Tests use this to drive rotation and
// expiry without sleeping.
func (s *Service) SetClock(now func() time.Time) {
	s.deriver.Now = now
	s.sessions.Now = now
	s.marks.Now = now
}

// CodeGrant is the lecturer-facing result of opening or refreshing a
// window. Opened is true only when this request created the session.
type CodeGrant struct {
	Code        string
	ExpiresInMs int64
	Opened      bool
}

// RequestCode opens the attendance window for a class, or refreshes a
// live one, and returns the current code. Repeated calls while a
// session is live keep returning the same code series; refreshing
// never rotates the secret under in-flight student submissions.
func (s *Service) RequestCode(classID, lecturerID, lecturerIP string) (*CodeGrant, error) {
	ok, err := s.classes.IsLecturerFor(classID, lecturerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotClassLecturer
	}

	// Fresh secret for the create path; discarded when a live session
	// already holds one.
	secret, err := otp.GenerateSecret()
	if err != nil {
		return nil, err
	}

	session, created, err := s.sessions.OpenOrRefresh(classID, secret, lecturerIP, s.sessionLifetime())
	if err != nil {
		return nil, err
	}

	code, err := otp.Derive(session.Secret, s.deriver.StepIndex())
	if err != nil {
		return nil, err
	}

	return &CodeGrant{
		Code:        code,
		ExpiresInMs: s.deriver.Remaining().Milliseconds(),
		Opened:      created,
	}, nil
}

// SubmitResult reports a successful submission. Created is false when
// the student was already marked today; the caller still treats that
// as success, but only a first mark should trigger side effects.
type SubmitResult struct {
	Created bool
	Date    string
}

// SubmitCode validates a student's code against the live session and
// records the mark. Idempotent: retries and double-taps for the same
// (student, class, day) converge on one stored mark.
func (s *Service) SubmitCode(classID, studentID, code string) (*SubmitResult, error) {
	session, err := s.sessions.FindActive(classID)
	if err != nil {
		if errors.Is(err, database.ErrNoActiveSession) {
			return nil, ErrNoActiveSession
		}
		return nil, err
	}

	if !s.deriver.Validate(session.Secret, code, s.codeWindow()) {
		return nil, ErrInvalidCode
	}

	date := s.marks.Today()
	created, err := s.marks.MarkPresent(studentID, classID, date, models.MethodCode)
	if err != nil {
		return nil, err
	}

	return &SubmitResult{Created: created, Date: date}, nil
}

// BulkMark marks a list of students present for a class, the manual
// fallback when codes are impractical. Uses the same ledger insert,
// so students already marked that day are skipped, not duplicated.
// Returns how many new marks were created.
func (s *Service) BulkMark(classID string, studentIDs []string, date string) (int, error) {
	if date == "" {
		date = s.marks.Today()
	}

	created := 0
	for _, studentID := range studentIDs {
		ok, err := s.marks.MarkPresent(studentID, classID, date, models.MethodManual)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}

func (s *Service) sessionLifetime() time.Duration {
	minutes, err := s.settings.GetInt(database.SettingSessionLifetime)
	if err != nil || minutes <= 0 {
		return DefaultSessionLifetime
	}
	return time.Duration(minutes) * time.Minute
}

func (s *Service) codeWindow() int {
	window, err := s.settings.GetInt(database.SettingCodeWindow)
	if err != nil || window < 0 {
		return otp.DefaultWindow
	}
	return window
}
