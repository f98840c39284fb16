package query

import (
	"context"
	"fmt"
	"time"

	"github.com/drivelog-hub/drivelog/internal/domain/booking"
	"github.com/drivelog-hub/drivelog/internal/domain/shared"
	"github.com/drivelog-hub/drivelog/internal/domain/user"
	"github.com/drivelog-hub/drivelog/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET DRIVE LOG QUERY
// Builds the drive-log view: one row per curriculum step with its completion
// state for the given student. This is the data behind the drive-log screen;
// rendering and PDF export happen elsewhere.
// ══════════════════════════════════════════════════════════════════════════════

// GetDriveLogQuery contains the drive-log request.
type GetDriveLogQuery struct {
	// UserID is the student whose log is requested.
	UserID string
}

// Validate validates the query.
func (q GetDriveLogQuery) Validate() error {
	if q.UserID == "" {
		return fmt.Errorf("get_drive_log: user_id is required: %w", shared.ErrInvalidID)
	}
	return nil
}

// DriveLogEntry is one row of the drive log.
type DriveLogEntry struct {
	// TemplateID is the curriculum step.
	TemplateID int

	// Title and Description come from the template.
	Title       string
	Description string

	// Type is the lesson type of the step.
	Type string

	// Attempted is true once at least one lesson exists for the step.
	Attempted bool

	// Completed marks finished steps.
	Completed bool

	// ProgressUnits of RequiredUnits tracks partial progress.
	ProgressUnits int
	RequiredUnits int

	// InstructorName of the most recent lesson for this step.
	InstructorName string

	// CompletedAt is set for completed steps.
	CompletedAt time.Time
}

// DriveLogView is the complete drive log of one student.
type DriveLogView struct {
	// UserID and FullName identify the student.
	UserID   string
	FullName string

	// Entries lists every curriculum step in order.
	Entries []DriveLogEntry

	// CompletedCount is the number of completed steps.
	CompletedCount int
}

// GetDriveLogHandler handles GetDriveLogQuery.
type GetDriveLogHandler struct {
	engine  *booking.Engine
	users   user.Repository
	lessons booking.LessonRepository
	logger  *logger.Logger
}

// NewGetDriveLogHandler creates a new GetDriveLogHandler.
func NewGetDriveLogHandler(
	engine *booking.Engine,
	users user.Repository,
	lessons booking.LessonRepository,
	log *logger.Logger,
) *GetDriveLogHandler {
	if log == nil {
		log = logger.Default()
	}
	return &GetDriveLogHandler{
		engine:  engine,
		users:   users,
		lessons: lessons,
		logger:  log.With(logger.Component("get_drive_log")),
	}
}

// Handle assembles the drive-log view from the curriculum and the student's
// lesson history.
func (h *GetDriveLogHandler) Handle(ctx context.Context, q GetDriveLogQuery) (*DriveLogView, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	u, err := h.users.GetByID(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	history, err := h.lessons.ListByUser(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	statuses := booking.TrackProgress(h.engine.Catalog(), history)

	view := &DriveLogView{
		UserID:   u.ID,
		FullName: u.FullName(),
		Entries:  make([]DriveLogEntry, 0, len(statuses)),
	}

	for _, status := range statuses {
		entry := DriveLogEntry{
			TemplateID:     status.Template.ID,
			Title:          status.Template.Title,
			Description:    status.Template.Description,
			Type:           status.Template.Type.String(),
			Attempted:      status.Attempted,
			Completed:      status.Completed,
			ProgressUnits:  status.ProgressUnits,
			RequiredUnits:  status.Template.RequiredProgressUnits,
			InstructorName: status.InstructorName,
			CompletedAt:    status.CompletedAt,
		}
		if status.Completed {
			view.CompletedCount++
		}
		view.Entries = append(view.Entries, entry)
	}

	return view, nil
}
