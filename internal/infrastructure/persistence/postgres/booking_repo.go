package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/drivelog-hub/drivelog/internal/domain/booking"
	"github.com/drivelog-hub/drivelog/internal/domain/curriculum"
)

// ══════════════════════════════════════════════════════════════════════════════
// SLOT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// SlotRepository implements booking.SlotRepository for PostgreSQL.
type SlotRepository struct {
	conn *Connection
}

// NewSlotRepository creates a new SlotRepository.
func NewSlotRepository(conn *Connection) *SlotRepository {
	return &SlotRepository{conn: conn}
}

// GetByID returns one appointment slot with its current booking count.
// The count is read in the same query so eligibility checks see a
// consistent snapshot.
func (r *SlotRepository) GetByID(ctx context.Context, id string) (booking.AppointmentSlot, error) {
	query := `
		SELECT a.id, a.lesson_type, a.start_time, a.available_units, a.instructor_name,
			   (SELECT COUNT(*) FROM bookings b WHERE b.slot_id = a.id)
		FROM appointments a
		WHERE a.id = $1
	`

	slot, err := r.scanSlot(r.conn.QueryRow(ctx, query, id))
	if err != nil {
		if IsNoRows(err) {
			return booking.AppointmentSlot{}, booking.ErrSlotNotFound
		}
		return booking.AppointmentSlot{}, err
	}
	return slot, nil
}

// ListUpcoming returns slots starting at or after from, soonest first.
func (r *SlotRepository) ListUpcoming(ctx context.Context, from time.Time) ([]booking.AppointmentSlot, error) {
	query := `
		SELECT a.id, a.lesson_type, a.start_time, a.available_units, a.instructor_name,
			   (SELECT COUNT(*) FROM bookings b WHERE b.slot_id = a.id)
		FROM appointments a
		WHERE a.start_time >= $1
		ORDER BY a.start_time
	`

	rows, err := r.conn.Query(ctx, query, from)
	if err != nil {
		return nil, fmt.Errorf("list upcoming slots: %w", err)
	}
	defer rows.Close()

	var slots []booking.AppointmentSlot
	for rows.Next() {
		slot, err := r.scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

func (r *SlotRepository) scanSlot(row rowScanner) (booking.AppointmentSlot, error) {
	var slot booking.AppointmentSlot
	var lessonType string
	err := row.Scan(
		&slot.ID,
		&lessonType,
		&slot.StartTime,
		&slot.AvailableUnits,
		&slot.InstructorName,
		&slot.CurrentBookingCount,
	)
	if err != nil {
		if IsNoRows(err) {
			return booking.AppointmentSlot{}, err
		}
		return booking.AppointmentSlot{}, fmt.Errorf("scan slot: %w", err)
	}
	slot.Type = curriculum.LessonType(lessonType)
	return slot, nil
}

// CreateSlot inserts an appointment slot. Used by the scheduling admin flow.
func (r *SlotRepository) CreateSlot(ctx context.Context, slot booking.AppointmentSlot) error {
	if err := slot.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO appointments (id, lesson_type, start_time, available_units, instructor_name)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.conn.Exec(ctx, query,
		slot.ID, string(slot.Type), slot.StartTime, slot.AvailableUnits, slot.InstructorName,
	); err != nil {
		return fmt.Errorf("create slot: %w", err)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LESSON REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// LessonRepository implements booking.LessonRepository for PostgreSQL.
type LessonRepository struct {
	conn *Connection
}

// NewLessonRepository creates a new LessonRepository.
func NewLessonRepository(conn *Connection) *LessonRepository {
	return &LessonRepository{conn: conn}
}

const lessonColumns = `
	user_id, COALESCE(appointment_id::text, ''), template_id,
	progress_units, completed, instructor_name, COALESCE(end_date, 'epoch'::timestamptz)
`

// ListByUser returns the student's lesson history, oldest first.
// Ordering matters: progress tracking takes the last record per template.
func (r *LessonRepository) ListByUser(ctx context.Context, userID string) ([]booking.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE user_id = $1 ORDER BY id`
	return r.list(ctx, query, userID)
}

// ListByAppointment returns all lessons tied to one slot.
func (r *LessonRepository) ListByAppointment(ctx context.Context, slotID string) ([]booking.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE appointment_id = $1 ORDER BY id`
	return r.list(ctx, query, slotID)
}

func (r *LessonRepository) list(ctx context.Context, query, arg string) ([]booking.Lesson, error) {
	rows, err := r.conn.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer rows.Close()

	var lessons []booking.Lesson
	for rows.Next() {
		var l booking.Lesson
		if err := rows.Scan(
			&l.UserID,
			&l.AppointmentID,
			&l.TemplateID,
			&l.ProgressUnits,
			&l.Completed,
			&l.InstructorName,
			&l.EndDate,
		); err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

// ══════════════════════════════════════════════════════════════════════════════
// BOOKING REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// BookingRepository implements booking.BookingRepository for PostgreSQL.
type BookingRepository struct {
	conn *Connection
}

// NewBookingRepository creates a new BookingRepository.
func NewBookingRepository(conn *Connection) *BookingRepository {
	return &BookingRepository{conn: conn}
}

// Create commits a booking. The (user_id, slot_id) unique constraint
// rejects double booking at the database level.
func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	query := `
		INSERT INTO bookings (id, user_id, slot_id, template_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.conn.Exec(ctx, query, b.ID, b.UserID, b.SlotID, b.TemplateID, b.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return booking.ErrAlreadyBooked
		}
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

// Delete removes a booking.
func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	result, err := r.conn.Exec(ctx, "DELETE FROM bookings WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if result.RowsAffected() == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

// CountBySlot returns the number of bookings on a slot. This is the
// authoritative count the cached counters are reconciled against.
func (r *BookingRepository) CountBySlot(ctx context.Context, slotID string) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, "SELECT COUNT(*) FROM bookings WHERE slot_id = $1", slotID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return count, nil
}

// ListByUser returns the student's bookings, newest first.
func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]booking.Booking, error) {
	query := `
		SELECT id, user_id, slot_id, template_id, created_at
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []booking.Booking
	for rows.Next() {
		var b booking.Booking
		if err := rows.Scan(&b.ID, &b.UserID, &b.SlotID, &b.TemplateID, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// CountsForSlots returns booking counts for every slot that has at least
// one booking. The counter refresh job uses it to rebuild the cache in
// one round trip.
func (r *BookingRepository) CountsForSlots(ctx context.Context) (map[string]int, error) {
	rows, err := r.conn.Query(ctx, "SELECT slot_id, COUNT(*) FROM bookings GROUP BY slot_id")
	if err != nil {
		return nil, fmt.Errorf("count bookings by slot: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var slotID string
		var count int
		if err := rows.Scan(&slotID, &count); err != nil {
			return nil, fmt.Errorf("scan booking count: %w", err)
		}
		counts[slotID] = count
	}
	return counts, rows.Err()
}
