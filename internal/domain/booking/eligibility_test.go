package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivelog-hub/drivelog/internal/domain/curriculum"
)

// testCatalog mirrors a typical syllabus: three theory lessons open the
// curriculum, then theory and driving alternate.
func testCatalog(t *testing.T) *curriculum.Catalog {
	t.Helper()
	c, err := curriculum.NewCatalog([]curriculum.LessonTemplate{
		{ID: 1, Type: curriculum.Theoretical, Title: "Intro", Description: "d", RequiredProgressUnits: 4},
		{ID: 2, Type: curriculum.Theoretical, Title: "Signs", Description: "d", RequiredProgressUnits: 4},
		{ID: 3, Type: curriculum.Theoretical, Title: "Rules", Description: "d", RequiredProgressUnits: 4},
		{ID: 4, Type: curriculum.Practical, Title: "First drive", Description: "d", RequiredProgressUnits: 2},
		{ID: 5, Type: curriculum.Theoretical, Title: "Hazards", Description: "d", RequiredProgressUnits: 4},
		{ID: 6, Type: curriculum.Practical, Title: "City", Description: "d", RequiredProgressUnits: 2},
	})
	require.NoError(t, err)
	return c
}

func completedLesson(templateID, units int) Lesson {
	return Lesson{
		UserID:        "u1",
		TemplateID:    templateID,
		ProgressUnits: units,
		Completed:     true,
		EndDate:       time.Date(2017, 11, 20, 14, 0, 0, 0, time.UTC),
	}
}

func theorySlot(count int) AppointmentSlot {
	return AppointmentSlot{
		ID:                  "slot-theory",
		Type:                curriculum.Theoretical,
		StartTime:           time.Date(2017, 12, 1, 16, 0, 0, 0, time.UTC),
		AvailableUnits:      1,
		CurrentBookingCount: count,
	}
}

func practicalSlot(count int) AppointmentSlot {
	return AppointmentSlot{
		ID:                  "slot-practical",
		Type:                curriculum.Practical,
		StartTime:           time.Date(2017, 12, 1, 10, 0, 0, 0, time.UTC),
		AvailableUnits:      2,
		CurrentBookingCount: count,
	}
}

func TestCanBook_NewStudent(t *testing.T) {
	engine := NewEngine(testCatalog(t))

	t.Run("first theory slot allowed", func(t *testing.T) {
		decision, err := engine.CanBook(nil, theorySlot(0))
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Equal(t, 1, decision.TemplateID)
	})

	t.Run("practical denied before any theory", func(t *testing.T) {
		decision, err := engine.CanBook(nil, practicalSlot(0))
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Contains(t, decision.Reason, "3 theoretical lessons")
	})
}

func TestCanBook_Progression(t *testing.T) {
	engine := NewEngine(testCatalog(t))

	t.Run("next theory step allowed", func(t *testing.T) {
		history := []Lesson{completedLesson(1, 4)}
		decision, err := engine.CanBook(history, theorySlot(0))
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Equal(t, 2, decision.TemplateID)
	})

	t.Run("practical denied mid-theory block", func(t *testing.T) {
		history := []Lesson{completedLesson(1, 4)}
		decision, err := engine.CanBook(history, practicalSlot(0))
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		// next practical is id 4, so 4 - 1 - 1 = 2 theory lessons remain
		assert.Contains(t, decision.Reason, "2 more theoretical lessons")
	})

	t.Run("practical allowed right after theory block", func(t *testing.T) {
		history := []Lesson{
			completedLesson(1, 4),
			completedLesson(2, 4),
			completedLesson(3, 4),
		}
		decision, err := engine.CanBook(history, practicalSlot(0))
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Equal(t, 4, decision.TemplateID)
	})

	t.Run("incomplete progress does not count", func(t *testing.T) {
		history := []Lesson{
			completedLesson(1, 4),
			{UserID: "u1", TemplateID: 2, ProgressUnits: 2, Completed: true},
		}
		decision, err := engine.CanBook(history, theorySlot(0))
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		// template 2 is not done (2 of 4 units), so it is the next step again
		assert.Equal(t, 2, decision.TemplateID)
	})

	t.Run("curriculum exhausted for type", func(t *testing.T) {
		history := []Lesson{
			completedLesson(1, 4),
			completedLesson(2, 4),
			completedLesson(3, 4),
			completedLesson(4, 2),
			completedLesson(5, 4),
			completedLesson(6, 2),
		}
		decision, err := engine.CanBook(history, theorySlot(0))
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Contains(t, decision.Reason, "no further theoretical lessons")
	})
}

func TestCanBook_Capacity(t *testing.T) {
	engine := NewEngine(testCatalog(t))

	t.Run("full theory slot denied regardless of progress", func(t *testing.T) {
		decision, err := engine.CanBook(nil, theorySlot(24))
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, "this date is already fully booked", decision.Reason)
	})

	t.Run("full practical slot denied", func(t *testing.T) {
		history := []Lesson{
			completedLesson(1, 4),
			completedLesson(2, 4),
			completedLesson(3, 4),
		}
		decision, err := engine.CanBook(history, practicalSlot(1))
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, "this date is already fully booked", decision.Reason)
	})

	t.Run("capacity message wins over prerequisite message", func(t *testing.T) {
		// A brand-new student looking at a full practical slot should see
		// the capacity denial, not the prerequisite one.
		decision, err := engine.CanBook(nil, practicalSlot(1))
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, "this date is already fully booked", decision.Reason)
	})

	t.Run("undefined capacity fails closed", func(t *testing.T) {
		slot := AppointmentSlot{
			ID:             "slot-slippery",
			Type:           curriculum.Slippery,
			StartTime:      time.Now(),
			AvailableUnits: 1,
		}
		decision, err := engine.CanBook(nil, slot)
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Contains(t, decision.Reason, "no booking capacity is defined")
	})
}

func TestCanBook_DataFault(t *testing.T) {
	engine := NewEngine(testCatalog(t))

	history := []Lesson{completedLesson(42, 4)}
	_, err := engine.CanBook(history, theorySlot(0))
	assert.ErrorIs(t, err, curriculum.ErrTemplateNotFound)
}

func TestCanBook_Idempotent(t *testing.T) {
	engine := NewEngine(testCatalog(t))
	history := []Lesson{completedLesson(1, 4)}

	first, err := engine.CanBook(history, practicalSlot(0))
	require.NoError(t, err)
	second, err := engine.CanBook(history, practicalSlot(0))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
