package curriculum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTemplates() []LessonTemplate {
	return []LessonTemplate{
		{ID: 1, Type: Theoretical, Title: "Intro", Description: "Traffic basics", RequiredProgressUnits: 4},
		{ID: 2, Type: Theoretical, Title: "Signs", Description: "Road signs", RequiredProgressUnits: 4},
		{ID: 3, Type: Practical, Title: "First drive", Description: "City driving", RequiredProgressUnits: 2},
		{ID: 4, Type: Theoretical, Title: "Rules", Description: "Right of way", RequiredProgressUnits: 4},
		{ID: 5, Type: Manoeuvre, Title: "Manoeuvre track", Description: "Closed track", RequiredProgressUnits: 1},
		{ID: 6, Type: Practical, Title: "Highway", Description: "Highway driving", RequiredProgressUnits: 2},
	}
}

func TestNewCatalog(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		c, err := NewCatalog(testTemplates())
		require.NoError(t, err)
		assert.Equal(t, 6, c.Len())
		assert.Equal(t, 1, c.First().ID)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := NewCatalog(nil)
		assert.ErrorIs(t, err, ErrEmptyCatalog)
	})

	t.Run("gap in ids", func(t *testing.T) {
		templates := testTemplates()
		templates[3].ID = 7
		_, err := NewCatalog(templates)
		assert.ErrorIs(t, err, ErrBrokenOrdering)
	})

	t.Run("does not start at one", func(t *testing.T) {
		templates := testTemplates()[1:]
		_, err := NewCatalog(templates)
		assert.ErrorIs(t, err, ErrBrokenOrdering)
	})

	t.Run("invalid type", func(t *testing.T) {
		templates := testTemplates()
		templates[0].Type = LessonType("unknown")
		_, err := NewCatalog(templates)
		assert.ErrorIs(t, err, ErrInvalidTemplate)
	})

	t.Run("zero progress units", func(t *testing.T) {
		templates := testTemplates()
		templates[2].RequiredProgressUnits = 0
		_, err := NewCatalog(templates)
		assert.ErrorIs(t, err, ErrInvalidTemplate)
	})
}

func TestCatalog_FindTemplate(t *testing.T) {
	c, err := NewCatalog(testTemplates())
	require.NoError(t, err)

	tmpl, err := c.FindTemplate(3)
	require.NoError(t, err)
	assert.Equal(t, Practical, tmpl.Type)
	assert.Equal(t, "First drive", tmpl.Title)

	_, err = c.FindTemplate(0)
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	_, err = c.FindTemplate(7)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestCatalog_NextTemplateOfType(t *testing.T) {
	c, err := NewCatalog(testTemplates())
	require.NoError(t, err)

	t.Run("immediate next", func(t *testing.T) {
		tmpl, err := c.NextTemplateOfType(1, Theoretical)
		require.NoError(t, err)
		assert.Equal(t, 2, tmpl.ID)
	})

	t.Run("skips other types", func(t *testing.T) {
		tmpl, err := c.NextTemplateOfType(3, Practical)
		require.NoError(t, err)
		assert.Equal(t, 6, tmpl.ID)
	})

	t.Run("strictly after", func(t *testing.T) {
		tmpl, err := c.NextTemplateOfType(2, Practical)
		require.NoError(t, err)
		assert.Equal(t, 3, tmpl.ID)
	})

	t.Run("exhausted", func(t *testing.T) {
		_, err := c.NextTemplateOfType(6, Theoretical)
		assert.ErrorIs(t, err, ErrNoFurtherTemplate)
	})

	t.Run("no such type at all", func(t *testing.T) {
		_, err := c.NextTemplateOfType(0, Slippery)
		assert.ErrorIs(t, err, ErrNoFurtherTemplate)
	})
}

func TestLessonType(t *testing.T) {
	assert.True(t, Theoretical.IsValid())
	assert.True(t, Other.IsValid())
	assert.False(t, LessonType("driving").IsValid())

	complement, ok := Theoretical.Complement()
	assert.True(t, ok)
	assert.Equal(t, Practical, complement)

	complement, ok = Practical.Complement()
	assert.True(t, ok)
	assert.Equal(t, Theoretical, complement)

	_, ok = Manoeuvre.Complement()
	assert.False(t, ok)
}

func TestLessonType_Capacity(t *testing.T) {
	capacity, ok := Theoretical.Capacity()
	assert.True(t, ok)
	assert.Equal(t, 24, capacity)

	capacity, ok = Practical.Capacity()
	assert.True(t, ok)
	assert.Equal(t, 1, capacity)

	// No configured capacity for the remaining types: bookings fail closed.
	for _, lt := range []LessonType{Manoeuvre, Slippery, Other} {
		_, ok := lt.Capacity()
		assert.False(t, ok)
	}
}
