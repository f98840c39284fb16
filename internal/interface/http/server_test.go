package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivelog-hub/drivelog/internal/domain/booking"
	"github.com/drivelog-hub/drivelog/internal/domain/curriculum"
)

// ─────────────────────────────────────────────────────────────────────────────
// Test fixtures
// ─────────────────────────────────────────────────────────────────────────────

type stubSlots struct {
	slots []booking.AppointmentSlot
}

func (s *stubSlots) GetByID(ctx context.Context, id string) (booking.AppointmentSlot, error) {
	for _, slot := range s.slots {
		if slot.ID == id {
			return slot, nil
		}
	}
	return booking.AppointmentSlot{}, booking.ErrSlotNotFound
}

func (s *stubSlots) ListUpcoming(ctx context.Context, from time.Time) ([]booking.AppointmentSlot, error) {
	var out []booking.AppointmentSlot
	for _, slot := range s.slots {
		if !slot.StartTime.Before(from) {
			out = append(out, slot)
		}
	}
	return out, nil
}

func newTestServer(t *testing.T, deps Dependencies) *Server {
	t.Helper()
	config := DefaultConfig()
	config.RateLimitPerMinute = 0
	return NewServer(config, deps)
}

func doRequest(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, JSONResponse) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)

	var envelope JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return rec, envelope
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, Dependencies{})

	rec, envelope := doRequest(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, envelope.Success)

	rec, _ = doRequest(t, s, http.MethodGet, "/live", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyReportsFailingDependency(t *testing.T) {
	s := newTestServer(t, Dependencies{
		HealthCheckers: map[string]HealthChecker{
			"postgres": func(ctx context.Context) error { return context.DeadlineExceeded },
		},
	})

	rec, _ := doRequest(t, s, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestValidateField(t *testing.T) {
	s := newTestServer(t, Dependencies{})

	tests := []struct {
		name  string
		body  string
		valid bool
	}{
		{"valid username", `{"field":"username","value":"jens.hansen"}`, true},
		{"username with adjacent specials", `{"field":"username","value":"jens..hansen"}`, false},
		{"valid cpr", `{"field":"cpr","value":"070485-0018"}`, true},
		{"cpr failing checksum", `{"field":"cpr","value":"0704850019"}`, false},
		{"valid phone", `{"field":"phone","value":"28915048"}`, true},
		{"phone too short", `{"field":"phone","value":"289150"}`, false},
		{"valid address with floor", `{"field":"address","value":"Bredgade 29 2tv"}`, true},
		{"address missing number", `{"field":"address","value":"Bredgade"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, envelope := doRequest(t, s, http.MethodPost, "/api/v1/validate", tt.body)
			require.Equal(t, http.StatusOK, rec.Code)

			data := envelope.Data.(map[string]interface{})
			assert.Equal(t, tt.valid, data["valid"])
		})
	}
}

func TestValidateFieldRejectsUnknownField(t *testing.T) {
	s := newTestServer(t, Dependencies{})

	rec, envelope := doRequest(t, s, http.MethodPost, "/api/v1/validate", `{"field":"nickname","value":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "unknown_field", envelope.Error.Code)
}

func TestPasswordStrength(t *testing.T) {
	s := newTestServer(t, Dependencies{})

	rec, envelope := doRequest(t, s, http.MethodPost, "/api/v1/password/strength", `{"password":"Troels123Kun"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	data := envelope.Data.(map[string]interface{})
	assert.Equal(t, true, data["valid"])
	assert.Equal(t, float64(18), data["score"])
	assert.NotEmpty(t, data["band"])
}

func TestListSlots(t *testing.T) {
	start := time.Now().Add(24 * time.Hour)
	s := newTestServer(t, Dependencies{
		Slots: &stubSlots{slots: []booking.AppointmentSlot{
			{
				ID:             "slot-1",
				Type:           curriculum.Theoretical,
				StartTime:      start,
				AvailableUnits: 4,
				InstructorName: "Bent",
			},
		}},
	})

	rec, envelope := doRequest(t, s, http.MethodGet, "/api/v1/slots", "")
	require.Equal(t, http.StatusOK, rec.Code)

	data := envelope.Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["count"])

	slots := data["slots"].([]interface{})
	slot := slots[0].(map[string]interface{})
	assert.Equal(t, "slot-1", slot["id"])
	assert.Equal(t, "Booking status 0/24", slot["status_line"])
	assert.Equal(t, false, slot["fully_booked"])
}

func TestListSlotsRejectsBadFromParameter(t *testing.T) {
	s := newTestServer(t, Dependencies{Slots: &stubSlots{}})

	rec, envelope := doRequest(t, s, http.MethodGet, "/api/v1/slots?from=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "invalid_parameter", envelope.Error.Code)
}

func TestInvalidJSONBody(t *testing.T) {
	s := newTestServer(t, Dependencies{})

	rec, envelope := doRequest(t, s, http.MethodPost, "/api/v1/validate", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "invalid_json", envelope.Error.Code)
}
