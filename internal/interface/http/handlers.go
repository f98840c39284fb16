package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/drivelog-hub/drivelog/internal/application/command"
	"github.com/drivelog-hub/drivelog/internal/application/query"
	"github.com/drivelog-hub/drivelog/internal/domain/booking"
	"github.com/drivelog-hub/drivelog/internal/domain/curriculum"
	"github.com/drivelog-hub/drivelog/internal/domain/shared"
	"github.com/drivelog-hub/drivelog/internal/domain/user"
	"github.com/drivelog-hub/drivelog/internal/domain/validation"
	"github.com/drivelog-hub/drivelog/pkg/logger"
	"github.com/drivelog-hub/drivelog/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROUTES
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) setupRoutes() {
	// Status
	s.router.HandleFunc("GET /", s.handleRoot)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /live", s.handleLive)

	// Form field validation (stateless, used live while typing)
	s.router.HandleFunc("POST /api/v1/validate", s.handleValidateField)
	s.router.HandleFunc("POST /api/v1/password/strength", s.handlePasswordStrength)

	// Users
	s.router.HandleFunc("POST /api/v1/users", s.handleRegisterUser)
	s.router.HandleFunc("PUT /api/v1/users/{id}", s.handleUpdateProfile)
	s.router.HandleFunc("GET /api/v1/users/{id}/drivelog", s.handleGetDriveLog)
	s.router.HandleFunc("GET /api/v1/users/{id}/bookings", s.handleListBookings)

	// Scheduling
	s.router.HandleFunc("GET /api/v1/slots", s.handleListSlots)
	s.router.HandleFunc("POST /api/v1/slots", s.handleCreateSlot)
	s.router.HandleFunc("GET /api/v1/slots/{id}/eligibility", s.handleCheckEligibility)
	s.router.HandleFunc("POST /api/v1/bookings", s.handleBookLesson)
	s.router.HandleFunc("DELETE /api/v1/bookings/{id}", s.handleCancelBooking)
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONError(w, http.StatusNotFound, "not_found", "Unknown endpoint")
		return
	}

	info := map[string]interface{}{
		"name":        "DriveLog API",
		"version":     "v1",
		"description": "REST API for DriveLog - driving school registration, curriculum and booking",
		"endpoints": map[string]string{
			"health":      "/health",
			"validate":    "/api/v1/validate",
			"users":       "/api/v1/users",
			"slots":       "/api/v1/slots",
			"eligibility": "/api/v1/slots/{id}/eligibility",
			"bookings":    "/api/v1/bookings",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"uptime": s.Uptime().String(),
	})
}

// handleReady handles the readiness probe: all registered dependency
// checkers must pass.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	for name, check := range s.deps.HealthCheckers {
		if err := check(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", logger.String("dependency", name), logger.Err(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": name + " unavailable",
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// VALIDATION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// fieldValidators maps form field names to their validator.
// An unknown field name is a client error, not an invalid value.
var fieldValidators = map[string]func(string) bool{
	"username":   validation.Username,
	"firstname":  validation.PersonalName,
	"lastname":   validation.PersonalName,
	"phone":      validation.Phone,
	"email":      validation.Email,
	"cpr":        validation.CPR,
	"address":    validation.Address,
	"postalcode": validation.PostalCode,
	"city":       validation.PersonalName,
	"password":   validation.Password,
}

type validateFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// handleValidateField handles POST /api/v1/validate.
// The registration form calls this on blur, one field at a time.
func (s *Server) handleValidateField(w http.ResponseWriter, r *http.Request) {
	var req validateFieldRequest
	if !decodeBody(w, r, &req) {
		return
	}

	validate, ok := fieldValidators[req.Field]
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "unknown_field", "Unknown field: "+req.Field)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"field": req.Field,
		"valid": validate(req.Value),
	})
}

type passwordStrengthRequest struct {
	Password string `json:"password"`
}

// handlePasswordStrength handles POST /api/v1/password/strength.
// The score is advisory; the valid flag alone gates registration.
func (s *Server) handlePasswordStrength(w http.ResponseWriter, r *http.Request) {
	var req passwordStrengthRequest
	if !decodeBody(w, r, &req) {
		return
	}

	score := validation.PasswordStrength(req.Password)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid": validation.Password(req.Password),
		"score": score,
		"band":  validation.BandFor(score),
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// USER HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type profileRequest struct {
	Username   string `json:"username"`
	FirstName  string `json:"firstname"`
	LastName   string `json:"lastname"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	CPR        string `json:"cpr"`
	Address    string `json:"address"`
	PostalCode string `json:"postalcode"`
	City       string `json:"city"`
	PictureURL string `json:"picture_url"`
}

func (p profileRequest) toProfile() user.Profile {
	return user.Profile{
		Username:   p.Username,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Phone:      p.Phone,
		Email:      p.Email,
		CPR:        p.CPR,
		Address:    p.Address,
		PostalCode: p.PostalCode,
		City:       p.City,
		PictureURL: p.PictureURL,
	}
}

type registerUserRequest struct {
	profileRequest
	Password   string `json:"password"`
	Instructor bool   `json:"instructor"`
}

// handleRegisterUser handles POST /api/v1/users.
func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	if s.deps.RegisterUser == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Registration is not configured")
		return
	}

	var req registerUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.RegisterUser.Handle(r.Context(), command.RegisterUserCommand{
		Profile:       req.toProfile(),
		Password:      req.Password,
		Instructor:    req.Instructor,
		CorrelationID: requestIDFrom(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"user_id":        result.UserID,
		"password_score": result.PasswordScore,
		"password_band":  result.PasswordBand,
	})
}

type updateProfileRequest struct {
	profileRequest
	NewPassword string `json:"new_password"`
}

// handleUpdateProfile handles PUT /api/v1/users/{id}.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	if s.deps.UpdateProfile == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Profile editing is not configured")
		return
	}

	var req updateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.UpdateProfile.Handle(r.Context(), command.UpdateProfileCommand{
		UserID:        r.PathValue("id"),
		Profile:       req.toProfile(),
		NewPassword:   req.NewPassword,
		CorrelationID: requestIDFrom(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"password_changed": result.PasswordChanged,
	})
}

// handleGetDriveLog handles GET /api/v1/users/{id}/drivelog.
func (s *Server) handleGetDriveLog(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetDriveLog == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Drive log is not configured")
		return
	}

	view, err := s.deps.GetDriveLog.Handle(r.Context(), query.GetDriveLogQuery{
		UserID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	entries := make([]map[string]interface{}, 0, len(view.Entries))
	for _, e := range view.Entries {
		entry := map[string]interface{}{
			"template_id":     e.TemplateID,
			"title":           e.Title,
			"description":     e.Description,
			"type":            e.Type,
			"attempted":       e.Attempted,
			"completed":       e.Completed,
			"progress_units":  e.ProgressUnits,
			"required_units":  e.RequiredUnits,
			"instructor_name": e.InstructorName,
		}
		if e.Completed {
			entry["completed_at"] = e.CompletedAt.Format(time.RFC3339)
		}
		entries = append(entries, entry)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":         view.UserID,
		"full_name":       view.FullName,
		"completed_count": view.CompletedCount,
		"entries":         entries,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULING HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListSlots handles GET /api/v1/slots?from=RFC3339.
// Without a from parameter the calendar shows slots from now on.
func (s *Server) handleListSlots(w http.ResponseWriter, r *http.Request) {
	if s.deps.Slots == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Slot listing is not configured")
		return
	}

	from := time.Now()
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "from must be an RFC 3339 timestamp")
			return
		}
		from = parsed
	}

	slots, err := s.deps.Slots.ListUpcoming(r.Context(), from)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	views := make([]map[string]interface{}, 0, len(slots))
	for _, slot := range slots {
		view := map[string]interface{}{
			"id":              slot.ID,
			"type":            slot.Type.String(),
			"start_time":      slot.StartTime.Format(time.RFC3339),
			"end_time":        slot.EndTime().Format(time.RFC3339),
			"date":            timeutil.SlotDate(slot.StartTime),
			"time_range":      timeutil.SlotTimeRange(slot.StartTime, slot.EndTime()),
			"available_units": slot.AvailableUnits,
			"instructor_name": slot.InstructorName,
			"fully_booked":    slot.FullyBooked(),
		}
		if line, ok := slot.StatusLine(); ok {
			view["status_line"] = line
		}
		views = append(views, view)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"slots": views,
		"count": len(views),
	})
}

// handleCheckEligibility handles GET /api/v1/slots/{id}/eligibility?user_id=...
func (s *Server) handleCheckEligibility(w http.ResponseWriter, r *http.Request) {
	if s.deps.CheckEligibility == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Eligibility checks are not configured")
		return
	}

	view, err := s.deps.CheckEligibility.Handle(r.Context(), query.CheckEligibilityQuery{
		UserID: r.URL.Query().Get("user_id"),
		SlotID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"slot_id":     view.SlotID,
		"allowed":     view.Decision.Allowed,
		"reason":      view.Decision.Reason,
		"status_line": view.StatusLine,
	})
}

type bookLessonRequest struct {
	UserID string `json:"user_id"`
	SlotID string `json:"slot_id"`
}

// handleBookLesson handles POST /api/v1/bookings.
// A denied booking is 200 with allowed=false; only actual failures are errors.
func (s *Server) handleBookLesson(w http.ResponseWriter, r *http.Request) {
	if s.deps.BookLesson == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Booking is not configured")
		return
	}

	var req bookLessonRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.BookLesson.Handle(r.Context(), command.BookLessonCommand{
		UserID:        req.UserID,
		SlotID:        req.SlotID,
		CorrelationID: requestIDFrom(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if !result.Decision.Allowed {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"allowed": false,
			"reason":  result.Decision.Reason,
		})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"allowed":     true,
		"booking_id":  result.Booking.ID,
		"template_id": result.Booking.TemplateID,
		"reason":      result.Decision.Reason,
	})
}

// handleCancelBooking handles DELETE /api/v1/bookings/{id}?user_id=...
func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	if s.deps.CancelBooking == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Cancellation is not configured")
		return
	}

	err := s.deps.CancelBooking.Handle(r.Context(), command.CancelBookingCommand{
		UserID:        r.URL.Query().Get("user_id"),
		BookingID:     r.PathValue("id"),
		CorrelationID: requestIDFrom(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"canceled": true})
}

// handleListBookings handles GET /api/v1/users/{id}/bookings.
func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	if s.deps.Bookings == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Booking listing is not configured")
		return
	}

	bookings, err := s.deps.Bookings.ListByUser(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	views := make([]map[string]interface{}, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, map[string]interface{}{
			"id":          b.ID,
			"slot_id":     b.SlotID,
			"template_id": b.TemplateID,
			"created_at":  b.CreatedAt.Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"bookings": views,
		"count":    len(views),
	})
}

type createSlotRequest struct {
	InstructorID   string `json:"instructor_id"`
	Type           string `json:"type"`
	StartTime      string `json:"start_time"`
	AvailableUnits int    `json:"available_units"`
}

// handleCreateSlot handles POST /api/v1/slots (instructors only).
func (s *Server) handleCreateSlot(w http.ResponseWriter, r *http.Request) {
	if s.deps.CreateSlot == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Slot creation is not configured")
		return
	}

	var req createSlotRequest
	if !decodeBody(w, r, &req) {
		return
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "start_time must be an RFC 3339 timestamp")
		return
	}

	slot, err := s.deps.CreateSlot.Handle(r.Context(), command.CreateSlotCommand{
		InstructorID:   req.InstructorID,
		Type:           curriculum.LessonType(req.Type),
		StartTime:      start,
		AvailableUnits: req.AvailableUnits,
		CorrelationID:  requestIDFrom(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":              slot.ID,
		"type":            slot.Type.String(),
		"start_time":      slot.StartTime.Format(time.RFC3339),
		"instructor_name": slot.InstructorName,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST & ERROR HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// decodeBody reads a JSON request body; on failure it writes the error
// response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Could not read request body")
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "Request body must be valid JSON")
		return false
	}
	return true
}

// fieldErrors maps per-field validation errors to their API code.
var fieldErrors = map[error]string{
	user.ErrInvalidUsername:   "invalid_username",
	user.ErrInvalidFirstName:  "invalid_firstname",
	user.ErrInvalidLastName:   "invalid_lastname",
	user.ErrInvalidPhone:      "invalid_phone",
	user.ErrInvalidEmail:      "invalid_email",
	user.ErrInvalidCPR:        "invalid_cpr",
	user.ErrInvalidAddress:    "invalid_address",
	user.ErrInvalidPostalCode: "invalid_postalcode",
	user.ErrInvalidCity:       "invalid_city",
	user.ErrInvalidPassword:   "invalid_password",
}

// writeDomainError translates domain errors into HTTP responses.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	for fieldErr, code := range fieldErrors {
		if errors.Is(err, fieldErr) {
			writeJSONError(w, http.StatusBadRequest, code, fieldErr.Error())
			return
		}
	}

	switch {
	case errors.Is(err, user.ErrUserNotFound):
		writeJSONError(w, http.StatusNotFound, "user_not_found", "User not found")
	case errors.Is(err, booking.ErrSlotNotFound):
		writeJSONError(w, http.StatusNotFound, "slot_not_found", "Appointment slot not found")
	case errors.Is(err, booking.ErrBookingNotFound):
		writeJSONError(w, http.StatusNotFound, "booking_not_found", "Booking not found")
	case errors.Is(err, user.ErrNotInstructor):
		writeJSONError(w, http.StatusForbidden, "not_instructor", "Only instructors can do this")
	case errors.Is(err, booking.ErrInvalidSlot):
		writeJSONError(w, http.StatusBadRequest, "invalid_slot", err.Error())
	case errors.Is(err, user.ErrUserAlreadyExists):
		writeJSONError(w, http.StatusConflict, "user_already_exists", "Username, email or CPR is already registered")
	case errors.Is(err, booking.ErrAlreadyBooked):
		writeJSONError(w, http.StatusConflict, "already_booked", "You already have a booking for this slot")
	case errors.Is(err, shared.ErrAlreadyExists):
		writeJSONError(w, http.StatusConflict, "already_exists", "The record already exists")
	case errors.Is(err, shared.ErrInvalidID), errors.Is(err, shared.ErrValidation), errors.Is(err, shared.ErrInvalidInput):
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		s.logger.Error("request failed", logger.Err(err))
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
