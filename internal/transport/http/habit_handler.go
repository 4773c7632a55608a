package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"habitflow/internal/domain/entity"
	"habitflow/internal/domain/service"
)

// SyncRunner runs the day-boundary sync for a user.
type SyncRunner interface {
	SyncNewDay(ctx context.Context, userID uuid.UUID) (bool, error)
}

// HabitHandler handles habit-related HTTP requests
type HabitHandler struct {
	habits     service.HabitService
	experience service.ExperienceService
	sessions   service.SessionResolver
	gate       SyncRunner
}

// NewHabitHandler creates a new habit handler
func NewHabitHandler(habits service.HabitService, experience service.ExperienceService, sessions service.SessionResolver, gate SyncRunner) *HabitHandler {
	return &HabitHandler{
		habits:     habits,
		experience: experience,
		sessions:   sessions,
		gate:       gate,
	}
}

type habitResponse struct {
	ID              string                  `json:"id"`
	Name            string                  `json:"name"`
	Icon            *string                 `json:"icon,omitempty"`
	Unit            *string                 `json:"unit,omitempty"`
	GoalValue       int                     `json:"goal_value"`
	ProgressCount   int                     `json:"progress_count"`
	FrequencyType   string                  `json:"frequency_type"`
	FrequencyOption string                  `json:"frequency_option"`
	FrequencyDetail *entity.FrequencyDetail `json:"frequency_detail,omitempty"`
	Streak          int                     `json:"streak"`
	LongestStreak   int                     `json:"longest_streak"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

func toHabitResponse(h *entity.Habit) *habitResponse {
	return &habitResponse{
		ID:              h.ID.String(),
		Name:            h.Name,
		Icon:            h.Icon,
		Unit:            h.Unit,
		GoalValue:       h.GoalValue,
		ProgressCount:   h.ProgressCount,
		FrequencyType:   string(h.FrequencyType),
		FrequencyOption: string(h.FrequencyOption),
		FrequencyDetail: h.FrequencyDetail,
		Streak:          h.Streak,
		LongestStreak:   h.LongestStreak,
		CreatedAt:       h.CreatedAt,
		UpdatedAt:       h.UpdatedAt,
	}
}

type logResponse struct {
	Date      string `json:"date"`
	Value     int    `json:"value"`
	Completed bool   `json:"completed"`
}

// CreateHabit handles habit creation
func (h *HabitHandler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, err := h.sessions.CurrentUserID(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	var req struct {
		Name            string                  `json:"name"`
		Icon            *string                 `json:"icon"`
		Unit            *string                 `json:"unit"`
		GoalValue       int                     `json:"goal_value"`
		FrequencyType   string                  `json:"frequency_type"`
		FrequencyOption string                  `json:"frequency_option"`
		FrequencyDetail *entity.FrequencyDetail `json:"frequency_detail"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	habit, err := h.habits.CreateHabit(r.Context(), userID, service.CreateHabitParams{
		Name:            req.Name,
		Icon:            req.Icon,
		Unit:            req.Unit,
		GoalValue:       req.GoalValue,
		FrequencyType:   entity.FrequencyType(req.FrequencyType),
		FrequencyOption: entity.FrequencyOption(req.FrequencyOption),
		FrequencyDetail: req.FrequencyDetail,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toHabitResponse(habit))
}

// ListHabits returns all habits of the authenticated user
func (h *HabitHandler) ListHabits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, err := h.sessions.CurrentUserID(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	habits, err := h.habits.ListHabits(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]*habitResponse, 0, len(habits))
	for _, habit := range habits {
		out = append(out, toHabitResponse(habit))
	}

	writeJSON(w, http.StatusOK, map[string]any{"habits": out})
}

// GetHabit retrieves a single habit by ID
func (h *HabitHandler) GetHabit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, err := h.sessions.CurrentUserID(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	habitID, ok := habitIDFromQuery(w, r)
	if !ok {
		return
	}

	habit, err := h.habits.GetHabit(r.Context(), habitID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toHabitResponse(habit))
}

// UpdateHabit updates a habit's editable fields
func (h *HabitHandler) UpdateHabit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, err := h.sessions.CurrentUserID(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	habitID, ok := habitIDFromQuery(w, r)
	if !ok {
		return
	}

	var req struct {
		Name            *string                 `json:"name"`
		Icon            *string                 `json:"icon"`
		Unit            *string                 `json:"unit"`
		GoalValue       *int                    `json:"goal_value"`
		FrequencyType   *string                 `json:"frequency_type"`
		FrequencyOption *string                 `json:"frequency_option"`
		FrequencyDetail *entity.FrequencyDetail `json:"frequency_detail"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	params := service.UpdateHabitParams{
		Name:            req.Name,
		Icon:            req.Icon,
		Unit:            req.Unit,
		GoalValue:       req.GoalValue,
		FrequencyDetail: req.FrequencyDetail,
	}
	if req.FrequencyType != nil {
		ft := entity.FrequencyType(*req.FrequencyType)
		params.FrequencyType = &ft
	}
	if req.FrequencyOption != nil {
		fo := entity.FrequencyOption(*req.FrequencyOption)
		params.FrequencyOption = &fo
	}

	habit, err := h.habits.UpdateHabit(r.Context(), habitID, userID, params)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toHabitResponse(habit))
}

// DeleteHabit deletes a habit
func (h *HabitHandler) DeleteHabit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, err := h.sessions.CurrentUserID(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	habitID, ok := habitIDFromQuery(w, r)
	if !ok {
		return
	}

	if err := h.habits.DeleteHabit(r.Context(), habitID, userID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Habit deleted"})
}

// LogProgress records a progress delta for today
func (h *HabitHandler) LogProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, err := h.sessions.CurrentUserID(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	habitID, ok := habitIDFromQuery(w, r)
	if !ok {
		return
	}

	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Delta == 0 {
		writeError(w, http.StatusBadRequest, "delta must be non-zero")
		return
	}

	habit, err := h.habits.LogProgress(r.Context(), habitID, userID, req.Delta)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toHabitResponse(habit))
}

// GetHabitHistory returns a habit's log entries within a date range
func (h *HabitHandler) GetHabitHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, err := h.sessions.CurrentUserID(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	habitID, ok := habitIDFromQuery(w, r)
	if !ok {
		return
	}

	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if start == "" || end == "" {
		writeError(w, http.StatusBadRequest, "start and end are required")
		return
	}

	logs, err := h.habits.GetHabitHistory(r.Context(), habitID, userID, start, end)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	out := make([]*logResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, &logResponse{Date: l.Date, Value: l.Value, Completed: l.Completed})
	}

	writeJSON(w, http.StatusOK, map[string]any{"logs": out})
}

// SyncNewDay runs the once-per-day streak settlement for the user. Called by
// clients on app open; safe to call repeatedly.
func (h *HabitHandler) SyncNewDay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, err := h.sessions.CurrentUserID(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	ran, err := h.gate.SyncNewDay(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if ran {
		if _, err := h.experience.CheckComeback(r.Context(), userID); err != nil {
			log.Printf("[XP] comeback check failed for user %s: %v", userID, err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"ticked": ran})
}

// habitIDFromQuery parses the id query parameter
func habitIDFromQuery(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return uuid.Nil, false
	}

	habitID, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid habit ID")
		return uuid.Nil, false
	}

	return habitID, true
}
