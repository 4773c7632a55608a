package http

import (
	"net/http"

	"habitflow/internal/domain/service"
)

// ExperienceHandler handles XP and level HTTP requests
type ExperienceHandler struct {
	experience service.ExperienceService
	sessions   service.SessionResolver
}

// NewExperienceHandler creates a new experience handler
func NewExperienceHandler(experience service.ExperienceService, sessions service.SessionResolver) *ExperienceHandler {
	return &ExperienceHandler{experience: experience, sessions: sessions}
}

// GetProfile returns the user's XP total and level
func (h *ExperienceHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, err := h.sessions.CurrentUserID(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	profile, err := h.experience.GetProfile(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":           profile.UserID.String(),
		"experience_points": profile.ExperiencePoints,
		"current_level":     profile.CurrentLevel,
	})
}

// GetLevelInfo returns the user's position within the level table
func (h *ExperienceHandler) GetLevelInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, err := h.sessions.CurrentUserID(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	info, err := h.experience.GetLevelInfo(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"current_level":       info.CurrentLevel,
		"next_level":          info.NextLevel,
		"current_level_xp":    info.CurrentLevelXP,
		"next_level_xp":       info.NextLevelXP,
		"xp_in_current_level": info.XPInCurrentLevel,
		"xp_needed_for_next":  info.XPNeededForNext,
		"progress_percentage": info.ProgressPercentage,
		"is_max_level":        info.IsMaxLevel,
	})
}
