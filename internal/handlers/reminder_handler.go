package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/white/sales-tracker/internal/services"
)

// ReminderHandler exposes the reminder dispatch job to an external
// scheduler. The endpoint is gated by a static bearer token; unauthorized
// callers are rejected before any processing happens.
type ReminderHandler struct {
	reminders *services.ReminderService
	jobToken  string
}

func NewReminderHandler(reminders *services.ReminderService, jobToken string) *ReminderHandler {
	return &ReminderHandler{
		reminders: reminders,
		jobToken:  jobToken,
	}
}

// RunDispatch godoc
// @Summary Run the next-action reminder dispatch job
// @Description Selects every next action due tomorrow in the business
// @Description timezone and notifies the owning user. Idempotent per record.
// @Tags Jobs
// @Produce json
// @Security SchedulerToken
// @Success 200 {object} services.DispatchSummary
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /api/v1/jobs/reminders [post]
func (h *ReminderHandler) RunDispatch(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.jobToken)) != 1 {
		respondWithError(w, http.StatusUnauthorized, "Invalid scheduler token")
		return
	}

	summary, err := h.reminders.Run(r.Context(), time.Now())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Reminder dispatch failed")
		return
	}

	// A non-zero errors count is reported in the body but does not change
	// the HTTP status: the invocation itself succeeded.
	respondWithJSON(w, http.StatusOK, summary)
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
