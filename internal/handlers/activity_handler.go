package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/white/sales-tracker/internal/audit"
	"github.com/white/sales-tracker/internal/middleware"
	"github.com/white/sales-tracker/internal/models"
	"github.com/white/sales-tracker/internal/repositories"
	"github.com/white/sales-tracker/internal/services"
	"github.com/white/sales-tracker/pkg/uuid"
)

// ActivityHandler exposes the next-action lifecycle and generic activity
// edits. Every mutation funnels through the audit recorder; the recorder is
// fire-and-forget and can never fail the response.
type ActivityHandler struct {
	activityRepo *repositories.ActivityRepository
	recorder     *audit.Recorder
}

func NewActivityHandler(activityRepo *repositories.ActivityRepository, recorder *audit.Recorder) *ActivityHandler {
	return &ActivityHandler{
		activityRepo: activityRepo,
		recorder:     recorder,
	}
}

func actorFromRequest(r *http.Request) audit.Actor {
	return audit.Actor{
		ID:   middleware.GetUserID(r),
		Name: middleware.GetUserName(r),
		Role: middleware.GetUserRole(r),
	}
}

func requestInfo(r *http.Request) audit.RequestInfo {
	return audit.RequestInfo{
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	}
}

// nextActionSnapshot maps the slot into the field names used in audit diffs.
func nextActionSnapshot(f services.NextActionFields) map[string]interface{} {
	return map[string]interface{}{
		"nextActionType":         f.Type,
		"nextActionDetails":      f.Details,
		"nextActionDate":         f.Date,
		"nextActionStatus":       f.Status,
		"nextActionReminderSent": f.ReminderSent,
		"nextActionCompletedAt":  f.CompletedAt,
	}
}

// GetActivity godoc
// @Summary Get an activity
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Activity
// @Router /api/v1/activities/{id} [get]
func (h *ActivityHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	activity, err := h.activityRepo.GetActivityByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrActivityNotFound) {
			respondWithError(w, http.StatusNotFound, "Activity not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch activity")
		return
	}

	respondWithJSON(w, http.StatusOK, activity)
}

// CreateActivityRequest is the body for logging a new activity. A next
// action may be attached at creation time.
type CreateActivityRequest struct {
	ActivityType   string                `json:"activityType"`
	Subject        string                `json:"subject"`
	Outcome        string                `json:"outcome,omitempty"`
	Notes          string                `json:"notes,omitempty"`
	ProspectID     string                `json:"prospectId,omitempty"`
	SampleProducts []string              `json:"sampleProducts,omitempty"`
	NextAction     *SetNextActionRequest `json:"nextAction,omitempty"`
}

func (req *CreateActivityRequest) validate() string {
	if req.ActivityType == "" {
		return "Activity type is required"
	}
	if req.Subject == "" {
		return "Subject is required"
	}
	if req.ProspectID != "" {
		if err := uuid.ValidateUUID(req.ProspectID); err != nil {
			return "Invalid prospect id"
		}
	}
	if req.NextAction != nil {
		if req.NextAction.Type == "" && req.NextAction.Details == "" && req.NextAction.Date == nil {
			return "Next action must not be empty when supplied"
		}
		if msg := req.NextAction.validate(); msg != "" {
			return msg
		}
	}
	return ""
}

// CreateActivity godoc
// @Summary Log a new activity
// @Tags Activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.Activity
// @Router /api/v1/activities [post]
func (h *ActivityHandler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	info := requestInfo(r)

	var req CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respondWithError(w, http.StatusBadRequest, msg)
		return
	}

	activity := &models.Activity{
		ID:             uuid.MustNewUUID(),
		ActivityType:   req.ActivityType,
		Subject:        req.Subject,
		Outcome:        req.Outcome,
		Notes:          req.Notes,
		ProspectID:     req.ProspectID,
		SampleProducts: req.SampleProducts,
		Owner:          actor.ID,
		CreatedBy:      actor.ID,
	}
	if req.NextAction != nil {
		fields := services.DefineNextAction(services.NextActionFields{}, services.NextActionDefinition{
			Type:    models.NextActionType(req.NextAction.Type),
			Details: req.NextAction.Details,
			Date:    req.NextAction.Date,
		})
		fields.ApplyToActivity(activity)
	}

	if err := h.activityRepo.CreateActivity(r.Context(), activity); err != nil {
		h.recorder.RecordFailure(actor, models.EntityActivity, activity.ID, err.Error(), info)
		respondWithError(w, http.StatusInternalServerError, "Failed to create activity")
		return
	}

	h.recorder.RecordSnapshot(models.AuditActionCreate, actor, models.EntityActivity, activity.ID, activity, info)
	respondWithJSON(w, http.StatusCreated, activity)
}

// ListActivities godoc
// @Summary List the caller's activities, newest first
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Activity
// @Router /api/v1/activities [get]
func (h *ActivityHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 200 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	activities, err := h.activityRepo.GetActivitiesByOwner(r.Context(), middleware.GetUserID(r), limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list activities")
		return
	}
	if activities == nil {
		activities = []*models.Activity{}
	}

	respondWithJSON(w, http.StatusOK, activities)
}

// SetNextActionRequest is the body for define/replace. All three fields
// empty means "remove next action".
type SetNextActionRequest struct {
	Type    string     `json:"type,omitempty"`
	Details string     `json:"details,omitempty"`
	Date    *time.Time `json:"date,omitempty"`
}

func (req *SetNextActionRequest) validate() string {
	if req.Type == "" && req.Details == "" && req.Date == nil {
		return "" // removal
	}
	if req.Type != "" {
		switch models.NextActionType(req.Type) {
		case models.NextActionCallProspect, models.NextActionEmailProspect,
			models.NextActionScheduleMeeting, models.NextActionSendSamples,
			models.NextActionSelfReminder, models.NextActionCustomTask:
		default:
			return "Unknown next action type"
		}
	}
	if req.Date == nil {
		return "Next action date is required when type or details are set"
	}
	if models.NextActionType(req.Type) == models.NextActionCustomTask && req.Details == "" {
		return "Details are required for a custom task"
	}
	return ""
}

// SetNextAction godoc
// @Summary Define, replace or remove the next action on an activity
// @Tags Activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Activity
// @Router /api/v1/activities/{id}/next-action [put]
func (h *ActivityHandler) SetNextAction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	actor := actorFromRequest(r)
	info := requestInfo(r)

	var req SetNextActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		respondWithError(w, http.StatusBadRequest, msg)
		return
	}

	activity, err := h.activityRepo.GetActivityByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrActivityNotFound) {
			respondWithError(w, http.StatusNotFound, "Activity not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch activity")
		return
	}

	current := services.NextActionFromActivity(activity)

	var next services.NextActionFields
	if req.Type == "" && req.Details == "" && req.Date == nil {
		next = services.RemoveNextAction(current)
	} else {
		next = services.DefineNextAction(current, services.NextActionDefinition{
			Type:    models.NextActionType(req.Type),
			Details: req.Details,
			Date:    req.Date,
		})
	}

	h.persistNextAction(w, r, activity, actor, info, current, next)
}

// CompleteNextActionRequest optionally overrides the completion timestamp.
type CompleteNextActionRequest struct {
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// CompleteNextAction godoc
// @Summary Mark the next action completed
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Activity
// @Router /api/v1/activities/{id}/next-action/complete [post]
func (h *ActivityHandler) CompleteNextAction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	actor := actorFromRequest(r)
	info := requestInfo(r)

	var req CompleteNextActionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	activity, err := h.activityRepo.GetActivityByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrActivityNotFound) {
			respondWithError(w, http.StatusNotFound, "Activity not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch activity")
		return
	}
	if !activity.HasNextAction() {
		respondWithError(w, http.StatusBadRequest, "Activity has no next action")
		return
	}

	now := time.Now().UTC()
	if req.CompletedAt != nil {
		now = *req.CompletedAt
	}

	current := services.NextActionFromActivity(activity)
	next := services.CompleteNextAction(current, now)

	h.persistNextAction(w, r, activity, actor, info, current, next)
}

// CancelNextAction godoc
// @Summary Mark the next action cancelled
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Activity
// @Router /api/v1/activities/{id}/next-action/cancel [post]
func (h *ActivityHandler) CancelNextAction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	actor := actorFromRequest(r)
	info := requestInfo(r)

	activity, err := h.activityRepo.GetActivityByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrActivityNotFound) {
			respondWithError(w, http.StatusNotFound, "Activity not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch activity")
		return
	}
	if !activity.HasNextAction() {
		respondWithError(w, http.StatusBadRequest, "Activity has no next action")
		return
	}

	current := services.NextActionFromActivity(activity)
	next := services.CancelNextAction(current)

	h.persistNextAction(w, r, activity, actor, info, current, next)
}

// persistNextAction writes the computed slot back, records the field diff,
// and responds with the updated activity. A storage failure still leaves a
// FAILED trace in the audit log.
func (h *ActivityHandler) persistNextAction(
	w http.ResponseWriter,
	r *http.Request,
	activity *models.Activity,
	actor audit.Actor,
	info audit.RequestInfo,
	current, next services.NextActionFields,
) {
	next.ApplyToActivity(activity)

	if err := h.activityRepo.UpdateActivity(r.Context(), activity); err != nil {
		h.recorder.RecordFailure(actor, models.EntityActivity, activity.ID, err.Error(), info)
		respondWithError(w, http.StatusInternalServerError, "Failed to update activity")
		return
	}

	changes := audit.Diff(nextActionSnapshot(current), nextActionSnapshot(next))
	h.recorder.RecordChange(models.AuditActionUpdate, actor, models.EntityActivity, activity.ID, changes, info)

	respondWithJSON(w, http.StatusOK, activity)
}

// UpdateActivityRequest is the body for a generic activity edit. Pointer
// fields distinguish "absent" from "set to empty": only supplied fields are
// applied and only supplied fields ever appear in the audit diff.
type UpdateActivityRequest struct {
	Subject             *string    `json:"subject,omitempty"`
	Outcome             *string    `json:"outcome,omitempty"`
	Notes               *string    `json:"notes,omitempty"`
	SampleProducts      *[]string  `json:"sampleProducts,omitempty"`
	NextActionType      *string    `json:"nextActionType,omitempty"`
	NextActionDetails   *string    `json:"nextActionDetails,omitempty"`
	NextActionDate      *time.Time `json:"nextActionDate,omitempty"`
	NextActionStatus    *string    `json:"nextActionStatus,omitempty"`
	ClearNextActionDate bool       `json:"clearNextActionDate,omitempty"`
}

// UpdateActivity godoc
// @Summary Edit activity fields
// @Description Generic partial update. Edits touching the next-action fields
// @Description force the reminder flag back to false so a reminder sent for
// @Description an old due date never suppresses one for the new date.
// @Tags Activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Activity
// @Router /api/v1/activities/{id} [patch]
func (h *ActivityHandler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	actor := actorFromRequest(r)
	info := requestInfo(r)

	var req UpdateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	activity, err := h.activityRepo.GetActivityByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrActivityNotFound) {
			respondWithError(w, http.StatusNotFound, "Activity not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch activity")
		return
	}

	before := make(map[string]interface{})
	after := make(map[string]interface{})

	if req.Subject != nil {
		before["subject"], after["subject"] = activity.Subject, *req.Subject
		activity.Subject = *req.Subject
	}
	if req.Outcome != nil {
		before["outcome"], after["outcome"] = activity.Outcome, *req.Outcome
		activity.Outcome = *req.Outcome
	}
	if req.Notes != nil {
		before["notes"], after["notes"] = activity.Notes, *req.Notes
		activity.Notes = *req.Notes
	}
	if req.SampleProducts != nil {
		before["sampleProducts"], after["sampleProducts"] = activity.SampleProducts, *req.SampleProducts
		activity.SampleProducts = *req.SampleProducts
	}

	prev := services.NextActionFromActivity(activity)
	next := prev
	if req.NextActionType != nil {
		before["nextActionType"], after["nextActionType"] = string(prev.Type), *req.NextActionType
		next.Type = models.NextActionType(*req.NextActionType)
	}
	if req.NextActionDetails != nil {
		before["nextActionDetails"], after["nextActionDetails"] = prev.Details, *req.NextActionDetails
		next.Details = *req.NextActionDetails
	}
	if req.NextActionDate != nil || req.ClearNextActionDate {
		before["nextActionDate"], after["nextActionDate"] = prev.Date, req.NextActionDate
		next.Date = req.NextActionDate
	}
	if req.NextActionStatus != nil {
		status := models.NextActionStatus(*req.NextActionStatus)
		switch status {
		case models.NextActionPending, models.NextActionRescheduled,
			models.NextActionCompleted, models.NextActionCancelled:
		default:
			respondWithError(w, http.StatusBadRequest, "Unknown next action status")
			return
		}
		before["nextActionStatus"], after["nextActionStatus"] = string(prev.Status), string(status)
		next.Status = status
	}

	// Reminder-eligibility reset applies no matter which endpoint edited
	// the next-action fields.
	next = services.ApplyReminderReset(prev, next)
	if next.ReminderSent != prev.ReminderSent {
		before["nextActionReminderSent"], after["nextActionReminderSent"] = prev.ReminderSent, next.ReminderSent
	}
	next.ApplyToActivity(activity)

	if err := h.activityRepo.UpdateActivity(r.Context(), activity); err != nil {
		h.recorder.RecordFailure(actor, models.EntityActivity, activity.ID, err.Error(), info)
		respondWithError(w, http.StatusInternalServerError, "Failed to update activity")
		return
	}

	changes := audit.Diff(before, after)
	h.recorder.RecordChange(models.AuditActionUpdate, actor, models.EntityActivity, activity.ID, changes, info)

	respondWithJSON(w, http.StatusOK, activity)
}
