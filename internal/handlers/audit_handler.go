package handlers

import (
	"net/http"
	"strconv"

	"github.com/white/sales-tracker/internal/repositories"
)

// AuditHandler serves entity history queries over the append-only audit log.
type AuditHandler struct {
	auditRepo *repositories.AuditLogRepository
}

func NewAuditHandler(auditRepo *repositories.AuditLogRepository) *AuditHandler {
	return &AuditHandler{auditRepo: auditRepo}
}

// ListEntityHistory godoc
// @Summary List audit log entries for one entity
// @Tags Audit
// @Produce json
// @Security BearerAuth
// @Param entityType query string true "Entity type"
// @Param entityId query string true "Entity id"
// @Param limit query int false "Max entries"
// @Success 200 {array} models.AuditLogEntry
// @Router /api/v1/audit-logs [get]
func (h *AuditHandler) ListEntityHistory(w http.ResponseWriter, r *http.Request) {
	entityType := r.URL.Query().Get("entityType")
	entityID := r.URL.Query().Get("entityId")
	if entityType == "" || entityID == "" {
		respondWithError(w, http.StatusBadRequest, "entityType and entityId are required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	entries, err := h.auditRepo.ListByEntity(r.Context(), entityType, entityID, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch audit log entries")
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}
