package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/finacct/ledger_posting_app/internal/core/domain"
	portssvc "github.com/finacct/ledger_posting_app/internal/core/ports/services"
	"github.com/finacct/ledger_posting_app/internal/dto"
	"github.com/finacct/ledger_posting_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// entryHandler handles HTTP requests for journal entries, their approval
// workflow and their audit history.
type entryHandler struct {
	entryService    portssvc.EntrySvcFacade
	workflowService portssvc.WorkflowSvcFacade
	auditService    portssvc.AuditSvcFacade
}

// newEntryHandler creates a new entryHandler.
func newEntryHandler(entryService portssvc.EntrySvcFacade, workflowService portssvc.WorkflowSvcFacade, auditService portssvc.AuditSvcFacade) *entryHandler {
	return &entryHandler{
		entryService:    entryService,
		workflowService: workflowService,
		auditService:    auditService,
	}
}

// registerEntryRoutes registers entry routes nested under an entity group.
func registerEntryRoutes(group *gin.RouterGroup, entryService portssvc.EntrySvcFacade, workflowService portssvc.WorkflowSvcFacade, auditService portssvc.AuditSvcFacade) {
	h := newEntryHandler(entryService, workflowService, auditService)

	entries := group.Group("/entries")
	{
		entries.POST("", h.createEntry)
		entries.GET("", h.listEntries)
		entries.GET("/:entryID", h.getEntry)
		entries.PUT("/:entryID/lines", h.updateEntryLines)
		entries.GET("/:entryID/workflow", h.getWorkflowStatus)
		entries.GET("/:entryID/audit", h.getAuditHistory)
		entries.POST("/:entryID/submit", h.submitEntry)
		entries.POST("/:entryID/approve", h.approveEntry)
		entries.POST("/:entryID/reject", h.rejectEntry)
		entries.POST("/:entryID/post", h.postEntry)
	}
}

// actorOrAbort extracts the actor from the request or writes a 401.
func actorOrAbort(c *gin.Context) (string, bool) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
	return actor, ok
}

// createEntry godoc
// @Summary Create a journal entry
// @Description Validates and persists a new balanced journal entry in draft state, allocating its entry number.
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   entityID path string true "Entity ID"
// @Param   entry body dto.CreateEntryRequest true "Entry header and lines"
// @Success 201 {object} dto.EntrySnapshot "The created entry"
// @Failure 400 {object} map[string]string "Validation failure"
// @Failure 409 {object} map[string]string "Period locked"
// @Router /entities/{entityID}/entries [post]
func (h *entryHandler) createEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")

	var req dto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for createEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	snapshot, err := h.entryService.CreateEntry(c.Request.Context(), entityID, req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to create entry")
		return
	}

	logger.Info("Entry created", slog.String("entry_id", snapshot.EntryID), slog.String("entry_number", snapshot.EntryNumber))
	c.JSON(http.StatusCreated, snapshot)
}

// getEntry godoc
// @Summary Get a journal entry
// @Description Retrieves an entry with its lines, computed totals and balance flag.
// @Tags entries
// @Produce  json
// @Param   entityID path string true "Entity ID"
// @Param   entryID path string true "Entry ID"
// @Success 200 {object} dto.EntrySnapshot "The entry"
// @Failure 404 {object} map[string]string "Entry not found"
// @Router /entities/{entityID}/entries/{entryID} [get]
func (h *entryHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")
	entryID := c.Param("entryID")

	snapshot, err := h.entryService.GetEntry(c.Request.Context(), entityID, entryID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve entry")
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// listEntries godoc
// @Summary List journal entries
// @Description Retrieves entry headers for an entity, newest first, with optional status and date filters and cursor pagination.
// @Tags entries
// @Produce  json
// @Param   entityID path string true "Entity ID"
// @Param   status query string false "Filter by workflow status"
// @Param   dateFrom query string false "Earliest entry date (RFC 3339 date)"
// @Param   dateTo query string false "Latest entry date (RFC 3339 date)"
// @Param   limit query int false "Page size"
// @Param   nextToken query string false "Cursor from a previous page"
// @Success 200 {object} dto.ListEntriesResponse "Entries and next-page token"
// @Failure 400 {object} map[string]string "Invalid filter"
// @Router /entities/{entityID}/entries [get]
func (h *entryHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")

	params := dto.ListEntriesParams{}
	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.EntryStatus(statusStr)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status: " + statusStr})
			return
		}
		params.Status = &status
	}
	if fromStr := c.Query("dateFrom"); fromStr != "" {
		from, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dateFrom: " + fromStr})
			return
		}
		params.DateFrom = &from
	}
	if toStr := c.Query("dateTo"); toStr != "" {
		to, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dateTo: " + toStr})
			return
		}
		params.DateTo = &to
	}
	params.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if token := c.Query("nextToken"); token != "" {
		params.NextToken = &token
	}

	resp, err := h.entryService.ListEntries(c.Request.Context(), entityID, params)
	if err != nil {
		respondError(c, logger, err, "Failed to list entries")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// updateEntryLines godoc
// @Summary Replace the lines of a draft entry
// @Description Atomically replaces the lines of a draft entry after re-validation. Only drafts are editable.
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   entityID path string true "Entity ID"
// @Param   entryID path string true "Entry ID"
// @Param   lines body dto.UpdateEntryLinesRequest true "Replacement lines"
// @Success 200 {object} dto.EntrySnapshot "The updated entry"
// @Failure 400 {object} map[string]string "Validation failure"
// @Failure 409 {object} map[string]string "Entry is not a draft"
// @Router /entities/{entityID}/entries/{entryID}/lines [put]
func (h *entryHandler) updateEntryLines(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")
	entryID := c.Param("entryID")

	var req dto.UpdateEntryLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for updateEntryLines", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	snapshot, err := h.entryService.UpdateEntryLines(c.Request.Context(), entityID, entryID, req, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to update entry lines")
		return
	}

	logger.Info("Entry lines replaced", slog.String("entry_id", entryID))
	c.JSON(http.StatusOK, snapshot)
}

// getWorkflowStatus godoc
// @Summary Get an entry's workflow position
// @Description Reports the entry's status, stage ordinal, recorded approvers and rejection reason.
// @Tags workflow
// @Produce  json
// @Param   entityID path string true "Entity ID"
// @Param   entryID path string true "Entry ID"
// @Success 200 {object} dto.WorkflowStatusResponse "Workflow status"
// @Failure 404 {object} map[string]string "Entry not found"
// @Router /entities/{entityID}/entries/{entryID}/workflow [get]
func (h *entryHandler) getWorkflowStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")
	entryID := c.Param("entryID")

	status, err := h.entryService.GetWorkflowStatus(c.Request.Context(), entityID, entryID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve workflow status")
		return
	}

	c.JSON(http.StatusOK, status)
}

// getAuditHistory godoc
// @Summary Get an entry's audit trail
// @Description Returns the append-only audit history for an entry in chronological order.
// @Tags audit
// @Produce  json
// @Param   entityID path string true "Entity ID"
// @Param   entryID path string true "Entry ID"
// @Success 200 {array} dto.AuditLogResponse "Audit records"
// @Failure 404 {object} map[string]string "Entry not found"
// @Router /entities/{entityID}/entries/{entryID}/audit [get]
func (h *entryHandler) getAuditHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")
	entryID := c.Param("entryID")

	records, err := h.auditService.GetHistory(c.Request.Context(), entityID, entryID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve audit history")
		return
	}

	c.JSON(http.StatusOK, records)
}

// submitEntry godoc
// @Summary Submit a draft entry for approval
// @Description Moves a balanced draft into the approval queue.
// @Tags workflow
// @Produce  json
// @Param   entityID path string true "Entity ID"
// @Param   entryID path string true "Entry ID"
// @Success 200 {object} dto.TransitionResponse "New workflow state"
// @Failure 409 {object} map[string]string "Entry is not a draft or is unbalanced"
// @Router /entities/{entityID}/entries/{entryID}/submit [post]
func (h *entryHandler) submitEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")
	entryID := c.Param("entryID")

	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	resp, err := h.workflowService.SubmitForApproval(c.Request.Context(), entityID, entryID, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to submit entry")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// approveEntry godoc
// @Summary Approve a pending entry
// @Description Records a first or final approval depending on the entry's current state. Requires an authorized approver distinct from the creator and the prior approver.
// @Tags workflow
// @Produce  json
// @Param   entityID path string true "Entity ID"
// @Param   entryID path string true "Entry ID"
// @Success 200 {object} dto.TransitionResponse "New workflow state"
// @Failure 403 {object} map[string]string "Actor may not approve this entry"
// @Failure 409 {object} map[string]string "Entry is not pending approval"
// @Router /entities/{entityID}/entries/{entryID}/approve [post]
func (h *entryHandler) approveEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")
	entryID := c.Param("entryID")

	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	resp, err := h.workflowService.Approve(c.Request.Context(), entityID, entryID, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to approve entry")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// rejectEntry godoc
// @Summary Reject a pending entry
// @Description Returns a pending entry to draft, clearing recorded approvals and storing the reason.
// @Tags workflow
// @Accept  json
// @Produce  json
// @Param   entityID path string true "Entity ID"
// @Param   entryID path string true "Entry ID"
// @Param   rejection body dto.RejectEntryRequest true "Rejection reason"
// @Success 200 {object} dto.TransitionResponse "New workflow state"
// @Failure 403 {object} map[string]string "Actor may not reject this entry"
// @Failure 409 {object} map[string]string "Entry is not pending approval"
// @Router /entities/{entityID}/entries/{entryID}/reject [post]
func (h *entryHandler) rejectEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")
	entryID := c.Param("entryID")

	var req dto.RejectEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for rejectEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	resp, err := h.workflowService.Reject(c.Request.Context(), entityID, entryID, actor, req.Reason)
	if err != nil {
		respondError(c, logger, err, "Failed to reject entry")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// postEntry godoc
// @Summary Post an approved entry
// @Description Atomically applies the entry's effect to account balances and seals it. Posted entries are immutable.
// @Tags workflow
// @Produce  json
// @Param   entityID path string true "Entity ID"
// @Param   entryID path string true "Entry ID"
// @Success 200 {object} dto.TransitionResponse "New workflow state"
// @Failure 409 {object} map[string]string "Entry is not approved or period is locked"
// @Failure 503 {object} map[string]string "Lock wait timed out, retry later"
// @Router /entities/{entityID}/entries/{entryID}/post [post]
func (h *entryHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")
	entryID := c.Param("entryID")

	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	resp, err := h.workflowService.Post(c.Request.Context(), entityID, entryID, actor)
	if err != nil {
		respondError(c, logger, err, "Failed to post entry")
		return
	}

	c.JSON(http.StatusOK, resp)
}
