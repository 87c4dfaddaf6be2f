package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/hr-portal/internal/application/service"
	"github.com/garyjia/hr-portal/internal/domain/approval"
	"github.com/garyjia/hr-portal/internal/domain/entity"
	"github.com/garyjia/hr-portal/internal/infrastructure/export"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	pipelineService     service.PipelineService
	confirmationService service.ConfirmationService
	exporter            Exporter
	version             string
	logger              Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	pipelineService service.PipelineService,
	confirmationService service.ConfirmationService,
	exporter Exporter,
	version string,
	logger Logger,
) *Handlers {
	return &Handlers{
		pipelineService:     pipelineService,
		confirmationService: confirmationService,
		exporter:            exporter,
		version:             version,
		logger:              logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// SchemaResponse describes the stage chain of one form type
type SchemaResponse struct {
	FormType string               `json:"form_type"`
	Stages   []approval.StageSpec `json:"stages"`
}

// ListRequest holds the list filter query parameters
type ListRequest struct {
	Category string `form:"category"`
	Range    string `form:"range"`
}

// ConfirmationRequest is the optional body of confirm/reject calls
type ConfirmationRequest struct {
	EmployeeID string `json:"employee_id"`
}

// ImportResponse reports how many submissions were cached
type ImportResponse struct {
	FormType string `json:"form_type"`
	Received int    `json:"received"`
	Stored   int    `json:"stored"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   h.version,
		},
	})
}

// ListSchemas handles GET /api/schemas
func (h *Handlers) ListSchemas(c *gin.Context) {
	registry := h.pipelineService.Registry()
	schemas := make([]SchemaResponse, 0)
	for _, formType := range registry.FormTypes() {
		schemas = append(schemas, SchemaResponse{FormType: formType, Stages: registry.StagesFor(formType)})
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: schemas})
}

// GetSchema handles GET /api/schemas/:formType
func (h *Handlers) GetSchema(c *gin.Context) {
	formType := c.Param("formType")
	registry := h.pipelineService.Registry()
	if !registry.Knows(formType) {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "unknown form type: " + formType})
		return
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    SchemaResponse{FormType: formType, Stages: registry.StagesFor(formType)},
	})
}

// ListSubmissions handles GET /api/forms/:formType/submissions
func (h *Handlers) ListSubmissions(c *gin.Context) {
	formType := c.Param("formType")
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	results, err := h.pipelineService.List(c.Request.Context(), formType, filter)
	if err != nil {
		h.logger.Error("Failed to list submissions", "form_type", formType, "error", err)
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: results})
}

// GetSubmission handles GET /api/forms/:formType/submissions/:id
func (h *Handlers) GetSubmission(c *gin.Context) {
	formType := c.Param("formType")
	id := c.Param("id")

	result, err := h.pipelineService.Get(c.Request.Context(), formType, id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// Summary handles GET /api/forms/:formType/summary
func (h *Handlers) Summary(c *gin.Context) {
	formType := c.Param("formType")
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	summary, err := h.pipelineService.Summary(c.Request.Context(), formType, filter)
	if err != nil {
		h.logger.Error("Failed to summarize submissions", "form_type", formType, "error", err)
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: summary})
}

// ImportSubmissions handles POST /api/forms/:formType/submissions with a JSON
// array of raw submission records
func (h *Handlers) ImportSubmissions(c *gin.Context) {
	formType := c.Param("formType")

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "failed to read request body"})
		return
	}

	subs, err := entity.ParseSubmissions(body)
	if err != nil {
		h.logger.Error("Invalid import payload", "form_type", formType, "error", err)
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "body must be a JSON array of submissions"})
		return
	}

	stored, err := h.pipelineService.Import(c.Request.Context(), formType, subs)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    ImportResponse{FormType: formType, Received: len(subs), Stored: stored},
	})
}

// Export handles GET /api/forms/:formType/export
func (h *Handlers) Export(c *gin.Context) {
	formType := c.Param("formType")
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	results, err := h.pipelineService.List(c.Request.Context(), formType, filter)
	if err != nil {
		h.fail(c, err)
		return
	}

	rows := make([]export.Row, 0, len(results))
	for _, rs := range results {
		rows = append(rows, export.Row{Pipeline: rs.Pipeline, Category: rs.Category, CreatedAt: rs.CreatedAt})
	}

	var buf bytes.Buffer
	if err := h.exporter.Write(&buf, formType, rows); err != nil {
		h.logger.Error("Export failed", "form_type", formType, "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "export failed"})
		return
	}

	filename := fmt.Sprintf("%s-%s.xlsx", formType, time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

// GetConfirmation handles GET /api/it-incidents/:id/confirmation
func (h *Handlers) GetConfirmation(c *gin.Context) {
	status, err := h.confirmationService.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: status})
}

// Confirm handles POST /api/it-incidents/:id/confirm
func (h *Handlers) Confirm(c *gin.Context) {
	h.submitAction(c, entity.ActionConfirmed)
}

// Reject handles POST /api/it-incidents/:id/reject
func (h *Handlers) Reject(c *gin.Context) {
	h.submitAction(c, entity.ActionRejected)
}

func (h *Handlers) submitAction(c *gin.Context, action entity.ConfirmationAction) {
	id := c.Param("id")

	var req ConfirmationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
			return
		}
	}

	cmd, err := h.confirmationService.Submit(c.Request.Context(), id, req.EmployeeID, action)
	if err != nil {
		h.logger.Error("Confirmation action failed", "submission_id", id, "action", action, "error", err)
		h.fail(c, err)
		return
	}

	h.logger.Info("Confirmation action accepted", "submission_id", id, "action", action, "request_id", cmd.RequestID)
	c.JSON(http.StatusOK, Response{Success: true, Data: cmd})
}

// bindFilter parses ?category=&range=. An unknown category is a client error;
// an unknown range matches everything.
func (h *Handlers) bindFilter(c *gin.Context) (service.Filter, bool) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid query parameters"})
		return service.Filter{}, false
	}

	var filter service.Filter
	if strings.TrimSpace(req.Category) != "" {
		category, ok := approval.ParseCategory(req.Category)
		if !ok {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "unknown category: " + req.Category})
			return service.Filter{}, false
		}
		filter.Category = category
	}
	if strings.TrimSpace(req.Range) != "" {
		if r, ok := approval.ParseDateRange(req.Range); ok {
			filter.Range = r
		} else {
			filter.Range = approval.DateRange(req.Range)
		}
	}
	return filter, true
}

// fail writes err in the response envelope with a matching status code
func (h *Handlers) fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), Response{Success: false, Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidAction):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrDispatchInFlight), errors.Is(err, service.ErrNotAwaitingConfirmation):
		return http.StatusConflict
	case errors.Is(err, service.ErrDispatchFailed), errors.Is(err, service.ErrActionRejected):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
