package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pulsecs/backend/internal/application/services"
	"github.com/pulsecs/backend/pkg/errors"
)

// WorkflowHandler exposes templates, modifications and the compile API
type WorkflowHandler struct {
	svc *services.ServiceManager
}

// NewWorkflowHandler creates a new WorkflowHandler
func NewWorkflowHandler(svc *services.ServiceManager) *WorkflowHandler {
	return &WorkflowHandler{svc: svc}
}

// CompileRequest is the body of POST /api/workflows/compile
type CompileRequest struct {
	TemplateName   string                 `json:"template_name" binding:"required"`
	CustomerID     string                 `json:"customer_id" binding:"required"`
	TriggerContext map[string]interface{} `json:"trigger_context"`
}

// Compile handles POST /api/workflows/compile
func (h *WorkflowHandler) Compile(c *gin.Context) {
	var req CompileRequest
	if !BindJSON(c, &req) {
		return
	}

	execution, err := h.svc.Compile.Compile(c.Request.Context(), req.TemplateName, req.CustomerID, req.TriggerContext)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"execution": execution})
}

// Preview handles POST /api/workflows/templates/:name/preview
// Runs the full compilation pipeline without persisting anything.
func (h *WorkflowHandler) Preview(c *gin.Context) {
	templateName := c.Param("name")

	var req struct {
		CustomerID     string                 `json:"customer_id" binding:"required"`
		TriggerContext map[string]interface{} `json:"trigger_context"`
	}
	if !BindJSON(c, &req) {
		return
	}

	execution, err := h.svc.Compile.Preview(c.Request.Context(), templateName, req.CustomerID, req.TriggerContext)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"execution": execution, "preview": true})
}

// ListTemplates handles GET /api/workflows/templates
func (h *WorkflowHandler) ListTemplates(c *gin.Context) {
	HandleGetEnvelope(c, "templates", func() (interface{}, error) {
		return h.svc.Templates.List(c.Request.Context())
	})
}

// GetTemplate handles GET /api/workflows/templates/:name
func (h *WorkflowHandler) GetTemplate(c *gin.Context) {
	name := c.Param("name")
	HandleGetEnvelope(c, "template", func() (interface{}, error) {
		template, err := h.svc.Templates.GetByName(c.Request.Context(), name)
		if err != nil {
			return nil, errors.NewInternalError("failed to load template", err)
		}
		if template == nil {
			return nil, errors.NewNotFoundError("WorkflowTemplate", name)
		}
		return template, nil
	})
}

// ListModifications handles GET /api/workflows/templates/:name/modifications
func (h *WorkflowHandler) ListModifications(c *gin.Context) {
	name := c.Param("name")
	HandleGetEnvelope(c, "modifications", func() (interface{}, error) {
		template, err := h.svc.Templates.GetByName(c.Request.Context(), name)
		if err != nil {
			return nil, errors.NewInternalError("failed to load template", err)
		}
		if template == nil {
			return nil, errors.NewNotFoundError("WorkflowTemplate", name)
		}
		return h.svc.Modifications.ListActive(c.Request.Context(), template.ID)
	})
}
