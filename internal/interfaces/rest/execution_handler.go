package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pulsecs/backend/internal/application/services"
	"github.com/pulsecs/backend/pkg/constants"
	"github.com/pulsecs/backend/pkg/errors"
)

// ExecutionHandler exposes compiled executions to the runtime layer
type ExecutionHandler struct {
	svc *services.ServiceManager
}

// NewExecutionHandler creates a new ExecutionHandler
func NewExecutionHandler(svc *services.ServiceManager) *ExecutionHandler {
	return &ExecutionHandler{svc: svc}
}

// GetExecution handles GET /api/workflows/executions/:executionId
func (h *ExecutionHandler) GetExecution(c *gin.Context) {
	executionID := c.Param("executionId")
	HandleGetEnvelope(c, "execution", func() (interface{}, error) {
		return h.svc.Executions.Get(c.Request.Context(), executionID)
	})
}

// ListExecutions handles GET /api/workflows/executions?customer_id=...
func (h *ExecutionHandler) ListExecutions(c *gin.Context) {
	customerID := c.Query(constants.ParamCustomerID)
	if customerID == "" {
		RespondAppError(c, errors.NewValidationError(constants.ParamCustomerID, "customer_id query parameter is required"))
		return
	}
	limit, _ := strconv.Atoi(c.Query(constants.ParamLimit))

	HandleGetEnvelope(c, "executions", func() (interface{}, error) {
		return h.svc.Executions.ListByCustomer(c.Request.Context(), customerID, limit)
	})
}

// UpdateStatusRequest is the body of the status transition endpoint
type UpdateStatusRequest struct {
	Status        string  `json:"status" binding:"required"`
	CurrentStepID *string `json:"current_step_id,omitempty"`
}

// UpdateStatus handles PATCH /api/workflows/executions/:executionId/status
// The execution runtime drives lifecycle transitions through here; the
// state machine rejects anything else.
func (h *ExecutionHandler) UpdateStatus(c *gin.Context) {
	executionID := c.Param("executionId")

	var req UpdateStatusRequest
	if !BindJSON(c, &req) {
		return
	}

	execution, err := h.svc.Executions.UpdateStatus(c.Request.Context(), executionID, req.Status, req.CurrentStepID)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		constants.FieldMessage: "Execution status updated",
		"execution":            execution,
	})
}
