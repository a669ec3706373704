package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/clients"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

// Reconciler is the subset of app.Reconciler the sync endpoints need.
type Reconciler interface {
	Reconcile(ctx context.Context) (domain.SyncResult, error)
	State() domain.SyncState
	LastResult() (*domain.SyncResult, error)
}

// CircuitReporter exposes the feed client's circuit breaker.
type CircuitReporter interface {
	Circuit() clients.Snapshot
}

// SyncHandler handles the manual sync trigger and status endpoints.
type SyncHandler struct {
	reconciler Reconciler
	circuit    CircuitReporter
}

// NewSyncHandler creates a sync handler. circuit may be nil.
func NewSyncHandler(reconciler Reconciler, circuit CircuitReporter) *SyncHandler {
	return &SyncHandler{
		reconciler: reconciler,
		circuit:    circuit,
	}
}

// SyncStatusResponse is returned by GET /api/v1/sync/status.
type SyncStatusResponse struct {
	State      domain.SyncState   `json:"state"`
	LastResult *domain.SyncResult `json:"lastResult,omitempty"`
	LastError  string             `json:"lastError,omitempty"`
	Circuit    *clients.Snapshot  `json:"circuit,omitempty"`
}

// Sync handles POST /api/v1/sync. A request that arrives while a cycle is
// running waits for that cycle and receives its result.
//
// @Summary Reconcile with the remote feed now
// @Success 200 {object} domain.SyncResult
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/sync [post]
func (h *SyncHandler) Sync(c *gin.Context) {
	result, err := h.reconciler.Reconcile(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Status handles GET /api/v1/sync/status.
func (h *SyncHandler) Status(c *gin.Context) {
	resp := SyncStatusResponse{State: h.reconciler.State()}

	last, err := h.reconciler.LastResult()
	resp.LastResult = last
	if err != nil {
		resp.LastError = err.Error()
	}

	if h.circuit != nil {
		snapshot := h.circuit.Circuit()
		resp.Circuit = &snapshot
	}

	c.JSON(http.StatusOK, resp)
}

// RegisterSyncRoutes registers sync routes on the given router group.
func (h *SyncHandler) RegisterSyncRoutes(rg *gin.RouterGroup) {
	rg.POST("/sync", h.Sync)
	rg.GET("/sync/status", h.Status)
}
