package handlers

import (
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/Harshitk-cp/concord/internal/api/middleware"
	"github.com/Harshitk-cp/concord/internal/domain"
	"github.com/Harshitk-cp/concord/internal/profile"
	"github.com/Harshitk-cp/concord/internal/service"
	"go.uber.org/zap"
)

type ConsensusHandler struct {
	engine *service.Engine
	logger *zap.Logger

	runs      atomic.Int64
	cancelled atomic.Int64
}

// NewConsensusHandler creates a new consensus handler.
func NewConsensusHandler(engine *service.Engine, logger *zap.Logger) *ConsensusHandler {
	return &ConsensusHandler{engine: engine, logger: logger}
}

// Evaluate runs a full consensus round for the posted request.
func (h *ConsensusHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req domain.ConsensusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Domain) == "" {
		req.Domain = profile.DefaultDomain
	}

	resp, err := h.engine.Evaluate(r.Context(), &req)
	if err != nil {
		h.logger.Warn("consensus request rejected",
			zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
			zap.Error(err))
		writeServiceError(w, err)
		return
	}

	h.runs.Add(1)
	if resp.Cancelled {
		h.cancelled.Add(1)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Aggregate reduces a previously orchestrated result set without calling
// any agent.
func (h *ConsensusHandler) Aggregate(w http.ResponseWriter, r *http.Request) {
	var in domain.ConsensusResponse
	if !decodeBody(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Domain) == "" {
		in.Domain = profile.DefaultDomain
	}

	resp, err := h.engine.Reduce(&in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Runs returns the number of completed and cancelled consensus runs.
func (h *ConsensusHandler) Runs() (completed, cancelled int64) {
	return h.runs.Load(), h.cancelled.Load()
}
