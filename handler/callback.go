package handler

import (
	"encoding/json"
	"net/http"

	"github.com/NewtonYuan/BYS.FE/model"
	"github.com/NewtonYuan/BYS.FE/pkg/logger"
	"github.com/NewtonYuan/BYS.FE/service"
	"github.com/gin-gonic/gin"
)

type CallbackHandler struct {
	analyzerService *service.AnalyzerService
	store           *service.AnalysisStore
	leases          *LeaseHandler
}

func NewCallbackHandler(analyzerSvc *service.AnalyzerService, leases *LeaseHandler) *CallbackHandler {
	return &CallbackHandler{
		analyzerService: analyzerSvc,
		store:           service.GetAnalysisStore(),
		leases:          leases,
	}
}

type CallbackRequest struct {
	Checksum string `json:"checksum"`
	Content  string `json:"content"`
}

type CallbackContent struct {
	TaskID   string          `json:"task_id"`
	DataID   string          `json:"data_id"`
	State    string          `json:"state"` // done, failed
	Report   json.RawMessage `json:"report"`
	ErrorMsg string          `json:"err_msg"`
}

// HandleCallback receives the asynchronous completion from the analyzer
func (h *CallbackHandler) HandleCallback(c *gin.Context) {
	var req CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var content CallbackContent
	if err := json.Unmarshal([]byte(req.Content), &content); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid content format"})
		return
	}

	// DataID carries our analysis ID
	analysis := h.store.Get(content.DataID)
	if analysis == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found"})
		return
	}

	if !h.analyzerService.VerifyCallback(req.Checksum, req.Content, content.DataID) {
		logger.Warn(c.Request.Context(), "callback checksum mismatch", "analysis_id", content.DataID)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid checksum"})
		return
	}

	switch content.State {
	case "done":
		h.leases.completeAnalysis(c.Request.Context(), analysis.ID, analysis.Owner, content.Report)
	case "failed":
		h.store.UpdateStatus(analysis.ID, model.StatusFailed, content.ErrorMsg)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Callback received"})
}
