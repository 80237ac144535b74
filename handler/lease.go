package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/NewtonYuan/BYS.FE/middleware"
	"github.com/NewtonYuan/BYS.FE/model"
	"github.com/NewtonYuan/BYS.FE/pkg/logger"
	"github.com/NewtonYuan/BYS.FE/report"
	"github.com/NewtonYuan/BYS.FE/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LeaseHandler struct {
	minioService    *service.MinioService
	analyzerService *service.AnalyzerService
	store           *service.AnalysisStore
	cache           *service.ReportCache
	asyncMode       bool // callback URL configured: submit tasks instead of analyzing inline
}

func NewLeaseHandler(minioSvc *service.MinioService, analyzerSvc *service.AnalyzerService, cache *service.ReportCache, asyncMode bool) *LeaseHandler {
	return &LeaseHandler{
		minioService:    minioSvc,
		analyzerService: analyzerSvc,
		store:           service.GetAnalysisStore(),
		cache:           cache,
		asyncMode:       asyncMode,
	}
}

// Analyze handles agreement upload and kicks off analysis
func (h *LeaseHandler) Analyze(c *gin.Context) {
	owner := middleware.GetUsername(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	// PDF and DOCX allowed
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".pdf" && ext != ".docx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF and DOCX files are allowed"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if ext == ".pdf" {
			contentType = "application/pdf"
		} else {
			contentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
		}
	}

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	analysisID := uuid.New().String()
	objectName := fmt.Sprintf("%s/%s/%s", owner, analysisID, header.Filename)

	err = h.minioService.UploadDocument(c.Request.Context(), objectName, bytes.NewReader(content), int64(len(content)), contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file: " + err.Error()})
		return
	}

	documentURL, err := h.minioService.GetPresignedURL(c.Request.Context(), objectName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate URL: " + err.Error()})
		return
	}

	analysis := &model.Analysis{
		ID:          analysisID,
		Filename:    header.Filename,
		Owner:       owner,
		DocumentURL: documentURL,
		Status:      model.StatusPending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	h.store.Save(analysis)

	if h.asyncMode {
		go h.submitTask(analysis, documentURL)
	} else {
		go h.analyze(analysis, content)
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       analysisID,
		"filename": header.Filename,
		"status":   model.StatusPending,
	})
}

// analyze runs the inline analysis pipeline: analyzer call, normalize,
// score, store, cache.
func (h *LeaseHandler) analyze(analysis *model.Analysis, content []byte) {
	ctx := context.Background()
	h.store.UpdateStatus(analysis.ID, model.StatusProcessing, "")

	raw, err := h.analyzerService.AnalyzeLease(ctx, analysis.Filename, content)
	if err != nil {
		logger.Error(ctx, "analyzer call failed", "analysis_id", analysis.ID, "error", err)
		h.store.UpdateStatus(analysis.ID, model.StatusFailed, err.Error())
		return
	}

	h.completeAnalysis(ctx, analysis.ID, analysis.Owner, raw)
}

// submitTask asks the analyzer to process asynchronously; the callback
// handler finishes the pipeline.
func (h *LeaseHandler) submitTask(analysis *model.Analysis, documentURL string) {
	ctx := context.Background()
	h.store.UpdateStatus(analysis.ID, model.StatusProcessing, "")

	taskID, err := h.analyzerService.SubmitTask(ctx, documentURL, analysis.ID)
	if err != nil {
		logger.Error(ctx, "task submission failed", "analysis_id", analysis.ID, "error", err)
		h.store.UpdateStatus(analysis.ID, model.StatusFailed, err.Error())
		return
	}

	analysis.TaskID = taskID
	h.store.Save(analysis)
}

// completeAnalysis normalizes the raw analyzer output, scores it and
// publishes the result. The raw payload is never stored un-normalized.
func (h *LeaseHandler) completeAnalysis(ctx context.Context, analysisID, owner string, raw json.RawMessage) {
	var parsed any
	// Decode failure just means an all-default report; Normalize
	// tolerates nil.
	_ = json.Unmarshal(raw, &parsed)

	normalized := report.Normalize(parsed)
	score := report.Score(normalized)

	h.store.SetResult(analysisID, &normalized, score)

	if err := h.cache.Write(ctx, owner, &normalized); err != nil {
		logger.Warn(ctx, "failed to cache report", "analysis_id", analysisID, "error", err)
	}

	logger.Info(ctx, "analysis completed", "analysis_id", analysisID, "score", score)
}

// List returns all analyses for the current user
func (h *LeaseHandler) List(c *gin.Context) {
	owner := middleware.GetUsername(c)
	analyses := h.store.GetByOwner(owner)

	// Return without report bodies for list view
	result := make([]gin.H, len(analyses))
	for i, analysis := range analyses {
		result[i] = gin.H{
			"id":         analysis.ID,
			"filename":   analysis.Filename,
			"status":     analysis.Status,
			"score":      analysis.Score,
			"created_at": analysis.CreatedAt.Format(time.RFC3339),
			"updated_at": analysis.UpdatedAt.Format(time.RFC3339),
		}
	}

	c.JSON(http.StatusOK, gin.H{"analyses": result})
}

// Get returns a single analysis with its report, score and indicators
func (h *LeaseHandler) Get(c *gin.Context) {
	owner := middleware.GetUsername(c)
	id := c.Param("id")

	analysis := h.store.Get(id)
	if analysis == nil || analysis.Owner != owner {
		c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found"})
		return
	}

	resp := gin.H{
		"id":         analysis.ID,
		"filename":   analysis.Filename,
		"status":     analysis.Status,
		"error_msg":  analysis.ErrorMsg,
		"created_at": analysis.CreatedAt.Format(time.RFC3339),
		"updated_at": analysis.UpdatedAt.Format(time.RFC3339),
	}
	if analysis.Report != nil {
		resp["report"] = analysis.Report
		resp["score"] = analysis.Score
		resp["indicators"] = report.Indicators(*analysis.Report)
	}

	c.JSON(http.StatusOK, resp)
}

// GetStatus returns the processing status of an analysis
func (h *LeaseHandler) GetStatus(c *gin.Context) {
	owner := middleware.GetUsername(c)
	id := c.Param("id")

	analysis := h.store.Get(id)
	if analysis == nil || analysis.Owner != owner {
		c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        analysis.ID,
		"status":    analysis.Status,
		"error_msg": analysis.ErrorMsg,
	})
}

// Delete deletes an analysis
func (h *LeaseHandler) Delete(c *gin.Context) {
	owner := middleware.GetUsername(c)
	id := c.Param("id")

	analysis := h.store.Get(id)
	if analysis == nil || analysis.Owner != owner {
		c.JSON(http.StatusNotFound, gin.H{"error": "Analysis not found"})
		return
	}

	h.store.Delete(id)

	c.JSON(http.StatusOK, gin.H{"message": "Analysis deleted"})
}

// GetReport returns the user's last cached report with score and
// indicators
func (h *LeaseHandler) GetReport(c *gin.Context) {
	owner := middleware.GetUsername(c)

	rep, err := h.cache.Read(c.Request.Context(), owner)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read report: " + err.Error()})
		return
	}
	if rep == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No report available"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"report":     rep,
		"score":      report.Score(*rep),
		"indicators": report.Indicators(*rep),
	})
}

// ClearReport clears the user's cached report
func (h *LeaseHandler) ClearReport(c *gin.Context) {
	owner := middleware.GetUsername(c)

	if err := h.cache.Write(c.Request.Context(), owner, nil); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear report: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Report cleared"})
}

// AnalyzerHealth proxies the analyzer's health probe
func (h *LeaseHandler) AnalyzerHealth(c *gin.Context) {
	result, err := h.analyzerService.CheckHealth(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
