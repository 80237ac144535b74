package handler

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/NewtonYuan/BYS.FE/config"
	"github.com/NewtonYuan/BYS.FE/model"
	"github.com/NewtonYuan/BYS.FE/service"
	"github.com/gin-gonic/gin"
)

// fakeSlots is an in-memory SlotStorage for handler tests.
type fakeSlots struct {
	mu    sync.Mutex
	slots map[string][]byte
}

func newFakeSlots() *fakeSlots {
	return &fakeSlots{slots: make(map[string][]byte)}
}

func (f *fakeSlots) ReadSlot(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.slots[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (f *fakeSlots) WriteSlot(_ context.Context, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slots[key] = append([]byte(nil), data...)
	return nil
}

func (f *fakeSlots) ClearSlot(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.slots, key)
	return nil
}

const callbackSeed = "test-seed"

func newCallbackFixture() (*CallbackHandler, *service.AnalysisStore, *service.ReportCache) {
	analyzerCfg := &config.AnalyzerConfig{
		APIURL:         "http://analyzer.local",
		APIToken:       "test-token",
		Seed:           callbackSeed,
		TimeoutSeconds: 5,
	}
	analyzerSvc := service.NewAnalyzerService(analyzerCfg)

	store := service.GetAnalysisStore()
	cache := service.NewReportCache(newFakeSlots(), "reports/last-report")
	leases := NewLeaseHandler(nil, analyzerSvc, cache, false)

	return NewCallbackHandler(analyzerSvc, leases), store, cache
}

func checksumFor(uid, content string) string {
	hash := sha256.Sum256([]byte(uid + callbackSeed + content))
	return hex.EncodeToString(hash[:])
}

func postCallback(handler *CallbackHandler, body []byte) *httptest.ResponseRecorder {
	router := gin.New()
	router.POST("/callback", handler.HandleCallback)

	req := httptest.NewRequest("POST", "/callback", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCallbackHandlerDone(t *testing.T) {
	handler, store, cache := newCallbackFixture()

	store.Save(&model.Analysis{
		ID:        "cb-done-1",
		Filename:  "lease.pdf",
		Owner:     "alice",
		Status:    model.StatusProcessing,
		CreatedAt: time.Now(),
	})

	content, _ := json.Marshal(CallbackContent{
		TaskID: "task-1",
		DataID: "cb-done-1",
		State:  "done",
		Report: json.RawMessage(`{"leaseSummary":{"address":"12 Example Street, Wellington"}}`),
	})

	body, _ := json.Marshal(CallbackRequest{
		Checksum: checksumFor("cb-done-1", string(content)),
		Content:  string(content),
	})

	w := postCallback(handler, body)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	analysis := store.Get("cb-done-1")
	if analysis.Status != model.StatusCompleted {
		t.Errorf("Expected status '%s', got '%s'", model.StatusCompleted, analysis.Status)
	}
	if analysis.Report == nil {
		t.Fatal("Expected report to be set")
	}
	if analysis.Report.LeaseSummary.Address == nil || *analysis.Report.LeaseSummary.Address != "12 Example Street, Wellington" {
		t.Error("Expected normalized address to survive the pipeline")
	}

	// The completed report must land in the owner's cache slot
	cached, err := cache.Read(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Cache read failed: %v", err)
	}
	if cached == nil {
		t.Fatal("Expected cached report for owner")
	}
}

func TestCallbackHandlerFailed(t *testing.T) {
	handler, store, _ := newCallbackFixture()

	store.Save(&model.Analysis{
		ID:        "cb-failed-1",
		Filename:  "lease.pdf",
		Owner:     "alice",
		Status:    model.StatusProcessing,
		CreatedAt: time.Now(),
	})

	content, _ := json.Marshal(CallbackContent{
		TaskID:   "task-2",
		DataID:   "cb-failed-1",
		State:    "failed",
		ErrorMsg: "extraction failed",
	})

	body, _ := json.Marshal(CallbackRequest{
		Checksum: checksumFor("cb-failed-1", string(content)),
		Content:  string(content),
	})

	w := postCallback(handler, body)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	analysis := store.Get("cb-failed-1")
	if analysis.Status != model.StatusFailed {
		t.Errorf("Expected status '%s', got '%s'", model.StatusFailed, analysis.Status)
	}
	if analysis.ErrorMsg != "extraction failed" {
		t.Errorf("Expected error message 'extraction failed', got '%s'", analysis.ErrorMsg)
	}
}

func TestCallbackHandlerInvalidChecksum(t *testing.T) {
	handler, store, _ := newCallbackFixture()

	store.Save(&model.Analysis{
		ID:        "cb-checksum-1",
		Filename:  "lease.pdf",
		Owner:     "alice",
		Status:    model.StatusProcessing,
		CreatedAt: time.Now(),
	})

	content, _ := json.Marshal(CallbackContent{
		DataID: "cb-checksum-1",
		State:  "done",
		Report: json.RawMessage(`{}`),
	})

	body, _ := json.Marshal(CallbackRequest{
		Checksum: "deadbeef",
		Content:  string(content),
	})

	w := postCallback(handler, body)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}

	analysis := store.Get("cb-checksum-1")
	if analysis.Status != model.StatusProcessing {
		t.Errorf("Expected status unchanged, got '%s'", analysis.Status)
	}
}

func TestCallbackHandlerUnknownAnalysis(t *testing.T) {
	handler, _, _ := newCallbackFixture()

	content, _ := json.Marshal(CallbackContent{
		DataID: "no-such-analysis",
		State:  "done",
	})

	body, _ := json.Marshal(CallbackRequest{
		Checksum: checksumFor("no-such-analysis", string(content)),
		Content:  string(content),
	})

	w := postCallback(handler, body)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestCallbackHandlerMalformedRequests(t *testing.T) {
	handler, _, _ := newCallbackFixture()

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", "not json"},
		{"content not json", `{"checksum":"abc","content":"not json"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postCallback(handler, []byte(tt.body))
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Code)
			}
		})
	}
}
