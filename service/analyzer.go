package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/NewtonYuan/BYS.FE/config"
)

// AnalyzerService talks to the external lease analyzer. The analyzer
// extracts the agreement text and returns a loosely-typed report JSON;
// nothing it returns is trusted beyond being JSON, normalization
// happens in the report package.
type AnalyzerService struct {
	config     *config.AnalyzerConfig
	httpClient *http.Client
}

// AnalyzerTaskRequest asks the analyzer to process a document
// asynchronously and call us back.
type AnalyzerTaskRequest struct {
	URL      string `json:"url"`
	Callback string `json:"callback,omitempty"`
	Seed     string `json:"seed,omitempty"`
	DataID   string `json:"data_id,omitempty"`
}

// AnalyzerTaskResponse is the response from task creation
type AnalyzerTaskResponse struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
	Data    struct {
		TaskID string `json:"task_id"`
	} `json:"data"`
}

// HealthResult reports whether the analyzer answered its health probe
type HealthResult struct {
	OK     bool   `json:"ok"`
	Status int    `json:"status"`
	Body   string `json:"body"`
}

func NewAnalyzerService(cfg *config.AnalyzerConfig) *AnalyzerService {
	return &AnalyzerService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// AnalyzeLease posts the agreement as multipart form data and returns
// the raw report JSON.
func (s *AnalyzerService) AnalyzeLease(ctx context.Context, filename string, content []byte) (json.RawMessage, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.APIURL+"/analyze-lease", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.config.APIToken)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("analyzer error: %s", apiErr.Error)
		}
		return nil, fmt.Errorf("analyzer request failed (%d)", resp.StatusCode)
	}

	if !json.Valid(respBody) {
		return nil, fmt.Errorf("analyzer returned invalid JSON")
	}

	return json.RawMessage(respBody), nil
}

// SubmitTask creates an asynchronous analysis task; the analyzer will
// POST the result to the configured callback URL.
func (s *AnalyzerService) SubmitTask(ctx context.Context, documentURL, dataID string) (string, error) {
	reqBody := AnalyzerTaskRequest{
		URL:      documentURL,
		Callback: s.config.CallbackURL,
		Seed:     s.config.Seed,
		DataID:   dataID,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.APIURL+"/analyze-lease/tasks", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.config.APIToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var result AnalyzerTaskResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w, body: %s", err, string(respBody))
	}

	if result.Code != 0 {
		return "", fmt.Errorf("analyzer API error: %s", result.Message)
	}

	return result.Data.TaskID, nil
}

// VerifyCallback verifies the callback checksum.
// Checksum = SHA256(uid + seed + content)
func (s *AnalyzerService) VerifyCallback(checksum, content, uid string) bool {
	data := uid + s.config.Seed + content
	hash := sha256.Sum256([]byte(data))
	expected := hex.EncodeToString(hash[:])
	return checksum == expected
}

// CheckHealth probes the analyzer's health endpoint
func (s *AnalyzerService) CheckHealth(ctx context.Context) (*HealthResult, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.config.APIURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach analyzer: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &HealthResult{
		OK:     resp.StatusCode == http.StatusOK,
		Status: resp.StatusCode,
		Body:   string(body),
	}, nil
}
