package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/seatrace/backend/internal/logger"
)

// LLMService talks to an external text-analysis model (an Ollama-compatible
// generate endpoint). The reconciliation core uses it for exactly one thing:
// judging from an incident's source news whether the disruption has
// concluded. Responses are treated as untrusted and parsed defensively.
type LLMService struct {
	baseURL  string
	llmModel string
	client   *http.Client
}

type OllamaGenerateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type OllamaGenerateResponse struct {
	Model     string `json:"model"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
	CreatedAt string `json:"created_at"`
}

// IncidentNews is one incident's source-news payload for the batched
// closing-news check.
type IncidentNews struct {
	IncidentID    uint
	Title         string
	Details       string
	PublishedDate time.Time
}

func NewLLMService(baseURL, llmModel string) *LLMService {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if llmModel == "" {
		llmModel = "llama2:13b"
	}

	timeout := 300 * time.Second
	if timeoutStr := os.Getenv("OLLAMA_TIMEOUT_SECONDS"); timeoutStr != "" {
		if t, err := time.ParseDuration(timeoutStr + "s"); err == nil {
			timeout = t
		}
	}

	return &LLMService{
		baseURL:  baseURL,
		llmModel: llmModel,
		client:   &http.Client{Timeout: timeout},
	}
}

// CheckResolvedIncidents batches the candidates' news text into one model
// call and returns a per-incident resolved verdict. Any failure (transport,
// unparseable response) is the caller's signal to resolve nothing by this
// heuristic.
func (ls *LLMService) CheckResolvedIncidents(ctx context.Context, items []IncidentNews) (map[uint]bool, error) {
	if len(items) == 0 {
		return map[uint]bool{}, nil
	}

	prompt := buildResolutionPrompt(items)

	start := time.Now()
	response, err := ls.generate(ctx, prompt)
	if err != nil {
		logger.WithLLM("resolution_check").WithField("error", err.Error()).Error("Model call failed")
		return nil, err
	}

	verdicts, err := parseResolutionVerdicts(extractJSONArray(response))
	if err != nil {
		logger.WithLLM("resolution_check").WithField("raw_response", response).Error("Failed to parse model verdicts")
		return nil, err
	}

	logger.WithLLM("resolution_check").WithFields(map[string]interface{}{
		"incidents": len(items),
		"duration":  time.Since(start).String(),
	}).Info("Closing-news check completed")
	return verdicts, nil
}

func (ls *LLMService) generate(ctx context.Context, prompt string) (string, error) {
	reqBody := OllamaGenerateRequest{
		Model:  ls.llmModel,
		Prompt: prompt,
		Stream: false,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ls.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ls.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling model endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var generateResp OllamaGenerateResponse
	if err := json.Unmarshal(body, &generateResp); err != nil {
		return "", fmt.Errorf("decoding generate response: %w", err)
	}
	return generateResp.Response, nil
}

func buildResolutionPrompt(items []IncidentNews) string {
	var sb strings.Builder
	sb.WriteString(`You are analyzing shipping disruption incidents.

For each news article below, judge whether the described disruption is now over, based on the article content and the time since publication.

Respond ONLY with a valid JSON array like:
[
  {"<incident_id>": true},
  {"<incident_id>": false}
]

News List:
`)
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("\nIncident ID: %d\nTitle: %s\nDetails: %s\nPublished Date: %s\n",
			item.IncidentID, item.Title, item.Details, item.PublishedDate.Format(time.RFC3339)))
	}
	return sb.String()
}

// extractJSONArray strips markdown code fences and any prose around the JSON
// array the model was asked for.
func extractJSONArray(response string) string {
	cleaned := strings.ReplaceAll(response, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start >= 0 && end > start {
		return cleaned[start : end+1]
	}
	return cleaned
}

// parseResolutionVerdicts decodes the model's per-incident boolean verdicts.
// Entries with unparseable incident ids are dropped rather than failing the
// whole batch.
func parseResolutionVerdicts(raw string) (map[uint]bool, error) {
	var entries []map[string]bool
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("parsing verdict array: %w", err)
	}

	verdicts := make(map[uint]bool)
	for _, entry := range entries {
		for key, resolved := range entry {
			id, err := strconv.ParseUint(key, 10, 64)
			if err != nil {
				logger.WithLLM("resolution_check").WithField("incident_key", key).Warn("Dropping verdict with non-numeric incident id")
				continue
			}
			verdicts[uint(id)] = resolved
		}
	}
	return verdicts, nil
}
