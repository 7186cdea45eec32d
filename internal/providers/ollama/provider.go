// internal/providers/ollama/provider.go
// Package ollama provides a Completer backed by Ollama-compatible HTTP endpoints.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mwiater/petit/internal/appconfig"
	"github.com/mwiater/petit/internal/logging"
	"github.com/mwiater/petit/internal/providers"
	"github.com/xeipuuv/gojsonschema"
)

var generateSchema = gojsonschema.NewStringLoader(`{
	"type": "object",
	"required": ["response"],
	"properties": {
		"model": {"type": "string"},
		"response": {"type": "string"},
		"done": {"type": "boolean"},
		"eval_count": {"type": "integer"}
	}
}`)

// Provider implements providers.Completer using the Ollama HTTP API.
type Provider struct {
	client  *http.Client
	url     string
	name    string
	model   string
	timeout time.Duration
}

// New constructs a Provider configured with the application's request timeout.
func New(cfg *appconfig.Config) *Provider {
	timeout := cfg.RequestTimeout()
	return &Provider{
		client: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{ForceAttemptHTTP2: false},
		},
		url:     strings.TrimRight(strings.TrimSpace(cfg.URL), "/"),
		name:    hostIdentifier(cfg.URL),
		model:   cfg.ModelName(),
		timeout: timeout,
	}
}

// ollamaPsResponse defines the structure of the response from the /api/ps endpoint.
type ollamaPsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

type generateResponse struct {
	Model              string `json:"model"`
	Response           string `json:"response"`
	Done               bool   `json:"done"`
	DoneReason         string `json:"done_reason"`
	TotalDuration      int64  `json:"total_duration"`
	LoadDuration       int64  `json:"load_duration"`
	PromptEvalCount    int    `json:"prompt_eval_count"`
	PromptEvalDuration int64  `json:"prompt_eval_duration"`
	EvalCount          int    `json:"eval_count"`
	EvalDuration       int64  `json:"eval_duration"`
}

// Complete sends prompt to /api/generate in raw mode so Ollama applies no
// template of its own, and returns the generated response.
func (p *Provider) Complete(ctx context.Context, prompt string, opts providers.Options) (string, error) {
	payload := map[string]any{
		"model":   p.model,
		"prompt":  prompt,
		"raw":     true,
		"stream":  false,
		"options": buildOptions(opts),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	logging.LogRequest("PETIT->LLM", p.name, p.model, body)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	logging.LogRequest("LLM->PETIT", p.name, p.model, raw)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama: /api/generate returned %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}
	if err := providers.ValidateShape(generateSchema, raw); err != nil {
		return "", fmt.Errorf("ollama: /api/generate: %w", err)
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("ollama: /api/generate: %w: %v", providers.ErrMalformedOutput, err)
	}
	logging.Debug("ollama: %d tokens in %s (%s)", parsed.EvalCount, time.Duration(parsed.EvalDuration), parsed.DoneReason)
	return parsed.Response, nil
}

// LoadedModels returns the models currently loaded in memory on the host.
func (p *Provider) LoadedModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	endpoint := p.url + "/api/ps"
	logging.LogRequest("PETIT->LLM", p.name, "", map[string]string{"method": http.MethodGet, "url": endpoint})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama: /api/ps returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	logging.LogRequest("LLM->PETIT", p.name, "", body)

	var ps ollamaPsResponse
	if err := json.Unmarshal(body, &ps); err != nil {
		return nil, err
	}

	names := make([]string, len(ps.Models))
	for i, m := range ps.Models {
		names[i] = m.Name
	}
	return names, nil
}

// EnsureModelReady issues an empty generate request, which makes Ollama load
// the model without producing any output.
func (p *Provider) EnsureModelReady(ctx context.Context) error {
	body, err := json.Marshal(map[string]any{"model": p.model})
	if err != nil {
		return err
	}
	logging.LogRequest("PETIT->LLM", p.name, p.model, body)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	logging.LogRequest("LLM->PETIT", p.name, p.model, respBody)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama: /api/generate returned %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}
	return nil
}

func buildOptions(opts providers.Options) map[string]any {
	options := map[string]any{
		"temperature": opts.Temperature,
	}
	if opts.MaxTokens > 0 {
		options["num_predict"] = opts.MaxTokens
	}
	if len(opts.Stop) > 0 {
		options["stop"] = opts.Stop
	}
	return options
}

func hostIdentifier(url string) string {
	if v := strings.TrimSpace(url); v != "" {
		return v
	}
	return "ollama-host"
}
