// internal/providers/llamacpp/provider.go
// Package llamacpp provides a Completer backed by the llama.cpp server's raw
// /completion endpoint.
package llamacpp

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

// completionSchema is the minimum shape a /completion answer must have.
var completionSchema = gojsonschema.NewStringLoader(`{
	"type": "object",
	"required": ["content"],
	"properties": {
		"content": {"type": "string"},
		"stop": {"type": "boolean"},
		"stopping_word": {"type": "string"},
		"tokens_predicted": {"type": "integer"}
	}
}`)

// Provider implements providers.Completer using llama.cpp HTTP APIs.
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

type completionResponse struct {
	Content         string `json:"content"`
	Model           string `json:"model"`
	Stop            bool   `json:"stop"`
	StoppingWord    string `json:"stopping_word"`
	TokensPredicted int    `json:"tokens_predicted"`
	TokensEvaluated int    `json:"tokens_evaluated"`
}

// Complete sends prompt verbatim to /completion and returns the generated
// content. The server truncates at the first stop string.
func (p *Provider) Complete(ctx context.Context, prompt string, opts providers.Options) (string, error) {
	payload := map[string]any{
		"prompt":       prompt,
		"n_predict":    opts.MaxTokens,
		"temperature":  opts.Temperature,
		"stream":       false,
		"cache_prompt": false,
	}
	if len(opts.Stop) > 0 {
		payload["stop"] = opts.Stop
	}
	if p.model != "" {
		payload["model"] = p.model
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	logging.LogRequest("PETIT->LLM", p.name, p.model, body)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url+"/completion", bytes.NewReader(body))
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
		return "", fmt.Errorf("llama.cpp: /completion returned %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}
	if err := providers.ValidateShape(completionSchema, raw); err != nil {
		return "", fmt.Errorf("llama.cpp: /completion: %w", err)
	}

	var parsed completionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("llama.cpp: /completion: %w: %v", providers.ErrMalformedOutput, err)
	}
	if parsed.StoppingWord != "" {
		logging.Debug("llama.cpp: stopped on %q after %d tokens", parsed.StoppingWord, parsed.TokensPredicted)
	}
	return parsed.Content, nil
}

type modelsResponse struct {
	Data   []llamaModel `json:"data"`
	Models []llamaModel `json:"models"`
}

type llamaModel struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Model  string      `json:"model"`
	Path   string      `json:"path"`
	Status statusField `json:"status"`
}

// LoadedModels returns the models currently loaded in memory on the server.
func (p *Provider) LoadedModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	models, err := p.fetchModels(ctx, true)
	if err != nil {
		return nil, err
	}

	var loaded []string
	for _, model := range models {
		if strings.EqualFold(modelStatusValue(model), "loaded") {
			if name := modelDisplayName(model); name != "" {
				loaded = append(loaded, name)
			}
		}
	}
	return loaded, nil
}

// EnsureModelReady triggers a load request when the router endpoints are
// available. Single-model servers answer 404 and are used as they are.
func (p *Provider) EnsureModelReady(ctx context.Context) error {
	if p.model == "" {
		return nil
	}
	body, err := json.Marshal(map[string]any{"model": p.model})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	logging.LogRequest("PETIT->LLM", p.name, p.model, body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url+"/models/load", bytes.NewReader(body))
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

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusMethodNotAllowed {
		return nil
	}
	if resp.StatusCode >= 400 {
		if isAlreadyLoadedError(resp.StatusCode, respBody) {
			return p.waitForModelLoaded(ctx)
		}
		return fmt.Errorf("llama.cpp: /models/load returned %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}
	return p.waitForModelLoaded(ctx)
}

func (p *Provider) fetchModels(ctx context.Context, logIO bool) ([]llamaModel, error) {
	endpoint := p.url + "/models"
	if logIO {
		logging.LogRequest("PETIT->LLM", p.name, "", map[string]string{"method": http.MethodGet, "url": endpoint})
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if logIO {
		logging.LogRequest("LLM->PETIT", p.name, "", body)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("llama.cpp: /models returned %s", resp.Status)
	}
	return parseModels(body)
}

func (p *Provider) waitForModelLoaded(ctx context.Context) error {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		loaded, err := p.isModelLoaded(ctx)
		if err != nil {
			return err
		}
		if loaded {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("llama.cpp: model %s did not load before timeout", p.model)
		case <-ticker.C:
		}
	}
}

func (p *Provider) isModelLoaded(ctx context.Context) (bool, error) {
	models, err := p.fetchModels(ctx, false)
	if err != nil {
		return false, err
	}
	for _, item := range models {
		if strings.EqualFold(modelDisplayName(item), p.model) {
			return strings.EqualFold(modelStatusValue(item), "loaded"), nil
		}
	}
	return false, nil
}

func parseModels(body []byte) ([]llamaModel, error) {
	var wrapped modelsResponse
	if err := json.Unmarshal(body, &wrapped); err == nil {
		if len(wrapped.Models) > 0 {
			return wrapped.Models, nil
		}
		if len(wrapped.Data) > 0 {
			return wrapped.Data, nil
		}
	}

	var direct []llamaModel
	if err := json.Unmarshal(body, &direct); err == nil && len(direct) > 0 {
		return direct, nil
	}

	var names struct {
		Models []string `json:"models"`
	}
	if err := json.Unmarshal(body, &names); err == nil && len(names.Models) > 0 {
		out := make([]llamaModel, 0, len(names.Models))
		for _, name := range names.Models {
			out = append(out, llamaModel{Name: name})
		}
		return out, nil
	}

	return nil, fmt.Errorf("llama.cpp: unrecognized /models response")
}

func modelDisplayName(model llamaModel) string {
	for _, candidate := range []string{model.ID, model.Name, model.Model, model.Path} {
		if v := strings.TrimSpace(candidate); v != "" {
			return v
		}
	}
	return ""
}

// statusField accepts both "loaded" and {"value":"loaded"}.
type statusField struct {
	Value string
}

func (s *statusField) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		s.Value = ""
		return nil
	}
	if trimmed[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		s.Value = v
		return nil
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	s.Value = obj.Value
	return nil
}

func modelStatusValue(model llamaModel) string {
	return strings.TrimSpace(model.Status.Value)
}

func isAlreadyLoadedError(statusCode int, body []byte) bool {
	if statusCode != http.StatusBadRequest {
		return false
	}
	if strings.Contains(strings.ToLower(string(body)), "already loaded") {
		return true
	}
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		return strings.Contains(strings.ToLower(payload.Error.Message), "already loaded")
	}
	return false
}

// hostIdentifier returns a short label for log lines.
func hostIdentifier(url string) string {
	if v := strings.TrimSpace(url); v != "" {
		return v
	}
	return "llama.cpp-host"
}
