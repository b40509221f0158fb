package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/fatflowers/pledge/pkg/config"
)

const promptTemplate = `You are a helpful assistant for nonprofit campaign classification.
Task:
1. Generate a short array of tags (keywords).
2. Generate a one-sentence summary.

Campaign: %q

Respond ONLY in valid JSON:
{"tags": ["tag1", "tag2"], "summary": "one sentence"}`

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Gemini calls the generateContent REST endpoint and falls back to keyword
// tagging on any failure.
type Gemini struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	fallback   Analyzer
	l          *zap.SugaredLogger
}

func NewGemini(l *zap.SugaredLogger, cfg config.ClassifierConfig, fallback Analyzer) *Gemini {
	return &Gemini{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		fallback:   fallback,
		l:          l,
	}
}

func (g *Gemini) Analyze(ctx context.Context, text string) Analysis {
	a, err := g.generate(ctx, text)
	if err != nil {
		g.l.Warnw("campaign analysis fell back to keywords", "error", err)
		return g.fallback.Analyze(ctx, text)
	}
	return a
}

func (g *Gemini) generate(ctx context.Context, text string) (Analysis, error) {
	reqBody := geminiRequest{Contents: []geminiContent{{Parts: []geminiPart{{Text: fmt.Sprintf(promptTemplate, text)}}}}}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return Analysis{}, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, url.PathEscape(g.model), url.QueryEscape(g.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Analysis{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return Analysis{}, fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Analysis{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Analysis{}, fmt.Errorf("gemini status %d: %s", resp.StatusCode, string(body))
	}

	var gr geminiResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return Analysis{}, fmt.Errorf("decode response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return Analysis{}, errors.New("gemini returned no candidates")
	}

	return parseAnalysis(gr.Candidates[0].Content.Parts[0].Text)
}

func parseAnalysis(raw string) (Analysis, error) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.TrimSpace(strings.ReplaceAll(cleaned, "```", ""))

	var a Analysis
	if err := json.Unmarshal([]byte(cleaned), &a); err != nil {
		return Analysis{}, fmt.Errorf("parse model output %q: %w", cleaned, err)
	}
	if len(a.Tags) == 0 || a.Summary == "" {
		return Analysis{}, fmt.Errorf("incomplete model output %q", cleaned)
	}
	return a, nil
}
