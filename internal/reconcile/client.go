package reconcile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/JaimeStill/waybill/pkg/formatting"
)

const systemPrompt = `You extract structured shipment data from carrier shipment documents.
A deterministic parser already produced a seed record. Correct or complete it using the document text.
Return ONLY JSON that matches the provided schema. Use null for any value not present in the text.
Weights are kilograms as plain numbers. Dates keep the document's notation.
For every value you return, add an evidence entry quoting the snippet of text it came from.`

// Client calls an OpenAI-compatible chat completions endpoint with a strict
// response schema.
type Client struct {
	cfg        *Config
	httpClient *http.Client
	schema     *jsonschema.Schema
	logger     *slog.Logger
}

// NewClient creates a reconciliation client. The response schema is compiled
// once at construction.
func NewClient(cfg *Config, logger *slog.Logger) (*Client, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.TimeoutDuration()},
		schema:     schema,
		logger:     logger.With("system", "reconcile"),
	}, nil
}

// New returns a Client when reconciliation is enabled and Disabled otherwise.
func New(cfg *Config, logger *slog.Logger) (Reconciler, error) {
	if !cfg.Enabled {
		return Disabled{}, nil
	}
	return NewClient(cfg, logger)
}

// Reconcile sends the seed record and document texts and returns the
// validated patch. Transport failures are reported as ErrUnavailable.
func (c *Client) Reconcile(ctx context.Context, req Request) (*Patch, error) {
	rid := uuid.NewString()
	start := time.Now()

	seed, err := json.Marshal(req.Seed)
	if err != nil {
		return nil, fmt.Errorf("marshal seed: %w", err)
	}

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   "shipment_record",
				"strict": true,
				"schema": RecordSchema(),
			},
		},
		"messages": []map[string]any{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": c.userPrompt(req, seed)},
		},
	}

	c.logger.Info("reconcile started",
		"req_id", rid,
		"model", c.cfg.Model,
		"primary_len", len(req.Primary),
		"alternates", len(req.Alternates),
	)

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.logger.Warn("reconcile request failed",
			"req_id", rid,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, errors.Join(ErrUnavailable, err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return nil, fmt.Errorf("decode completion: %w", err)
	}
	if len(cc.Choices) == 0 {
		return nil, fmt.Errorf("no choices in completion")
	}

	content, err := formatting.Parse[json.RawMessage](cc.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	if err := validate(c.schema, content); err != nil {
		c.logger.Warn("reconcile response rejected", "req_id", rid, "error", err)
		return nil, err
	}

	var patch Patch
	if err := json.Unmarshal(content, &patch); err != nil {
		return nil, fmt.Errorf("decode patch: %w", err)
	}

	c.logger.Info("reconcile completed",
		"req_id", rid,
		"items", len(patch.Items),
		"evidence", len(patch.Evidence),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	return &patch, nil
}

func (c *Client) userPrompt(req Request, seed []byte) string {
	var b strings.Builder

	b.WriteString("Seed record:\n")
	b.Write(seed)
	b.WriteString("\n\nDocument text:\n")
	b.WriteString(truncate(req.Primary, c.cfg.MaxPrimaryChars))

	for i, alt := range req.Alternates {
		fmt.Fprintf(&b, "\n\nAlternate reading %d:\n", i+1)
		b.WriteString(truncate(alt, c.cfg.MaxAlternateChars))
	}

	return b.String()
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read completion: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("completion status %d: %s", resp.StatusCode, truncate(string(data), 512))
	}

	return data, nil
}

// truncate caps s at n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n])
}

var _ Reconciler = (*Client)(nil)

