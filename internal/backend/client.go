package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/canal5/stt-relay/internal/survey"
)

// StatusError is returned when the backend answers with a non-success
// status. The raw response body is kept for diagnostics and the status
// code is propagated to the uploader.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the survey backend's public delivery endpoints.
type Client struct {
	baseURL       string
	fetchTimeout  time.Duration
	submitTimeout time.Duration
	client        *http.Client
	log           zerolog.Logger
}

// NewClient creates a backend client. A base URL without a scheme gets
// "https://" prepended.
func NewClient(baseURL string, fetchTimeout, submitTimeout time.Duration, log zerolog.Logger) *Client {
	if !strings.Contains(baseURL, "://") {
		baseURL = "https://" + baseURL
	}
	return &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		fetchTimeout:  fetchTimeout,
		submitTimeout: submitTimeout,
		client:        &http.Client{},
		log:           log.With().Str("component", "backend").Logger(),
	}
}

// FetchTemplate retrieves the question template for one delivery.
// A non-200 response becomes a StatusError carrying the backend's body.
func (c *Client) FetchTemplate(ctx context.Context, entregaID string) (*survey.Template, error) {
	ctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/public/entregas/%s/plantilla-mapa", c.baseURL, entregaID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("template request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tpl survey.Template
	if err := json.Unmarshal(body, &tpl); err != nil {
		return nil, fmt.Errorf("decode template: %w", err)
	}

	c.log.Debug().Str("entrega_id", entregaID).Int("preguntas", len(tpl.Preguntas)).Msg("template fetched")
	return &tpl, nil
}

// SubmitAnswers posts the flattened answer rows for one delivery and
// returns the backend's raw JSON reply. Any transport error or non-2xx
// status is returned as an error; the caller decides whether to swallow it.
func (c *Client) SubmitAnswers(ctx context.Context, entregaID string, payload survey.SubmissionPayload) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.submitTimeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/public/entregas/%s/respuestas", c.baseURL, entregaID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	c.log.Debug().
		Str("entrega_id", entregaID).
		Int("filas", len(payload.RespuestasPreguntas)).
		Msg("answers submitted")
	return json.RawMessage(respBody), nil
}
