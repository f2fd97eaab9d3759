package responder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"
)

// maxResponseBytes caps how much of an answer body is read.
const maxResponseBytes = 1 << 20

var (
	// ErrMissingAnswer is returned when a 2xx response has no answer field.
	ErrMissingAnswer = errors.New("response has no answer field")
	// ErrNoQuestion is returned when a transcript holds no user message.
	ErrNoQuestion = errors.New("transcript has no user message")
	// ErrDecode is returned when a 2xx response is not valid JSON.
	ErrDecode = errors.New("malformed answer response")
)

// StatusError reports a non-2xx response from the answer endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("answer endpoint returned status %d: %s", e.Code, e.Body)
}

// Question is the JSON body sent to the answer endpoint. Coordinates
// are omitted, not zeroed, when unknown.
type Question struct {
	Question  string   `json:"question"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type answerBody struct {
	Answer *string `json:"answer"`
}

// Asker sends a question and returns the answer text.
type Asker interface {
	Ask(ctx context.Context, q Question) (string, error)
}

// Client implements Asker against an HTTP answer endpoint.
type Client struct {
	url    string
	client *http.Client
}

// NewClient creates a Client posting to url. A zero timeout means the
// request waits as long as ctx allows.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Ask posts q and decodes {"answer": "..."} from the response.
func (c *Client) Ask(ctx context.Context, q Question) (string, error) {
	body, err := json.Marshal(q)
	if err != nil {
		return "", fmt.Errorf("failed to marshal question: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("answer request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read answer response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return "", &StatusError{Code: httpResp.StatusCode, Body: truncate(string(respBody), 200)}
	}

	var ans answerBody
	if err := json.Unmarshal(respBody, &ans); err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if ans.Answer == nil {
		return "", ErrMissingAnswer
	}

	return *ans.Answer, nil
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
