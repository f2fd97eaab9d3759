package location

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Reporter forwards a visitor's coordinates to the backend's location
// endpoint so it can personalize answers (e.g. nearest stores).
type Reporter struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewReporter creates a Reporter posting to url. A nil Reporter, or one
// with an empty url, silently drops reports.
func NewReporter(url string, timeout time.Duration, logger *zap.Logger) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Enabled reports whether reports are sent anywhere.
func (r *Reporter) Enabled() bool {
	return r != nil && r.url != ""
}

// Report posts c to the configured endpoint. Failures are returned for
// callers that care, and always logged.
func (r *Reporter) Report(ctx context.Context, c Coordinates) error {
	if !r.Enabled() || c.Empty() {
		return nil
	}

	body, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling coordinates: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating location request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn("location report failed", zap.Error(err))
		return fmt.Errorf("location request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		r.logger.Warn("location report rejected", zap.Int("status", resp.StatusCode))
		return fmt.Errorf("location endpoint returned status %d", resp.StatusCode)
	}

	r.logger.Debug("location reported")
	return nil
}
