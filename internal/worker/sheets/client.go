package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// AppendRequest asks the spreadsheet webhook to append one row. RowID is the break
// record ID so the receiving side can drop redeliveries.
type AppendRequest struct {
	Sheet  string        `json:"sheet"`
	RowID  string        `json:"rowId"`
	Header []string      `json:"header"`
	Values []interface{} `json:"values"`
}

// Client contract for the spreadsheet export
type Client interface {
	AppendRow(ctx context.Context, req AppendRequest) error
}

// HTTPClient posts rows to a spreadsheet webhook.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a client whose requests carry trace context.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: baseURL,
	}
}

// AppendRow sends the row to the webhook.
func (c *HTTPClient) AppendRow(ctx context.Context, row AppendRequest) error {
	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to marshal sheets payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create sheets request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call sheets webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sheets webhook returned non-successful status code: %d", resp.StatusCode)
	}

	log.Ctx(ctx).Debug().Str("row_id", row.RowID).Msg("Row appended to sheet")
	return nil
}
