// Package analytics sends server-side conversions to the GA4 Measurement Protocol.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/xavierca1/agency-leads/internal/infra/queue"
)

const DefaultEndpoint = "https://www.google-analytics.com/mp/collect"

type Client struct {
	measurementID string
	apiSecret     string
	endpoint      string
	http          *http.Client
	logger        *zap.Logger
}

func NewClient(measurementID, apiSecret, endpoint string, timeout time.Duration, logger *zap.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		measurementID: measurementID,
		apiSecret:     apiSecret,
		endpoint:      endpoint,
		http:          &http.Client{Timeout: timeout},
		logger:        logger,
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.measurementID != "" && c.apiSecret != ""
}

// LogServerConversion posts one event. The MP endpoint answers 2xx even for
// malformed events, so only transport failures and 4xx/5xx surface as errors.
func (c *Client) LogServerConversion(ctx context.Context, p queue.ConversionPayload) error {
	if !c.Enabled() {
		c.logger.Debug("analytics not configured, skipping conversion", zap.String("lead_id", p.LeadID))
		return nil
	}

	clientID := p.ClientID
	if clientID == "" {
		// GA4 requires a client id; the lead id keeps server-only events stable
		clientID = p.LeadID
	}

	body, err := json.Marshal(collectRequest{
		ClientID: clientID,
		Events: []event{{
			Name: p.EventType,
			Params: map[string]any{
				"value":          p.Value,
				"currency":       p.Currency,
				"transaction_id": p.LeadID,
				"lead_source":    p.Source,
				"correlation_id": p.CorrelationID,
			},
		}},
	})
	if err != nil {
		return eris.Wrap(err, "analytics: marshal event")
	}

	q := url.Values{}
	q.Set("measurement_id", c.measurementID)
	q.Set("api_secret", c.apiSecret)
	target := c.endpoint
	if strings.Contains(target, "?") {
		target += "&" + q.Encode()
	} else {
		target += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "analytics: build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "analytics: request")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return eris.New(fmt.Sprintf("analytics: collect status %d", resp.StatusCode))
	}

	c.logger.Info("server conversion logged",
		zap.String("event", p.EventType),
		zap.String("lead_id", p.LeadID),
		zap.Int("value", p.Value),
	)
	return nil
}

type collectRequest struct {
	ClientID string  `json:"client_id"`
	Events   []event `json:"events"`
}

type event struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}
