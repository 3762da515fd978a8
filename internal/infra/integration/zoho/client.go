package zoho

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/xavierca1/agency-leads/internal/entity"
)

const (
	DefaultAccountsURL = "https://accounts.zoho.in"
	DefaultAPIURL      = "https://www.zohoapis.in"
	DefaultDedupField  = "Website_Lead_ID"
	websiteLeadSource  = "Website"
)

type Client struct {
	apiURL     string
	dedupField string
	configured bool
	http       *http.Client
	logger     *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.AccountsURL == "" {
		cfg.AccountsURL = DefaultAccountsURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.DedupField == "" {
		cfg.DedupField = DefaultDedupField
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  strings.TrimRight(cfg.AccountsURL, "/") + "/oauth/v2/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	// the token exchange itself must not hang either
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: cfg.Timeout})
	source := oauth2.ReuseTokenSource(nil, oauthCfg.TokenSource(tokenCtx, &oauth2.Token{RefreshToken: cfg.RefreshToken}))

	return &Client{
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
		dedupField: cfg.DedupField,
		configured: cfg.ClientID != "" && cfg.ClientSecret != "" && cfg.RefreshToken != "",
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: &tokenTransport{source: source, base: http.DefaultTransport},
		},
		logger: logger,
	}
}

// Configured reports whether credentials are present; it does not call Zoho.
func (c *Client) Configured() bool {
	return c != nil && c.configured
}

// CreateLead upserts the lead keyed on the local lead id and returns the Zoho record id.
func (c *Client) CreateLead(ctx context.Context, lead *entity.Lead) (string, error) {
	if !c.Configured() {
		return "", eris.New("zoho: credentials not configured")
	}

	body, err := json.Marshal(upsertRequest{
		Data:                 []map[string]any{c.record(lead)},
		DuplicateCheckFields: []string{c.dedupField},
		Trigger:              []string{"workflow"},
	})
	if err != nil {
		return "", eris.Wrap(err, "zoho: marshal lead")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/crm/v2/Leads/upsert", bytes.NewReader(body))
	if err != nil {
		return "", eris.Wrap(err, "zoho: build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "zoho: request")
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", eris.New(fmt.Sprintf("zoho: upsert status %d: %s", resp.StatusCode, truncate(string(respBody), 300)))
	}

	var result upsertResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", eris.Wrap(err, "zoho: decode response")
	}
	if len(result.Data) == 0 {
		return "", eris.New("zoho: empty upsert response")
	}

	item := result.Data[0]
	if !strings.EqualFold(item.Status, "success") || item.Details.ID == "" {
		return "", eris.New(fmt.Sprintf("zoho: upsert rejected: %s %s", item.Code, item.Message))
	}

	c.logger.Info("zoho lead upserted",
		zap.String("lead_id", lead.ID),
		zap.String("zoho_lead_id", item.Details.ID),
		zap.String("action", item.Action),
	)
	return item.Details.ID, nil
}

func (c *Client) record(lead *entity.Lead) map[string]any {
	first, last := splitName(lead.Name)
	if last == "" {
		last = "Website Lead"
	}

	company := lead.Name
	if lead.Healthcare != nil && lead.Healthcare.Organization != "" {
		company = lead.Healthcare.Organization
	}
	if company == "" {
		company = "Not provided"
	}

	leadSource := lead.LeadSource
	if leadSource == "" {
		leadSource = websiteLeadSource
	}

	rec := map[string]any{
		c.dedupField:  lead.ID,
		"Last_Name":   last,
		"Company":     company,
		"Lead_Source": leadSource,
		"Lead_Score":  lead.LeadScore,
		"Rating":      lead.QualificationLevel,
		"Priority":    lead.Priority,
		"Budget":      lead.Budget,
		"Source_Page": lead.Source,
	}
	if first != "" {
		rec["First_Name"] = first
	}
	if lead.Email != "" {
		rec["Email"] = lead.Email
	}
	if lead.Phone != "" {
		rec["Phone"] = lead.Phone
	}
	if lead.Campaign != "" {
		rec["Campaign"] = lead.Campaign
	}
	if desc := description(lead); desc != "" {
		rec["Description"] = desc
	}
	return rec
}

func description(lead *entity.Lead) string {
	parts := make([]string, 0, 6)
	if lead.Message != "" {
		parts = append(parts, lead.Message)
	}
	if h := lead.Healthcare; h != nil {
		if h.HealthcareType != "" {
			parts = append(parts, "Type: "+h.HealthcareType)
		}
		if h.Timeline != "" {
			parts = append(parts, "Timeline: "+h.Timeline)
		}
		if len(h.ComplianceNeeds) > 0 {
			parts = append(parts, "Compliance: "+strings.Join(h.ComplianceNeeds, ", "))
		}
		if h.Requirements != "" {
			parts = append(parts, "Requirements: "+h.Requirements)
		}
		if h.IsUrgent {
			parts = append(parts, "Urgent")
		}
	}
	return strings.Join(parts, "\n")
}

func splitName(name string) (string, string) {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return "", fields[0]
	default:
		return strings.Join(fields[:len(fields)-1], " "), fields[len(fields)-1]
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// tokenTransport adds Zoho's own authorization scheme; oauth2.Transport would send "Bearer".
type tokenTransport struct {
	source oauth2.TokenSource
	base   http.RoundTripper
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok, err := t.source.Token()
	if err != nil {
		return nil, eris.Wrap(err, "zoho: refresh access token")
	}
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Zoho-oauthtoken "+tok.AccessToken)
	return t.base.RoundTrip(r)
}
