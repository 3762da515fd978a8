package recaptcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

type Client struct {
	secret    string
	verifyURL string
	http      *http.Client
}

func NewClient(secret, verifyURL string, timeout time.Duration) *Client {
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		secret:    secret,
		verifyURL: verifyURL,
		http:      &http.Client{Timeout: timeout},
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.secret != ""
}

// Verify posts the token to siteverify. A non-nil error means Google could not
// be asked; a negative answer comes back as VerifyResult.Success == false.
func (c *Client) Verify(ctx context.Context, token, remoteIP string) (*VerifyResult, error) {
	form := url.Values{}
	form.Set("secret", c.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "recaptcha: build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "recaptcha: request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, eris.New(fmt.Sprintf("recaptcha: siteverify status %d", resp.StatusCode))
	}

	var result VerifyResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, eris.Wrap(err, "recaptcha: decode")
	}
	return &result, nil
}
