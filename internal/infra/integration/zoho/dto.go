package zoho

import "time"

type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	AccountsURL  string // e.g. https://accounts.zoho.in
	APIURL       string // e.g. https://www.zohoapis.in
	DedupField   string
	Timeout      time.Duration
}

type upsertRequest struct {
	Data                 []map[string]any `json:"data"`
	DuplicateCheckFields []string         `json:"duplicate_check_fields"`
	Trigger              []string         `json:"trigger"`
}

type upsertResponse struct {
	Data []struct {
		Code    string `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
		Action  string `json:"action"`
		Details struct {
			ID string `json:"id"`
		} `json:"details"`
	} `json:"data"`
}
