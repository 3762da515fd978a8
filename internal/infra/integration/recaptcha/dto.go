package recaptcha

// VerifyResult is the siteverify answer. Score is nil for v2 checkbox tokens,
// which carry no score.
type VerifyResult struct {
	Success     bool     `json:"success"`
	Score       *float64 `json:"score"`
	Action      string   `json:"action"`
	Hostname    string   `json:"hostname"`
	ChallengeTS string   `json:"challenge_ts"`
	ErrorCodes  []string `json:"error-codes"`
}
