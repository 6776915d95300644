package outreach

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultValidatorURL = "https://apilayer.net/api/check"

// Validator checks recipient addresses against the Mailbox Layer API before
// sending, to keep the bounce rate down.
type Validator struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewValidator wires a Validator.
func NewValidator(apiKey string, timeout time.Duration) *Validator {
	return &Validator{
		apiKey:  apiKey,
		baseURL: defaultValidatorURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// WithBaseURL points the validator at an alternate endpoint. Used by tests.
func (v *Validator) WithBaseURL(u string) *Validator {
	v.baseURL = u
	return v
}

type validation struct {
	FormatValid bool `json:"format_valid"`
	MXFound     bool `json:"mx_found"`
	SMTPCheck   bool `json:"smtp_check"`
	Disposable  bool `json:"disposable"`
	Error       *struct {
		Info string `json:"info"`
	} `json:"error"`
}

// IsValid reports whether email is deliverable: well-formed, not disposable,
// and accepted by the receiving server's SMTP check.
func (v *Validator) IsValid(ctx context.Context, email string) (bool, error) {
	if !strings.Contains(email, "@") {
		return false, nil
	}
	if v.apiKey == "" {
		return false, fmt.Errorf("outreach: mailboxlayer API key not configured")
	}

	params := url.Values{}
	params.Set("access_key", v.apiKey)
	params.Set("email", email)
	params.Set("smtp", "1")
	params.Set("format", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return false, fmt.Errorf("outreach: validate %s: %w", email, err)
	}
	resp, err := v.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("outreach: validate %s: %w", email, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("outreach: validate %s: status %d", email, resp.StatusCode)
	}
	var result validation
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("outreach: validate %s: %w", email, err)
	}
	if result.Error != nil {
		return false, fmt.Errorf("outreach: validate %s: %s", email, result.Error.Info)
	}
	return result.FormatValid && !result.Disposable && result.SMTPCheck, nil
}
