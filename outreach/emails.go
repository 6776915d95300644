package outreach

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/scribeworks/scribe/retry"
)

// defaultPitchURL is the hosted post-pitch service that scrapes a target
// site and returns a personalized opener plus a contact address.
const defaultPitchURL = "https://post-pitch-fork.onrender.com"

// Email is a composed outreach message ready to send.
type Email struct {
	To      string
	Subject string
	Body    string
}

// pitch is the post-pitch API response for one target URL.
type pitch struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Email   string `json:"email"`
	Error   string `json:"error"`
}

// EmailCreator composes outreach emails by combining per-site pitch data
// with the campaign template.
type EmailCreator struct {
	pitchURL   string
	http       *http.Client
	retries    int
	retryDelay time.Duration
}

// NewEmailCreator wires an EmailCreator against the default pitch service.
func NewEmailCreator(timeout time.Duration) *EmailCreator {
	return &EmailCreator{
		pitchURL:   defaultPitchURL,
		http:       &http.Client{Timeout: timeout},
		retries:    3,
		retryDelay: 10 * time.Second,
	}
}

// WithPitchURL points the creator at an alternate pitch service. Used by
// tests.
func (c *EmailCreator) WithPitchURL(u string) *EmailCreator {
	c.pitchURL = u
	return c
}

// CreateEmails builds one email per target URL, appending template to each
// personalized opener. Targets whose pitch data cannot be fetched or is
// incomplete are skipped.
func (c *EmailCreator) CreateEmails(ctx context.Context, urls []string, template string) []Email {
	var emails []Email
	for _, target := range urls {
		p, err := c.getPitch(ctx, target)
		if err != nil {
			log.Printf("outreach: pitch data for %s: %v", target, err)
			continue
		}
		if p.Subject == "" || p.Body == "" || p.Email == "" {
			log.Printf("outreach: incomplete pitch data for %s, skipping", target)
			continue
		}
		emails = append(emails, Email{
			To:      p.Email,
			Subject: p.Subject,
			Body:    p.Body + "\n\n" + template,
		})
	}
	return emails
}

// getPitch calls the pitch API for one URL. The hosted service spins down
// when idle and answers 502 while warming up, so those are retried.
func (c *EmailCreator) getPitch(ctx context.Context, target string) (*pitch, error) {
	endpoint := c.pitchURL + "/email_data_lenient?url=" + url.QueryEscape(target)

	var p pitch
	err := retry.Do(ctx, c.retries, c.retryDelay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("status %d", resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(&p)
	})
	if err != nil {
		return nil, fmt.Errorf("outreach: pitch API for %s: %w", target, err)
	}
	if p.Error != "" {
		return nil, fmt.Errorf("outreach: pitch API for %s: %s", target, p.Error)
	}
	return &p, nil
}
