package outreach

import (
	"context"
	"fmt"
	"log"
)

// Result summarizes one campaign run.
type Result struct {
	Status         string `json:"status"`
	ProspectsUsed  int    `json:"prospects_used"`
	EmailsCreated  int    `json:"emails_created"`
	EmailsSent     int    `json:"emails_sent"`
	EmailsFailed   int    `json:"emails_failed"`
	EmailsRejected int    `json:"emails_rejected"`
}

type emailCreator interface {
	CreateEmails(ctx context.Context, urls []string, template string) []Email
}

type templateMaker interface {
	CreateTemplate(ctx context.Context, site Site, targetURL string) (string, error)
}

type emailValidator interface {
	IsValid(ctx context.Context, email string) (bool, error)
}

type emailSender interface {
	Send(e Email) (string, error)
}

// Campaign orchestrates one outreach batch: pop prospects, compose emails,
// validate recipients, send, and record the outcome of every send.
type Campaign struct {
	store     *Store
	templates templateMaker
	creator   emailCreator
	validator emailValidator
	sender    emailSender
	maxEmails int
}

// NewCampaign wires a Campaign. maxEmails caps how many prospects one run
// consumes.
func NewCampaign(store *Store, templates templateMaker, creator emailCreator, validator emailValidator, sender emailSender, maxEmails int) *Campaign {
	return &Campaign{
		store:     store,
		templates: templates,
		creator:   creator,
		validator: validator,
		sender:    sender,
		maxEmails: maxEmails,
	}
}

// Run executes one campaign batch for site.
func (c *Campaign) Run(ctx context.Context, site Site) (Result, error) {
	prospects, err := c.store.PopNextProspects(c.maxEmails, site.ID)
	if err != nil {
		return Result{}, fmt.Errorf("outreach: pop prospects: %w", err)
	}
	if len(prospects) == 0 {
		return Result{Status: "failed"}, fmt.Errorf("outreach: no prospects available for site %d", site.ID)
	}

	template, err := c.templates.CreateTemplate(ctx, site, prospects[0].URL)
	if err != nil {
		return Result{Status: "failed", ProspectsUsed: len(prospects)}, err
	}

	urls := make([]string, len(prospects))
	for i, p := range prospects {
		urls[i] = p.URL
	}
	emails := c.creator.CreateEmails(ctx, urls, template)
	if len(emails) == 0 {
		return Result{Status: "failed", ProspectsUsed: len(prospects)},
			fmt.Errorf("outreach: no emails could be created for site %d", site.ID)
	}

	result := Result{Status: "completed", ProspectsUsed: len(prospects), EmailsCreated: len(emails)}
	for _, e := range emails {
		valid, err := c.validator.IsValid(ctx, e.To)
		if err != nil {
			log.Printf("outreach: validation for %s failed, sending anyway: %v", e.To, err)
		} else if !valid {
			log.Printf("outreach: rejecting undeliverable address %s", e.To)
			result.EmailsRejected++
			continue
		}

		id, err := c.sender.Send(e)
		record := EmailRecord{ID: id, Recipient: e.To, Subject: e.Subject, SiteID: site.ID}
		if err != nil {
			log.Printf("outreach: send to %s failed: %v", e.To, err)
			result.EmailsFailed++
			record.Status = "bounced"
			record.Error = err.Error()
		} else {
			result.EmailsSent++
			record.Status = "delivered"
		}
		if record.ID == "" {
			continue
		}
		if err := c.store.RecordEmail(record); err != nil {
			log.Printf("outreach: record email %s: %v", record.ID, err)
		}
	}
	return result, nil
}
