package ai

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"

	"tasktrack/domain"
)

// UnavailableError reports that every enhancement tier failed. The
// caller must leave the draft untouched.
type UnavailableError struct {
	Last error
}

func (e *UnavailableError) Error() string { return "enhancement unavailable: " + e.Last.Error() }

func (e *UnavailableError) Unwrap() error { return e.Last }

// EnhancementUnavailable marks the error for callers matching on the
// condition rather than the concrete type.
func (e *UnavailableError) EnhancementUnavailable() {}

// Client tries an ordered list of enhancement tiers until one succeeds.
// The returned suggestion carries the provenance of the tier that
// produced it so the view can label degraded results.
type Client struct {
	providers []Provider
	log       *log.Logger
}

// NewClient creates a tiered enhancement client. Providers are tried in
// the order given.
func NewClient(logger *log.Logger, providers ...Provider) *Client {
	return &Client{providers: providers, log: logger}
}

// Enhance produces an AI suggestion for the draft text. An empty title
// is rejected before any tier is called.
func (c *Client) Enhance(ctx context.Context, title, description string) (domain.Suggestion, error) {
	if strings.TrimSpace(title) == "" {
		return domain.Suggestion{}, domain.ValidationError{Field: "title", Reason: "title is required"}
	}

	var lastErr error
	for _, p := range c.providers {
		s, err := p.Enhance(ctx, title, description)
		if err == nil {
			return s, nil
		}
		lastErr = err
		if c.log != nil {
			c.log.WithFields(log.Fields{"tier": p.Name(), "error": err.Error()}).Warn("enhancement tier failed")
		}
	}
	if lastErr == nil {
		lastErr = errors.New("no enhancement tiers configured")
	}
	return domain.Suggestion{}, &UnavailableError{Last: lastErr}
}

// Insights fetches the productivity aggregate, falling through the same
// tier order as Enhance.
func (c *Client) Insights(ctx context.Context) (domain.ProductivityInsights, error) {
	var lastErr error
	for _, p := range c.providers {
		ins, err := p.Insights(ctx)
		if err == nil {
			return ins, nil
		}
		lastErr = err
		if c.log != nil {
			c.log.WithFields(log.Fields{"tier": p.Name(), "error": err.Error()}).Warn("insights tier failed")
		}
	}
	if lastErr == nil {
		lastErr = errors.New("no enhancement tiers configured")
	}
	return domain.ProductivityInsights{}, &UnavailableError{Last: lastErr}
}
