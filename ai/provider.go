package ai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"tasktrack/domain"
)

const maxResponseSize = 1 * 1024 * 1024 // 1 MiB

// Provider is a single enhancement tier: the hosted service, or the
// locally reachable offline alternative. Both speak the same request
// and response shapes.
type Provider interface {
	Name() domain.Provenance
	Enhance(ctx context.Context, title, description string) (domain.Suggestion, error)
	Insights(ctx context.Context) (domain.ProductivityInsights, error)
}

// HTTPProvider implements Provider against an enhancement endpoint
// rooted at baseURL.
type HTTPProvider struct {
	name    domain.Provenance
	baseURL string
	http    *http.Client
}

// NewHTTPProvider creates a provider tagged with the given provenance.
func NewHTTPProvider(name domain.Provenance, baseURL string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Name returns the provenance tag attached to this tier's suggestions.
func (p *HTTPProvider) Name() domain.Provenance { return p.name }

type enhanceRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type enhanceResponse struct {
	EnhancedTitle     string          `json:"enhanced_title"`
	SuggestedCategory string          `json:"suggested_category"`
	SuggestedPriority domain.Priority `json:"suggested_priority"`
	EstimatedTime     float64         `json:"estimated_time"`
	TaskBreakdown     []string        `json:"task_breakdown"`
	AIInsights        string          `json:"ai_insights"`
}

// Enhance posts the draft text to the tier's enhance endpoint and
// normalizes the response into the common suggestion shape.
func (p *HTTPProvider) Enhance(ctx context.Context, title, description string) (domain.Suggestion, error) {
	var resp enhanceResponse
	req := enhanceRequest{Title: title, Description: description}
	if err := p.post(ctx, "enhance task", p.baseURL+"/ai/enhance-task", req, &resp); err != nil {
		return domain.Suggestion{}, err
	}

	priority := resp.SuggestedPriority
	if !priority.Valid() {
		priority = domain.PriorityMedium
	}
	return domain.Suggestion{
		Title:          resp.EnhancedTitle,
		Category:       resp.SuggestedCategory,
		Priority:       priority,
		EstimatedHours: resp.EstimatedTime,
		Breakdown:      resp.TaskBreakdown,
		Insight:        resp.AIInsights,
		Provenance:     p.name,
	}, nil
}

// Insights fetches the productivity dashboard aggregate from this tier.
func (p *HTTPProvider) Insights(ctx context.Context) (domain.ProductivityInsights, error) {
	var insights domain.ProductivityInsights
	if err := p.get(ctx, "fetch insights", p.baseURL+"/ai/productivity-insights", &insights); err != nil {
		return domain.ProductivityInsights{}, err
	}
	return insights, nil
}

func (p *HTTPProvider) post(ctx context.Context, op, url string, body, out any) error {
	payload, err := sonic.ConfigStd.Marshal(body)
	if err != nil {
		return &domain.DecodeError{Op: op, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return p.roundTrip(op, req, out)
}

func (p *HTTPProvider) get(ctx context.Context, op, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	return p.roundTrip(op, req, out)
}

func (p *HTTPProvider) roundTrip(op string, req *http.Request, out any) error {
	resp, err := p.http.Do(req)
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &domain.TransportError{Op: op, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	if err := sonic.ConfigStd.Unmarshal(data, out); err != nil {
		return &domain.DecodeError{Op: op, Err: err}
	}
	return nil
}
