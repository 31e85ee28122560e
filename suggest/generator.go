package suggest

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"tasktrack/domain"
)

// pool is the fixed set of canned productivity suggestions.
var pool = []domain.Suggestion{
	{
		Title:       "Review and plan tomorrow's tasks",
		Description: "Take 10 minutes to review your progress and plan for tomorrow",
		Category:    "Planning",
		Priority:    domain.PriorityMedium,
		Icon:        "Calendar",
		Reason:      "Daily planning improves productivity by 25%",
		Provenance:  domain.ProvenanceLocal,
	},
	{
		Title:       "Take a 5-minute break",
		Description: "Step away from your work and stretch or take a short walk",
		Category:    "Health",
		Priority:    domain.PriorityLow,
		Icon:        "Heart",
		Reason:      "Regular breaks improve focus and reduce stress",
		Provenance:  domain.ProvenanceLocal,
	},
	{
		Title:       "Organize your workspace",
		Description: "Clean up your desk and organize your digital files",
		Category:    "Personal",
		Priority:    domain.PriorityMedium,
		Icon:        "Home",
		Reason:      "A clean workspace boosts productivity and reduces distractions",
		Provenance:  domain.ProvenanceLocal,
	},
	{
		Title:       "Learn something new",
		Description: "Spend 15 minutes learning a new skill or reading",
		Category:    "Learning",
		Priority:    domain.PriorityLow,
		Icon:        "BookOpen",
		Reason:      "Continuous learning keeps your mind sharp and opens new opportunities",
		Provenance:  domain.ProvenanceLocal,
	},
	{
		Title:       "Review your goals",
		Description: "Check if your current tasks align with your long-term goals",
		Category:    "Planning",
		Priority:    domain.PriorityHigh,
		Icon:        "Target",
		Reason:      "Goal alignment ensures you're working on what matters most",
		Provenance:  domain.ProvenanceLocal,
	},
	{
		Title:       "Connect with a colleague",
		Description: "Reach out to a team member for collaboration or support",
		Category:    "Work",
		Priority:    domain.PriorityMedium,
		Icon:        "Briefcase",
		Reason:      "Building relationships improves teamwork and career growth",
		Provenance:  domain.ProvenanceLocal,
	},
}

// Generator produces small randomized batches from the canned pool. It
// is stateless apart from its randomness source and performs no I/O.
// The artificial delay keeps the caller's loading state observable; it
// is injectable so tests can zero it.
type Generator struct {
	mu    sync.Mutex
	rnd   *rand.Rand
	delay time.Duration
	pool  []domain.Suggestion
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed fixes the randomness source for deterministic output.
func WithSeed(seed int64) Option {
	return func(g *Generator) { g.rnd = rand.New(rand.NewSource(seed)) }
}

// WithDelay overrides the artificial latency before a batch is returned.
func WithDelay(d time.Duration) Option {
	return func(g *Generator) { g.delay = d }
}

// New creates a Generator with a time-seeded randomness source and a
// one second delay by default.
func New(opts ...Option) *Generator {
	g := &Generator{
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		delay: time.Second,
		pool:  pool,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns between min and max suggestions drawn without
// replacement from the pool, in randomized order. The bounds are
// clamped to the pool size.
func (g *Generator) Generate(ctx context.Context, min, max int) ([]domain.Suggestion, error) {
	if min < 1 {
		min = 1
	}
	if min > len(g.pool) {
		min = len(g.pool)
	}
	if max > len(g.pool) {
		max = len(g.pool)
	}
	if max < min {
		max = min
	}

	g.mu.Lock()
	n := min + g.rnd.Intn(max-min+1)
	perm := g.rnd.Perm(len(g.pool))
	g.mu.Unlock()

	out := make([]domain.Suggestion, 0, n)
	for _, i := range perm[:n] {
		out = append(out, g.pool[i])
	}

	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return out, nil
}
