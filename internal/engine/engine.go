// Package engine decides, for every inbound support message, what the
// conversation is about and whether a human takes over. It is deliberately
// deterministic: keyword catalogs, literal fact extraction, and a session
// state machine, with no model calls anywhere on the request path.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jakco/support-router/internal/session"
)

// Block is a curated response document served by the content store.
type Block struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Title    string `json:"title"`
	Body     string `json:"body"`
}

// ContentLookup resolves block hints to curated content. Lookup failures
// degrade the reply, they never fail the Decision.
type ContentLookup interface {
	FindBlockByID(ctx context.Context, id string) (Block, bool, error)
	FindBlocks(ctx context.Context, category string, limit int) ([]Block, error)
}

// AuditSink records conversation turns somewhere durable. Implementations
// own their error handling; Record has no way to fail the request.
type AuditSink interface {
	Record(sessionID, role, content string)
}

// DecisionCache short-circuits repeated deliveries of the same message on
// the same session.
type DecisionCache interface {
	Get(key string) (Decision, bool)
	Put(key string, d Decision)
}

type Request struct {
	Message   string
	SessionID string
}

type Result struct {
	SessionID string        `json:"session_id"`
	Decision  Decision      `json:"decision"`
	Blocks    []Block       `json:"blocks,omitempty"`
	Cached    bool          `json:"cached"`
	Elapsed   time.Duration `json:"-"`
}

type Options struct {
	Catalog    *Catalog
	Thresholds Thresholds
	Sessions   *session.Memory
	Cache      DecisionCache
	Content    ContentLookup
	Audit      AuditSink
	Logger     *slog.Logger

	// CacheKeyPrefixLen bounds how much of the normalized message feeds the
	// cache key.
	CacheKeyPrefixLen int
}

type Engine struct {
	classifier *Classifier
	extractor  *Extractor
	policy     *Policy
	sessions   *session.Memory
	cache      DecisionCache
	content    ContentLookup
	audit      AuditSink
	logger     *slog.Logger
	prefixLen  int
	now        func() time.Time
}

func New(opts Options) *Engine {
	catalog := opts.Catalog
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	sessions := opts.Sessions
	if sessions == nil {
		sessions = session.New(session.Options{})
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	prefixLen := opts.CacheKeyPrefixLen
	if prefixLen <= 0 {
		prefixLen = 120
	}
	return &Engine{
		classifier: NewClassifier(catalog),
		extractor:  NewExtractor(catalog),
		policy:     NewPolicy(catalog, opts.Thresholds),
		sessions:   sessions,
		cache:      opts.Cache,
		content:    opts.Content,
		audit:      opts.Audit,
		logger:     logger,
		prefixLen:  prefixLen,
		now:        time.Now,
	}
}

// Route is the single entry point and the error boundary. It always returns
// a usable Result: any internal fault becomes the fallback Decision with
// category "error" and escalate=true, so a broken engine fails toward a
// human instead of silence.
func (e *Engine) Route(ctx context.Context, req Request) (result Result) {
	started := e.now()

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = "anon-" + uuid.NewString()
	}
	result.SessionID = sessionID

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("routing fault, falling back to escalation",
				"session_id", sessionID, "fault", r)
			result.Decision = fallbackDecision()
			result.Blocks = nil
			result.Cached = false
		}
		result.Elapsed = e.now().Sub(started)
	}()

	normalized := Normalize(req.Message)
	key := e.cacheKey(normalized, sessionID)
	if e.cache != nil {
		if d, ok := e.cache.Get(key); ok {
			result.Decision = d
			result.Cached = true
			result.Blocks = e.lookupBlocks(ctx, d)
			return result
		}
	}

	var decision Decision
	e.sessions.Update(sessionID, func(s *session.State) {
		category := e.classifier.Classify(normalized)
		facts := e.extractor.Extract(normalized)
		decision = e.policy.Evaluate(normalized, category, facts, s)
		s.Append("user", strings.TrimSpace(req.Message), started)
	})

	e.logger.Info("routed message",
		"session_id", sessionID,
		"category", decision.Category,
		"escalate", decision.Escalate,
		"priority", decision.Priority)

	result.Decision = decision
	result.Blocks = e.lookupBlocks(ctx, decision)

	if e.cache != nil {
		e.cache.Put(key, decision)
	}
	if e.audit != nil {
		e.audit.Record(sessionID, "user", strings.TrimSpace(req.Message))
		e.audit.Record(sessionID, "router", fmt.Sprintf("category=%s escalate=%t priority=%s blocks=%s",
			decision.Category, decision.Escalate, decision.Priority, strings.Join(decision.BlockHints, ",")))
	}
	return result
}

// Sessions exposes the underlying store for the stats and clear endpoints.
func (e *Engine) Sessions() *session.Memory {
	return e.sessions
}

func (e *Engine) lookupBlocks(ctx context.Context, d Decision) []Block {
	if e.content == nil {
		return nil
	}
	var blocks []Block
	for _, id := range d.BlockHints {
		block, ok, err := e.content.FindBlockByID(ctx, id)
		if err != nil {
			e.logger.Warn("block lookup failed", "block_id", id, "error", err)
			continue
		}
		if ok {
			blocks = append(blocks, block)
		}
	}
	if len(blocks) == 0 {
		found, err := e.content.FindBlocks(ctx, string(d.Category), 1)
		if err != nil {
			e.logger.Warn("category block lookup failed", "category", d.Category, "error", err)
			return nil
		}
		blocks = found
	}
	return blocks
}

func (e *Engine) cacheKey(normalized, sessionID string) string {
	if len(normalized) > e.prefixLen {
		normalized = normalized[:e.prefixLen]
	}
	return normalized + "|" + sessionID
}

func fallbackDecision() Decision {
	return Decision{
		Category:     CategoryError,
		SearchQuery:  "support escalation",
		Escalate:     true,
		Priority:     PriorityCritical,
		BlockHints:   []string{BlockErrorFallback},
		Instructions: "Routing failed. Apologize briefly and hand the conversation to a human.",
		Facts:        ExtractedFacts{Financing: FinancingUnknown},
	}
}
