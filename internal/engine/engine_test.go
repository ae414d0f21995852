package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/jakco/support-router/internal/session"
)

type fakeContent struct {
	blocks map[string]Block
	fail   bool
}

func (f *fakeContent) FindBlockByID(_ context.Context, id string) (Block, bool, error) {
	if f.fail {
		panic("content store down")
	}
	b, ok := f.blocks[id]
	return b, ok, nil
}

func (f *fakeContent) FindBlocks(_ context.Context, category string, limit int) ([]Block, error) {
	var out []Block
	for _, b := range f.blocks {
		if b.Category == category && len(out) < limit {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeAudit struct {
	records []string
}

func (f *fakeAudit) Record(sessionID, role, content string) {
	f.records = append(f.records, sessionID+"|"+role+"|"+content)
}

type fakeCache struct {
	entries map[string]Decision
}

func newFakeCache() *fakeCache { return &fakeCache{entries: make(map[string]Decision)} }

func (f *fakeCache) Get(key string) (Decision, bool) {
	d, ok := f.entries[key]
	return d, ok
}

func (f *fakeCache) Put(key string, d Decision) { f.entries[key] = d }

func TestRouteAssignsAnonymousSessionID(t *testing.T) {
	e := New(Options{})

	res := e.Route(context.Background(), Request{Message: "bonjour"})
	if !strings.HasPrefix(res.SessionID, "anon-") {
		t.Fatalf("expected generated session id, got %q", res.SessionID)
	}
	if res.Decision.Category != CategoryGeneral {
		t.Fatalf("expected general fallback, got %s", res.Decision.Category)
	}
}

func TestRouteEmptyMessageStillDecides(t *testing.T) {
	e := New(Options{})

	res := e.Route(context.Background(), Request{Message: "   ", SessionID: "s1"})
	if res.Decision.Category != CategoryGeneral || res.Decision.Escalate {
		t.Fatalf("empty input must land on general, got %+v", res.Decision)
	}
}

func TestRouteCachesRepeatedDelivery(t *testing.T) {
	e := New(Options{Cache: newFakeCache()})

	first := e.Route(context.Background(), Request{Message: "I want to speak to a human", SessionID: "s1"})
	if first.Cached {
		t.Fatal("first delivery must miss the cache")
	}
	second := e.Route(context.Background(), Request{Message: "I want to speak to a human", SessionID: "s1"})
	if !second.Cached {
		t.Fatal("repeated delivery must hit the cache")
	}
	if second.Decision.Category != first.Decision.Category {
		t.Fatalf("cached decision diverged: %s vs %s", second.Decision.Category, first.Decision.Category)
	}
}

func TestRouteCacheIsSessionScoped(t *testing.T) {
	e := New(Options{Cache: newFakeCache()})

	e.Route(context.Background(), Request{Message: "bonjour", SessionID: "s1"})
	res := e.Route(context.Background(), Request{Message: "bonjour", SessionID: "s2"})
	if res.Cached {
		t.Fatal("cache key must include the session id")
	}
}

func TestRouteEnrichesWithBlocks(t *testing.T) {
	content := &fakeContent{blocks: map[string]Block{
		BlockGeneralWelcome: {ID: BlockGeneralWelcome, Category: "general", Body: "Bienvenue !"},
	}}
	e := New(Options{Content: content})

	res := e.Route(context.Background(), Request{Message: "bonjour", SessionID: "s1"})
	if len(res.Blocks) != 1 || res.Blocks[0].Body != "Bienvenue !" {
		t.Fatalf("expected welcome block, got %+v", res.Blocks)
	}
}

func TestRouteFaultFallsBackToEscalation(t *testing.T) {
	e := New(Options{Content: &fakeContent{fail: true}})

	res := e.Route(context.Background(), Request{Message: "bonjour", SessionID: "s1"})
	if res.Decision.Category != CategoryError {
		t.Fatalf("expected error category, got %s", res.Decision.Category)
	}
	if !res.Decision.Escalate || res.Decision.Priority != PriorityCritical {
		t.Fatalf("fault must escalate critical, got %+v", res.Decision)
	}
}

func TestRouteRecordsTurnsAndAudits(t *testing.T) {
	audit := &fakeAudit{}
	sessions := session.New(session.Options{})
	e := New(Options{Sessions: sessions, Audit: audit})

	e.Route(context.Background(), Request{Message: "bonjour", SessionID: "s1"})

	st, ok := sessions.Snapshot("s1")
	if !ok || len(st.Turns) != 1 || st.Turns[0].Content != "bonjour" {
		t.Fatalf("expected recorded turn, got %+v ok=%t", st, ok)
	}
	if len(audit.records) != 2 {
		t.Fatalf("expected user + router audit records, got %v", audit.records)
	}
	if !strings.Contains(audit.records[1], "category=general") {
		t.Fatalf("router record should carry the decision: %v", audit.records)
	}
}

func TestRouteMultiTurnPaymentScenario(t *testing.T) {
	e := New(Options{})

	e.Route(context.Background(), Request{Message: "I haven't been paid", SessionID: "s1"})
	res := e.Route(context.Background(), Request{Message: "cpf, training ended 2 months ago", SessionID: "s1"})
	if res.Decision.Escalate {
		t.Fatalf("gate must precede escalation: %+v", res.Decision)
	}
	if res.Decision.BlockHints[0] != BlockReviewGateQuestion {
		t.Fatalf("expected review gate, got %v", res.Decision.BlockHints)
	}

	res = e.Route(context.Background(), Request{Message: "no, nobody told me", SessionID: "s1"})
	if !res.Decision.Escalate {
		t.Fatalf("negative gate answer must escalate: %+v", res.Decision)
	}
}
