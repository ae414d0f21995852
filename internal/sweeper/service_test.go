package sweeper

import (
	"context"
	"log/slog"
	"testing"
)

type fakeSessions struct{ evictions int }

func (f *fakeSessions) EvictExpired() int { f.evictions++; return 2 }

type fakeCache struct{ purges int }

func (f *fakeCache) Purge() int { f.purges++; return 1 }

func TestStartRejectsBadCron(t *testing.T) {
	s := New("not a cron", &fakeSessions{}, &fakeCache{}, slog.Default())
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSweepRunsBothStores(t *testing.T) {
	sessions := &fakeSessions{}
	cache := &fakeCache{}
	s := New("*/5 * * * *", sessions, cache, slog.Default())

	s.sweep()
	if sessions.evictions != 1 || cache.purges != 1 {
		t.Fatalf("expected one sweep of each store, got %d/%d", sessions.evictions, cache.purges)
	}
}

func TestSweepToleratesNilStores(t *testing.T) {
	s := New("@hourly", nil, nil, slog.Default())
	s.sweep()
}
