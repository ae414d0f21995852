package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jakco/support-router/internal/engine"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "blocks.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func TestReplaceAndFind(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Replace(ctx, []engine.Block{
		{ID: "payment.status", Category: "payment", Title: "Status", Body: "within window"},
		{ID: "payment.ask_facts", Category: "payment", Title: "Ask", Body: "need details"},
		{ID: "legal.redirect", Category: "legal", Body: "rules"},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	block, ok, err := store.FindBlockByID(ctx, "payment.ask_facts")
	if err != nil || !ok {
		t.Fatalf("find by id: ok=%t err=%v", ok, err)
	}
	if block.Body != "need details" {
		t.Fatalf("unexpected body %q", block.Body)
	}

	if _, ok, err := store.FindBlockByID(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing id should miss cleanly: ok=%t err=%v", ok, err)
	}

	blocks, err := store.FindBlocks(ctx, "payment", 10)
	if err != nil {
		t.Fatalf("find blocks: %v", err)
	}
	if len(blocks) != 2 || blocks[0].ID != "payment.status" {
		t.Fatalf("expected payment blocks in insert order, got %+v", blocks)
	}
}

func TestReplaceIsFullSwap(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Replace(ctx, DefaultBlocks()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.Replace(ctx, []engine.Block{{ID: "only.one", Category: "only", Body: "x"}}); err != nil {
		t.Fatalf("swap: %v", err)
	}
	count, err := store.Count(ctx)
	if err != nil || count != 1 {
		t.Fatalf("expected single block after swap, got %d err=%v", count, err)
	}
}

func TestLoadDirParsesMarkdown(t *testing.T) {
	store := newTestStore(t)
	dir := t.TempDir()

	writeBlock := func(name, body string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write block: %v", err)
		}
	}
	writeBlock("payment.status.md", "# Payment status\n\nWithin the normal window.")
	writeBlock("legal.redirect.md", "No heading here.")

	n, err := LoadDir(context.Background(), store, dir)
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 blocks, got %d", n)
	}

	block, ok, err := store.FindBlockByID(context.Background(), "payment.status")
	if err != nil || !ok {
		t.Fatalf("loaded block missing: %v", err)
	}
	if block.Title != "Payment status" || block.Category != "payment" {
		t.Fatalf("unexpected parse: %+v", block)
	}
	if block.Body != "Within the normal window." {
		t.Fatalf("unexpected body %q", block.Body)
	}
}

func TestLoadDirFallsBackToDefaults(t *testing.T) {
	store := newTestStore(t)

	n, err := LoadDir(context.Background(), store, filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}
	if n != len(DefaultBlocks()) {
		t.Fatalf("expected default corpus, got %d blocks", n)
	}

	block, ok, err := store.FindBlockByID(context.Background(), engine.BlockGeneralWelcome)
	if err != nil || !ok {
		t.Fatalf("default welcome block missing: ok=%t err=%v", ok, err)
	}
	if block.Body == "" {
		t.Fatal("default block must carry content")
	}
}
