package imap

import (
	"context"
	"log/slog"
	"testing"

	"github.com/jakco/support-router/internal/engine"
)

type fakeRouter struct {
	requests []engine.Request
	result   engine.Result
}

func (f *fakeRouter) Route(_ context.Context, req engine.Request) engine.Result {
	f.requests = append(f.requests, req)
	res := f.result
	res.SessionID = req.SessionID
	return res
}

func TestPollOnceRoutesAndMarksSeen(t *testing.T) {
	router := &fakeRouter{result: engine.Result{Decision: engine.Decision{Category: engine.CategoryPayment, Escalate: true}}}
	c := New("imap.example.com", 993, "support", "secret", "INBOX", 60, false, router, slog.Default())

	var marked []uint32
	c.fetchUnread = func(context.Context) ([]Message, error) {
		return []Message{
			{UID: 11, From: "Jo <jo@example.com>", Subject: "Paiement", Body: "toujours pas reçu mon virement"},
			{UID: 12, From: "sam@example.com", Subject: "Formation", Body: "quelles formations proposez-vous ?"},
		}, nil
	}
	c.markSeen = func(_ context.Context, uids []uint32) error {
		marked = uids
		return nil
	}

	if err := c.pollOnce(context.Background()); err != nil {
		t.Fatalf("poll: %v", err)
	}
	if len(router.requests) != 2 {
		t.Fatalf("expected 2 routed messages, got %d", len(router.requests))
	}
	if router.requests[0].SessionID != "mail-jo@example.com" {
		t.Fatalf("session id should derive from sender, got %q", router.requests[0].SessionID)
	}
	if len(marked) != 2 || marked[0] != 11 || marked[1] != 12 {
		t.Fatalf("expected both uids marked seen, got %v", marked)
	}
}

func TestPollOnceEmptyInboxSkipsMarkSeen(t *testing.T) {
	c := New("imap.example.com", 993, "support", "secret", "", 0, false, &fakeRouter{}, slog.Default())

	c.fetchUnread = func(context.Context) ([]Message, error) { return nil, nil }
	c.markSeen = func(context.Context, []uint32) error {
		t.Fatal("mark seen must not run on an empty poll")
		return nil
	}
	if err := c.pollOnce(context.Background()); err != nil {
		t.Fatalf("poll: %v", err)
	}
}

func TestSessionIDForSender(t *testing.T) {
	cases := map[string]string{
		"Jo <JO@Example.com>": "mail-jo@example.com",
		"plain@example.com":   "mail-plain@example.com",
		"":                    "mail-unknown",
	}
	for from, want := range cases {
		if got := sessionIDForSender(from); got != want {
			t.Fatalf("%q: got %q, want %q", from, got, want)
		}
	}
}

func TestDecodeBodyMultipart(t *testing.T) {
	raw := []byte("Content-Type: multipart/alternative; boundary=xyz\r\n\r\n" +
		"--xyz\r\nContent-Type: text/html\r\n\r\n<p>ignored when plain exists</p>\r\n" +
		"--xyz\r\nContent-Type: text/plain\r\n\r\nje n'ai pas été payé\r\n" +
		"--xyz--\r\n")
	if got := decodeBody(raw); got != "je n'ai pas été payé" {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestDecodeBodyStripsHTML(t *testing.T) {
	raw := []byte("Content-Type: text/html\r\n\r\n<div>bonjour <b>le</b> monde</div>")
	if got := decodeBody(raw); got != "bonjour le monde" {
		t.Fatalf("unexpected body %q", got)
	}
}
