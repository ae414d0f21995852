// Package imap polls the support mailbox and runs every unread email
// through the routing engine. Email is a side channel: the connector only
// classifies and flags, a human still writes the reply from their mail
// client.
package imap

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"

	"github.com/jakco/support-router/internal/engine"
)

const maxBodyBytes = 1 << 20

type Router interface {
	Route(ctx context.Context, req engine.Request) engine.Result
}

type Message struct {
	UID     uint32
	From    string
	Subject string
	Date    time.Time
	Body    string
}

type Connector struct {
	host          string
	port          int
	username      string
	password      string
	mailbox       string
	pollSeconds   int
	tlsSkipVerify bool
	router        Router
	logger        *slog.Logger
	fetchUnread   func(ctx context.Context) ([]Message, error)
	markSeen      func(ctx context.Context, uids []uint32) error
}

func New(host string, port int, username, password, mailbox string, pollSeconds int, tlsSkipVerify bool, router Router, logger *slog.Logger) *Connector {
	if port < 1 {
		port = 993
	}
	if strings.TrimSpace(mailbox) == "" {
		mailbox = "INBOX"
	}
	if pollSeconds < 1 {
		pollSeconds = 60
	}
	c := &Connector{
		host:          strings.TrimSpace(host),
		port:          port,
		username:      strings.TrimSpace(username),
		password:      password,
		mailbox:       strings.TrimSpace(mailbox),
		pollSeconds:   pollSeconds,
		tlsSkipVerify: tlsSkipVerify,
		router:        router,
		logger:        logger,
	}
	c.fetchUnread = c.fetchUnreadFromIMAP
	c.markSeen = c.markSeenInIMAP
	return c
}

func (c *Connector) Name() string {
	return "imap"
}

func (c *Connector) Start(ctx context.Context) error {
	if c.host == "" || c.username == "" || c.password == "" {
		c.logger.Info("connector disabled, imap credentials missing")
		<-ctx.Done()
		return nil
	}
	if c.router == nil {
		c.logger.Info("connector disabled, router missing")
		<-ctx.Done()
		return nil
	}
	c.logger.Info("connector started", "mailbox", c.mailbox, "host", c.host, "poll_seconds", c.pollSeconds)

	for {
		if ctx.Err() != nil {
			c.logger.Info("connector stopped")
			return nil
		}
		if err := c.pollOnce(ctx); err != nil && ctx.Err() == nil {
			c.logger.Error("imap poll failed", "error", err)
		}
		select {
		case <-ctx.Done():
			c.logger.Info("connector stopped")
			return nil
		case <-time.After(time.Duration(c.pollSeconds) * time.Second):
		}
	}
}

func (c *Connector) pollOnce(ctx context.Context) error {
	incoming, err := c.fetchUnread(ctx)
	if err != nil {
		return err
	}
	if len(incoming) == 0 {
		return nil
	}

	processedUIDs := make([]uint32, 0, len(incoming))
	for _, item := range incoming {
		text := strings.TrimSpace(item.Subject + "\n" + item.Body)
		result := c.router.Route(ctx, engine.Request{
			Message:   text,
			SessionID: sessionIDForSender(item.From),
		})
		if result.Decision.Escalate {
			c.logger.Warn("support email needs a human",
				"from", item.From,
				"subject", item.Subject,
				"category", result.Decision.Category,
				"priority", result.Decision.Priority)
		} else {
			c.logger.Info("support email routed",
				"from", item.From,
				"category", result.Decision.Category)
		}
		if item.UID > 0 {
			processedUIDs = append(processedUIDs, item.UID)
		}
	}

	if len(processedUIDs) > 0 {
		if err := c.markSeen(ctx, processedUIDs); err != nil {
			c.logger.Error("imap mark seen failed", "error", err)
		}
	}
	return nil
}

var sessionIDSanitizer = regexp.MustCompile(`[^a-z0-9._@-]+`)

// sessionIDForSender keys the session on the sender address so a mail
// thread shares conversation state with itself.
func sessionIDForSender(from string) string {
	address := strings.ToLower(strings.TrimSpace(from))
	if parsed, err := mail.ParseAddress(from); err == nil {
		address = strings.ToLower(parsed.Address)
	}
	address = sessionIDSanitizer.ReplaceAllString(address, "-")
	if address == "" {
		address = "unknown"
	}
	return "mail-" + address
}

func (c *Connector) fetchUnreadFromIMAP(ctx context.Context) ([]Message, error) {
	conn, err := c.openClient(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Logout()

	if _, err := conn.Select(c.mailbox, false); err != nil {
		return nil, fmt.Errorf("imap select mailbox: %w", err)
	}
	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	uids, err := conn.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("imap search unread: %w", err)
	}
	if len(uids) == 0 {
		return nil, nil
	}

	set := new(imap.SeqSet)
	set.AddNum(uids...)
	section := &imap.BodySectionName{}
	items := []imap.FetchItem{imap.FetchUid, imap.FetchEnvelope, section.FetchItem()}

	messages := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)
	go func() {
		done <- conn.UidFetch(set, items, messages)
	}()

	results := make([]Message, 0, len(uids))
	for fetched := range messages {
		bodyReader := fetched.GetBody(section)
		if bodyReader == nil {
			continue
		}
		raw, readErr := io.ReadAll(io.LimitReader(bodyReader, maxBodyBytes))
		if readErr != nil {
			continue
		}
		item := Message{UID: fetched.Uid, Body: decodeBody(raw)}
		if fetched.Envelope != nil {
			item.Subject = strings.TrimSpace(fetched.Envelope.Subject)
			item.Date = fetched.Envelope.Date
			if len(fetched.Envelope.From) > 0 && fetched.Envelope.From[0] != nil {
				from := fetched.Envelope.From[0]
				item.From = strings.TrimSpace(from.MailboxName + "@" + from.HostName)
			}
		}
		results = append(results, item)
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("imap fetch unread: %w", err)
	}
	return results, nil
}

func (c *Connector) markSeenInIMAP(ctx context.Context, uids []uint32) error {
	if len(uids) == 0 {
		return nil
	}
	conn, err := c.openClient(ctx)
	if err != nil {
		return err
	}
	defer conn.Logout()

	if _, err := conn.Select(c.mailbox, false); err != nil {
		return fmt.Errorf("imap select mailbox: %w", err)
	}
	set := new(imap.SeqSet)
	set.AddNum(uids...)
	item := imap.FormatFlagsOp(imap.AddFlags, true)
	if err := conn.UidStore(set, item, []interface{}{imap.SeenFlag}, nil); err != nil {
		return fmt.Errorf("imap mark seen: %w", err)
	}
	return nil
}

func (c *Connector) openClient(ctx context.Context) (*client.Client, error) {
	address := fmt.Sprintf("%s:%d", c.host, c.port)
	tlsConfig := &tls.Config{
		ServerName:         c.host,
		InsecureSkipVerify: c.tlsSkipVerify,
		MinVersion:         tls.VersionTLS12,
	}
	conn, err := client.DialTLS(address, tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("imap dial: %w", err)
	}
	select {
	case <-ctx.Done():
		conn.Logout()
		return nil, ctx.Err()
	default:
	}
	if err := conn.Login(c.username, c.password); err != nil {
		conn.Logout()
		return nil, fmt.Errorf("imap login: %w", err)
	}
	return conn, nil
}

// decodeBody pulls a plain-text body out of a raw RFC822 message. The
// classifier only needs words, so HTML is flattened and attachments are
// ignored.
func decodeBody(raw []byte) string {
	parsed, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return strings.TrimSpace(string(raw))
	}
	mediaType, params, _ := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	body, err := io.ReadAll(io.LimitReader(parsed.Body, maxBodyBytes))
	if err != nil {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(mediaType), "multipart/") {
		return decodeMultipart(body, params["boundary"])
	}
	body = decodeTransferEncoding(body, parsed.Header.Get("Content-Transfer-Encoding"))
	if strings.EqualFold(mediaType, "text/html") {
		return stripHTML(string(body))
	}
	return strings.TrimSpace(string(body))
}

func decodeMultipart(raw []byte, boundary string) string {
	if strings.TrimSpace(boundary) == "" {
		return strings.TrimSpace(string(raw))
	}
	reader := multipart.NewReader(bytes.NewReader(raw), boundary)
	var plain, html []string
	for {
		part, err := reader.NextPart()
		if err != nil {
			break
		}
		data, readErr := io.ReadAll(io.LimitReader(part, maxBodyBytes))
		if readErr != nil {
			continue
		}
		data = decodeTransferEncoding(data, part.Header.Get("Content-Transfer-Encoding"))
		mediaType, _, _ := mime.ParseMediaType(part.Header.Get("Content-Type"))
		switch strings.ToLower(strings.TrimSpace(mediaType)) {
		case "text/plain":
			if text := strings.TrimSpace(string(data)); text != "" {
				plain = append(plain, text)
			}
		case "text/html":
			if text := strings.TrimSpace(string(data)); text != "" {
				html = append(html, text)
			}
		}
	}
	if len(plain) > 0 {
		return strings.Join(plain, "\n\n")
	}
	if len(html) > 0 {
		return stripHTML(strings.Join(html, "\n\n"))
	}
	return strings.TrimSpace(string(raw))
}

func decodeTransferEncoding(data []byte, encoding string) []byte {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		decoded, err := io.ReadAll(io.LimitReader(base64.NewDecoder(base64.StdEncoding, bytes.NewReader(data)), maxBodyBytes))
		if err == nil {
			return decoded
		}
	case "quoted-printable":
		decoded, err := io.ReadAll(io.LimitReader(quotedprintable.NewReader(bytes.NewReader(data)), maxBodyBytes))
		if err == nil {
			return decoded
		}
	}
	return data
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

func stripHTML(input string) string {
	text := htmlTagPattern.ReplaceAllString(input, " ")
	return strings.TrimSpace(strings.Join(strings.Fields(text), " "))
}
