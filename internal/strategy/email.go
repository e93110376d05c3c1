package strategy

import (
	"bytes"
	"context"
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

	"github.com/cargoflow/intake/internal/document"
	"github.com/cargoflow/intake/internal/extract"
)

// Email parses RFC 5322 messages: headers feed the metadata trust tier, the
// decoded text body feeds pattern extraction, and quoted reply chains feed
// the message-history tier.
type Email struct {
	engine *extract.Engine
	logger *slog.Logger
}

func NewEmail(engine *extract.Engine, logger *slog.Logger) *Email {
	if logger == nil {
		logger = slog.Default()
	}
	return &Email{engine: engine, logger: logger.With("strategy", "email")}
}

func (s *Email) Name() string  { return "email" }
func (s *Email) Priority() int { return PriorityEmail }

func (s *Email) Supports(doc document.Document) bool {
	return doc.IsEmail()
}

func (s *Email) Extract(ctx context.Context, doc document.Document, data []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	msg, err := mail.ReadMessage(bytes.NewReader(data))
	if err != nil {
		return failed(s.Name(), fmt.Sprintf("parsing message: %v", err), nil), nil
	}

	meta := map[string]string{}
	for _, h := range []string{"From", "Reply-To", "To", "Subject", "Date"} {
		if v := decodeHeader(msg.Header.Get(h)); v != "" {
			meta[h] = v
		}
	}

	body, err := messageBody(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body)
	if err != nil {
		s.logger.Warn("email body decode failed, using headers only",
			"document_id", doc.ID, "error", err)
		body = ""
	}

	current, quoted := splitQuotedReplies(body)

	res := s.engine.Extract(extract.Input{
		Text:     current,
		Metadata: meta,
		Messages: quoted,
	})
	return succeeded(s.Name(), res, map[string]any{
		"headers":       len(meta),
		"quoted_blocks": len(quoted),
	}), nil
}

var headerDecoder = mime.WordDecoder{}

func decodeHeader(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	decoded, err := headerDecoder.DecodeHeader(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// messageBody decodes the message body to plain text, preferring text/plain
// parts of multipart messages and stripping tags from HTML-only mail.
func messageBody(contentType, transferEncoding string, r io.Reader) (string, error) {
	if contentType == "" {
		contentType = "text/plain"
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		return multipartBody(params["boundary"], r)
	}

	decoded, err := decodeTransfer(transferEncoding, r)
	if err != nil {
		return "", err
	}
	if mediaType == "text/html" {
		return stripHTML(decoded), nil
	}
	return decoded, nil
}

func multipartBody(boundary string, r io.Reader) (string, error) {
	if boundary == "" {
		return "", fmt.Errorf("multipart message without boundary")
	}

	var plain, html string
	mr := multipart.NewReader(r, boundary)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("reading part: %w", err)
		}

		ct := part.Header.Get("Content-Type")
		mediaType, params, mtErr := mime.ParseMediaType(ct)
		if mtErr != nil {
			mediaType = "text/plain"
		}

		switch {
		case strings.HasPrefix(mediaType, "multipart/"):
			if nested, nErr := multipartBody(params["boundary"], part); nErr == nil && plain == "" {
				plain = nested
			}
		case mediaType == "text/plain" && plain == "":
			plain, _ = decodeTransfer(part.Header.Get("Content-Transfer-Encoding"), part)
		case mediaType == "text/html" && html == "":
			html, _ = decodeTransfer(part.Header.Get("Content-Transfer-Encoding"), part)
		}
	}

	if plain != "" {
		return plain, nil
	}
	if html != "" {
		return stripHTML(html), nil
	}
	return "", nil
}

func decodeTransfer(encoding string, r io.Reader) (string, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, newLineStripper(r))
	case "quoted-printable":
		r = quotedprintable.NewReader(r)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// newLineStripper removes CR/LF so base64 bodies wrapped at 76 columns decode.
func newLineStripper(r io.Reader) io.Reader {
	return &lineStripper{r: r}
}

type lineStripper struct {
	r io.Reader
}

func (l *lineStripper) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	kept := 0
	for i := 0; i < n; i++ {
		if p[i] == '\r' || p[i] == '\n' {
			continue
		}
		p[kept] = p[i]
		kept++
	}
	if kept == 0 && err == nil {
		return l.Read(p)
	}
	return kept, err
}

var (
	htmlTagRe    = regexp.MustCompile(`(?s)<(script|style)[^>]*>.*?</(script|style)>|<[^>]+>`)
	htmlBreakRe  = regexp.MustCompile(`(?i)<(br|/p|/div|/tr)[^>]*>`)
	htmlEntities = strings.NewReplacer("&nbsp;", " ", "&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&#39;", "'")
)

func stripHTML(s string) string {
	s = htmlBreakRe.ReplaceAllString(s, "\n")
	s = htmlTagRe.ReplaceAllString(s, " ")
	s = htmlEntities.Replace(s)
	return strings.TrimSpace(s)
}

var quoteMarkerRe = regexp.MustCompile(`(?m)^(>|On .{1,120} wrote:|-{2,}\s*Original Message\s*-{2,}|Von:|From:)`)

// splitQuotedReplies separates the sender's own text from quoted reply
// chains. Quoted material lands in the lower-trust message-history tier.
func splitQuotedReplies(body string) (current string, quoted []string) {
	loc := quoteMarkerRe.FindStringIndex(body)
	if loc == nil {
		return strings.TrimSpace(body), nil
	}

	current = strings.TrimSpace(body[:loc[0]])
	rest := body[loc[0]:]

	var block []string
	flush := func() {
		if joined := strings.TrimSpace(strings.Join(block, "\n")); joined != "" {
			quoted = append(quoted, joined)
		}
		block = block[:0]
	}
	for _, line := range strings.Split(rest, "\n") {
		trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), ">"))
		if trimmed == "" {
			flush()
			continue
		}
		block = append(block, trimmed)
	}
	flush()
	return current, quoted
}

var _ Strategy = (*Email)(nil)
