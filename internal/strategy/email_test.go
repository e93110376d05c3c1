package strategy

import (
	"context"
	"strings"
	"testing"

	"github.com/cargoflow/intake/internal/document"
	"github.com/cargoflow/intake/internal/extract"
	"github.com/cargoflow/intake/internal/patterns"
	"github.com/cargoflow/intake/internal/vehicleref"
)

func testExtractEngine(t *testing.T) *extract.Engine {
	t.Helper()
	catalog, err := patterns.Load("", nil)
	if err != nil {
		t.Fatalf("loading default catalog: %v", err)
	}
	return extract.NewEngine(catalog, vehicleref.NewStatic(), nil)
}

func emailDoc(id string) document.Document {
	return document.New(id, "request.eml", "", "request.eml")
}

const plainEmail = `From: Klaus Meier <klaus.meier@acme-log.de>
To: quotes@cargoflow.example
Subject: BMW X5 transport
Date: Mon, 10 Feb 2025 10:00:00 +0100

Hello,

please quote transport of 1 x used BMW X5.
Budget: 2.500 EUR
`

func TestEmail_Extract(t *testing.T) {
	s := NewEmail(testExtractEngine(t), nil)

	doc := emailDoc("1")
	if !s.Supports(doc) {
		t.Fatal("expected .eml to be supported")
	}

	res, err := s.Extract(context.Background(), doc, []byte(plainEmail))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("extraction failed: %s", res.Err)
	}

	contact := res.Extraction.Contact
	if got := contact.GetString("email"); got != "klaus.meier@acme-log.de" {
		t.Errorf("email = %q", got)
	}
	if got := contact.GetString("name"); got != "Klaus Meier" {
		t.Errorf("name = %q", got)
	}
	if got := contact.Fields["email"].Confidence; got != extract.OriginMetadata.Confidence() {
		t.Errorf("header email confidence = %v, want metadata tier", got)
	}

	if got := res.Extraction.Vehicle.GetString("brand"); got != "BMW" {
		t.Errorf("brand = %q", got)
	}
	if got := res.Extraction.Vehicle.GetString("model"); got != "X5" {
		t.Errorf("model = %q", got)
	}
	if got, _ := res.Extraction.Pricing.Get("amount").(float64); got != 2500 {
		t.Errorf("amount = %v, want 2500", got)
	}
}

const repliedEmail = `From: client@example.com
Subject: Re: quotation

We accept the quote.

On Mon, 10 Feb 2025 at 09:00, Sales wrote:
> Rate Antwerp to Lagos confirmed.
> Pickup: 2025-03-10
`

func TestEmail_Extract_QuotedReplies(t *testing.T) {
	s := NewEmail(testExtractEngine(t), nil)

	res, err := s.Extract(context.Background(), emailDoc("2"), []byte(repliedEmail))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("extraction failed: %s", res.Err)
	}
	if got := res.Metadata["quoted_blocks"]; got != 1 {
		t.Errorf("quoted_blocks = %v, want 1", got)
	}

	// The pickup date only exists in the quoted history, so it lands at the
	// message-history trust tier.
	dates := res.Extraction.Dates
	if got := dates.GetString("pickup_date"); got != "2025-03-10" {
		t.Fatalf("pickup_date = %q", got)
	}
	if got := dates.Fields["pickup_date"].Confidence; got != extract.OriginMessages.Confidence() {
		t.Errorf("confidence = %v, want message tier", got)
	}
}

func TestEmail_Extract_Malformed(t *testing.T) {
	s := NewEmail(testExtractEngine(t), nil)

	res, err := s.Extract(context.Background(), emailDoc("3"), []byte("not an rfc822 message"))
	if err != nil {
		t.Fatalf("parse failures must be data, not errors: %v", err)
	}
	if res.Success {
		t.Fatal("expected failure result")
	}
	if res.Confidence != 0 {
		t.Errorf("failed result confidence = %v, want 0", res.Confidence)
	}
	if !strings.Contains(res.Err, "parsing message") {
		t.Errorf("unexpected error text: %q", res.Err)
	}
}

func TestEmail_Extract_Cancelled(t *testing.T) {
	s := NewEmail(testExtractEngine(t), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Extract(ctx, emailDoc("4"), []byte(plainEmail)); err == nil {
		t.Fatal("expected context error")
	}
}

func TestMessageBody(t *testing.T) {
	t.Run("quoted-printable", func(t *testing.T) {
		body := strings.NewReader("Gr=C3=BC=C3=9Fe aus K=C3=B6ln")
		got, err := messageBody("text/plain; charset=utf-8", "quoted-printable", body)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "Grüße aus Köln" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("base64 with wrapped lines", func(t *testing.T) {
		// "transport quote" encoded and folded across lines.
		body := strings.NewReader("dHJhbnNwb3J0\nIHF1b3Rl\n")
		got, err := messageBody("text/plain", "base64", body)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "transport quote" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("html only gets stripped", func(t *testing.T) {
		html := `<html><body><p>Quote for <b>BMW X5</b></p><br><div>Antwerp</div></body></html>`
		got, err := messageBody("text/html", "", strings.NewReader(html))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(got, "Quote for") || !strings.Contains(got, "BMW X5") {
			t.Errorf("tags not stripped: %q", got)
		}
		if strings.Contains(got, "<") {
			t.Errorf("markup left behind: %q", got)
		}
	})

	t.Run("multipart prefers text plain", func(t *testing.T) {
		body := strings.NewReader(strings.Join([]string{
			"--frontier",
			"Content-Type: text/html",
			"",
			"<p>html version</p>",
			"--frontier",
			"Content-Type: text/plain",
			"",
			"plain version",
			"--frontier--",
			"",
		}, "\r\n"))
		got, err := messageBody(`multipart/alternative; boundary="frontier"`, "", body)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.TrimSpace(got) != "plain version" {
			t.Errorf("got %q, want the plain part", got)
		}
	})

	t.Run("multipart without boundary fails", func(t *testing.T) {
		if _, err := messageBody("multipart/mixed", "", strings.NewReader("x")); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestSplitQuotedReplies(t *testing.T) {
	t.Run("no quotes", func(t *testing.T) {
		current, quoted := splitQuotedReplies("just the message")
		if current != "just the message" || len(quoted) != 0 {
			t.Errorf("got %q, %v", current, quoted)
		}
	})

	t.Run("angle-quoted block", func(t *testing.T) {
		body := "my reply\n\n> first quoted line\n> second quoted line\n"
		current, quoted := splitQuotedReplies(body)
		if current != "my reply" {
			t.Errorf("current = %q", current)
		}
		if len(quoted) != 1 {
			t.Fatalf("quoted = %v", quoted)
		}
		if quoted[0] != "first quoted line\nsecond quoted line" {
			t.Errorf("quoted[0] = %q", quoted[0])
		}
	})

	t.Run("blank lines separate blocks", func(t *testing.T) {
		body := "reply\n\nVon: Alte Nachricht\nerste Zeile\n\nVon: Noch Aelter\nzweite Zeile\n"
		current, quoted := splitQuotedReplies(body)
		if current != "reply" {
			t.Errorf("current = %q", current)
		}
		if len(quoted) != 2 {
			t.Fatalf("expected 2 quoted blocks, got %v", quoted)
		}
	})
}

func TestDecodeHeader(t *testing.T) {
	got := decodeHeader("=?utf-8?q?Gr=C3=BC=C3=9Fe?=")
	if got != "Grüße" {
		t.Errorf("decodeHeader = %q", got)
	}
	if got := decodeHeader("plain subject"); got != "plain subject" {
		t.Errorf("decodeHeader = %q", got)
	}
}
