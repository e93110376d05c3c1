package document

import "testing"

func TestDetectMIME(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"quote.pdf", MIMEPdf},
		{"QUOTE.PDF", MIMEPdf},
		{"msg.eml", MIMEEmail},
		{"msg.msg", MIMEEmail},
		{"notes.txt", MIMEPlainText},
		{"scan.png", MIMEPng},
		{"photo.jpg", MIMEJpeg},
		{"photo.jpeg", MIMEJpeg},
		{"scan.tiff", MIMETiff},
		{"archive.zip", ""},
		{"noextension", ""},
	}
	for _, tc := range cases {
		t.Run(tc.filename, func(t *testing.T) {
			if got := DetectMIME(tc.filename); got != tc.want {
				t.Errorf("DetectMIME(%q) = %q, want %q", tc.filename, got, tc.want)
			}
		})
	}
}

func TestNew_SniffsWhenMIMEMissing(t *testing.T) {
	doc := New("1", "quote.pdf", "", "uploads/quote.pdf")
	if doc.MIMEType != MIMEPdf {
		t.Errorf("MIMEType = %q, want %q", doc.MIMEType, MIMEPdf)
	}

	// An explicit MIME type wins over the extension.
	doc = New("2", "quote.pdf", MIMEEmail, "uploads/quote.pdf")
	if doc.MIMEType != MIMEEmail {
		t.Errorf("MIMEType = %q, want the explicit type", doc.MIMEType)
	}
}

func TestTypePredicates(t *testing.T) {
	pdf := New("1", "a.pdf", "", "a.pdf")
	eml := New("2", "a.eml", "", "a.eml")
	txt := New("3", "a.txt", "", "a.txt")
	jpg := New("4", "a.jpg", "", "a.jpg")

	if !pdf.IsPDF() || pdf.IsEmail() || pdf.IsImage() {
		t.Error("pdf predicates wrong")
	}
	if !eml.IsEmail() || eml.IsPDF() {
		t.Error("eml predicates wrong")
	}
	if !txt.IsEmail() {
		t.Error("plain text routes through the email strategy")
	}
	if !jpg.IsImage() || jpg.IsPDF() {
		t.Error("jpg predicates wrong")
	}
}
