package pdfinfo

import "testing"

func TestSelectMethod(t *testing.T) {
	tests := []struct {
		name string
		ch   Characteristics
		opts SelectorOptions
		want Method
	}{
		{
			name: "scanned goes straight to ocr",
			ch:   Characteristics{IsScanned: true, Size: 1 << 20, PageCount: 2},
			want: MethodOCRDirect,
		},
		{
			name: "scanned wins even when very large",
			ch:   Characteristics{IsScanned: true, Size: 60 << 20, PageCount: 100},
			want: MethodOCRDirect,
		},
		{
			name: "very large streams regardless of pages",
			ch:   Characteristics{Size: 51 << 20, PageCount: 2, HasTextLayer: true},
			want: MethodStreaming,
		},
		{
			name: "large with many pages streams",
			ch:   Characteristics{Size: 12 << 20, PageCount: 8, HasTextLayer: true},
			want: MethodStreaming,
		},
		{
			name: "large with few pages does not stream",
			ch:   Characteristics{Size: 12 << 20, PageCount: 3, HasTextLayer: true},
			want: MethodParser,
		},
		{
			name: "no text layer means ocr",
			ch:   Characteristics{Size: 1 << 20, PageCount: 2, HasTextLayer: false},
			want: MethodOCRDirect,
		},
		{
			name: "high complexity means hybrid",
			ch:   Characteristics{Size: 1 << 20, PageCount: 2, HasTextLayer: true, Complexity: ComplexityHigh},
			want: MethodHybrid,
		},
		{
			name: "many pages mean hybrid",
			ch:   Characteristics{Size: 1 << 20, PageCount: 11, HasTextLayer: true, Complexity: ComplexityLow},
			want: MethodHybrid,
		},
		{
			name: "small with text layer parses",
			ch:   Characteristics{Size: 200 << 10, PageCount: 2, HasTextLayer: true, Complexity: ComplexityLow},
			want: MethodParser,
		},
		{
			name: "streaming bias overrides the parser default",
			ch:   Characteristics{Size: 200 << 10, PageCount: 2, HasTextLayer: true, Complexity: ComplexityLow},
			opts: SelectorOptions{PreferStreaming: true},
			want: MethodStreaming,
		},
		{
			name: "streaming bias does not override ocr",
			ch:   Characteristics{IsScanned: true, Size: 1 << 20, PageCount: 1},
			opts: SelectorOptions{PreferStreaming: true},
			want: MethodOCRDirect,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectMethod(tt.ch, tt.opts); got != tt.want {
				t.Errorf("SelectMethod() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectMethod_Deterministic(t *testing.T) {
	ch := Characteristics{Size: 12 << 20, PageCount: 8, HasTextLayer: true, Complexity: ComplexityHigh}
	first := SelectMethod(ch, SelectorOptions{})
	for i := 0; i < 10; i++ {
		if got := SelectMethod(ch, SelectorOptions{}); got != first {
			t.Fatalf("selection is not deterministic: %v then %v", first, got)
		}
	}
}

func TestClassifyComplexity(t *testing.T) {
	tests := []struct {
		name         string
		textDensity  float64
		imageDensity float64
		want         Complexity
	}{
		{"empty page", 0, 0, ComplexityLow},
		{"sparse text", 0.2, 0, ComplexityLow},
		{"mixed content", 0.3, 0.2, ComplexityMedium},
		{"image heavy", 0.1, 0.9, ComplexityHigh},
		{"dense everything", 0.9, 0.9, ComplexityHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyComplexity(tt.textDensity, tt.imageDensity); got != tt.want {
				t.Errorf("classifyComplexity(%v, %v) = %v, want %v", tt.textDensity, tt.imageDensity, got, tt.want)
			}
		})
	}
}

func TestAnalyze_GarbageFallsBackToScanned(t *testing.T) {
	ch := Analyze([]byte("not a pdf at all"), nil)
	if !ch.IsScanned {
		t.Error("expected unparseable input to be treated as scanned")
	}
	if ch.Complexity != ComplexityHigh {
		t.Errorf("expected conservative high complexity, got %v", ch.Complexity)
	}
	if ch.Size != int64(len("not a pdf at all")) {
		t.Errorf("expected size to be preserved, got %d", ch.Size)
	}
}

func TestTextFromContentStream(t *testing.T) {
	content := []byte("BT\n/F1 12 Tf\n(Hello) Tj\n0 -14 Td\n(World) Tj\nET")
	got := textFromContentStream(content)
	if got != "Hello World" {
		t.Errorf("unexpected text: %q", got)
	}
}

func TestDecodePDFString(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`plain`, "plain"},
		{`a\nb`, "a\nb"},
		{`tab\there`, "tab\there"},
		{`oct\101l`, "octAl"},
		{`back\\slash`, `back\slash`},
	}
	for _, tt := range tests {
		if got := string(decodePDFString([]byte(tt.raw))); got != tt.want {
			t.Errorf("decodePDFString(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
