// Package pdfinfo samples a PDF cheaply and selects the text-acquisition
// method for it. Only the first page is inspected, so analysis cost does not
// grow with document size.
package pdfinfo

import (
	"bytes"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Complexity buckets for a sampled PDF.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Characteristics describes a PDF from a first-page sample. Computed fresh
// per document, never cached.
type Characteristics struct {
	Size         int64      `json:"size"`
	HasTextLayer bool       `json:"has_text_layer"`
	IsScanned    bool       `json:"is_scanned"`
	Complexity   Complexity `json:"complexity"`
	TextDensity  float64    `json:"text_density"`
	ImageDensity float64    `json:"image_density"`
	PageCount    int        `json:"page_count"`
}

// minTextLayerChars is the minimum first-page text length that counts as a
// real text layer rather than stray operator noise.
const minTextLayerChars = 64

// Analyze samples the first page of the PDF in data. Any failure returns the
// most conservative assumption (scanned, high complexity) so the caller
// degrades to the most robust acquisition path instead of erroring out.
func Analyze(data []byte, logger *slog.Logger) Characteristics {
	if logger == nil {
		logger = slog.Default()
	}

	ch, err := analyze(data)
	if err != nil {
		logger.Warn("pdf analysis failed, assuming scanned", "error", err)
		return Characteristics{
			Size:         int64(len(data)),
			HasTextLayer: false,
			IsScanned:    true,
			Complexity:   ComplexityHigh,
			PageCount:    1,
		}
	}
	return ch
}

func analyze(data []byte) (Characteristics, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return Characteristics{}, fmt.Errorf("pdfcpu read: %w", err)
	}
	if ctx.PageCount < 1 {
		return Characteristics{}, fmt.Errorf("pdf has no pages")
	}

	text := firstPageText(ctx)
	textLen := len([]rune(text))

	imageBytes := firstPageImageBytes(ctx)

	// Densities are normalized against the first page's share of the file.
	pageShare := float64(len(data)) / float64(ctx.PageCount)
	if pageShare <= 0 {
		pageShare = 1
	}
	textDensity := float64(textLen) / pageShare
	imageDensity := float64(imageBytes) / pageShare
	if imageDensity > 1 {
		imageDensity = 1
	}

	hasText := textLen >= minTextLayerChars
	scanned := !hasText && imageBytes > 0

	return Characteristics{
		Size:         int64(len(data)),
		HasTextLayer: hasText,
		IsScanned:    scanned,
		Complexity:   classifyComplexity(textDensity, imageDensity),
		TextDensity:  textDensity,
		ImageDensity: imageDensity,
		PageCount:    ctx.PageCount,
	}, nil
}

// classifyComplexity is a simple weighted blend of text and image density.
// Dense mixed-content pages land in high; sparse text-only pages in low.
func classifyComplexity(textDensity, imageDensity float64) Complexity {
	score := textDensity*0.4 + imageDensity*0.6
	switch {
	case score > 0.5:
		return ComplexityHigh
	case score > 0.15:
		return ComplexityMedium
	default:
		return ComplexityLow
	}
}

// firstPageText pulls the text shown by page one's content stream.
func firstPageText(ctx *model.Context) string {
	return pageText(ctx, 1)
}

// firstPageImageBytes sums the stream sizes of image XObjects on page one.
func firstPageImageBytes(ctx *model.Context) int64 {
	var total int64
	if ctx.Optimize != nil {
		for _, objNr := range pdfcpu.ImageObjNrs(ctx, 1) {
			entry, ok := ctx.Table[objNr]
			if !ok || entry == nil || entry.Free {
				continue
			}
			if sd, ok := entry.Object.(types.StreamDict); ok {
				total += int64(len(sd.Raw))
			}
		}
	}
	return total
}

var pdfStringRe = regexp.MustCompile(`\(([^)]*)\)`)

// textFromContentStream walks the content stream operators that show text
// (Tj, TJ, ') and concatenates their string operands.
func textFromContentStream(data []byte) string {
	var sb strings.Builder
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		showsText := bytes.HasSuffix(line, []byte("Tj")) ||
			bytes.HasSuffix(line, []byte("TJ")) ||
			(bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")))
		if !showsText {
			if bytes.HasSuffix(line, []byte("Td")) || bytes.HasSuffix(line, []byte("TD")) || bytes.Equal(line, []byte("T*")) {
				sb.WriteByte(' ')
			}
			continue
		}
		for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
			sb.Write(decodePDFString(m[1]))
		}
	}
	return strings.TrimSpace(sb.String())
}

// decodePDFString handles the basic PDF literal-string escapes.
func decodePDFString(raw []byte) []byte {
	var out bytes.Buffer
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			out.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			out.WriteByte('\n')
		case 'r':
			out.WriteByte('\r')
		case 't':
			out.WriteByte('\t')
		case '\\', '(', ')':
			out.WriteByte(raw[i])
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				out.WriteByte(byte(val))
			} else {
				out.WriteByte(raw[i])
			}
		}
	}
	return out.Bytes()
}
