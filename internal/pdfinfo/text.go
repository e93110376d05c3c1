package pdfinfo

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ExtractText returns the text layer of every page, joined with page breaks,
// and the page count.
func ExtractText(data []byte) (string, int, error) {
	var sb strings.Builder
	pages, err := WalkPages(data, func(page int, text string) error {
		if text == "" {
			return nil
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(text)
		return nil
	})
	if err != nil {
		return "", 0, err
	}
	return sb.String(), pages, nil
}

// WalkPages extracts page text one page at a time and hands each page to fn,
// so callers never hold more than one page's content stream. Returns the page
// count.
func WalkPages(data []byte, fn func(page int, text string) error) (int, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("pdfcpu read: %w", err)
	}
	for page := 1; page <= ctx.PageCount; page++ {
		if err := fn(page, pageText(ctx, page)); err != nil {
			return ctx.PageCount, err
		}
	}
	return ctx.PageCount, nil
}

func pageText(ctx *model.Context, page int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, page)
	if err != nil {
		return ""
	}
	content, err := io.ReadAll(r)
	if err != nil || len(content) == 0 {
		return ""
	}
	return textFromContentStream(content)
}
