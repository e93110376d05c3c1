package pdfinfo

// Method is a PDF text-acquisition method.
type Method string

const (
	// MethodParser extracts the embedded text layer directly.
	MethodParser Method = "pdf-parser"
	// MethodStreaming processes the document page by page to bound memory.
	MethodStreaming Method = "streaming"
	// MethodOCRDirect rasterizes and OCRs without trying the text layer.
	MethodOCRDirect Method = "ocr-direct"
	// MethodHybrid extracts the text layer and OCRs pages that come up short.
	MethodHybrid Method = "hybrid"
)

// Size thresholds for method selection.
const (
	LargeThreshold     = 10 << 20 // 10 MB
	VeryLargeThreshold = 50 << 20 // 50 MB
)

// SelectorOptions tune method selection across documents.
type SelectorOptions struct {
	// PreferStreaming biases selection toward streaming; set after a prior
	// document blew through the soft memory budget.
	PreferStreaming bool
}

// SelectMethod picks the acquisition method for a sampled PDF. The rules are
// ordered; the first match wins, so the outcome is deterministic.
func SelectMethod(ch Characteristics, opts SelectorOptions) Method {
	switch {
	case ch.IsScanned:
		return MethodOCRDirect
	case ch.Size > VeryLargeThreshold:
		return MethodStreaming
	case ch.Size > LargeThreshold && ch.PageCount > 5:
		return MethodStreaming
	case !ch.HasTextLayer:
		return MethodOCRDirect
	case ch.Complexity == ComplexityHigh || ch.PageCount > 10:
		return MethodHybrid
	case opts.PreferStreaming:
		return MethodStreaming
	case ch.HasTextLayer && ch.Size < LargeThreshold:
		return MethodParser
	default:
		return MethodParser
	}
}
