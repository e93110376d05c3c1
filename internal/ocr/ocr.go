package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Engine turns images and scanned PDF pages into text using pdftoppm
// (poppler-utils) for rasterization and tesseract for recognition.
type Engine struct {
	runner Runner
	logger *slog.Logger
	lang   string
}

// New creates an OCR engine. lang is the tesseract language set, e.g.
// "eng+deu"; empty defaults to "eng".
func New(runner Runner, lang string, logger *slog.Logger) *Engine {
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	if lang == "" {
		lang = "eng"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{runner: runner, logger: logger, lang: lang}
}

// RecognizeImage OCRs raw image bytes and returns the recognized text.
func (e *Engine) RecognizeImage(ctx context.Context, image []byte) (string, error) {
	tmpDir, err := os.MkdirTemp("", "intake-ocr-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	imgPath := filepath.Join(tmpDir, "input.png")
	if err := os.WriteFile(imgPath, image, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	return e.recognizeFile(ctx, tmpDir, imgPath)
}

// RecognizePDFPage rasterizes one page of a PDF and OCRs it.
// Pages are 1-indexed.
func (e *Engine) RecognizePDFPage(ctx context.Context, pdf []byte, page int) (string, error) {
	tmpDir, err := os.MkdirTemp("", "intake-ocr-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(pdfPath, pdf, 0o644); err != nil {
		return "", fmt.Errorf("write pdf: %w", err)
	}

	// Render the single page with pdftoppm.
	// -r 300: DPI, reasonable quality for OCR
	// -singlefile: no page number suffix
	outputPrefix := filepath.Join(tmpDir, "page")
	pageStr := fmt.Sprintf("%d", page)
	_, stderr, err := e.runner.Run(ctx, "pdftoppm",
		"-png",
		"-f", pageStr,
		"-l", pageStr,
		"-r", "300",
		"-singlefile",
		pdfPath,
		outputPrefix,
	)
	if err != nil {
		return "", fmt.Errorf("pdftoppm failed: %w (stderr: %s)", err, truncate(string(stderr), 512))
	}

	imgPath := outputPrefix + ".png"
	if _, err := os.Stat(imgPath); err != nil {
		return "", fmt.Errorf("pdftoppm did not create expected output: %w", err)
	}

	return e.recognizeFile(ctx, tmpDir, imgPath)
}

// recognizeFile runs tesseract on an image file already inside tmpDir.
func (e *Engine) recognizeFile(ctx context.Context, tmpDir, imgPath string) (string, error) {
	outBase := filepath.Join(tmpDir, "out")
	_, stderr, err := e.runner.Run(ctx, "tesseract",
		imgPath,
		outBase,
		"-l", e.lang,
		"--psm", "3",
	)
	if err != nil {
		return "", fmt.Errorf("tesseract failed: %w (stderr: %s)", err, truncate(string(stderr), 512))
	}

	text, err := os.ReadFile(outBase + ".txt")
	if err != nil {
		return "", fmt.Errorf("read tesseract output: %w", err)
	}
	return string(text), nil
}
