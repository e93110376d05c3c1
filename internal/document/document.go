// Package document defines the immutable document reference handed to the
// extraction pipeline.
package document

import (
	"path/filepath"
	"strings"
)

// Document is an immutable reference to an uploaded quotation document.
// The bytes live behind StorageLocation; nothing here is mutated by the
// pipeline.
type Document struct {
	ID              string `json:"id"`
	Filename        string `json:"filename"`
	MIMEType        string `json:"mime_type"`
	StorageLocation string `json:"storage_location"`
}

// Common MIME types seen on quotation uploads.
const (
	MIMEPdf       = "application/pdf"
	MIMEEmail     = "message/rfc822"
	MIMEPlainText = "text/plain"
	MIMEPng       = "image/png"
	MIMEJpeg      = "image/jpeg"
	MIMETiff      = "image/tiff"
)

// DetectMIME guesses the MIME type from the filename extension.
// Unknown extensions return an empty string; dispatch treats that as
// unsupported rather than guessing.
func DetectMIME(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return MIMEPdf
	case ".eml", ".msg":
		return MIMEEmail
	case ".txt":
		return MIMEPlainText
	case ".png":
		return MIMEPng
	case ".jpg", ".jpeg":
		return MIMEJpeg
	case ".tif", ".tiff":
		return MIMETiff
	default:
		return ""
	}
}

// IsImage reports whether the document is a raster image.
func (d Document) IsImage() bool {
	return strings.HasPrefix(d.MIMEType, "image/")
}

// IsPDF reports whether the document is a PDF.
func (d Document) IsPDF() bool {
	return d.MIMEType == MIMEPdf
}

// IsEmail reports whether the document is an email message.
func (d Document) IsEmail() bool {
	return d.MIMEType == MIMEEmail || d.MIMEType == MIMEPlainText
}

// New builds a Document, sniffing the MIME type from the filename when none
// is supplied.
func New(id, filename, mimeType, storageLocation string) Document {
	if mimeType == "" {
		mimeType = DetectMIME(filename)
	}
	return Document{
		ID:              id,
		Filename:        filename,
		MIMEType:        mimeType,
		StorageLocation: storageLocation,
	}
}
