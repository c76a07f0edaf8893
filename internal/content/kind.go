// Package content maps declared media types onto the kinds of content the
// service knows how to analyze.
package content

import (
	"mime"
	"strings"
)

// Kind is the analysis category of a remote resource.
type Kind string

const (
	KindImage       Kind = "image"
	KindPlainText   Kind = "plain_text"
	KindPdf         Kind = "pdf"
	KindUnsupported Kind = "unsupported"
)

var kindsByMediaType = map[string]Kind{
	"image/png":       KindImage,
	"image/jpeg":      KindImage,
	"image/gif":       KindImage,
	"text/html":       KindPlainText,
	"text/plain":      KindPlainText,
	"application/pdf": KindPdf,
}

// MediaType normalizes a Content-Type header value to its lower-cased media
// type without parameters. An empty header yields "".
func MediaType(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(header); err == nil {
		return mt
	}
	// Tolerate malformed parameters, keep whatever precedes them.
	if i := strings.IndexByte(header, ';'); i >= 0 {
		header = header[:i]
	}
	return strings.ToLower(strings.TrimSpace(header))
}

// Classify returns the kind for a Content-Type header value. Anything outside
// the known set, including an empty header, is KindUnsupported.
func Classify(contentType string) Kind {
	if kind, ok := kindsByMediaType[MediaType(contentType)]; ok {
		return kind
	}
	return KindUnsupported
}

func (k Kind) String() string {
	return string(k)
}
