// Package extract turns uploaded course files (PDF, DOCX, PPTX, TXT) into
// normalized plain text with an estimated token count. Extraction results
// are cached by content digest, so re-adding an unchanged file never
// re-parses it.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"questgen/internal/fingerprint"
)

// ErrUnsupported reports a file type outside the supported set.
var ErrUnsupported = errors.New("unsupported file type")

// Failure is a per-file extraction error. One bad file never aborts its
// sibling files; batches collect failures alongside successes.
type Failure struct {
	File string
	Err  error
}

func (f *Failure) Error() string { return fmt.Sprintf("extract %s: %v", f.File, f.Err) }
func (f *Failure) Unwrap() error { return f.Err }

// Result is one file's extracted content.
type Result struct {
	File   string `json:"file"`
	Text   string `json:"text"`
	Tokens int    `json:"tokens"`
}

// Extractor dispatches on file extension and caches results by raw-content
// digest.
type Extractor struct {
	cache *lru.Cache[fingerprint.Digest, Result]
	log   *zap.SugaredLogger
}

// NewExtractor creates an extractor with a small result cache.
func NewExtractor(log *zap.SugaredLogger) *Extractor {
	cache, _ := lru.New[fingerprint.Digest, Result](128)
	return &Extractor{cache: cache, log: log}
}

// File reads and extracts one file from disk.
func (e *Extractor) File(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, &Failure{File: filepath.Base(path), Err: err}
	}
	return e.Bytes(filepath.Base(path), data)
}

// Bytes extracts one file's content. name decides the format by extension.
func (e *Extractor) Bytes(name string, data []byte) (Result, error) {
	key := fingerprint.Bytes(data)
	if cached, ok := e.cache.Get(key); ok {
		if e.log != nil {
			e.log.Debugw("extract cache hit", "file", name, "digest", key.Short())
		}
		cached.File = name
		return cached, nil
	}

	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt":
		text = string(data)
	case ".pdf":
		text, err = pdfText(data)
	case ".docx":
		text, err = docxText(data)
	case ".pptx":
		text, err = pptxText(data)
	default:
		err = fmt.Errorf("%w %q", ErrUnsupported, filepath.Ext(name))
	}
	if err != nil {
		return Result{}, &Failure{File: name, Err: err}
	}

	text = fingerprint.Canonical(text)
	if strings.TrimSpace(text) == "" {
		return Result{}, &Failure{File: name, Err: errors.New("no extractable text")}
	}

	res := Result{File: name, Text: text, Tokens: CountTokens(text)}
	e.cache.Add(key, res)
	return res, nil
}

// Supported reports whether the extension of name is handled.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".pdf", ".docx", ".pptx":
		return true
	}
	return false
}
