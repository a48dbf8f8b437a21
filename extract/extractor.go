package extract

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"code.sajari.com/docconv/v2"
)

// pdftotextCommand is the resolved path of the pdftotext binary docconv
// shells out to for PDF conversion. Resolved once at process start; when it
// is missing, conversion stays disabled for the process lifetime.
var pdftotextCommand, _ = exec.LookPath("pdftotext")

type Extractor struct {
	log       *slog.Logger
	available bool
	convert   func(path string) (*docconv.Response, error)
}

func NewExtractor(log *slog.Logger) *Extractor {
	return newExtractor(log, pdftotextCommand != "", docconv.ConvertPath)
}

func newExtractor(log *slog.Logger, available bool, convert func(path string) (*docconv.Response, error)) *Extractor {
	if !available {
		log.Warn("pdftotext not found in PATH, document conversion is disabled")
	}

	return &Extractor{
		log:       log,
		available: available,
		convert:   convert,
	}
}

func (e *Extractor) Available() bool {
	return e.available
}

func (e *Extractor) CanRead(path string) bool {
	switch filepath.Ext(path) {
	case ".txt", ".md", ".docx", ".odt", ".pdf", ".xml":
		return true
	}

	return false
}

// Text extracts the textual content of the document at path. It never fails:
// every failure mode is logged and collapsed into ok == false.
func (e *Extractor) Text(path string) (text string, ok bool) {
	if !e.available {
		e.log.Error(fmt.Sprintf("cannot extract %s: document conversion is disabled", path))
		return "", false
	}

	if ext := filepath.Ext(path); ext == ".txt" || ext == ".md" {
		return e.plainText(path)
	}

	res, err := e.safeConvert(path)
	if err != nil {
		e.log.Error(fmt.Sprintf("failed to extract text from %s: %s", path, err))
		return "", false
	}

	if res == nil || res.Body == "" {
		e.log.Warn(fmt.Sprintf("no text extracted from %s", path))
		return "", false
	}

	e.log.Info(fmt.Sprintf("extracted %d characters from %s", len(res.Body), path))
	return res.Body, true
}

func (e *Extractor) plainText(path string) (string, bool) {
	buf, err := os.ReadFile(path)
	if err != nil {
		e.log.Error(fmt.Sprintf("failed to extract text from %s: %s", path, err))
		return "", false
	}

	e.log.Info(fmt.Sprintf("extracted %d characters from %s", len(buf), path))
	return string(buf), true
}

// safeConvert keeps panics from the conversion stack inside this package.
func (e *Extractor) safeConvert(path string) (res *docconv.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("conversion panic: %v", r)
		}
	}()

	return e.convert(path)
}
