// Package source runs pre-flight checks on input PDF files before they
// enter the translation pipeline.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"pdf-translator/internal/logger"
	"pdf-translator/internal/types"
)

// Info describes an input PDF file.
type Info struct {
	FilePath     string `json:"file_path"`
	FileName     string `json:"file_name"`
	PageCount    int    `json:"page_count"`
	FileSize     int64  `json:"file_size"`
	HasTextLayer bool   `json:"has_text_layer"`
}

// Inspect validates that path points to a readable PDF and collects basic
// facts about it. An unreadable or zero-page file is an error. A failing
// text-layer probe is not, since OCR handles scanned documents anyway.
func Inspect(path string) (*Info, error) {
	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.NewAppError(types.ErrFileNotFound, fmt.Sprintf("file not found: %s", path), err)
		}
		return nil, types.NewAppError(types.ErrInvalidInput, fmt.Sprintf("cannot access file: %s", path), err)
	}
	if stat.IsDir() {
		return nil, types.NewAppError(types.ErrInvalidInput, fmt.Sprintf("path is a directory, not a PDF: %s", path), nil)
	}

	if err := api.ValidateFile(path, model.NewDefaultConfiguration()); err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrInvalidInput, "file is not a valid PDF", err.Error(), err)
	}

	pages, err := api.PageCountFile(path)
	if err != nil {
		logger.Warn("pdfcpu could not count pages, trying fallback", logger.Err(err))
		pages, err = pageCountFallback(path)
		if err != nil {
			return nil, types.NewAppError(types.ErrInvalidInput, "cannot determine page count", err)
		}
	}
	if pages == 0 {
		return nil, types.NewAppError(types.ErrInvalidInput, "PDF has no pages", nil)
	}

	hasText, err := hasTextLayer(path)
	if err != nil {
		// OCR does not need a text layer, so the probe result is informational.
		logger.Debug("text layer probe failed", logger.Err(err))
		hasText = false
	}

	info := &Info{
		FilePath:     path,
		FileName:     filepath.Base(path),
		PageCount:    pages,
		FileSize:     stat.Size(),
		HasTextLayer: hasText,
	}
	logger.Info("input PDF inspected",
		logger.String("file", info.FileName),
		logger.Int("pages", info.PageCount),
		logger.Int64("bytes", info.FileSize),
		logger.Bool("textLayer", info.HasTextLayer))
	return info, nil
}

// hasTextLayer tries to extract text from the first few pages. Scanned
// documents typically carry no text objects at all, so a short probe is
// enough to tell them apart from born-digital files.
func hasTextLayer(path string) (bool, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	pagesToCheck := 3
	if r.NumPage() < pagesToCheck {
		pagesToCheck = r.NumPage()
	}

	charCount := 0
	for pageNum := 1; pageNum <= pagesToCheck; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		for _, ch := range content {
			if !unicode.IsSpace(ch) {
				charCount++
			}
		}
		// More than a stray artifact's worth of text on the first pages.
		if charCount > 50 {
			return true, nil
		}
	}
	return charCount > 0, nil
}

// pageCountFallback counts pages with ledongthuc/pdf when pdfcpu cannot.
func pageCountFallback(path string) (int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return r.NumPage(), nil
}
