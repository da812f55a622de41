// Package pipeline orchestrates one PDF translation request end to end:
// inspection, OCR extraction, asset inlining, directive generation,
// translation, and rendering.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"pdf-translator/internal/codec"
	"pdf-translator/internal/directive"
	"pdf-translator/internal/document"
	"pdf-translator/internal/logger"
	"pdf-translator/internal/render"
	"pdf-translator/internal/source"
	"pdf-translator/internal/translate"
	"pdf-translator/internal/types"
)

// Inspector runs pre-flight checks on the input file.
type Inspector interface {
	Inspect(path string) (*source.Info, error)
}

// InspectorFunc adapts a function to the Inspector interface.
type InspectorFunc func(path string) (*source.Info, error)

// Inspect calls f.
func (f InspectorFunc) Inspect(path string) (*source.Info, error) {
	return f(path)
}

// Extractor turns PDF bytes into the structured document model.
type Extractor interface {
	Process(ctx context.Context, pdfData []byte) (*document.Document, error)
}

// Translator translates a structured document page by page.
type Translator interface {
	TranslateDocumentWithProgress(ctx context.Context, doc *document.Document, progress translate.ProgressCallback) (*translate.Result, error)
}

// StatusCallback receives a status snapshot on every change.
type StatusCallback func(status *types.Status)

// Pipeline owns one translation request end to end. Collaborators are
// injected so the stages stay independently testable.
type Pipeline struct {
	inspector  Inspector
	extractor  Extractor
	translator Translator
	renderer   render.Renderer
	fontPath   string
	workRoot   string

	statusMu       sync.RWMutex
	status         types.Status
	statusCallback StatusCallback
}

// NewPipeline creates a pipeline from its stage collaborators.
func NewPipeline(inspector Inspector, extractor Extractor, translator Translator, renderer render.Renderer) *Pipeline {
	return &Pipeline{
		inspector:  inspector,
		extractor:  extractor,
		translator: translator,
		renderer:   renderer,
		status:     types.Status{Phase: types.PhaseIdle},
	}
}

// SetFontPath sets the font file embedded in rendered output.
func (p *Pipeline) SetFontPath(path string) {
	p.fontPath = path
}

// SetWorkDirectory sets the directory run work directories are created
// under. Empty means the system temporary directory.
func (p *Pipeline) SetWorkDirectory(dir string) {
	p.workRoot = dir
}

// SetStatusCallback registers a callback invoked on every status change.
func (p *Pipeline) SetStatusCallback(callback StatusCallback) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.statusCallback = callback
}

// GetStatus returns the current processing status.
// This method is thread-safe.
func (p *Pipeline) GetStatus() *types.Status {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()

	// Return a copy to prevent external modification
	return &types.Status{
		Phase:    p.status.Phase,
		Progress: p.status.Progress,
		Message:  p.status.Message,
		Error:    p.status.Error,
	}
}

// IsProcessing returns true if a translation request is currently in progress.
// This method is thread-safe.
func (p *Pipeline) IsProcessing() bool {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()

	switch p.status.Phase {
	case types.PhaseIdle, types.PhaseComplete, types.PhaseError:
		return false
	default:
		return true
	}
}

// Run translates the PDF at inputPath and writes the result to outputPath.
// The flow is:
//  1. Pre-flight checks on the input file
//  2. OCR extraction into the structured document model
//  3. Inline extracted tables and images into the page markdown
//  4. Derive page and image sizing directives
//  5. Translate page by page
//  6. Render the combined markdown to a PDF
//
// Every run works in its own temporary directory, removed on return. A
// failed run never leaves a partial file at the output path.
func (p *Pipeline) Run(ctx context.Context, inputPath, outputPath string) (*types.ProcessResult, error) {
	if p.IsProcessing() {
		return nil, types.NewAppError(types.ErrInternal, "another translation is already running", nil)
	}

	logger.Info("starting PDF translation",
		logger.String("input", inputPath),
		logger.String("output", outputPath))

	// Step 1: pre-flight checks on the input file.
	p.updateStatus(types.PhaseInspecting, 5, "inspecting input PDF")
	info, err := p.inspector.Inspect(inputPath)
	if err != nil {
		return nil, p.fail("inspection failed", types.ErrInvalidInput, err)
	}

	if ctx.Err() != nil {
		return nil, p.cancelled(ctx.Err())
	}

	if p.workRoot != "" {
		if err := os.MkdirAll(p.workRoot, 0755); err != nil {
			return nil, p.fail("failed to create work directory", types.ErrInternal, err)
		}
	}
	workDir, err := os.MkdirTemp(p.workRoot, "pdf-translator-*")
	if err != nil {
		return nil, p.fail("failed to create work directory", types.ErrInternal, err)
	}
	defer os.RemoveAll(workDir)

	pdfData, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, p.fail("failed to read input PDF", types.ErrFileNotFound, err)
	}

	// Step 2: OCR extraction.
	p.updateStatus(types.PhaseExtracting, 10, "extracting document structure")
	doc, err := p.extractor.Process(ctx, pdfData)
	if err != nil {
		return nil, p.fail("extraction failed", types.ErrOCR, err)
	}
	if doc == nil || len(doc.Pages) == 0 {
		return nil, p.fail("extraction failed", types.ErrOCR, errors.New("no pages extracted"))
	}
	if info.PageCount != len(doc.Pages) {
		logger.Warn("extracted page count differs from the input PDF",
			logger.Int("pdfPages", info.PageCount),
			logger.Int("extractedPages", len(doc.Pages)))
	}

	if ctx.Err() != nil {
		return nil, p.cancelled(ctx.Err())
	}

	// Step 3: inline extracted assets into the page markdown.
	p.updateStatus(types.PhaseExtracting, 30, "inlining extracted assets")
	for i := range doc.Pages {
		page := &doc.Pages[i]
		page.Markdown = codec.InlineTables(page.Markdown, page.Tables)
		page.Markdown = codec.InlineImages(page.Markdown, page.Images)
	}
	writeArtifact(workDir, "extracted.md", document.Combine(doc.Pages))

	// Step 4: derive sizing directives. The geometry comes from extraction
	// and does not change during translation.
	directives := directive.Generate(doc)

	if ctx.Err() != nil {
		return nil, p.cancelled(ctx.Err())
	}

	// Step 5: translate page by page.
	p.updateStatus(types.PhaseTranslating, 35, "translating document")
	res, err := p.translator.TranslateDocumentWithProgress(ctx, doc, func(current, total int, message string) {
		if total <= 0 {
			return
		}
		p.updateStatus(types.PhaseTranslating, 35+current*50/total, message)
	})
	if err != nil {
		return nil, p.fail("translation failed", types.ErrTranslation, err)
	}
	if len(res.Warnings) > 0 {
		logger.Warn("translation finished with warnings", logger.Int("count", len(res.Warnings)))
	}

	combined := document.Combine(res.Document.Pages)
	writeArtifact(workDir, "translated.md", combined)

	if ctx.Err() != nil {
		return nil, p.cancelled(ctx.Err())
	}

	// Step 6: render the translated document to PDF.
	p.updateStatus(types.PhaseRendering, 90, "rendering PDF")
	htmlBody, err := render.MarkdownToHTML(combined)
	if err != nil {
		return nil, p.fail("rendering failed", types.ErrRender, err)
	}
	fullHTML := render.WrapWithStyles(htmlBody, directives, p.fontPath)
	writeArtifact(workDir, "document.html", fullHTML)

	// Render into the work directory first so a failed run never leaves a
	// partial file at the output path.
	stagedPath := filepath.Join(workDir, "translated.pdf")
	if err := p.renderer.Render(ctx, fullHTML, stagedPath); err != nil {
		return nil, p.fail("rendering failed", types.ErrRender, err)
	}
	if err := copyFile(stagedPath, outputPath); err != nil {
		return nil, p.fail("failed to write output PDF", types.ErrInternal, err)
	}

	result := &types.ProcessResult{
		InputPDFPath:  inputPath,
		OutputPDFPath: outputPath,
		PageCount:     len(doc.Pages),
		Warnings:      len(res.Warnings),
	}

	p.updateStatus(types.PhaseComplete, 100, "translation complete")
	logger.Info("PDF translation complete",
		logger.String("output", outputPath),
		logger.Int("pages", result.PageCount),
		logger.Int("warnings", result.Warnings))
	return result, nil
}

// updateStatus records a status change and notifies the callback.
func (p *Pipeline) updateStatus(phase types.ProcessPhase, progress int, message string) {
	p.statusMu.Lock()
	p.status.Phase = phase
	p.status.Progress = progress
	p.status.Message = message
	p.status.Error = ""

	// Get callback while holding lock
	callback := p.statusCallback
	// Make a copy for the callback
	statusCopy := &types.Status{
		Phase:    p.status.Phase,
		Progress: p.status.Progress,
		Message:  p.status.Message,
	}
	p.statusMu.Unlock()

	// Call callback outside of lock to prevent deadlocks
	if callback != nil {
		callback(statusCopy)
	}
}

// updateStatusError moves the status to the error phase.
func (p *Pipeline) updateStatusError(errorMsg string) {
	p.statusMu.Lock()
	p.status.Phase = types.PhaseError
	p.status.Error = errorMsg

	callback := p.statusCallback
	statusCopy := &types.Status{
		Phase:    p.status.Phase,
		Progress: p.status.Progress,
		Message:  p.status.Message,
		Error:    p.status.Error,
	}
	p.statusMu.Unlock()

	if callback != nil {
		callback(statusCopy)
	}
}

// fail records a stage failure and normalizes the error to an AppError.
// Collaborator AppErrors pass through unchanged, their codes are more
// specific than the stage code.
func (p *Pipeline) fail(stage string, code types.ErrorCode, err error) error {
	logger.Error(stage, err)
	p.updateStatusError(fmt.Sprintf("%s: %v", stage, err))

	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return types.NewAppError(code, stage, err)
}

// cancelled records a cancellation and returns the matching error.
func (p *Pipeline) cancelled(cause error) error {
	logger.Warn("processing cancelled")
	p.updateStatusError("cancelled")
	return types.NewAppError(types.ErrInternal, "processing cancelled", cause)
}

// writeArtifact saves an intermediate file into the work directory.
// Artifacts exist for debugging, failing to write one never fails the run.
func writeArtifact(dir, name, content string) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		logger.Debug("failed to write work artifact", logger.String("path", path), logger.Err(err))
	}
}

// copyFile copies src to dst, creating the destination directory.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, sourceFile)
	return err
}
