// Package translate drives the chat model that translates extracted page
// markdown. Image payloads are swapped for placeholders before each model
// call and swapped back afterwards so base64 data never crosses the API.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"pdf-translator/internal/codec"
	"pdf-translator/internal/document"
	"pdf-translator/internal/logger"
	"pdf-translator/internal/types"
)

const (
	// DefaultModel is the default chat model for translation.
	DefaultModel = "mistral-large-latest"
	// DefaultConcurrency is the default number of pages translated in parallel.
	DefaultConcurrency = 3
	// MaxRetries is the maximum number of attempts for one page.
	MaxRetries = 2
	// BaseRetryDelay is the base delay between retries.
	BaseRetryDelay = 2 * time.Second
)

// ChatModel is the slice of the model client the engine needs. The
// production implementation comes from NewMistralChatModel; tests supply
// fakes.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// TranslationCache stores finished page translations keyed by content and
// language pair. Pages run concurrently, so implementations must be safe
// for concurrent use.
type TranslationCache interface {
	Get(sourceLanguage, targetLanguage, content string) (string, bool)
	Put(sourceLanguage, targetLanguage, content, translation string)
}

// ProgressCallback reports per-page translation progress.
type ProgressCallback func(current, total int, message string)

// Result holds the translated document and non-fatal warnings collected
// along the way, such as dropped images.
type Result struct {
	Document *document.Document
	Warnings []string
}

// Engine translates documents page by page with bounded concurrency.
type Engine struct {
	chatModel      ChatModel
	cache          TranslationCache
	sourceLanguage string
	targetLanguage string
	concurrency    int
	retryDelay     time.Duration
}

// NewEngine creates a translation engine. Empty languages and a
// non-positive concurrency fall back to the defaults.
func NewEngine(chatModel ChatModel, sourceLanguage, targetLanguage string, concurrency int) *Engine {
	if sourceLanguage == "" {
		sourceLanguage = "French"
	}
	if targetLanguage == "" {
		targetLanguage = "English"
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Engine{
		chatModel:      chatModel,
		sourceLanguage: languageName(sourceLanguage),
		targetLanguage: languageName(targetLanguage),
		concurrency:    concurrency,
		retryDelay:     BaseRetryDelay,
	}
}

// SetCache attaches a translation cache. Pages already cached for the
// language pair skip the model call entirely.
func (e *Engine) SetCache(cache TranslationCache) {
	e.cache = cache
}

// SourceLanguage returns the canonical source language name.
func (e *Engine) SourceLanguage() string {
	return e.sourceLanguage
}

// TargetLanguage returns the canonical target language name.
func (e *Engine) TargetLanguage() string {
	return e.targetLanguage
}

// TranslateDocument translates every page of the document.
func (e *Engine) TranslateDocument(ctx context.Context, doc *document.Document) (*Result, error) {
	return e.TranslateDocumentWithProgress(ctx, doc, nil)
}

// TranslateDocumentWithProgress translates every page, reporting progress
// after each completed page. Pages are translated concurrently; the first
// page error aborts the whole document.
func (e *Engine) TranslateDocumentWithProgress(ctx context.Context, doc *document.Document, progressCallback ProgressCallback) (*Result, error) {
	if e.chatModel == nil {
		return nil, types.NewAppError(types.ErrConfig, "chat model is not configured", nil)
	}
	if doc == nil || len(doc.Pages) == 0 {
		logger.Debug("empty document, nothing to translate")
		return &Result{Document: &document.Document{}}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, types.NewAppError(types.ErrNetwork, "translation cancelled", err)
	}

	total := len(doc.Pages)
	logger.Info("starting document translation",
		logger.String("source", e.sourceLanguage),
		logger.String("target", e.targetLanguage),
		logger.Int("pages", total),
		logger.Int("concurrency", e.concurrency))

	translated := make([]document.Page, total)
	pageWarnings := make([][]string, total)
	pageErrors := make([]error, total)

	sem := make(chan struct{}, e.concurrency)
	var wg sync.WaitGroup
	var completedCount int
	var mu sync.Mutex

	for i, page := range doc.Pages {
		wg.Add(1)
		go func(idx int, p document.Page) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				mu.Lock()
				pageErrors[idx] = types.NewAppError(types.ErrNetwork, "translation cancelled", err)
				mu.Unlock()
				return
			}

			result, warnings, err := e.translatePage(ctx, idx, p)

			mu.Lock()
			translated[idx] = result
			pageWarnings[idx] = warnings
			pageErrors[idx] = err
			completedCount++
			completed := completedCount
			mu.Unlock()

			if progressCallback != nil {
				progressCallback(completed, total, fmt.Sprintf("translating page %d/%d", completed, total))
			}

			if err != nil {
				logger.Error("page translation failed", err, logger.Int("page", idx+1))
			} else {
				logger.Debug("page translated", logger.Int("page", idx+1))
			}
		}(i, page)
	}

	wg.Wait()

	for i, err := range pageErrors {
		if err != nil {
			var appErr *types.AppError
			if errors.As(err, &appErr) {
				appErr.Details = fmt.Sprintf("page %d: %s", i+1, appErr.Details)
				return nil, appErr
			}
			return nil, types.NewAppErrorWithDetails(
				types.ErrTranslation,
				fmt.Sprintf("page %d translation failed", i+1),
				err.Error(),
				err,
			)
		}
	}

	result := &Result{Document: &document.Document{Pages: translated}}
	for _, warnings := range pageWarnings {
		result.Warnings = append(result.Warnings, warnings...)
	}

	logger.Info("document translation complete",
		logger.Int("pages", total),
		logger.Int("warnings", len(result.Warnings)))
	return result, nil
}

// translatePage strips image payloads, runs the model, repairs damaged
// placeholders, and restores the payloads. An image whose placeholder
// cannot be found in the model output is dropped with a warning. A cache
// hit stands in for the model call; the cache stores raw model output, so
// placeholder repair runs on both paths.
func (e *Engine) translatePage(ctx context.Context, idx int, page document.Page) (document.Page, []string, error) {
	result := page

	if strings.TrimSpace(page.Markdown) == "" {
		return result, nil, nil
	}

	stripped, mapping := codec.StripImages(page.Markdown)

	translated, cached := "", false
	if e.cache != nil {
		translated, cached = e.cache.Get(e.sourceLanguage, e.targetLanguage, stripped)
	}
	if cached {
		logger.Debug("translation cache hit", logger.Int("page", idx+1))
	} else {
		var err error
		translated, err = e.translatePageWithRetry(ctx, stripped, len(mapping))
		if err != nil {
			return result, nil, err
		}
		if e.cache != nil {
			e.cache.Put(e.sourceLanguage, e.targetLanguage, stripped, translated)
		}
	}

	var warnings []string
	if len(mapping) > 0 {
		missing := codec.ValidatePlaceholders(translated, mapping)
		if len(missing) > 0 {
			logger.Warn("placeholders missing from model output",
				logger.Int("page", idx+1),
				logger.Int("missing", len(missing)))
			var lost []string
			translated, lost = codec.RecoverPlaceholders(translated, mapping)
			for _, placeholder := range lost {
				warnings = append(warnings, fmt.Sprintf("page %d: image placeholder %s lost in translation, image dropped", idx+1, placeholder))
			}
		}
		translated = codec.RestoreImages(translated, mapping)
	}

	for _, placeholder := range codec.UnresolvedPlaceholders(translated) {
		warnings = append(warnings, fmt.Sprintf("page %d: unknown image placeholder %s left as is", idx+1, placeholder))
	}

	result.Markdown = translated
	return result, warnings, nil
}

// translatePageWithRetry retries transient API failures with a growing
// delay.
func (e *Engine) translatePageWithRetry(ctx context.Context, content string, placeholderCount int) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= MaxRetries; attempt++ {
		logger.Debug("translation attempt", logger.Int("attempt", attempt))
		translated, err := e.callModel(ctx, content, placeholderCount)
		if err == nil {
			return translated, nil
		}

		lastErr = err
		logger.Warn("translation attempt failed", logger.Int("attempt", attempt), logger.Err(err))

		if !isRetryableAPIError(err) {
			return "", err
		}

		if attempt < MaxRetries {
			delay := e.retryDelay * time.Duration(attempt)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", types.NewAppError(types.ErrNetwork, "translation cancelled", ctx.Err())
			}
		}
	}

	return "", types.NewAppErrorWithDetails(
		types.ErrAPICall,
		"translation failed after multiple retries",
		fmt.Sprintf("attempted %d times", MaxRetries),
		lastErr,
	)
}

// callModel performs one chat completion round trip.
func (e *Engine) callModel(ctx context.Context, content string, placeholderCount int) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(buildSystemPrompt(e.sourceLanguage, e.targetLanguage)),
		schema.UserMessage(buildUserPrompt(content, placeholderCount)),
	}

	resp, err := e.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", classifyModelError(err)
	}
	if resp == nil || resp.Content == "" {
		return "", types.NewAppError(types.ErrAPICall, "model returned an empty response", nil)
	}

	return cleanModelOutput(resp.Content), nil
}

// cleanModelOutput removes a code fence the model may wrap the whole
// document in. Fences inside the document are left alone.
func cleanModelOutput(content string) string {
	trimmed := strings.TrimSpace(content)

	if strings.HasPrefix(trimmed, "```") && strings.HasSuffix(trimmed, "```") {
		inner := trimmed
		if nl := strings.Index(inner, "\n"); nl != -1 {
			firstLine := inner[:nl]
			// Opening fence with an optional language tag, e.g. ```markdown
			if !strings.ContainsAny(strings.TrimPrefix(firstLine, "```"), " `") {
				inner = inner[nl+1:]
				inner = strings.TrimSuffix(strings.TrimRight(inner, " \t\n"), "```")
				return strings.TrimSpace(inner)
			}
		}
	}

	return trimmed
}

// classifyModelError maps a chat model error onto the error taxonomy.
// Errors that already carry a code pass through unchanged.
func classifyModelError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return types.NewAppError(types.ErrNetwork, "translation request cancelled or timed out", err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "status code: 401") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "invalid api key"):
		return types.NewAppErrorWithDetails(
			types.ErrAPICall,
			"API authentication failed",
			"invalid API key or unauthorized access",
			err,
		)
	case strings.Contains(msg, "status code: 429") || strings.Contains(msg, "rate limit"):
		return types.NewAppErrorWithDetails(types.ErrAPIRateLimit, "API rate limit exceeded", err.Error(), err)
	case strings.Contains(msg, "status code: 5"):
		return types.NewAppErrorWithDetails(
			types.ErrAPICall,
			"API server error",
			fmt.Sprintf("status 5xx: %v", err),
			err,
		)
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "connection") || strings.Contains(msg, "no such host"):
		return types.NewAppError(types.ErrNetwork, "failed to reach the API", err)
	default:
		return types.NewAppErrorWithDetails(types.ErrAPICall, "translation request failed", err.Error(), err)
	}
}

// isRetryableAPIError determines if an error should trigger a retry.
func isRetryableAPIError(err error) bool {
	if err == nil {
		return false
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		return false
	}

	switch appErr.Code {
	case types.ErrNetwork:
		return true
	case types.ErrAPIRateLimit:
		return true
	case types.ErrAPICall:
		// Server errors are transient, client errors are not.
		return strings.Contains(appErr.Details, "status 5")
	default:
		return false
	}
}
