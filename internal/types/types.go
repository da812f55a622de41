// Package types defines core data types and enums shared across the PDF
// translation pipeline.
package types

// Config holds the application configuration.
type Config struct {
	MistralAPIKey  string `json:"mistral_api_key"`
	MistralBaseURL string `json:"mistral_base_url"` // base URL of the Mistral-compatible API
	OCRModel       string `json:"ocr_model"`
	ChatModel      string `json:"chat_model"`
	SourceLanguage string `json:"source_language"` // BCP-47 tag or English display name
	TargetLanguage string `json:"target_language"`
	WorkDirectory  string `json:"work_directory"`
	Concurrency    int    `json:"concurrency"`     // concurrent page translations, default 3
	ChromiumPath   string `json:"chromium_path"`   // path of the headless browser binary, empty for auto-detect
	FontPath       string `json:"font_path"`       // font file embedded in rendered output, empty to skip
	CachePath      string `json:"cache_path"`      // translation cache file, empty disables caching
	RequestTimeout int    `json:"request_timeout"` // per API request, in seconds
}

// ProcessPhase identifies the pipeline stage a request is in.
type ProcessPhase string

const (
	PhaseIdle        ProcessPhase = "idle"
	PhaseInspecting  ProcessPhase = "inspecting"
	PhaseExtracting  ProcessPhase = "extracting"
	PhaseTranslating ProcessPhase = "translating"
	PhaseRendering   ProcessPhase = "rendering"
	PhaseComplete    ProcessPhase = "complete"
	PhaseError       ProcessPhase = "error"
)

// Status reports the progress of a running request.
type Status struct {
	Phase    ProcessPhase `json:"phase"`
	Progress int          `json:"progress"` // 0-100
	Message  string       `json:"message"`
	Error    string       `json:"error,omitempty"`
}

// ProcessResult describes a finished translation run.
type ProcessResult struct {
	InputPDFPath  string `json:"input_pdf_path"`
	OutputPDFPath string `json:"output_pdf_path"`
	PageCount     int    `json:"page_count"`
	Warnings      int    `json:"warnings"` // recoverable anomalies logged during the run
}

// ErrorCode classifies application errors.
type ErrorCode string

const (
	ErrNetwork      ErrorCode = "NETWORK_ERROR"
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrAPICall      ErrorCode = "API_CALL_ERROR"
	ErrAPIRateLimit ErrorCode = "API_RATE_LIMIT"
	ErrOCR          ErrorCode = "OCR_ERROR"
	ErrTranslation  ErrorCode = "TRANSLATION_ERROR"
	ErrRender       ErrorCode = "RENDER_ERROR"
	ErrConfig       ErrorCode = "CONFIG_ERROR"
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
)

// AppError is the application error type carrying a code and optional cause.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for AppError.
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError with the given code, message, and optional cause.
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorWithDetails creates a new AppError with details.
func NewAppErrorWithDetails(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}
