package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"pdf-translator/internal/logger"
	"pdf-translator/internal/types"
)

// DefaultRenderTimeout bounds one print run. Chromium startup plus font
// loading can be slow on first use.
const DefaultRenderTimeout = 2 * time.Minute

// Renderer turns a complete HTML document into a PDF file.
type Renderer interface {
	Render(ctx context.Context, html string, outputPath string) error
}

// ChromiumRenderer prints HTML to PDF through a headless Chromium or
// Chrome binary. The @page CSS rule controls the paper size.
type ChromiumRenderer struct {
	binary  string
	timeout time.Duration
}

// NewChromiumRenderer creates a renderer. An empty binary triggers a scan
// of the usual install locations; a zero timeout uses the default.
func NewChromiumRenderer(binary string, timeout time.Duration) *ChromiumRenderer {
	if binary == "" {
		binary = FindChromium()
	}
	if timeout == 0 {
		timeout = DefaultRenderTimeout
	}
	return &ChromiumRenderer{
		binary:  binary,
		timeout: timeout,
	}
}

// Binary returns the resolved browser binary, empty if none was found.
func (r *ChromiumRenderer) Binary() string {
	return r.binary
}

// FindChromium locates a Chromium or Chrome binary, first on PATH, then
// in the usual install locations. Returns an empty string if none exists.
func FindChromium() string {
	names := []string{"chromium", "chromium-browser", "google-chrome", "google-chrome-stable", "chrome"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	var candidates []string
	switch runtime.GOOS {
	case "darwin":
		candidates = []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		}
	case "windows":
		candidates = []string{
			filepath.Join(os.Getenv("ProgramFiles"), "Google", "Chrome", "Application", "chrome.exe"),
			filepath.Join(os.Getenv("ProgramFiles(x86)"), "Google", "Chrome", "Application", "chrome.exe"),
			filepath.Join(os.Getenv("LocalAppData"), "Google", "Chrome", "Application", "chrome.exe"),
		}
	default:
		candidates = []string{
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
			"/usr/bin/google-chrome",
			"/snap/bin/chromium",
		}
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}

	return ""
}

// Render writes the HTML to a scratch file and prints it to outputPath.
func (r *ChromiumRenderer) Render(ctx context.Context, html string, outputPath string) error {
	if r.binary == "" {
		return types.NewAppError(types.ErrRender,
			"no Chromium or Chrome binary found, install one or set its path in the configuration", nil)
	}

	workDir, err := os.MkdirTemp("", "pdf-render-*")
	if err != nil {
		return types.NewAppError(types.ErrRender, "failed to create scratch directory", err)
	}
	defer os.RemoveAll(workDir)

	htmlPath := filepath.Join(workDir, "document.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0644); err != nil {
		return types.NewAppError(types.ErrRender, "failed to write HTML document", err)
	}

	outputAbs, err := filepath.Abs(outputPath)
	if err != nil {
		return types.NewAppError(types.ErrRender, "invalid output path", err)
	}

	logger.Info("rendering PDF",
		logger.String("binary", filepath.Base(r.binary)),
		logger.Int("htmlBytes", len(html)),
		logger.String("output", outputAbs))

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	args := []string{
		"--headless",
		"--disable-gpu",
		"--no-pdf-header-footer",
		"--print-to-pdf=" + outputAbs,
		fileURI(htmlPath),
	}

	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Dir = workDir
	hideWindowOnWindows(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return types.NewAppError(types.ErrRender, "PDF rendering timed out", ctx.Err())
	}
	if runErr != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = strings.TrimSpace(stdout.String())
		}
		if len(detail) > 500 {
			detail = detail[:500] + "..."
		}
		return types.NewAppErrorWithDetails(types.ErrRender, "PDF rendering failed", detail, runErr)
	}

	info, err := os.Stat(outputAbs)
	if err != nil {
		return types.NewAppError(types.ErrRender,
			fmt.Sprintf("renderer produced no output at %s", outputAbs), err)
	}
	if info.Size() == 0 {
		return types.NewAppError(types.ErrRender, "renderer produced an empty PDF", nil)
	}

	logger.Info("PDF rendered", logger.Int64("bytes", info.Size()))
	return nil
}
