// Package ocr is the client for the Mistral OCR API. It uploads a PDF as
// a base64 data URL and decodes the response into the structured document
// model.
package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"pdf-translator/internal/document"
	"pdf-translator/internal/logger"
	"pdf-translator/internal/types"
)

const (
	// DefaultBaseURL is the default Mistral API base URL.
	DefaultBaseURL = "https://api.mistral.ai"
	// DefaultModel is the default OCR model.
	DefaultModel = "mistral-ocr-latest"
	// DefaultTimeout bounds one OCR request. OCR of a long document can
	// take minutes.
	DefaultTimeout = 300 * time.Second
)

// Client is the Mistral OCR API client.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient creates an OCR client. Empty baseURL and model fall back to
// the defaults.
func NewClient(apiKey, baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    normalizeBaseURL(baseURL),
		model:      model,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// normalizeBaseURL strips a trailing slash and a trailing /v1 segment so
// both "https://api.mistral.ai" and "https://api.mistral.ai/v1" work;
// endpoint paths carry the version prefix themselves.
func normalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	baseURL = strings.TrimSuffix(baseURL, "/v1")
	return baseURL
}

// ocrRequest is the request body of the OCR endpoint.
type ocrRequest struct {
	Model              string      `json:"model"`
	Document           documentURL `json:"document"`
	IncludeImageBase64 bool        `json:"include_image_base64"`
	TableFormat        string      `json:"table_format,omitempty"`
}

// documentURL wraps the document data URL.
type documentURL struct {
	Type        string `json:"type"`
	DocumentURL string `json:"document_url"`
}

// ocrResponse is the response body of the OCR endpoint.
type ocrResponse struct {
	Pages []pageResult `json:"pages"`
}

type pageResult struct {
	Index      int               `json:"index"`
	Markdown   string            `json:"markdown"`
	Images     []imageResult     `json:"images"`
	Tables     []tableResult     `json:"tables"`
	Dimensions *dimensionsResult `json:"dimensions"`
}

type imageResult struct {
	ID           string `json:"id"`
	TopLeftX     int    `json:"top_left_x"`
	TopLeftY     int    `json:"top_left_y"`
	BottomRightX int    `json:"bottom_right_x"`
	BottomRightY int    `json:"bottom_right_y"`
	ImageBase64  string `json:"image_base64"`
}

type tableResult struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

type dimensionsResult struct {
	DPI    int `json:"dpi"`
	Height int `json:"height"`
	Width  int `json:"width"`
}

// ProcessFile reads a PDF from disk and extracts it.
func (c *Client) ProcessFile(ctx context.Context, pdfPath string) (*document.Document, error) {
	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, types.NewAppError(types.ErrFileNotFound, "failed to read PDF file", err)
	}
	return c.Process(ctx, data)
}

// Process sends the PDF bytes to the OCR endpoint, requesting inline
// image payloads and HTML table content, and decodes the page list into
// the structured document model.
func (c *Client) Process(ctx context.Context, pdfData []byte) (*document.Document, error) {
	if len(pdfData) == 0 {
		return nil, types.NewAppError(types.ErrInvalidInput, "empty PDF input", nil)
	}

	dataURL := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(pdfData)
	reqBody := ocrRequest{
		Model: c.model,
		Document: documentURL{
			Type:        "document_url",
			DocumentURL: dataURL,
		},
		IncludeImageBase64: true,
		TableFormat:        "html",
	}

	logger.Info("submitting document for OCR",
		logger.String("model", c.model),
		logger.Int("pdfBytes", len(pdfData)))

	var resp ocrResponse
	if err := c.postJSON(ctx, "/v1/ocr", reqBody, &resp); err != nil {
		return nil, err
	}

	doc := toDocument(&resp)
	logger.Info("OCR extraction complete", logger.Int("pages", len(doc.Pages)))
	return doc, nil
}

// toDocument converts the wire response into the document model. Missing
// page dimensions become nil so downstream sizing degrades explicitly.
func toDocument(resp *ocrResponse) *document.Document {
	doc := &document.Document{Pages: make([]document.Page, 0, len(resp.Pages))}
	for _, p := range resp.Pages {
		page := document.Page{
			Index:    p.Index,
			Markdown: p.Markdown,
		}
		if p.Dimensions != nil {
			page.Size = &document.Dimensions{
				DPI:    p.Dimensions.DPI,
				Height: p.Dimensions.Height,
				Width:  p.Dimensions.Width,
			}
		}
		for _, img := range p.Images {
			page.Images = append(page.Images, document.Image{
				ID: img.ID,
				Box: &document.BoundingBox{
					TopLeftX:     img.TopLeftX,
					TopLeftY:     img.TopLeftY,
					BottomRightX: img.BottomRightX,
					BottomRightY: img.BottomRightY,
				},
				Base64: img.ImageBase64,
			})
		}
		for _, tbl := range p.Tables {
			page.Tables = append(page.Tables, document.Table{
				ID:      tbl.ID,
				Content: tbl.Content,
			})
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc
}

// ValidateKey checks the configured API key: a cheap format check first,
// then a live request against the models endpoint.
func (c *Client) ValidateKey(ctx context.Context) error {
	if c.apiKey == "" {
		return types.NewAppError(types.ErrConfig, "API key is not set", nil)
	}
	if strings.ContainsAny(c.apiKey, " \t\n\r") {
		return types.NewAppError(types.ErrConfig, "API key contains whitespace", nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/models", nil)
	if err != nil {
		return types.NewAppError(types.ErrInternal, "failed to create request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.NewAppError(types.ErrNetwork, "failed to reach the API", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return statusToAppError(resp.StatusCode, body)
	}

	logger.Debug("API key validated", logger.String("baseURL", c.baseURL))
	return nil
}

// postJSON sends a JSON request and decodes a JSON response, mapping
// transport and HTTP failures onto the error taxonomy.
func (c *Client) postJSON(ctx context.Context, path string, reqBody, respBody interface{}) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return types.NewAppError(types.ErrInternal, "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return types.NewAppError(types.ErrInternal, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return types.NewAppError(types.ErrNetwork, "request cancelled or timed out", ctx.Err())
		}
		return types.NewAppError(types.ErrNetwork, "failed to reach the API", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.NewAppError(types.ErrNetwork, "failed to read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return statusToAppError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, respBody); err != nil {
		return types.NewAppError(types.ErrAPICall, "failed to decode response", err)
	}
	return nil
}

// statusToAppError maps an HTTP error status onto the error taxonomy.
func statusToAppError(status int, body []byte) *types.AppError {
	detail := fmt.Sprintf("status %d", status)
	if len(body) > 0 {
		detail = fmt.Sprintf("status %d: %s", status, truncate(string(body), 200))
	}

	switch {
	case status == http.StatusUnauthorized:
		return types.NewAppErrorWithDetails(types.ErrAPICall, "API authentication failed, check the API key", detail, nil)
	case status == http.StatusTooManyRequests:
		return types.NewAppErrorWithDetails(types.ErrAPIRateLimit, "API rate limit exceeded", detail, nil)
	case status == http.StatusBadRequest:
		return types.NewAppErrorWithDetails(types.ErrInvalidInput, "API rejected the request", detail, nil)
	case status >= 500:
		return types.NewAppErrorWithDetails(types.ErrAPICall, "API server error", detail, nil)
	default:
		return types.NewAppErrorWithDetails(types.ErrAPICall, "API request failed", detail, nil)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
