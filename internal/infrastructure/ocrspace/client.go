package ocrspace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/pharmalens/backend/internal/domain"
	"golang.org/x/time/rate"
)

// Client handles communication with the ocr.space parse API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new OCR provider client.
// requestsPerMinute bounds the outbound call rate to stay inside the
// provider's free-tier quota.
func NewClient(apiKey, baseURL string, timeout time.Duration, requestsPerMinute int) *Client {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30
	}
	limiter := rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		rateLimiter: limiter,
	}
}

// SetDebug enables verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// parseResponse models the ocr.space /parse/image payload. Only the
// overlay lines are consumed; ParsedText is kept for debug logging.
type parseResponse struct {
	ParsedResults         []parsedResult  `json:"ParsedResults"`
	OCRExitCode           int             `json:"OCRExitCode"`
	IsErroredOnProcessing bool            `json:"IsErroredOnProcessing"`
	ErrorMessage          json.RawMessage `json:"ErrorMessage"`
}

type parsedResult struct {
	TextOverlay       textOverlay `json:"TextOverlay"`
	ParsedText        string      `json:"ParsedText"`
	FileParseExitCode int         `json:"FileParseExitCode"`
	ErrorMessage      string      `json:"ErrorMessage"`
}

type textOverlay struct {
	Lines []overlayLine `json:"Lines"`
}

type overlayLine struct {
	LineText  string  `json:"LineText"`
	MaxHeight float64 `json:"MaxHeight"`
	MinTop    float64 `json:"MinTop"`
}

// SubmitImage sends an image to the OCR provider and returns the
// recognized lines in emission order with their pixel heights.
func (c *Client) SubmitImage(ctx context.Context, image []byte) ([]domain.OcrLine, error) {
	if len(image) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	// Oversized uploads are downscaled before submission; the provider
	// rejects large payloads on the free tier.
	image = prepareImage(image)

	body, contentType, err := buildMultipartBody(image)
	if err != nil {
		return nil, fmt.Errorf("failed to build request body: %w", err)
	}

	// Retry up to 3 times for transient failures
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			log.Printf("[OCR] Rate limiter error: %v", err)
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, body, contentType)
		if err != nil {
			log.Printf("[OCR] Request error (attempt %d): %v", attempt, err)
			lastErr = err
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			log.Printf("[OCR] API error (attempt %d) - Status: %d, Body: %s", attempt, resp.StatusCode, string(respBody))
			lastErr = fmt.Errorf("%w: status %d", domain.ErrOCRProviderFailure, resp.StatusCode)
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		var parsed parseResponse
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return nil, fmt.Errorf("%w: malformed payload: %v", domain.ErrOCRProviderFailure, err)
		}

		if parsed.IsErroredOnProcessing {
			return nil, fmt.Errorf("%w: %s", domain.ErrOCRProviderFailure, string(parsed.ErrorMessage))
		}

		lines := extractLines(&parsed)
		if c.debug {
			log.Printf("[OCR] Recognized %d lines", len(lines))
		}
		return lines, nil
	}

	log.Printf("[OCR] All retries failed")
	return nil, lastErr
}

// doRequest executes the multipart POST with provider headers
func (c *Client) doRequest(ctx context.Context, body []byte, contentType string) (*http.Response, error) {
	reqURL := fmt.Sprintf("%s/parse/image", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", "PharmaLens/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrOCRProviderFailure, err)
	}

	return resp, nil
}

// buildMultipartBody assembles the provider form: overlay output enabled
// so line geometry comes back with the text.
func buildMultipartBody(image []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("scale", "true"); err != nil {
		return nil, "", err
	}
	if err := writer.WriteField("isOverlayRequired", "true"); err != nil {
		return nil, "", err
	}

	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(image); err != nil {
		return nil, "", err
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

// extractLines flattens the first parsed result's overlay into domain lines
func extractLines(parsed *parseResponse) []domain.OcrLine {
	if len(parsed.ParsedResults) == 0 {
		return nil
	}

	overlay := parsed.ParsedResults[0].TextOverlay
	lines := make([]domain.OcrLine, 0, len(overlay.Lines))
	for _, line := range overlay.Lines {
		lines = append(lines, domain.OcrLine{
			Text:     line.LineText,
			HeightPx: line.MaxHeight,
		})
	}
	return lines
}

// exponentialBackoff returns the sleep duration before the next retry
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}
