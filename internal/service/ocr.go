package service

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
)

// OCRResult is the text extracted from one label image.
type OCRResult struct {
	Text       string `json:"text"`
	Confidence int    `json:"confidence"`
	Provider   string `json:"provider"`
}

// OCRProvider extracts text from a label image. Implementations must
// return the provider's error verbatim on failure and never substitute
// fabricated text.
type OCRProvider interface {
	ExtractText(ctx context.Context, image []byte, mimeType string) (*OCRResult, error)
}

// OCRService calls a remote vision endpoint that performs the actual
// image-to-text inference. The endpoint and key come from the
// environment; the service itself holds no credentials at rest.
type OCRService struct {
	apiKey string
	apiURL string
	client *http.Client
}

// Ensure OCRService implements OCRProvider
var _ OCRProvider = (*OCRService)(nil)

// NewOCRService creates a new OCRService instance
func NewOCRService() (*OCRService, error) {
	apiKey := os.Getenv("OCR_API_KEY")
	if apiKey == "" {
		apiKeyFile := os.Getenv("OCR_API_KEY_FILE")
		if apiKeyFile == "" {
			return nil, fmt.Errorf("OCR_API_KEY or OCR_API_KEY_FILE must be set")
		}

		apiKeyBytes, err := os.ReadFile(apiKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read API key file: %w", err)
		}

		apiKey = strings.TrimSpace(string(apiKeyBytes))
		if apiKey == "" {
			return nil, fmt.Errorf("API key file is empty")
		}
	}

	apiURL := os.Getenv("OCR_API_URL")
	if apiURL == "" {
		apiURL = "https://vision.googleapis.com/v1/images:annotate"
	}

	return &OCRService{
		apiKey: apiKey,
		apiURL: apiURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// ocrRequest is the annotate payload for a single image.
type ocrRequest struct {
	Requests []ocrImageRequest `json:"requests"`
}

type ocrImageRequest struct {
	Image    ocrImage     `json:"image"`
	Features []ocrFeature `json:"features"`
}

type ocrImage struct {
	Content string `json:"content"`
}

type ocrFeature struct {
	Type string `json:"type"`
}

// ExtractText runs document text detection on the given image bytes.
func (s *OCRService) ExtractText(ctx context.Context, image []byte, mimeType string) (*OCRResult, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("empty image")
	}

	reqBody := ocrRequest{
		Requests: []ocrImageRequest{
			{
				Image:    ocrImage{Content: base64.StdEncoding.EncodeToString(image)},
				Features: []ocrFeature{{Type: "DOCUMENT_TEXT_DETECTION"}},
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s?key=%s", s.apiURL, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OCR request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Responses []struct {
			FullTextAnnotation struct {
				Text  string `json:"text"`
				Pages []struct {
					Confidence float64 `json:"confidence"`
				} `json:"pages"`
			} `json:"fullTextAnnotation"`
			Error *struct {
				Message string `json:"message"`
			} `json:"error"`
		} `json:"responses"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Responses) == 0 {
		return nil, fmt.Errorf("no response from OCR provider")
	}
	if apiErr := result.Responses[0].Error; apiErr != nil {
		return nil, fmt.Errorf("OCR provider error: %s", apiErr.Message)
	}

	annotation := result.Responses[0].FullTextAnnotation
	confidence := 0
	if len(annotation.Pages) > 0 {
		// Page confidence is 0..1; report 0..100 like the rest of the
		// pipeline.
		confidence = int(annotation.Pages[0].Confidence * 100)
	}

	return &OCRResult{
		Text:       annotation.Text,
		Confidence: clampConfidence(confidence),
		Provider:   "vision_api",
	}, nil
}
