package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labellens/backend/internal/types"
)

// AIProvider classifies an ingredient via a remote model. It is optional:
// the classifier always falls back to its rule engine when the provider
// errors or is not configured.
type AIProvider interface {
	ClassifyIngredient(ctx context.Context, name string) (*IngredientEntry, error)
}

// AIService calls a chat-completions style API and asks for a structured
// safety assessment of a single ingredient.
type AIService struct {
	apiKey string
	apiURL string
	client *http.Client
}

// Ensure AIService implements AIProvider
var _ AIProvider = (*AIService)(nil)

// NewAIService creates a new AIService instance from environment
// configuration. It returns an error when no API key is available;
// callers then run without remote classification.
func NewAIService() (*AIService, error) {
	apiKey := os.Getenv("AI_API_KEY")
	if apiKey == "" {
		apiKeyFile := os.Getenv("AI_API_KEY_FILE")
		if apiKeyFile == "" {
			return nil, fmt.Errorf("AI_API_KEY or AI_API_KEY_FILE must be set")
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

	apiURL := os.Getenv("AI_API_URL")
	if apiURL == "" {
		apiURL = "https://api.deepseek.com/v1/chat/completions"
	}

	return &AIService{
		apiKey: apiKey,
		apiURL: apiURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request represents a request to the chat-completions API
type Request struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	Temperature    float64           `json:"temperature"`
}

const aiSystemPrompt = `You are a food safety analyst. For the ingredient you are given, respond only with JSON in this structure:
{
    "name": "canonical ingredient name",
    "category": "one of: preservative, sweetener, coloring, flavoring, flavor enhancer, thickener, emulsifier, vitamin, mineral, fat, natural, unknown",
    "rating": "one of: safe, caution, avoid",
    "confidence": 70,
    "explanation": "one or two sentences on why",
    "health_concerns": ["concern"],
    "alternatives": ["alternative ingredient"],
    "sources": ["citation"]
}

The confidence field must be an integer between 0 and 100.
The rating field MUST be one of the three listed values.`

// ClassifyIngredient asks the remote model to assess one ingredient.
func (s *AIService) ClassifyIngredient(ctx context.Context, name string) (*IngredientEntry, error) {
	reqBody := Request{
		Model: "deepseek-chat",
		Messages: []Message{
			{Role: "system", Content: aiSystemPrompt},
			{Role: "user", Content: fmt.Sprintf("Assess the food ingredient: %s", name)},
		},
		ResponseFormat: map[string]string{
			"type": "json_object",
		},
		Temperature: 0.1, // assessments should be repeatable
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))

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
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no response from API")
	}

	var assessment struct {
		Name           string   `json:"name"`
		Category       string   `json:"category"`
		Rating         string   `json:"rating"`
		Confidence     int      `json:"confidence"`
		Explanation    string   `json:"explanation"`
		HealthConcerns []string `json:"health_concerns"`
		Alternatives   []string `json:"alternatives"`
		Sources        []string `json:"sources"`
	}
	if err := json.Unmarshal([]byte(result.Choices[0].Message.Content), &assessment); err != nil {
		return nil, fmt.Errorf("failed to parse assessment: %w", err)
	}

	rating := types.SafetyRating(assessment.Rating)
	if !rating.IsValid() {
		return nil, fmt.Errorf("invalid rating in assessment: %q", assessment.Rating)
	}

	entry := &IngredientEntry{
		Name:           assessment.Name,
		Category:       assessment.Category,
		Rating:         rating,
		Confidence:     clampConfidence(assessment.Confidence),
		Explanation:    assessment.Explanation,
		HealthConcerns: assessment.HealthConcerns,
		Alternatives:   assessment.Alternatives,
		Sources:        assessment.Sources,
	}
	if entry.Name == "" {
		entry.Name = name
	}

	return entry, nil
}
