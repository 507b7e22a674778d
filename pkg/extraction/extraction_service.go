package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"Receipt-Scan-Backend/domain"
	"Receipt-Scan-Backend/internal/utils"
)

const receiptPrompt = "Analyze this restaurant receipt image and respond ONLY with a valid JSON object containing exactly these fields: " +
	"'meta_data' (object with optional string fields 'restaurant', 'address', 'order_time', 'checkout_time' and optional number 'guest_count'), " +
	"'items' (array of objects with 'name' (string), 'quantity' (number), 'total' (number)), and " +
	"'payment' (object with 'subtotal' (number), optional 'tax' (number), optional 'tip' (number), 'total' (number), optional 'currency' (string)). " +
	"Use an empty array for 'items' if no line items are readable. Do not include any explanations, markdown formatting, or extra text."

type (
	// ExtractionService sends a receipt image to the Gemini vision API and
	// returns the structured extraction as a raw JSON object, so that whatever
	// the model produced reaches the caller verbatim.
	ExtractionService interface {
		ExtractReceipt(ctx context.Context, imageBase64 string, mimeType string) (map[string]interface{}, error)
	}

	extractionService struct {
		baseURL    string
		httpClient *http.Client
	}
)

func NewExtractionService() ExtractionService {
	return &extractionService{
		baseURL:    "https://generativelanguage.googleapis.com",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewExtractionServiceWithBaseURL points the client at a different endpoint,
// used by tests to stand in for the Gemini API.
func NewExtractionServiceWithBaseURL(baseURL string) ExtractionService {
	return &extractionService{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *extractionService) ExtractReceipt(ctx context.Context, imageBase64 string, mimeType string) (map[string]interface{}, error) {
	geminiAPIKey := utils.GetConfig("GEMINI_API_KEY")
	if geminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	geminiModel := utils.GetConfig("GEMINI_MODEL")
	if geminiModel == "" {
		return nil, fmt.Errorf("GEMINI_MODEL environment variable not set")
	}

	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	geminiURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", s.baseURL, geminiModel, geminiAPIKey)

	requestBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]interface{}{
					{
						"text": receiptPrompt,
					},
					{
						"inline_data": map[string]interface{}{
							"mime_type": mimeType,
							"data":      imageBase64,
						},
					},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature": 0.1,
			"topP":        0.8,
			"topK":        40,
		},
	}

	requestJSON, err := json.Marshal(requestBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", geminiURL, bytes.NewBuffer(requestJSON))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gemini API error: %s - %s", resp.Status, string(bodyBytes))
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return nil, err
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return nil, domain.ErrExtractionFailed
	}

	responseText := geminiResp.Candidates[0].Content.Parts[0].Text

	// The model sometimes wraps the JSON in markdown fences or prose.
	jsonPattern := regexp.MustCompile(`(?s)\{.*\}`)
	matches := jsonPattern.FindString(responseText)
	if matches != "" {
		responseText = matches
	}

	responseText = strings.TrimSpace(responseText)
	if strings.HasPrefix(responseText, "```json") {
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimSuffix(responseText, "```")
	} else if strings.HasPrefix(responseText, "```") {
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
	}
	responseText = strings.TrimSpace(responseText)

	var extraction map[string]interface{}
	if err := json.Unmarshal([]byte(responseText), &extraction); err != nil {
		return nil, fmt.Errorf("failed to parse Gemini response: %v - Raw response: %s", err, responseText)
	}

	// Items must always exist on an extraction, even when nothing was readable.
	if _, ok := extraction["items"]; !ok {
		extraction["items"] = []interface{}{}
	}

	return extraction, nil
}
