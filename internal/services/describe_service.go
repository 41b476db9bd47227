package services

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const describeModel = "gemini-2.5-flash"

// DescribeService drafts event descriptions through the Gemini API. A nil
// client disables the feature entirely; there is no fallback credential.
type DescribeService struct {
	client *genai.Client
}

func NewDescribeService(client *genai.Client) *DescribeService {
	return &DescribeService{client: client}
}

func (ds *DescribeService) Enabled() bool {
	return ds.client != nil
}

func (ds *DescribeService) GenerateDescription(ctx context.Context, title, category, location, date string) (string, error) {
	if !ds.Enabled() {
		return "", fmt.Errorf("description drafting is not configured")
	}
	if strings.TrimSpace(title) == "" || strings.TrimSpace(category) == "" {
		return "", fmt.Errorf("title and category are required")
	}
	if location == "" {
		location = "a TBD location"
	}
	if date == "" {
		date = "an upcoming date"
	}

	prompt := fmt.Sprintf(`Write an engaging, professional, and exciting event description for a %s event titled %q.
The event is happening at %s on %s.
Keep the tone enthusiastic but professional.
Limit the response to maximum 3 short paragraphs.
Do not include markdown formatting (like **bold**), just plain text.`,
		category, title, location, date)

	resp, err := ds.client.Models.GenerateContent(ctx, describeModel, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate description: %v", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}
