package tagger

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModelName is the Gemini model used for fallback classification.
const DefaultModelName = "gemini-2.0-flash"

const classifyPrompt = "You classify Chinese campus-card merchant names into exactly one spending category.\n" +
	"Categories:\n" +
	"- CAF: dining halls, canteens, food stalls\n" +
	"- GRO: supermarkets, convenience stores, general shops\n" +
	"- LOG: package lockers, couriers, printing and logistics services\n" +
	"- OTH: anything else or unclear\n\n" +
	"Respond with the three-letter code only, no punctuation, no explanation.\n\n" +
	"Merchant name: %s"

// GenAIStrategy asks a Gemini model to classify merchants the substring rules
// could not. Failures are surfaced to the Tagger, which degrades to OTH.
type GenAIStrategy struct {
	client *genai.Client
	model  string
}

// NewGenAIStrategy builds the strategy. The client picks credentials up from
// the environment the same way the rest of the Google stack does.
func NewGenAIStrategy(ctx context.Context, model string) (*GenAIStrategy, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if model == "" {
		model = DefaultModelName
	}
	return &GenAIStrategy{client: client, model: model}, nil
}

// Classify implements Strategy.
func (s *GenAIStrategy) Classify(ctx context.Context, merchantName string) (Tag, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: fmt.Sprintf(classifyPrompt, merchantName)},
			},
		},
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	raw := strings.TrimSpace(resp.Text())
	tag, ok := parseTag(strings.ToUpper(raw))
	if !ok {
		return "", fmt.Errorf("model returned unrecognized category %q", raw)
	}
	return tag, nil
}

var _ Strategy = (*GenAIStrategy)(nil)
