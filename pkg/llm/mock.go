package llm

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Mock is an offline Classifier backed by keyword lexicons. It parses
// the comment blocks out of the user prompt and answers in the same
// JSON shape as the live service, so the rest of the pipeline runs
// unchanged in development and tests.
type Mock struct {
	model string
}

// NewMock builds a lexicon classifier reporting the given model name.
func NewMock(model string) *Mock {
	if model == "" {
		model = "mock"
	}
	return &Mock{model: model}
}

func (m *Mock) Model() string {
	return m.model + "-mock"
}

var commentBlock = regexp.MustCompile(`(?s)<comment id="([^"]+)"(?:\s+score="(\d)/5")?>(.*?)</comment>`)

var (
	mockNegative = []string{"atrasado", "defeito", "quebrado", "pessimo", "horrivel", "nunca chegou", "errado", "late", "broken", "terrible", "wrong", "never arrived"}
	mockPositive = []string{"otimo", "excelente", "perfeito", "recomendo", "adorei", "rapido", "great", "excellent", "perfect", "fast"}
	mockUrgent   = []string{"urgente", "reembolso", "cancelar", "processar", "advogado", "refund", "cancel", "urgent"}
	mockLogistic = []string{"entrega", "prazo", "correio", "frete", "chegou", "delivery", "shipping"}
	mockSupport  = []string{"atendimento", "resposta", "contato", "suporte", "support", "response"}
	mockPricing  = []string{"preco", "caro", "cobrado", "valor", "price", "charged"}
)

type mockVerdict struct {
	ID              string  `json:"id"`
	Sentiment       string  `json:"sentiment"`
	Urgency         string  `json:"urgency"`
	Category        string  `json:"category"`
	SuggestedAction string  `json:"suggested_action"`
	Confidence      float64 `json:"confidence"`
}

// Complete classifies each comment block in the user prompt by lexicon
// match and returns a JSON array of verdicts.
func (m *Mock) Complete(ctx context.Context, system, user string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	matches := commentBlock.FindAllStringSubmatch(user, -1)
	verdicts := make([]mockVerdict, 0, len(matches))
	for _, match := range matches {
		score := -1
		if match[2] != "" {
			score, _ = strconv.Atoi(match[2])
		}
		verdicts = append(verdicts, classifyMock(match[1], match[3], score))
	}
	encoded, err := json.Marshal(verdicts)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func classifyMock(id, text string, score int) mockVerdict {
	lowered := strings.ToLower(text)

	v := mockVerdict{
		ID:         id,
		Sentiment:  "neutral",
		Urgency:    "low",
		Category:   "other",
		Confidence: 0.5,
	}

	switch {
	case matchesAny(lowered, mockNegative) || (score > 0 && score <= 2):
		v.Sentiment = "negative"
		v.Urgency = "medium"
		v.Confidence = 0.7
	case matchesAny(lowered, mockPositive) || score == 5:
		v.Sentiment = "positive"
		v.Confidence = 0.7
	}
	if matchesAny(lowered, mockUrgent) {
		v.Urgency = "high"
		v.Confidence = 0.8
	}

	switch {
	case matchesAny(lowered, mockLogistic):
		v.Category = "logistics"
	case matchesAny(lowered, mockSupport):
		v.Category = "support"
	case matchesAny(lowered, mockPricing):
		v.Category = "pricing"
	case v.Sentiment == "negative":
		v.Category = "quality"
	}

	switch {
	case v.Urgency == "high":
		v.SuggestedAction = "escalate to support team"
	case v.Sentiment == "negative":
		v.SuggestedAction = "follow up with customer"
	default:
		v.SuggestedAction = "no action required"
	}
	return v
}

func matchesAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
