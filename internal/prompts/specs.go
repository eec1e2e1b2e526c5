package prompts

const classifySpec = `Respond with a JSON array containing exactly one object per comment:

[
  {
    "id": "<comment id>",
    "sentiment": "<positive|neutral|negative>",
    "urgency": "<low|medium|high>",
    "category": "<logistics|quality|support|pricing|other>",
    "suggested_action": "<one short sentence>",
    "confidence": 0.0
  }
]

Field constraints:
- id: The comment id exactly as given in the input block. Every input
  comment must appear exactly once in the output.
- sentiment: One of positive, neutral, negative.
- urgency: One of low, medium, high.
- category: One of logistics, quality, support, pricing, other. Use
  other only when no specific category fits.
- suggested_action: One short imperative sentence naming the next step
  for the operations team, or "no action required".
- confidence: Your certainty in this classification from 0.0 to 1.0.

Examples:

Input comment: "Produto chegou quebrado e ninguem responde meus emails"
Output object:
{"id": "r-1", "sentiment": "negative", "urgency": "high", "category": "quality", "suggested_action": "contact customer and offer replacement or refund", "confidence": 0.95}

Input comment: "Entrega rapida, produto conforme anunciado, recomendo"
Output object:
{"id": "r-2", "sentiment": "positive", "urgency": "low", "category": "logistics", "suggested_action": "no action required", "confidence": 0.9}

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing, no prose before
  or after the array
- One object per input comment, id copied verbatim
- Field values in lowercase English even when the comment is Portuguese`

const actionSpec = `Respond with a JSON array containing exactly one object per comment:

[
  {
    "id": "<comment id>",
    "suggested_action": "<one short sentence>",
    "confidence": 0.0
  }
]

Field constraints:
- id: The comment id exactly as given in the input block.
- suggested_action: One short imperative sentence, or "no action
  required".
- confidence: Your certainty in this recommendation from 0.0 to 1.0.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing, no prose before
  or after the array
- One object per input comment, id copied verbatim`

var specs = map[Stage]string{
	StageClassify: classifySpec,
	StageAction:   actionSpec,
}

// Spec returns the hardcoded output specification for a pipeline
// stage. Specifications define the expected response format and
// behavioral constraints. Returns ErrInvalidStage if the stage is not
// recognized.
func Spec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
