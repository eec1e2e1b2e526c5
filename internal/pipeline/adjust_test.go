package pipeline_test

import (
	"slices"
	"testing"

	"github.com/ziggway/insight/internal/pipeline"
)

func verdict(s pipeline.Sentiment, u pipeline.Urgency, c pipeline.Category) pipeline.Verdict {
	return pipeline.Verdict{CommentID: "r-1", Sentiment: s, Urgency: u, Category: c}
}

func scored(text string, score int) pipeline.Comment {
	return pipeline.Comment{ID: "r-1", Text: text, Score: &score}
}

func TestAdjustScorePolarity(t *testing.T) {
	tests := []struct {
		name      string
		verdict   pipeline.Verdict
		comment   pipeline.Comment
		sentiment pipeline.Sentiment
	}{
		{
			"low score forces negative",
			verdict(pipeline.SentimentPositive, pipeline.UrgencyMedium, pipeline.CategoryQuality),
			scored("nota baixa", 1),
			pipeline.SentimentNegative,
		},
		{
			"max score forces positive",
			verdict(pipeline.SentimentNegative, pipeline.UrgencyMedium, pipeline.CategoryQuality),
			scored("nota maxima", 5),
			pipeline.SentimentPositive,
		},
		{
			"mid score keeps model sentiment",
			verdict(pipeline.SentimentNegative, pipeline.UrgencyMedium, pipeline.CategoryQuality),
			scored("nota tres", 3),
			pipeline.SentimentNegative,
		},
		{
			"no score keeps model sentiment",
			verdict(pipeline.SentimentPositive, pipeline.UrgencyLow, pipeline.CategoryOther),
			pipeline.Comment{ID: "r-1", Text: "sem nota"},
			pipeline.SentimentPositive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pipeline.Adjust(tt.verdict, tt.comment)
			if got.Sentiment != tt.sentiment {
				t.Errorf("got sentiment %q, want %q", got.Sentiment, tt.sentiment)
			}
		})
	}
}

func TestAdjustNeutralResolvedByScore(t *testing.T) {
	low := pipeline.Adjust(
		verdict(pipeline.SentimentNeutral, pipeline.UrgencyLow, pipeline.CategoryOther),
		scored("mais ou menos", 2),
	)
	if low.Sentiment != pipeline.SentimentNegative {
		t.Errorf("got sentiment %q, want negative for score 2", low.Sentiment)
	}

	high := pipeline.Adjust(
		verdict(pipeline.SentimentNeutral, pipeline.UrgencyLow, pipeline.CategoryOther),
		scored("mais ou menos", 4),
	)
	if high.Sentiment != pipeline.SentimentPositive {
		t.Errorf("got sentiment %q, want positive for score 4", high.Sentiment)
	}
}

func TestAdjustUrgencyFloor(t *testing.T) {
	got := pipeline.Adjust(
		verdict(pipeline.SentimentNegative, pipeline.UrgencyLow, pipeline.CategoryQuality),
		pipeline.Comment{ID: "r-1", Text: "nao gostei do produto"},
	)

	if got.Urgency != pipeline.UrgencyMedium {
		t.Errorf("got urgency %q, want medium", got.Urgency)
	}
	if !slices.Contains(got.Adjustments, "urgency-floor") {
		t.Errorf("urgency-floor adjustment not recorded: %v", got.Adjustments)
	}
}

func TestAdjustTriggerEscalation(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		action string
	}{
		{"accented trigger", "vou acionar a justiça", "Immediate resolution or refund"},
		{"unaccented trigger", "vou acionar a justica", "Immediate resolution or refund"},
		{"empathy trigger", "produto quebrado, estou muito triste", "Acknowledge and resolve"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pipeline.Adjust(
				verdict(pipeline.SentimentNegative, pipeline.UrgencyMedium, pipeline.CategoryQuality),
				pipeline.Comment{ID: "r-1", Text: tt.text},
			)
			if got.Urgency != pipeline.UrgencyHigh {
				t.Errorf("got urgency %q, want high", got.Urgency)
			}
			if got.SuggestedAction != tt.action {
				t.Errorf("got action %q, want %q", got.SuggestedAction, tt.action)
			}
		})
	}
}

func TestAdjustPositiveLexicon(t *testing.T) {
	got := pipeline.Adjust(
		verdict(pipeline.SentimentUnresolved, pipeline.UrgencyLow, pipeline.CategoryUnresolved),
		scored("produto excelente, recomendo", 5),
	)

	if got.Sentiment != pipeline.SentimentPositive {
		t.Errorf("got sentiment %q, want positive", got.Sentiment)
	}
	if got.Category == pipeline.CategoryUnresolved {
		t.Error("category left unresolved despite positive lexicon match")
	}
}

func TestAdjustNeverLeavesEnumSets(t *testing.T) {
	sentiments := []pipeline.Sentiment{
		pipeline.SentimentPositive, pipeline.SentimentNeutral,
		pipeline.SentimentNegative, pipeline.SentimentUnresolved,
	}
	scores := []int{1, 2, 3, 4, 5}

	for _, s := range sentiments {
		for _, sc := range scores {
			got := pipeline.Adjust(
				verdict(s, pipeline.UrgencyLow, pipeline.CategoryOther),
				scored("atrasou e veio quebrado, absurdo", sc),
			)
			switch got.Sentiment {
			case pipeline.SentimentPositive, pipeline.SentimentNeutral,
				pipeline.SentimentNegative, pipeline.SentimentUnresolved:
			default:
				t.Errorf("sentiment %q outside enum set", got.Sentiment)
			}
			switch got.Urgency {
			case pipeline.UrgencyLow, pipeline.UrgencyMedium,
				pipeline.UrgencyHigh, pipeline.UrgencyUnresolved:
			default:
				t.Errorf("urgency %q outside enum set", got.Urgency)
			}
		}
	}
}
