package pipeline

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Trigger lexicons carried over from the source dataset's language.
// Matching happens on lowercased, accent-folded text so "justiça" and
// "justica" both hit.
var (
	highUrgencyTriggers = []string{
		"atraso", "atrasou", "nao recebi", "nao chegou", "extraviado",
		"quebrado", "defeito", "procon", "justica", "advogado",
		"nunca mais", "indignado", "vergonha", "absurdo", "lixo",
		"golpe", "roubo", "never arrived", "broken", "lawsuit",
	}

	empathyTriggers = []string{
		"triste", "decepcionado", "chateado", "disappointed",
	}

	positiveTriggers = []string{
		"parabens", "excelente", "perfeito", "amei", "recomendo",
		"otimo", "maravilhoso", "excellent", "perfect",
	}
)

// Adjustment labels recorded on the verdict when a rule fires.
const (
	adjustScorePolarity   = "score-polarity"
	adjustNeutralByScore  = "neutral-resolved-by-score"
	adjustUrgencyFloor    = "urgency-floor"
	adjustTriggerUrgency  = "trigger-urgency"
	adjustPositiveLexicon = "positive-lexicon"
)

// Adjust enforces score ground truth and trigger-lexicon rules on a
// parsed verdict. The review score outranks the model: a critical score
// forces negative sentiment, a maximum score forces positive, and a
// neutral verdict resolves by score. Negative verdicts never keep low
// urgency, and high-urgency trigger terms escalate with a concrete
// suggested action. Adjust never produces a value outside the enum
// sets, so coercion safety is preserved.
func Adjust(v Verdict, c Comment) Verdict {
	text := foldText(c.Text)

	if c.Score != nil {
		v = adjustByScore(v, *c.Score)
	}

	if v.Sentiment == SentimentNegative {
		if v.Urgency == UrgencyLow {
			v.Urgency = UrgencyMedium
			v.Adjustments = append(v.Adjustments, adjustUrgencyFloor)
		}
		if containsAny(text, highUrgencyTriggers) {
			v.Urgency = UrgencyHigh
			if containsAny(text, empathyTriggers) {
				v.SuggestedAction = "Acknowledge and resolve"
			} else {
				v.SuggestedAction = "Immediate resolution or refund"
			}
			v.Adjustments = append(v.Adjustments, adjustTriggerUrgency)
		}
	}

	if containsAny(text, positiveTriggers) && c.Score != nil && *c.Score >= 4 {
		v.Sentiment = SentimentPositive
		if v.Category == CategoryUnresolved {
			v.Category = CategoryOther
		}
		v.SuggestedAction = "Thank and retain"
		v.Adjustments = append(v.Adjustments, adjustPositiveLexicon)
	}

	return v
}

func adjustByScore(v Verdict, score int) Verdict {
	if v.Sentiment == SentimentNeutral {
		switch {
		case score <= 3:
			v.Sentiment = SentimentNegative
			if v.Category == CategoryUnresolved || v.Category == CategoryOther {
				v.Category = CategoryQuality
			}
			v.Adjustments = append(v.Adjustments, adjustNeutralByScore)
		case score >= 4:
			v.Sentiment = SentimentPositive
			v.Adjustments = append(v.Adjustments, adjustNeutralByScore)
		}
	}

	if score <= 2 && v.Sentiment != SentimentNegative {
		v.Sentiment = SentimentNegative
		v.Adjustments = append(v.Adjustments, adjustScorePolarity)
	} else if score == 5 && v.Sentiment != SentimentPositive {
		v.Sentiment = SentimentPositive
		v.Adjustments = append(v.Adjustments, adjustScorePolarity)
	}

	return v
}

var accentFolder = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// foldText lowercases and strips combining marks for lexicon matching.
func foldText(text string) string {
	folded, _, err := transform.String(accentFolder, strings.ToLower(text))
	if err != nil {
		return strings.ToLower(text)
	}
	return folded
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
