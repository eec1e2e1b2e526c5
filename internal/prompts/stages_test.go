package prompts_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ziggway/insight/internal/prompts"
)

func TestParseStage(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  prompts.Stage
		ok    bool
	}{
		{"classify", "classify", prompts.StageClassify, true},
		{"action", "action", prompts.StageAction, true},
		{"unknown", "review", "", false},
		{"empty", "", "", false},
		{"wrong case", "Classify", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := prompts.ParseStage(tt.input)
			if tt.ok && err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if !tt.ok && !errors.Is(err, prompts.ErrInvalidStage) {
				t.Fatalf("got %v, want ErrInvalidStage", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStageUnmarshalJSON(t *testing.T) {
	var s prompts.Stage
	if err := json.Unmarshal([]byte(`"classify"`), &s); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if s != prompts.StageClassify {
		t.Errorf("got %q, want classify", s)
	}

	if err := json.Unmarshal([]byte(`"nonsense"`), &s); !errors.Is(err, prompts.ErrInvalidStage) {
		t.Errorf("got %v, want ErrInvalidStage", err)
	}
}

func TestStages(t *testing.T) {
	got := prompts.Stages()
	if len(got) != 2 {
		t.Fatalf("got %d stages, want 2", len(got))
	}
	if got[0] != prompts.StageClassify || got[1] != prompts.StageAction {
		t.Errorf("got %v", got)
	}
}

func TestInstructions(t *testing.T) {
	for _, stage := range prompts.Stages() {
		t.Run(string(stage), func(t *testing.T) {
			text, err := prompts.Instructions(stage)
			if err != nil {
				t.Fatalf("instructions failed: %v", err)
			}
			if text == "" {
				t.Errorf("empty instructions for %s", stage)
			}
		})
	}

	if _, err := prompts.Instructions("bogus"); !errors.Is(err, prompts.ErrInvalidStage) {
		t.Errorf("got %v, want ErrInvalidStage", err)
	}
}

func TestSpec(t *testing.T) {
	for _, stage := range prompts.Stages() {
		t.Run(string(stage), func(t *testing.T) {
			text, err := prompts.Spec(stage)
			if err != nil {
				t.Fatalf("spec failed: %v", err)
			}
			if !strings.Contains(text, "JSON array") {
				t.Errorf("spec for %s does not describe the response format", stage)
			}
			if !strings.Contains(text, "suggested_action") {
				t.Errorf("spec for %s does not name the action field", stage)
			}
		})
	}

	if _, err := prompts.Spec("bogus"); !errors.Is(err, prompts.ErrInvalidStage) {
		t.Errorf("got %v, want ErrInvalidStage", err)
	}
}
