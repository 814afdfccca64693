package tribunal

import (
	"errors"
	"testing"
)

func TestParseVerdictFenced(t *testing.T) {
	v, err := ParseVerdict("```json\n{\"verdict\":\"HIGH RISK\",\"confidence\":87,\"reasoning\":\"strong match\"}\n```")
	if err != nil {
		t.Fatalf("ParseVerdict: %v", err)
	}
	if v.Label != HighRisk || v.Confidence != 87 || v.Reasoning != "strong match" {
		t.Fatalf("unexpected verdict %+v", v)
	}
}

func TestParseVerdictBareLowercaseLabel(t *testing.T) {
	v, err := ParseVerdict(`{"verdict":"low risk","confidence":0,"reasoning":"different entity"}`)
	if err != nil {
		t.Fatalf("ParseVerdict: %v", err)
	}
	if v.Label != LowRisk {
		t.Fatalf("label %q", v.Label)
	}
}

func TestParseVerdictRejects(t *testing.T) {
	for name, raw := range map[string]string{
		"prose":              "I cannot comply",
		"empty":              "   ",
		"unknown label":      `{"verdict":"MEDIUM","confidence":50,"reasoning":"x"}`,
		"confidence high":    `{"verdict":"HIGH RISK","confidence":101,"reasoning":"x"}`,
		"confidence low":     `{"verdict":"HIGH RISK","confidence":-1,"reasoning":"x"}`,
		"fractional":         `{"verdict":"HIGH RISK","confidence":87.5,"reasoning":"x"}`,
		"missing reasoning":  `{"verdict":"HIGH RISK","confidence":87}`,
		"blank reasoning":    `{"verdict":"HIGH RISK","confidence":87,"reasoning":"  "}`,
		"unknown field":      `{"verdict":"HIGH RISK","confidence":87,"reasoning":"x","extra":1}`,
		"trailing object":    `{"verdict":"HIGH RISK","confidence":87,"reasoning":"x"} {}`,
		"string confidence":  `{"verdict":"HIGH RISK","confidence":"87","reasoning":"x"}`,
		"short label schema": `{"verdict":"HIGH","reasoning":"x"}`,
	} {
		if _, err := ParseVerdict(raw); !errors.Is(err, ErrJudicial) {
			t.Fatalf("%s: expected ErrJudicial, got %v", name, err)
		}
	}
}
