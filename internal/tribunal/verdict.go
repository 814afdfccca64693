package tribunal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrJudicial means the judge's output could not be read as a verdict.
var ErrJudicial = errors.New("judicial error: could not reach a verdict")

type Label string

const (
	HighRisk Label = "HIGH RISK"
	LowRisk  Label = "LOW RISK"
)

func (l Label) Valid() bool {
	return l == HighRisk || l == LowRisk
}

type Verdict struct {
	Label      Label  `json:"verdict"`
	Confidence int    `json:"confidence"`
	Reasoning  string `json:"reasoning"`
}

type wireVerdict struct {
	Verdict    *string `json:"verdict"`
	Confidence *int    `json:"confidence"`
	Reasoning  *string `json:"reasoning"`
}

// ParseVerdict decodes a judge response, with or without markdown fences,
// into a Verdict. Every failure wraps ErrJudicial.
func ParseVerdict(raw string) (Verdict, error) {
	clean := stripCodeFences(raw)
	if clean == "" {
		return Verdict{}, fmt.Errorf("%w: empty response", ErrJudicial)
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(clean)))
	dec.DisallowUnknownFields()
	var w wireVerdict
	if err := dec.Decode(&w); err != nil {
		return Verdict{}, fmt.Errorf("%w: %v", ErrJudicial, err)
	}
	if dec.More() {
		return Verdict{}, fmt.Errorf("%w: trailing data after verdict", ErrJudicial)
	}
	if w.Verdict == nil || w.Confidence == nil || w.Reasoning == nil {
		return Verdict{}, fmt.Errorf("%w: verdict, confidence and reasoning are required", ErrJudicial)
	}
	v := Verdict{
		Label:      Label(strings.ToUpper(strings.TrimSpace(*w.Verdict))),
		Confidence: *w.Confidence,
		Reasoning:  strings.TrimSpace(*w.Reasoning),
	}
	if err := v.Validate(); err != nil {
		return Verdict{}, fmt.Errorf("%w: %v", ErrJudicial, err)
	}
	return v, nil
}

func (v Verdict) Validate() error {
	if !v.Label.Valid() {
		return fmt.Errorf("verdict %q not in {%s, %s}", v.Label, HighRisk, LowRisk)
	}
	if v.Confidence < 0 || v.Confidence > 100 {
		return fmt.Errorf("confidence %d out of range [0,100]", v.Confidence)
	}
	if v.Reasoning == "" {
		return errors.New("reasoning is empty")
	}
	return nil
}
