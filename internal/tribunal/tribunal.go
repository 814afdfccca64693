// Package tribunal runs the prosecutor, defense and judge model calls that
// turn a fuzzy match into an explained risk verdict.
package tribunal

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/joelkehle/sanctionguard/internal/platform/config"
	"github.com/joelkehle/sanctionguard/internal/platform/metrics"
	"github.com/joelkehle/sanctionguard/internal/platform/telemetry"
)

const (
	StageProsecution = "prosecution"
	StageDefense     = "defense"
	StageJudge       = "judge"
)

type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

type StageProgressFn func(stage, message string)

// Case is what the tribunal deliberates on.
type Case struct {
	Query     string
	Country   string
	MatchName string
	Score     float64
}

// ScorePercent is the score truncated to a whole percent, as quoted in prompts.
func (c Case) ScorePercent() int { return int(c.Score) }

type Proceedings struct {
	Prosecution string  `json:"prosecution"`
	Defense     string  `json:"defense"`
	Verdict     Verdict `json:"verdict"`
}

type Tribunal struct {
	callers Callers
	models  config.ModelsConfig
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func New(callers Callers, models config.ModelsConfig, logger *zap.Logger, m *metrics.Metrics) *Tribunal {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tribunal{callers: callers, models: models, logger: logger, metrics: m}
}

// Models returns the model selection in effect, after any fallback.
func (t *Tribunal) Models() config.ModelsConfig { return t.models }

// SelectModels probes the preferred defense and judge models with a one-token
// call and switches to the configured fallback on any failure. Roles without
// a fallback are left alone.
func (t *Tribunal) SelectModels(ctx context.Context) {
	t.models.Defense = t.selectModel(ctx, StageDefense, t.models.Defense)
	t.models.Judge = t.selectModel(ctx, StageJudge, t.models.Judge)
}

func (t *Tribunal) selectModel(ctx context.Context, role string, m config.ModelConfig) config.ModelConfig {
	if strings.TrimSpace(m.FallbackModel) == "" {
		return m
	}
	caller, err := t.callers.get(m.Provider)
	if err == nil {
		_, err = caller.Generate(ctx, Request{Model: m.Model, Prompt: probePrompt, MaxTokens: 1})
	}
	if err != nil {
		t.logger.Warn("preferred model unavailable, using fallback",
			zap.String("role", role),
			zap.String("preferred", m.Model),
			zap.String("fallback", m.FallbackModel),
			zap.Error(err))
		m.Model = m.FallbackModel
		return m
	}
	t.logger.Info("model verified", zap.String("role", role), zap.String("model", m.Model))
	return m
}

// Convene runs prosecution, defense and judge in sequence. A judge response
// that cannot be parsed yields a StageError wrapping ErrJudicial; nothing is
// retried.
func (t *Tribunal) Convene(ctx context.Context, c Case, progress StageProgressFn) (p Proceedings, err error) {
	ctx, span := telemetry.Start(ctx, "tribunal.convene",
		attribute.String("match", c.MatchName),
		attribute.Float64("score", c.Score))
	defer func() { telemetry.End(span, err) }()

	emit(progress, StageProsecution, "Prosecution is presenting its case...")
	p.Prosecution, err = t.call(ctx, StageProsecution, t.models.Prosecutor, prosecutorPrompt(c), false)
	if err != nil {
		return Proceedings{}, err
	}

	emit(progress, StageDefense, "Defense is responding...")
	p.Defense, err = t.call(ctx, StageDefense, t.models.Defense, defensePrompt(c, p.Prosecution), false)
	if err != nil {
		return Proceedings{}, err
	}

	emit(progress, StageJudge, "The judge is deliberating...")
	p.Verdict, err = t.judge(ctx, judgePrompt(c, p.Prosecution, p.Defense))
	if err != nil {
		return Proceedings{}, err
	}
	return p, nil
}

// QuickJudge asks the judge alone for a verdict. Batch screening uses it.
func (t *Tribunal) QuickJudge(ctx context.Context, c Case) (v Verdict, err error) {
	ctx, span := telemetry.Start(ctx, "tribunal.quick_judge", attribute.String("match", c.MatchName))
	defer func() { telemetry.End(span, err) }()
	return t.judge(ctx, quickJudgePrompt(c))
}

func (t *Tribunal) judge(ctx context.Context, prompt string) (Verdict, error) {
	raw, err := t.call(ctx, StageJudge, t.models.Judge, prompt, true)
	if err != nil {
		return Verdict{}, err
	}
	v, err := ParseVerdict(raw)
	if err != nil {
		t.metrics.ObserveTribunalError(StageJudge)
		t.logger.Warn("judge response rejected", zap.Error(err), zap.String("raw", truncate(raw, 300)))
		return Verdict{}, &StageError{Stage: StageJudge, Err: err}
	}
	return v, nil
}

func (t *Tribunal) call(ctx context.Context, stage string, m config.ModelConfig, prompt string, jsonOut bool) (string, error) {
	caller, err := t.callers.get(m.Provider)
	if err != nil {
		t.metrics.ObserveTribunalError(stage)
		return "", &StageError{Stage: stage, Err: err}
	}
	out, err := caller.Generate(ctx, Request{Model: m.Model, Prompt: prompt, JSON: jsonOut})
	if err != nil {
		t.metrics.ObserveTribunalError(stage)
		return "", &StageError{Stage: stage, Err: fmt.Errorf("%s/%s: %w", m.Provider, m.Model, err)}
	}
	return strings.TrimSpace(out), nil
}

func emit(progress StageProgressFn, stage, message string) {
	if progress != nil {
		progress(stage, message)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
