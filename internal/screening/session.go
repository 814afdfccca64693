// Package screening ties the sanctions database, matcher and tribunal into a
// session that screens single names and batches.
package screening

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/joelkehle/sanctionguard/internal/matcher"
	"github.com/joelkehle/sanctionguard/internal/platform/config"
	"github.com/joelkehle/sanctionguard/internal/platform/metrics"
	"github.com/joelkehle/sanctionguard/internal/platform/telemetry"
	"github.com/joelkehle/sanctionguard/internal/sanctions"
	"github.com/joelkehle/sanctionguard/internal/tribunal"
)

var ErrEmptyName = errors.New("entity name is required")

type Tribunal interface {
	Convene(ctx context.Context, c tribunal.Case, progress tribunal.StageProgressFn) (tribunal.Proceedings, error)
	QuickJudge(ctx context.Context, c tribunal.Case) (tribunal.Verdict, error)
}

type CaseStore interface {
	Save(ctx context.Context, rec CaseRecord) error
}

type Notifier interface {
	NotifyFlagged(ctx context.Context, rec CaseRecord) error
}

type Options struct {
	Threshold int
	Store     CaseStore
	Notifier  Notifier
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

// Session is the explicit screening context built once at startup. The
// database and matcher are read-only after construction.
type Session struct {
	db        sanctions.Database
	matcher   *matcher.Matcher
	tribunal  Tribunal
	threshold int
	degraded  bool
	store     CaseStore
	notifier  Notifier
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

func NewSession(db sanctions.Database, t Tribunal, opts Options) (*Session, error) {
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = config.DefaultThreshold
	}
	if threshold < config.MinThreshold || threshold > config.MaxThreshold {
		return nil, fmt.Errorf("threshold %d out of range [%d,%d]", threshold, config.MinThreshold, config.MaxThreshold)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		db:        db,
		matcher:   matcher.New(db.Entities),
		tribunal:  t,
		threshold: threshold,
		degraded:  len(db.Entities) == 0,
		store:     opts.Store,
		notifier:  opts.Notifier,
		metrics:   opts.Metrics,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}, nil
}

// Open loads the database at path and builds a session. A missing or
// unreadable database leaves the session in degraded mode with no entities.
func Open(path string, t Tribunal, opts Options) (*Session, error) {
	db, degraded, err := sanctions.LoadOrEmpty(path)
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	switch {
	case err != nil:
		logger.Warn("sanctions database unreadable, running degraded", zap.String("path", path), zap.Error(err))
	case degraded:
		logger.Warn("sanctions database missing or empty, running degraded", zap.String("path", path))
	default:
		logger.Info("sanctions database loaded",
			zap.String("path", path),
			zap.Int("entities", len(db.Entities)),
			zap.String("last_updated", db.LastUpdated))
	}
	return NewSession(db, t, opts)
}

func (s *Session) Stats() Stats {
	return Stats{
		Entities:    len(s.db.Entities),
		Degraded:    s.degraded,
		LastUpdated: s.db.LastUpdated,
		Threshold:   s.threshold,
	}
}

func (s *Session) Threshold() int { return s.threshold }

// Screen matches one name and, on a match at or above the threshold,
// convenes the full tribunal. Tribunal failures produce an ERROR record, not
// an error; only an empty name or a cancelled context return an error.
func (s *Session) Screen(ctx context.Context, in Input, progress tribunal.StageProgressFn) (rec CaseRecord, err error) {
	in = normalizeInput(in)
	if in.Name == "" {
		return CaseRecord{}, ErrEmptyName
	}
	ctx, span := telemetry.Start(ctx, "screening.screen", attribute.String("query", in.Name))
	defer func() { telemetry.End(span, err) }()

	rec = CaseRecord{
		ID:        s.newID(),
		CreatedAt: s.now().UTC(),
		Query:     in.Name,
		Country:   in.Country,
		Threshold: s.threshold,
	}

	match, score := s.matcher.Best(in.Name)
	rec.Score = score
	if match == nil || score < float64(s.threshold) {
		rec.Status = StatusClear
		rec.Message = NoMatchReasoning
		s.metrics.ObserveScreening("single", string(rec.Status), score)
		return rec, nil
	}
	rec.Match = match

	p, terr := s.tribunal.Convene(ctx, tribunal.Case{
		Query:     in.Name,
		Country:   in.Country,
		MatchName: match.Name,
		Score:     score,
	}, progress)
	if cerr := ctx.Err(); cerr != nil {
		return CaseRecord{}, cerr
	}
	if terr != nil {
		rec.Status = StatusError
		rec.Message = errorMessage(terr)
		s.logger.Warn("tribunal failed", zap.String("case_id", rec.ID), zap.String("query", in.Name), zap.Error(terr))
	} else {
		rec.Status = StatusFlagged
		rec.Prosecution = p.Prosecution
		rec.Defense = p.Defense
		v := p.Verdict
		rec.Verdict = &v
	}
	s.metrics.ObserveScreening("single", string(rec.Status), score)
	s.persist(ctx, rec)
	return rec, nil
}

func (s *Session) persist(ctx context.Context, rec CaseRecord) {
	if s.store != nil {
		if err := s.store.Save(ctx, rec); err != nil {
			s.logger.Error("save case", zap.String("case_id", rec.ID), zap.Error(err))
		}
	}
	if s.notifier != nil && rec.HighRisk() {
		if err := s.notifier.NotifyFlagged(ctx, rec); err != nil {
			s.logger.Error("notify flagged case", zap.String("case_id", rec.ID), zap.Error(err))
		}
	}
}

// Batch screens rows one after another using the quick judge for matches.
// A failing row becomes an ERROR row and the batch continues. On context
// cancellation the rows finished so far are returned with the error; the row
// in flight when the context ends is dropped.
func (s *Session) Batch(ctx context.Context, rows []Input, progress BatchProgressFn) (out []BatchRow, err error) {
	ctx, span := telemetry.Start(ctx, "screening.batch", attribute.Int("rows", len(rows)))
	defer func() { telemetry.End(span, err) }()

	out = make([]BatchRow, 0, len(rows))
	for i, in := range rows {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		row := s.screenRow(ctx, normalizeInput(in))
		if err := ctx.Err(); err != nil {
			return out, err
		}
		out = append(out, row)
		if progress != nil {
			progress(i+1, len(rows), row.EntityName)
		}
	}
	s.logger.Info("batch complete", zap.Int("rows", len(out)))
	return out, nil
}

func (s *Session) screenRow(ctx context.Context, in Input) BatchRow {
	row := BatchRow{
		EntityName: in.Name,
		Country:    in.Country,
		Status:     StatusClear,
		Verdict:    NoVerdict,
		Reasoning:  NoMatchReasoning,
	}
	if in.Name == "" {
		row.Status = StatusError
		row.Reasoning = ErrEmptyName.Error()
		s.metrics.ObserveScreening("batch", string(row.Status), 0)
		return row
	}

	match, score := s.matcher.Best(in.Name)
	if match == nil || score < float64(s.threshold) {
		s.metrics.ObserveScreening("batch", string(row.Status), score)
		return row
	}
	row.MatchScore = int(score)

	v, err := s.tribunal.QuickJudge(ctx, tribunal.Case{
		Query:     in.Name,
		Country:   in.Country,
		MatchName: match.Name,
		Score:     score,
	})
	if err != nil {
		row.Status = StatusError
		row.Reasoning = errorMessage(err)
		s.logger.Warn("batch row failed", zap.String("name", in.Name), zap.Error(err))
	} else {
		row.Status = StatusFlagged
		row.Verdict = string(v.Label)
		row.Reasoning = v.Reasoning
	}
	s.metrics.ObserveScreening("batch", string(row.Status), score)
	return row
}

func normalizeInput(in Input) Input {
	in.Name = strings.TrimSpace(in.Name)
	in.Country = strings.TrimSpace(in.Country)
	if in.Country == "" {
		in.Country = sanctions.DefaultCountry
	}
	return in
}

func errorMessage(err error) string {
	if errors.Is(err, tribunal.ErrJudicial) {
		return JudicialErrorMessage
	}
	return "Tribunal Error: " + err.Error()
}
