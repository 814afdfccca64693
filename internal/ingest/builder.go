// Package ingest builds the consolidated sanctions database from the OFAC SDN
// XML feed: fetch, strip namespaces, extract entities, persist.
package ingest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/joelkehle/sanctionguard/internal/platform/telemetry"
	"github.com/joelkehle/sanctionguard/internal/sanctions"
)

type Builder struct {
	fetcher *Fetcher
	logger  *zap.Logger
	now     func() time.Time
}

func NewBuilder(fetcher *Fetcher, logger *zap.Logger) *Builder {
	return &Builder{fetcher: fetcher, logger: logger, now: time.Now}
}

// Build downloads the feed and returns the consolidated document. The
// downloaded temp file is always removed.
func (b *Builder) Build(ctx context.Context, feedURL string) (db sanctions.Database, err error) {
	ctx, span := telemetry.Start(ctx, "ingest.build", attribute.String("feed.url", feedURL))
	defer func() { telemetry.End(span, err) }()

	path, err := b.fetcher.Download(ctx, feedURL)
	if err != nil {
		return sanctions.Database{}, err
	}
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			b.logger.Warn("remove temp feed", zap.String("path", path), zap.Error(rmErr))
		}
	}()
	return b.BuildFromFile(ctx, path)
}

// BuildFromFile parses an already downloaded feed document.
func (b *Builder) BuildFromFile(ctx context.Context, path string) (sanctions.Database, error) {
	_, span := telemetry.Start(ctx, "ingest.extract")
	doc, err := ParseFeed(path)
	if err != nil {
		telemetry.End(span, err)
		return sanctions.Database{}, err
	}

	risk := sanctions.HighRiskCountries()
	entries := doc.FindElements("//sdnEntry")
	entities := make([]sanctions.Entity, 0, len(entries))
	flagged := 0
	for _, entry := range entries {
		e := extractEntity(entry, risk)
		if strings.Contains(e.Remarks, "[RISK WARNING:") {
			flagged++
		}
		entities = append(entities, e)
	}
	span.SetAttributes(attribute.Int("entities", len(entities)))
	telemetry.End(span, nil)

	b.logger.Info("feed extracted", zap.Int("entities", len(entities)), zap.Int("risk_tagged", flagged))
	return sanctions.NewDatabase(entities, b.now()), nil
}

// BuildToFile builds from feedURL and writes the document to outPath. Nothing
// is written when the build fails.
func (b *Builder) BuildToFile(ctx context.Context, feedURL, outPath string) (sanctions.Database, error) {
	db, err := b.Build(ctx, feedURL)
	if err != nil {
		return sanctions.Database{}, err
	}
	if err := sanctions.Save(outPath, db); err != nil {
		return sanctions.Database{}, fmt.Errorf("save %s: %w", outPath, err)
	}
	b.logger.Info("database written", zap.String("path", outPath), zap.Int("entities", len(db.Entities)))
	return db, nil
}
