package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rojanmagar2001/sitemap404/internal/domain"
	"github.com/rojanmagar2001/sitemap404/internal/ledger"
	"github.com/rojanmagar2001/sitemap404/internal/logger"
	"github.com/rojanmagar2001/sitemap404/internal/ports"
)

// Orchestrator runs the resolve -> scan -> merge -> notify pipeline.
type Orchestrator struct {
	resolver ports.SitemapResolver
	scanner  *Scanner
	store    ports.LedgerStore
	notifier ports.Notifier
	log      logger.Logger

	sitemapURL  string
	scopePrefix string
	onlyNew     bool
	newRunID    func() string
}

// NewOrchestrator wires the pipeline. With onlyNew the notification lists
// only the links this run inserted into the ledger; otherwise it lists every
// dead link the run detected.
func NewOrchestrator(
	resolver ports.SitemapResolver,
	scanner *Scanner,
	store ports.LedgerStore,
	notifier ports.Notifier,
	log logger.Logger,
	sitemapURL, scopePrefix string,
	onlyNew bool,
	newRunID func() string,
) *Orchestrator {
	return &Orchestrator{
		resolver:    resolver,
		scanner:     scanner,
		store:       store,
		notifier:    notifier,
		log:         log,
		sitemapURL:  sitemapURL,
		scopePrefix: scopePrefix,
		onlyNew:     onlyNew,
		newRunID:    newRunID,
	}
}

// Run executes one full check. Per-page and per-link failures never fail
// the run; only ledger I/O and cancellation are returned as errors.
func (o *Orchestrator) Run(ctx context.Context) (domain.Report, error) {
	start := time.Now()
	report := domain.Report{RunID: o.newRunID()}
	log := o.log.With(logger.String("run_id", report.RunID))

	log.Info("Starting 404 check", logger.String("sitemap", o.sitemapURL))

	all := o.resolver.Resolve(ctx, o.sitemapURL)
	report.PagesFound = len(all)
	if len(all) == 0 {
		log.Warn("No pages found in sitemap", logger.String("sitemap", o.sitemapURL))
	}

	pages := FilterScope(all, o.scopePrefix)
	report.PagesInScope = len(pages)
	log.Info("Pages resolved",
		logger.Int("found", report.PagesFound),
		logger.Int("in_scope", report.PagesInScope),
		logger.String("scope_prefix", o.scopePrefix))

	scan := o.scanner.Scan(ctx, pages)
	report.PagesChecked = scan.Checked
	report.Detected = scan.Dead
	report.CapReached = scan.CapReached

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("run cancelled: %w", err)
	}

	existing, err := o.store.Load(ctx)
	if err != nil {
		return report, fmt.Errorf("load ledger: %w", err)
	}

	merged, inserted := ledger.Merge(existing, scan.Dead)
	report.Inserted = inserted
	report.LedgerRecords = merged.Len()

	if err := o.store.Save(ctx, merged); err != nil {
		return report, fmt.Errorf("save ledger: %w", err)
	}

	log.Info("Ledger updated",
		logger.Int("detected", len(scan.Dead)),
		logger.Int("inserted", len(inserted)),
		logger.Int("records", merged.Len()))

	if err := o.notifier.Notify(ctx, FormatMessage(o.notified(report))); err != nil {
		log.Error("Notification not delivered", logger.Error(err))
	} else {
		report.Notified = true
	}

	report.Elapsed = time.Since(start)
	log.Info("404 check done",
		logger.Int("pages_checked", report.PagesChecked),
		logger.Bool("cap_reached", report.CapReached),
		logger.Duration("elapsed", report.Elapsed))

	return report, nil
}

// notified selects the links listed in the notification.
func (o *Orchestrator) notified(r domain.Report) []domain.DeadLink {
	if o.onlyNew {
		return r.Inserted
	}
	return r.Detected
}
