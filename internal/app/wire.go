package app

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/rojanmagar2001/sitemap404/internal/config"
	"github.com/rojanmagar2001/sitemap404/internal/domain"
	"github.com/rojanmagar2001/sitemap404/internal/infra/extractor"
	"github.com/rojanmagar2001/sitemap404/internal/infra/httpclient"
	"github.com/rojanmagar2001/sitemap404/internal/infra/limiter"
	"github.com/rojanmagar2001/sitemap404/internal/infra/store"
	"github.com/rojanmagar2001/sitemap404/internal/infra/teams"
	"github.com/rojanmagar2001/sitemap404/internal/logger"
	"github.com/rojanmagar2001/sitemap404/internal/ports"
	"github.com/rojanmagar2001/sitemap404/internal/sitemap"
	"github.com/rojanmagar2001/sitemap404/internal/usecase"
)

type Options struct {
	// DryRun reads the ledger but never writes it, and prints the
	// notification to Stdout instead of posting it.
	DryRun bool
	Stdout io.Writer
}

// App is a fully wired check pipeline.
type App struct {
	Orchestrator *usecase.Orchestrator
	Store        ports.LedgerStore
}

// New builds the pipeline described by cfg.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts Options) (*App, error) {
	ua := cfg.HTTP.UserAgent
	lim := limiter.New(cfg.HTTP.PerHostRate)

	checkClient := httpclient.New(cfg.HTTP.Timeout, cfg.HTTP.FollowRedirects)
	pageClient := httpclient.New(cfg.HTTP.Timeout, true)
	sitemapClient := httpclient.New(cfg.HTTP.SitemapTimeout, true)

	resolver := sitemap.NewResolver(sitemapClient, lim, log, ua, cfg.HTTP.SitemapTimeout, cfg.Sitemap.MaxDepth)

	links := usecase.NewLinkChecker(checkClient, cfg.HTTP.Timeout, cfg.HTTP.HeadFirst, ua, lim)
	pages := usecase.NewPageChecker(links, pageClient, extractor.New(), lim, log, ua, cfg.HTTP.Timeout, usecase.PageOptions{
		SelfCheck:    cfg.Check.Self,
		LinkScan:     cfg.Check.Links,
		InternalOnly: cfg.Check.InternalOnly,
		SiteHost:     usecase.HostKey(cfg.SiteURL()),
	})
	scanner := usecase.NewScanner(pages, log, cfg.Check.MaxDead)

	var (
		st       ports.LedgerStore = NewLedgerStore(cfg)
		notifier ports.Notifier
	)
	if opts.DryRun {
		existing, err := st.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load ledger: %w", err)
		}
		st = store.NewMemory(existing.Records()...)
		out := opts.Stdout
		if out == nil {
			out = io.Discard
		}
		notifier = writerNotifier{w: out}
	} else {
		notifyClient := httpclient.New(cfg.Notify.Timeout, true)
		notifier = teams.New(cfg.Notify.WebhookURL, notifyClient, log, cfg.Notify.Retries, cfg.Notify.Timeout)
	}

	orch := usecase.NewOrchestrator(
		resolver,
		scanner,
		st,
		notifier,
		log,
		cfg.Site.SitemapURL,
		cfg.Check.ScopePrefix,
		cfg.Notify.OnlyNew,
		uuid.NewString,
	)
	return &App{Orchestrator: orch, Store: st}, nil
}

// NewLedgerStore returns the file store at cfg.Ledger.Path.
func NewLedgerStore(cfg *config.Config) *store.File {
	return store.NewFile(cfg.Ledger.Path)
}

// Run builds the pipeline and executes one check.
func Run(ctx context.Context, cfg *config.Config, log logger.Logger, opts Options) (domain.Report, error) {
	a, err := New(ctx, cfg, log, opts)
	if err != nil {
		return domain.Report{}, err
	}
	return a.Orchestrator.Run(ctx)
}

// writerNotifier prints notifications instead of delivering them.
type writerNotifier struct {
	w io.Writer
}

func (n writerNotifier) Notify(_ context.Context, text string) error {
	_, err := fmt.Fprintln(n.w, text)
	return err
}
