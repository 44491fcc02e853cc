package usecase

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rojanmagar2001/sitemap404/internal/domain"
	"github.com/rojanmagar2001/sitemap404/internal/infra/extractor"
	"github.com/rojanmagar2001/sitemap404/internal/infra/httpclient"
	"github.com/rojanmagar2001/sitemap404/internal/infra/limiter"
	"github.com/rojanmagar2001/sitemap404/internal/logger"
)

// requestLog records every request a test server receives.
type requestLog struct {
	mu   sync.Mutex
	seen []string
}

func (l *requestLog) wrap(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l.mu.Lock()
		l.seen = append(l.seen, r.Method+" "+r.URL.Path)
		l.mu.Unlock()
		h.ServeHTTP(w, r)
	})
}

func (l *requestLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.seen...)
}

func unusedAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()
	return addr
}

func newTestPageChecker(opts PageOptions) (*PageChecker, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.FromZap(zap.New(core))
	lim := limiter.New(0)
	links := NewLinkChecker(httpclient.New(2*time.Second, false), 2*time.Second, true, "sitemap404-test", lim)
	pc := NewPageChecker(
		links,
		httpclient.New(2*time.Second, true),
		extractor.New(),
		lim,
		log,
		"sitemap404-test",
		2*time.Second,
		opts,
	)
	return pc, logs
}

func TestCheckPage_SelfNotFoundStopsImmediately(t *testing.T) {
	var reqs requestLog
	mux := http.NewServeMux()
	mux.HandleFunc("/article/gone", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(reqs.wrap(mux))
	defer srv.Close()

	pc, _ := newTestPageChecker(PageOptions{SelfCheck: true, LinkScan: true})
	page := srv.URL + "/article/gone"

	got := pc.CheckPage(context.Background(), page)

	assert.Equal(t, []domain.DeadLink{{URL: page, Parent: domain.SelfParent}}, got)
	assert.Equal(t, []string{"HEAD /article/gone"}, reqs.all())
}

func TestCheckPage_ReportsOnlyDeadLink(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/article/1", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body>
			<a href="/ok">ok</a>
			<a href="dead">dead</a>
		</body></html>`))
	})
	mux.HandleFunc("/ok", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	pc, _ := newTestPageChecker(PageOptions{SelfCheck: true, LinkScan: true})
	page := srv.URL + "/article/1"

	got := pc.CheckPage(context.Background(), page)

	assert.Equal(t, []domain.DeadLink{{URL: srv.URL + "/article/dead", Parent: page}}, got)
}

func TestCheckPage_TransportErrorDoesNotAbortOrCount(t *testing.T) {
	unreachable := "http://" + unusedAddr(t) + "/x"

	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<a href="` + unreachable + `">down</a><a href="/missing">missing</a>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	pc, logs := newTestPageChecker(PageOptions{SelfCheck: true, LinkScan: true})
	page := srv.URL + "/page"

	got := pc.CheckPage(context.Background(), page)

	assert.Equal(t, []domain.DeadLink{{URL: srv.URL + "/missing", Parent: page}}, got)
	warns := logs.FilterMessage("Link check failed").All()
	require.Len(t, warns, 1)
	assert.Equal(t, unreachable, warns[0].ContextMap()["link"])
}

func TestCheckPage_SelfCheckTransportErrorSkipsPage(t *testing.T) {
	pc, logs := newTestPageChecker(PageOptions{SelfCheck: true, LinkScan: true})

	got := pc.CheckPage(context.Background(), "http://"+unusedAddr(t)+"/page")

	assert.Empty(t, got)
	assert.Equal(t, 1, logs.FilterMessage("Page check failed, skipping page").Len())
}

func TestCheckPage_InternalOnlySkipsExternalHosts(t *testing.T) {
	var external requestLog
	ext := httptest.NewServer(external.wrap(http.NotFoundHandler()))
	defer ext.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<a href="` + ext.URL + `/gone">ext</a><a href="/gone">int</a>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	pc, _ := newTestPageChecker(PageOptions{
		SelfCheck:    true,
		LinkScan:     true,
		InternalOnly: true,
		SiteHost:     HostKey(srv.URL),
	})
	page := srv.URL + "/page"

	got := pc.CheckPage(context.Background(), page)

	assert.Equal(t, []domain.DeadLink{{URL: srv.URL + "/gone", Parent: page}}, got)
	assert.Empty(t, external.all())
}

func TestCheckPage_AllLinksIncludesExternal(t *testing.T) {
	ext := httptest.NewServer(http.NotFoundHandler())
	defer ext.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<a href="` + ext.URL + `/gone">ext</a>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	pc, _ := newTestPageChecker(PageOptions{SelfCheck: true, LinkScan: true, SiteHost: HostKey(srv.URL)})
	got := pc.CheckPage(context.Background(), srv.URL+"/page")

	assert.Equal(t, []domain.DeadLink{{URL: ext.URL + "/gone", Parent: srv.URL + "/page"}}, got)
}

func TestCheckPage_Non200PageHasNoLinks(t *testing.T) {
	var reqs requestLog
	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<a href="/gone">x</a>`))
	})
	srv := httptest.NewServer(reqs.wrap(mux))
	defer srv.Close()

	pc, _ := newTestPageChecker(PageOptions{SelfCheck: true, LinkScan: true})
	got := pc.CheckPage(context.Background(), srv.URL+"/page")

	assert.Empty(t, got)
	assert.Equal(t, []string{"HEAD /page", "GET /page"}, reqs.all())
}

func TestCheckPage_LinkScanWithoutSelfCheck(t *testing.T) {
	var reqs requestLog
	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<a href="/gone">x</a>`))
	})
	srv := httptest.NewServer(reqs.wrap(mux))
	defer srv.Close()

	pc, _ := newTestPageChecker(PageOptions{LinkScan: true})
	got := pc.CheckPage(context.Background(), srv.URL+"/page")

	assert.Equal(t, []domain.DeadLink{{URL: srv.URL + "/gone", Parent: srv.URL + "/page"}}, got)
	assert.Equal(t, []string{"GET /page", "HEAD /gone"}, reqs.all())
}
