// Package prober verifies link liveness. Each link gets one GET request with
// browser-like headers; it is alive when the status is below 400 and the page
// shows none of its platform's dead-content markers.
package prober

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/btraven00/linksift/internal/logger"
	"github.com/btraven00/linksift/internal/platforms"
	_ "github.com/btraven00/linksift/internal/platforms/telegram"
	_ "github.com/btraven00/linksift/internal/platforms/whatsapp"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config controls probing behavior.
type Config struct {
	// Markers overrides the dead-content markers of the named platforms.
	Markers      map[string][]string `mapstructure:"markers"`
	UserAgent    string              `mapstructure:"user_agent"`
	Timeout      time.Duration       `mapstructure:"timeout"`
	Concurrency  int                 `mapstructure:"concurrency"`
	MaxBodyBytes int64               `mapstructure:"max_body_bytes"`
	MaxRedirects int                 `mapstructure:"max_redirects"`
	// RateLimit caps requests per second across all workers; 0 disables it.
	RateLimit float64 `mapstructure:"rate_limit"`
}

// DefaultConfig returns the default probe configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:      3 * time.Second,
		Concurrency:  20,
		UserAgent:    DefaultUserAgent,
		MaxBodyBytes: 256 << 10,
		MaxRedirects: 10,
	}
}

// Recorder observes probe activity.
type Recorder interface {
	ProbeStarted(platform string)
	ProbeFinished(platform string, alive bool, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ProbeStarted(string)                       {}
func (nopRecorder) ProbeFinished(string, bool, time.Duration) {}

// ProbeResult is the verdict for one link.
type ProbeResult struct {
	URL        string        `json:"url"`
	FinalURL   string        `json:"final_url,omitempty"`
	Platform   string        `json:"platform,omitempty"`
	Error      string        `json:"error,omitempty"`
	Marker     string        `json:"marker,omitempty"`
	StatusCode int           `json:"status_code,omitempty"`
	Duration   time.Duration `json:"duration"`
	Alive      bool          `json:"alive"`
}

// Reason describes why a link was judged dead.
func (r ProbeResult) Reason() string {
	switch {
	case r.Alive:
		return "alive"
	case r.Error != "":
		return r.Error
	case r.Marker != "":
		return fmt.Sprintf("dead marker %q", r.Marker)
	default:
		return fmt.Sprintf("status %d", r.StatusCode)
	}
}

// Report is the outcome of probing a batch.
type Report struct {
	Alive      []string      `json:"alive"`
	Results    []ProbeResult `json:"results"`
	Total      int           `json:"total"`
	AliveCount int           `json:"alive_count"`
	Elapsed    time.Duration `json:"elapsed"`
	Estimate   time.Duration `json:"estimate"`
}

// Prober checks links for liveness.
type Prober struct {
	client   *http.Client
	registry *platforms.Registry
	recorder Recorder
	log      logger.Logger
	limiter  *rate.Limiter
	progress func(ProgressUpdate)
	cfg      Config
}

// Option configures a Prober.
type Option func(*Prober)

// WithRegistry sets the platform registry used to pick dead markers.
func WithRegistry(r *platforms.Registry) Option {
	return func(p *Prober) { p.registry = r }
}

// WithRecorder sets the probe metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(p *Prober) { p.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Prober) { p.log = l }
}

// WithProgress registers a callback for progress updates of batch probes.
func WithProgress(fn func(ProgressUpdate)) Option {
	return func(p *Prober) { p.progress = fn }
}

// WithHTTPClient replaces the HTTP client. The client's timeout and redirect
// policy are left as they are.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Prober) { p.client = c }
}

// New creates a prober. Zero config fields fall back to DefaultConfig.
func New(cfg Config, opts ...Option) *Prober {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = def.MaxBodyBytes
	}
	if cfg.MaxRedirects <= 0 {
		cfg.MaxRedirects = def.MaxRedirects
	}

	p := &Prober{
		cfg:      cfg,
		registry: platforms.DefaultRegistry,
		recorder: nopRecorder{},
		log:      logger.NewNop(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.client == nil {
		p.client = newHTTPClient(cfg)
	}

	if cfg.RateLimit > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(1, int(cfg.RateLimit)))
	}

	return p
}

func newHTTPClient(cfg Config) *http.Client {
	return &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= cfg.MaxRedirects {
				return fmt.Errorf("too many redirects: %d", len(via))
			}
			// Preserve headers through redirects
			if len(via) > 0 {
				req.Header = via[0].Header.Clone()
			}
			return nil
		},
	}
}

// Config returns the effective configuration.
func (p *Prober) Config() Config {
	return p.cfg
}

// Estimate returns the worst-case duration of probing count links.
func (p *Prober) Estimate(count int) time.Duration {
	return Estimate(count, p.cfg.Timeout, p.cfg.Concurrency)
}

// Check probes a single link. Every failure collapses to a dead verdict; the
// request is never retried.
func (p *Prober) Check(ctx context.Context, rawURL string) (result ProbeResult) {
	start := time.Now()
	result.URL = rawURL

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		result.Error = "invalid URL"
		return result
	}

	platform := p.registry.Detect(u.Host)
	if platform != nil {
		result.Platform = platform.Name()
	}

	p.recorder.ProbeStarted(result.Platform)
	defer func() {
		result.Duration = time.Since(start)
		p.recorder.ProbeFinished(result.Platform, result.Alive, result.Duration)
	}()

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			result.Error = err.Error()
			return result
		}
	}

	p.fetch(ctx, u.String(), platform, &result)

	return result
}

func (p *Prober) fetch(ctx context.Context, target string, platform platforms.Platform, result *ProbeResult) {
	reqCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, http.NoBody)
	if err != nil {
		result.Error = err.Error()
		return
	}

	p.addBrowserHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		result.Error = describeError(err)
		return
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	result.FinalURL = resp.Request.URL.String()

	if resp.StatusCode >= 400 {
		return
	}

	markers := p.markers(platform)
	if len(markers) == 0 {
		result.Alive = true
		return
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.cfg.MaxBodyBytes))
	if err != nil {
		result.Error = describeError(err)
		return
	}

	result.Marker = findMarker(pageText(body, resp.Header.Get("Content-Type")), markers)
	result.Alive = result.Marker == ""
}

// markers returns the dead-content markers for platform, honoring overrides.
func (p *Prober) markers(platform platforms.Platform) []string {
	if platform == nil {
		return nil
	}

	if override, ok := p.cfg.Markers[strings.ToLower(platform.Name())]; ok {
		return override
	}

	return platform.DeadMarkers()
}

// addBrowserHeaders adds browser-like headers. Accept-Encoding is left to the
// transport so compressed bodies are decoded before marker matching.
func (p *Prober) addBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", p.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("DNT", "1")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", "none")
}

func describeError(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return "timeout"
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}

	return err.Error()
}

// Probe checks every link with at most Concurrency requests in flight and
// returns the verdicts sorted by URL. Repeated URLs are probed once.
func (p *Prober) Probe(ctx context.Context, links []string) *Report {
	start := time.Now()

	unique := slices.Clone(links)
	slices.Sort(unique)
	unique = slices.Compact(unique)

	report := &Report{
		Total:    len(unique),
		Estimate: p.Estimate(len(unique)),
		Alive:    []string{},
		Results:  make([]ProbeResult, 0, len(unique)),
	}

	if len(unique) == 0 {
		report.Elapsed = time.Since(start)
		return report
	}

	p.log.Info("probing links",
		logger.Int("count", len(unique)),
		logger.Int("concurrency", p.cfg.Concurrency),
		logger.Duration("estimate", report.Estimate),
	)

	pool := NewWorkerPool(min(p.cfg.Concurrency, len(unique)), p.Check)
	pool.Start(ctx)

	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		for update := range pool.Progress() {
			if p.progress != nil {
				p.progress(update)
			}
		}
	}()

	go func() {
		for i, link := range unique {
			pool.Submit(Task{ID: i, URL: link})
		}
		pool.Wait()
	}()

	// Single collector owns the result slice.
	for result := range pool.Results() {
		if !result.Alive {
			p.log.Debug("link dead",
				logger.String("url", result.URL),
				logger.String("reason", result.Reason()),
			)
		}
		report.Results = append(report.Results, result)
	}

	<-progressDone

	slices.SortFunc(report.Results, func(a, b ProbeResult) int {
		return strings.Compare(a.URL, b.URL)
	})

	for _, r := range report.Results {
		if r.Alive {
			report.Alive = append(report.Alive, r.URL)
		}
	}

	report.AliveCount = len(report.Alive)
	report.Elapsed = time.Since(start)

	p.log.Info("probe finished",
		logger.Int("total", report.Total),
		logger.Int("alive", report.AliveCount),
		logger.Duration("elapsed", report.Elapsed),
	)

	return report
}
