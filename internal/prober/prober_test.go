package prober

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btraven00/linksift/internal/extractor"
	"github.com/btraven00/linksift/internal/platforms"
)

type localPlatform struct {
	markers []string
}

func (p *localPlatform) Name() string          { return "local" }
func (p *localPlatform) Description() string   { return "test server" }
func (p *localPlatform) Hosts() []string       { return []string{"127.0.0.1"} }
func (p *localPlatform) DeadMarkers() []string { return p.markers }
func (p *localPlatform) Priority() int         { return 1 }
func (p *localPlatform) Rules() []platforms.Rule {
	return []platforms.Rule{{
		Name:     "all",
		Category: platforms.CategoryChannel,
		Match:    func(extractor.Link) bool { return true },
	}}
}

func localRegistry(t *testing.T, markers ...string) *platforms.Registry {
	t.Helper()
	r := platforms.NewRegistry()
	require.NoError(t, r.Register(&localPlatform{markers: markers}))
	return r
}

type countingRecorder struct {
	mu       sync.Mutex
	started  int
	finished map[bool]int
}

func (r *countingRecorder) ProbeStarted(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
}

func (r *countingRecorder) ProbeFinished(_ string, alive bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished == nil {
		r.finished = map[bool]int{}
	}
	r.finished[alive]++
}

func TestCheckStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			fmt.Fprint(w, "<html><body>hello</body></html>")
		case "/moved":
			http.Redirect(w, r, "/ok", http.StatusFound)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	p := New(Config{Timeout: time.Second}, WithRegistry(platforms.NewRegistry()))

	testCases := []struct {
		name  string
		path  string
		alive bool
		code  int
	}{
		{name: "200 is alive", path: "/ok", alive: true, code: 200},
		{name: "redirect followed", path: "/moved", alive: true, code: 200},
		{name: "404 is dead", path: "/missing", alive: false, code: 404},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := p.Check(context.Background(), server.URL+tc.path)
			assert.Equal(t, tc.alive, result.Alive)
			assert.Equal(t, tc.code, result.StatusCode)
			assert.Empty(t, result.Error)
		})
	}
}

func TestCheckDeadMarker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		switch r.URL.Path {
		case "/private":
			fmt.Fprint(w, `<html><head><title>Channel</title></head><body><div>This channel is <b>PRIVATE</b></div></body></html>`)
		case "/meta":
			fmt.Fprint(w, `<html><head><meta property="og:description" content="This channel is private"></head><body></body></html>`)
		case "/script":
			fmt.Fprint(w, `<html><body><script>var s = "this channel is private";</script><p>Welcome</p></body></html>`)
		default:
			fmt.Fprint(w, `<html><body><p>Welcome to the channel</p></body></html>`)
		}
	}))
	defer server.Close()

	p := New(Config{Timeout: time.Second}, WithRegistry(localRegistry(t, "this channel is private")))

	private := p.Check(context.Background(), server.URL+"/private")
	assert.False(t, private.Alive)
	assert.Equal(t, 200, private.StatusCode)
	assert.Equal(t, "this channel is private", private.Marker)
	assert.Equal(t, "local", private.Platform)

	assert.False(t, p.Check(context.Background(), server.URL+"/meta").Alive)
	assert.True(t, p.Check(context.Background(), server.URL+"/script").Alive)
	assert.True(t, p.Check(context.Background(), server.URL+"/live").Alive)
}

func TestCheckMarkerOverride(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "nothing here anymore")
	}))
	defer server.Close()

	cfg := Config{
		Timeout: time.Second,
		Markers: map[string][]string{"local": {"Nothing Here"}},
	}
	p := New(cfg, WithRegistry(localRegistry(t, "unrelated")))

	result := p.Check(context.Background(), server.URL)
	assert.False(t, result.Alive)
	assert.Equal(t, "nothing here", result.Marker)
}

func TestCheckUnknownPlatformIgnoresBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "this channel is private")
	}))
	defer server.Close()

	p := New(Config{Timeout: time.Second}, WithRegistry(platforms.NewRegistry()))
	result := p.Check(context.Background(), server.URL)
	assert.True(t, result.Alive)
	assert.Empty(t, result.Platform)
}

func TestCheckTimeoutIsDeadWithoutRetry(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	rec := &countingRecorder{}
	p := New(Config{Timeout: 100 * time.Millisecond}, WithRecorder(rec))

	start := time.Now()
	result := p.Check(context.Background(), server.URL+"/slow")

	assert.False(t, result.Alive)
	assert.Equal(t, "timeout", result.Error)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, 1, rec.started)
	assert.Equal(t, 1, rec.finished[false])
	assert.Positive(t, result.Duration)
}

func TestCheckConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	p := New(Config{Timeout: time.Second})
	result := p.Check(context.Background(), addr)
	assert.False(t, result.Alive)
	assert.NotEmpty(t, result.Error)
}

func TestCheckInvalidURL(t *testing.T) {
	p := New(Config{})
	for _, raw := range []string{"", "not a url", "ftp://t.me/x"} {
		result := p.Check(context.Background(), raw)
		assert.False(t, result.Alive, raw)
		assert.Equal(t, "invalid URL", result.Error)
	}
}

func TestProbeRespectsConcurrency(t *testing.T) {
	var inflight, peak atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := inflight.Add(1)
		defer inflight.Add(-1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
	}))
	defer server.Close()

	links := make([]string, 12)
	for i := range links {
		links[i] = fmt.Sprintf("%s/l%02d", server.URL, i)
	}

	p := New(Config{Timeout: time.Second, Concurrency: 3})
	report := p.Probe(context.Background(), links)

	assert.Equal(t, 12, report.Total)
	assert.Equal(t, 12, report.AliveCount)
	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.Equal(t, Estimate(12, time.Second, 3), report.Estimate)
}

func TestProbeFiltersAndSorts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/dead" || r.URL.Path == "/gone" {
			http.Error(w, "gone", http.StatusGone)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer server.Close()

	links := []string{
		server.URL + "/zeta",
		server.URL + "/dead",
		server.URL + "/alpha",
		server.URL + "/gone",
		server.URL + "/alpha",
	}

	var updates atomic.Int32
	p := New(Config{Timeout: time.Second, Concurrency: 4},
		WithProgress(func(ProgressUpdate) { updates.Add(1) }))

	report := p.Probe(context.Background(), links)

	assert.Equal(t, 4, report.Total)
	assert.Equal(t, []string{server.URL + "/alpha", server.URL + "/zeta"}, report.Alive)
	assert.Equal(t, 2, report.AliveCount)
	require.Len(t, report.Results, 4)
	for i := 1; i < len(report.Results); i++ {
		assert.Less(t, report.Results[i-1].URL, report.Results[i].URL)
	}
	assert.Positive(t, updates.Load())
}

func TestProbeEmpty(t *testing.T) {
	report := New(Config{}).Probe(context.Background(), nil)
	assert.Zero(t, report.Total)
	assert.Empty(t, report.Alive)
	assert.Equal(t, time.Second, report.Estimate)
}

func TestEstimate(t *testing.T) {
	testCases := []struct {
		name        string
		count       int
		timeout     time.Duration
		concurrency int
		expected    time.Duration
	}{
		{name: "exact division", count: 200, timeout: 5 * time.Second, concurrency: 20, expected: 50 * time.Second},
		{name: "rounds up", count: 21, timeout: 3 * time.Second, concurrency: 20, expected: 4 * time.Second},
		{name: "minimum one second", count: 1, timeout: 100 * time.Millisecond, concurrency: 20, expected: time.Second},
		{name: "zero count", count: 0, timeout: 3 * time.Second, concurrency: 20, expected: time.Second},
		{name: "zero concurrency treated as one", count: 2, timeout: 3 * time.Second, concurrency: 0, expected: 6 * time.Second},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Estimate(tc.count, tc.timeout, tc.concurrency))
		})
	}
}

func TestNewDefaults(t *testing.T) {
	p := New(Config{})
	assert.Equal(t, DefaultConfig(), p.Config())
	assert.Equal(t, 4*time.Second, p.Estimate(21))
}

func TestProgressTracker(t *testing.T) {
	pt := NewProgressTracker(3)
	pt.Update(ProgressUpdate{TaskID: 0, Status: TaskStatusAlive})
	pt.Update(ProgressUpdate{TaskID: 1, Status: TaskStatusDead})
	pt.Update(ProgressUpdate{TaskID: 2, Status: TaskStatusProcessing})

	summary := pt.Summary()
	assert.Equal(t, 2, summary.Done())
	assert.Equal(t, 3, summary.TotalTasks)
	assert.Equal(t, 1, summary.StatusCounts[TaskStatusAlive])
}

func TestWorkerPoolStats(t *testing.T) {
	pool := NewWorkerPool(2, func(_ context.Context, url string) ProbeResult {
		return ProbeResult{URL: url, Alive: url != "b"}
	})
	pool.Start(context.Background())

	go func() {
		for i, u := range []string{"a", "b", "c"} {
			pool.Submit(Task{ID: i, URL: u})
		}
		pool.Wait()
	}()

	var got []string
	for r := range pool.Results() {
		got = append(got, r.URL)
	}

	assert.ElementsMatch(t, []string{"a", "b", "c"}, got)
	stats := pool.Stats()
	assert.Equal(t, 3, stats.CompletedTasks)
	assert.Equal(t, 2, stats.AliveTasks)
	assert.Zero(t, stats.PendingTasks)
}
