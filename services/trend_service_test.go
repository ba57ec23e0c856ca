package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"keyword_bot/models"
)

// fakeTrendAPI returns a fixed series per keyword and can fail chosen calls.
type fakeTrendAPI struct {
	mu       sync.Mutex
	calls    [][]models.TrendGroup
	windows  []models.TrendWindow
	series   func(kw string) []float64
	fail     func(groups []models.TrendGroup) bool
	delay    time.Duration
	inFlight int32
	peak     int32
}

func (f *fakeTrendAPI) Query(ctx context.Context, groups []models.TrendGroup, window models.TrendWindow) ([]models.TrendSeries, error) {
	n := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		p := atomic.LoadInt32(&f.peak)
		if n <= p || atomic.CompareAndSwapInt32(&f.peak, p, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, groups)
	f.windows = append(f.windows, window)
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.fail != nil && f.fail(groups) {
		return nil, fmt.Errorf("%w: status 500", ErrSourceUnavailable)
	}
	out := make([]models.TrendSeries, 0, len(groups))
	for _, g := range groups {
		ratios := []float64{1, 1, 2}
		if f.series != nil {
			ratios = f.series(g.Keywords[0])
		}
		out = append(out, models.TrendSeries{Title: g.GroupName, DailyRatios: ratios})
	}
	return out, nil
}

func sampleKeywords(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("키워드%c", 'a'+i)
	}
	return out
}

func testWindow() models.TrendWindow {
	return models.NewTrendWindow(time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC), 30)
}

func TestChunkKeywords(t *testing.T) {
	chunks := ChunkKeywords(sampleKeywords(12), 5)
	var sizes []int
	for _, c := range chunks {
		sizes = append(sizes, len(c))
	}
	if fmt.Sprint(sizes) != "[5 5 2]" {
		t.Fatalf("sizes = %v", sizes)
	}
	if len(ChunkKeywords(nil, 5)) != 0 {
		t.Fatalf("empty input should give no chunks")
	}
}

func TestRecencyRatio(t *testing.T) {
	cases := []struct {
		name   string
		ratios []float64
		want   float64
	}{
		{"single point", []float64{5.0}, 0},
		{"empty", nil, 0},
		{"zero baseline", []float64{0, 0, 0}, 0},
		{"zero baseline spike", []float64{0, 0, 7}, 0},
		{"doubling", []float64{1, 1, 2}, 2},
		{"flat", []float64{3, 3, 3, 3}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RecencyRatio(tc.ratios)
			if math.IsNaN(got) || math.IsInf(got, 0) {
				t.Fatalf("non-finite score %v", got)
			}
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestShortWindowRatio(t *testing.T) {
	// baseline = mean(first 9) = 1, last 7 points mean = (1*6+8)/7 = 2
	ratios := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 8}
	if got := ShortWindowRatio(ratios, 7); got != 2 {
		t.Fatalf("got %v", got)
	}
	if got := ShortWindowRatio([]float64{2}, 7); got != 0 {
		t.Fatalf("short series = %v", got)
	}
	// window larger than the series uses the whole series
	if got := ShortWindowRatio([]float64{1, 3}, 7); got != 2 {
		t.Fatalf("clamped window = %v", got)
	}
}

func TestScoreBlend(t *testing.T) {
	ratios := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 8}
	plain := NewTrendFetcher(nil, TrendOptions{})
	if got := plain.Score(ratios); got != 8 {
		t.Fatalf("plain = %v", got)
	}
	blended := NewTrendFetcher(nil, TrendOptions{UseShortWindowBlend: true, ShortWindowDays: 7, LongWeight: 0.7, ShortWeight: 0.3})
	want := 0.7*8 + 0.3*2
	if got := blended.Score(ratios); math.Abs(got-want) > 1e-9 {
		t.Fatalf("blended = %v, want %v", got, want)
	}
}

func TestFetchTrendScoresConcurrent(t *testing.T) {
	api := &fakeTrendAPI{delay: 20 * time.Millisecond}
	f := NewTrendFetcher(api, TrendOptions{ChunkSize: 5, WorkerCount: 4})
	kws := sampleKeywords(12)
	window := testWindow()

	scores := f.FetchTrendScores(context.Background(), kws, window)
	if len(scores) != 12 {
		t.Fatalf("want 12 scores, got %d", len(scores))
	}
	for _, kw := range kws {
		if scores[kw] != 2 {
			t.Errorf("%s = %v", kw, scores[kw])
		}
	}
	if len(api.calls) != 3 {
		t.Fatalf("calls = %d", len(api.calls))
	}
	for _, w := range api.windows {
		if w != window {
			t.Fatalf("chunk used a different window: %+v", w)
		}
	}
}

func TestFetchTrendScoresBoundsConcurrency(t *testing.T) {
	api := &fakeTrendAPI{delay: 30 * time.Millisecond}
	f := NewTrendFetcher(api, TrendOptions{ChunkSize: 1, WorkerCount: 4})
	f.FetchTrendScores(context.Background(), sampleKeywords(16), testWindow())
	if peak := atomic.LoadInt32(&api.peak); peak > 4 {
		t.Fatalf("peak in-flight = %d, want <= 4", peak)
	}
}

func TestFetchTrendScoresPartialFailure(t *testing.T) {
	kws := sampleKeywords(12)
	failing := kws[5] // first keyword of chunk 2
	api := &fakeTrendAPI{fail: func(groups []models.TrendGroup) bool {
		return groups[0].Keywords[0] == failing
	}}
	f := NewTrendFetcher(api, TrendOptions{ChunkSize: 5, WorkerCount: 4})

	scores := f.FetchTrendScores(context.Background(), kws, testWindow())
	for i, kw := range kws {
		_, ok := scores[kw]
		inFailedChunk := i >= 5 && i < 10
		if ok == inFailedChunk {
			t.Errorf("%s present=%v, failed chunk=%v", kw, ok, inFailedChunk)
		}
	}
	if len(scores) != 7 {
		t.Fatalf("want 7 entries, got %d", len(scores))
	}
}

func TestFetchTrendScoresTruncatesGroupName(t *testing.T) {
	long := "가나다라마바사아자차카타파하가나다라마바사아자"
	api := &fakeTrendAPI{}
	f := NewTrendFetcher(api, TrendOptions{WorkerCount: 4})

	scores := f.FetchTrendScores(context.Background(), []string{long}, testWindow())
	g := api.calls[0][0]
	if n := len([]rune(g.GroupName)); n != 19 {
		t.Fatalf("group name has %d runes", n)
	}
	if g.Keywords[0] != long {
		t.Fatalf("keyword should be sent untruncated")
	}
	if _, ok := scores[long]; !ok {
		t.Fatalf("score must be keyed by the full keyword: %v", scores)
	}
}

func TestFetchTrendScoresSharedLongPrefix(t *testing.T) {
	prefix := "가나다라마바사아자차카타파하가나다라마"
	a, b, c := prefix+"바", prefix+"사", prefix+"아"
	api := &fakeTrendAPI{series: func(kw string) []float64 {
		switch kw {
		case a:
			return []float64{1, 1, 3}
		case b:
			return []float64{1, 1, 5}
		}
		return []float64{1, 1, 7}
	}}
	f := NewTrendFetcher(api, TrendOptions{WorkerCount: 4})

	scores := f.FetchTrendScores(context.Background(), []string{a, b, c}, testWindow())
	if scores[a] != 3 || scores[b] != 5 || scores[c] != 7 || len(scores) != 3 {
		t.Fatalf("scores = %v", scores)
	}

	names := map[string]bool{}
	for _, g := range api.calls[0] {
		if n := len([]rune(g.GroupName)); n > 19 {
			t.Fatalf("group name %q has %d runes", g.GroupName, n)
		}
		if names[g.GroupName] {
			t.Fatalf("duplicate group name %q", g.GroupName)
		}
		names[g.GroupName] = true
	}
}

func TestUniqueGroupName(t *testing.T) {
	used := map[string]string{"abc": "abc1", "abc~2": "abc2"}
	if got := uniqueGroupName("abc", used); got != "abc~3" {
		t.Fatalf("got %q", got)
	}
	if got := uniqueGroupName("xyz", used); got != "xyz" {
		t.Fatalf("got %q", got)
	}
}

func TestFetchTrendScoresSequential(t *testing.T) {
	api := &fakeTrendAPI{}
	f := NewTrendFetcher(api, TrendOptions{ChunkSize: 5, WorkerCount: 1, SequentialDelay: 1500 * time.Millisecond})
	var pauses []time.Duration
	f.sleep = func(ctx context.Context, d time.Duration) error {
		pauses = append(pauses, d)
		return nil
	}

	scores := f.FetchTrendScores(context.Background(), sampleKeywords(12), testWindow())
	if len(scores) != 12 {
		t.Fatalf("scores = %d", len(scores))
	}
	if len(pauses) != 2 {
		t.Fatalf("want a pause between each of 3 chunks, got %v", pauses)
	}
	for _, p := range pauses {
		if p < time.Second {
			t.Fatalf("pause %v below 1s", p)
		}
	}
}

func TestFetchTrendScoresSequentialDelayFloor(t *testing.T) {
	f := NewTrendFetcher(&fakeTrendAPI{}, TrendOptions{WorkerCount: 1, SequentialDelay: 10 * time.Millisecond})
	if f.opts.SequentialDelay < time.Second {
		t.Fatalf("delay = %v", f.opts.SequentialDelay)
	}
}

func TestFetchTrendScoresCancelled(t *testing.T) {
	api := &fakeTrendAPI{}
	f := NewTrendFetcher(api, TrendOptions{ChunkSize: 5, WorkerCount: 4})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scores := f.FetchTrendScores(ctx, sampleKeywords(12), testWindow())
	if len(scores) != 0 {
		t.Fatalf("cancelled run should score nothing, got %v", scores)
	}
	if len(api.calls) != 0 {
		t.Fatalf("no request should be sent after cancel, got %d", len(api.calls))
	}
}

func TestSleepCtxCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepCtx(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}
