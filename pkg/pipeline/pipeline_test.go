package pipeline

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gdatamvn/pkg/cache"
	"github.com/matzehuels/gdatamvn/pkg/depgraph"
	"github.com/matzehuels/gdatamvn/pkg/errors"
	"github.com/matzehuels/gdatamvn/pkg/observability"
	"github.com/matzehuels/gdatamvn/pkg/pom"
)

const report = `digraph dependencies {
  gdata_core_1_0 -> google_collect_1_0_rc1;
  gdata_core_1_0 -> jsr305;
  gdata_calendar_2_0 -> gdata_core_1_0;
}
`

type fakeFetcher struct {
	work          string
	analyzerCalls int
	fetched       map[string]bool
	err           error
}

func (f *fakeFetcher) Analyzer(ctx context.Context, version string) (string, error) {
	f.analyzerCalls++
	return filepath.Join(f.work, "tattletale.jar"), nil
}

func (f *fakeFetcher) Distribution(ctx context.Context, version string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.fetched == nil {
		f.fetched = map[string]bool{}
	}
	f.fetched[version] = true
	return filepath.Join(f.work, version, "lib"), nil
}

func (f *fakeFetcher) HasDistribution(version string) bool { return f.fetched[version] }

type fakeAnalyzer struct {
	work   string
	jar    string
	report string
	runs   int
}

func (a *fakeAnalyzer) dot(version string) string {
	return filepath.Join(a.work, "out", version, "dependencies.dot")
}

func (a *fakeAnalyzer) Cached(version string) bool {
	_, err := os.Stat(a.dot(version))
	return err == nil
}

func (a *fakeAnalyzer) Analyze(ctx context.Context, version, jarPath string) (string, error) {
	path := a.dot(version)
	if a.Cached(version) {
		return path, nil
	}
	a.runs++
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	return path, os.WriteFile(path, []byte(a.report), 0o644)
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	stages    []observability.Stage
	generated []string
}

func (h *recordingHooks) OnStageComplete(_ context.Context, s observability.Stage, _ string, _ time.Duration, _ error) {
	h.stages = append(h.stages, s)
}

func (h *recordingHooks) OnGenerated(_ context.Context, version, mode string, _ int, _ string) {
	h.generated = append(h.generated, version+"/"+mode)
}

type fixture struct {
	runner   *Runner
	fetcher  *fakeFetcher
	analyzer *fakeAnalyzer
	out      string
}

func newFixture(t *testing.T, c cache.Cache) *fixture {
	t.Helper()
	work := t.TempDir()
	out := t.TempDir()
	f := &fakeFetcher{work: work}
	a := &fakeAnalyzer{work: work, report: report}

	cfg := pom.DefaultConfig()
	cfg.OutputDir = out
	r := NewRunner(f, pom.New(cfg), Options{
		NewAnalyzer: func(jar string) Analyzer {
			a.jar = jar
			return a
		},
		Cache:  c,
		Policy: depgraph.DefaultPolicy(),
		Logger: log.New(io.Discard),
	})
	return &fixture{runner: r, fetcher: f, analyzer: a, out: out}
}

func TestRun(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	fx := newFixture(t, nil)
	results, err := fx.runner.Run(context.Background(), []string{"1.41.0", "1.41.1"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].RunID == "" || results[0].RunID != results[1].RunID {
		t.Errorf("run ids = %q, %q; want one shared non-empty id", results[0].RunID, results[1].RunID)
	}
	if fx.fetcher.analyzerCalls != 1 {
		t.Errorf("analyzer fetched %d times, want 1", fx.fetcher.analyzerCalls)
	}
	if fx.analyzer.jar == "" {
		t.Error("analyzer factory did not receive the jar")
	}

	res := results[1]
	if res.Version != "1.41.1" {
		t.Errorf("Version = %q", res.Version)
	}
	if res.Stats.Artifacts != 3 || res.Stats.Edges != 3 || res.Stats.Terminals != 1 {
		t.Errorf("Stats = %+v, want 3 artifacts, 3 edges, 1 terminal", res.Stats)
	}
	if want := filepath.Join(fx.out, "snapshot", "v1.41.1"); res.SnapshotDir != want {
		t.Errorf("SnapshotDir = %q, want %q", res.SnapshotDir, want)
	}
	if want := filepath.Join(fx.out, "release", "v1.41.1"); res.Dir(pom.Release) != want {
		t.Errorf("ReleaseDir = %q, want %q", res.ReleaseDir, want)
	}
	for _, dir := range []string{res.SnapshotDir, res.ReleaseDir} {
		if _, err := os.Stat(filepath.Join(dir, "mvn_deploy_gdata_1.41.1")); err != nil {
			t.Errorf("deploy script missing: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "jsr305-pom.xml")); err != nil {
			t.Errorf("terminal descriptor missing: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "google-collect-1.0-rc1-pom.xml")); !os.IsNotExist(err) {
			t.Error("collections descriptor must not be generated")
		}
	}

	wantStages := []observability.Stage{
		observability.StageFetch, observability.StageAnalyze, observability.StageParse, observability.StageGenerate,
		observability.StageFetch, observability.StageAnalyze, observability.StageParse, observability.StageGenerate,
	}
	if !slices.Equal(hooks.stages, wantStages) {
		t.Errorf("stages = %v", hooks.stages)
	}
	wantGenerated := []string{"1.41.0/snapshot", "1.41.0/release", "1.41.1/snapshot", "1.41.1/release"}
	if !slices.Equal(hooks.generated, wantGenerated) {
		t.Errorf("generated = %v", hooks.generated)
	}
}

func TestRunCacheInfo(t *testing.T) {
	c, err := cache.NewMemoryCache(16)
	if err != nil {
		t.Fatal(err)
	}
	fx := newFixture(t, c)

	first, err := fx.runner.RunVersion(context.Background(), "1.40.0")
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.FetchHit || first.CacheInfo.AnalyzeHit || first.CacheInfo.ParseHit {
		t.Errorf("first run should miss everywhere: %+v", first.CacheInfo)
	}

	second, err := fx.runner.RunVersion(context.Background(), "1.40.0")
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.FetchHit || !second.CacheInfo.AnalyzeHit || !second.CacheInfo.ParseHit {
		t.Errorf("second run should hit everywhere: %+v", second.CacheInfo)
	}
	if first.RunID == second.RunID {
		t.Error("RunVersion should assign a fresh run id")
	}
	if fx.analyzer.runs != 1 {
		t.Errorf("analyzer ran %d times, want 1", fx.analyzer.runs)
	}
	if !reflect.DeepEqual(first.Mapping, second.Mapping) {
		t.Errorf("cached mapping differs:\n%#v\n%#v", first.Mapping, second.Mapping)
	}
}

func TestParseCachePreservesTerminals(t *testing.T) {
	c, err := cache.NewMemoryCache(16)
	if err != nil {
		t.Fatal(err)
	}
	fx := newFixture(t, c)

	m1, hit, err := fx.runner.Parse(context.Background(), []byte("a -> b; b -> c;"))
	if err != nil || hit {
		t.Fatalf("Parse: hit=%v err=%v", hit, err)
	}
	m2, hit, err := fx.runner.Parse(context.Background(), []byte("a -> b; b -> c;"))
	if err != nil || !hit {
		t.Fatalf("Parse: hit=%v err=%v", hit, err)
	}
	want := depgraph.Mapping{"a": {"b"}, "b": {"c"}, "c": nil}
	if !reflect.DeepEqual(m1, want) || !reflect.DeepEqual(m2, want) {
		t.Errorf("mappings = %#v / %#v, want %#v", m1, m2, want)
	}
}

func TestParseKeyIncludesPolicy(t *testing.T) {
	c, err := cache.NewMemoryCache(16)
	if err != nil {
		t.Fatal(err)
	}
	fx := newFixture(t, c)
	text := []byte("a -> google_collect_1_0")

	m, _, err := fx.runner.Parse(context.Background(), text)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m["google-collect-1.0"]; ok {
		t.Fatal("default policy should exclude the collections jar")
	}

	fx.runner.opts.Policy = depgraph.Policy{}
	m, hit, err := fx.runner.Parse(context.Background(), text)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("a different policy must not reuse the cached mapping")
	}
	if !m.IsTerminal("google-collect-1.0") {
		t.Errorf("mapping = %#v", m)
	}
}

func TestParseFileMissing(t *testing.T) {
	fx := newFixture(t, nil)
	_, _, err := fx.runner.ParseFile(context.Background(), filepath.Join(t.TempDir(), "missing.dot"))
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestRunStopsAtFirstError(t *testing.T) {
	fx := newFixture(t, nil)
	fx.fetcher.err = errors.New(errors.ErrCodeDownload, "boom")

	results, err := fx.runner.Run(context.Background(), []string{"1.41.0", "1.41.1"})
	if !errors.Is(err, errors.ErrCodeDownload) {
		t.Fatalf("err = %v, want DOWNLOAD_FAILED", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %d, want 0", len(results))
	}
	if _, err := os.Stat(filepath.Join(fx.out, "release")); !os.IsNotExist(err) {
		t.Error("nothing should be generated after a fetch failure")
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	fx := newFixture(t, nil)
	if _, err := fx.runner.Run(context.Background(), nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
	if _, err := fx.runner.RunVersion(context.Background(), "../x"); !errors.Is(err, errors.ErrCodeInvalidVersion) {
		t.Errorf("err = %v, want INVALID_VERSION", err)
	}
}

func TestRunCanceled(t *testing.T) {
	fx := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := fx.runner.RunVersion(ctx, "1.41.1")
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRunWithoutAnalyzer(t *testing.T) {
	r := NewRunner(&fakeFetcher{work: t.TempDir()}, pom.New(pom.DefaultConfig()), Options{Logger: log.New(io.Discard)})
	if _, err := r.RunVersion(context.Background(), "1.41.1"); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}
