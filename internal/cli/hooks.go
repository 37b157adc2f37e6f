package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gdatamvn/pkg/observability"
)

// stageVerbs label the spinner while a stage runs.
var stageVerbs = map[observability.Stage]string{
	observability.StageFetch:    "Fetching",
	observability.StageAnalyze:  "Analyzing",
	observability.StageParse:    "Parsing",
	observability.StageGenerate: "Generating",
}

// stageHooks reports pipeline stages through the logger and, when set, a
// spinner.
type stageHooks struct {
	logger  *log.Logger
	spinner *Spinner
}

func (h *stageHooks) OnStageStart(_ context.Context, stage observability.Stage, version string) {
	h.logger.Debug("Stage started", "stage", stage, "version", version)
	if h.spinner != nil {
		h.spinner.SetMessage(stageVerbs[stage] + " gdata " + version)
	}
}

func (h *stageHooks) OnStageComplete(_ context.Context, stage observability.Stage, version string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("Stage failed", "stage", stage, "version", version, "elapsed", d, "err", err)
		return
	}
	h.logger.Debug("Stage finished", "stage", stage, "version", version, "elapsed", d.Round(time.Millisecond))
}

func (h *stageHooks) OnParsed(_ context.Context, version string, artifacts, edges, terminals int) {
	h.logger.Debug("Parsed mapping", "version", version, "artifacts", artifacts, "edges", edges, "terminals", terminals)
}

func (h *stageHooks) OnGenerated(_ context.Context, version, mode string, descriptors int, dir string) {
	h.logger.Debug("Wrote descriptors", "version", version, "mode", mode, "count", descriptors, "dir", dir)
}

// withStageHooks registers hooks for the duration of fn.
func withStageHooks(h *stageHooks, fn func()) {
	observability.SetPipelineHooks(h)
	defer observability.SetPipelineHooks(observability.NoopPipelineHooks{})
	fn()
}

// cacheLogHooks logs cache traffic at debug level.
type cacheLogHooks struct{ logger *log.Logger }

func (h *cacheLogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("Cache hit", "kind", keyType)
}

func (h *cacheLogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("Cache miss", "kind", keyType)
}

func (h *cacheLogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("Cache store", "kind", keyType, "bytes", size)
}

// httpLogHooks logs downloads at debug level.
type httpLogHooks struct{ logger *log.Logger }

func (h *httpLogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("HTTP request", "method", method, "host", host, "path", path)
}

func (h *httpLogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("HTTP response", "method", method, "host", host, "path", path, "status", status, "elapsed", d.Round(time.Millisecond))
}

func (h *httpLogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("HTTP error", "method", method, "host", host, "path", path, "err", err)
}

// registerHooks routes cache and HTTP events to the CLI logger.
func (c *CLI) registerHooks() {
	observability.SetCacheHooks(&cacheLogHooks{logger: c.Logger})
	observability.SetHTTPHooks(&httpLogHooks{logger: c.Logger})
}

var (
	_ observability.PipelineHooks = (*stageHooks)(nil)
	_ observability.CacheHooks    = (*cacheLogHooks)(nil)
	_ observability.HTTPHooks     = (*httpLogHooks)(nil)
)
