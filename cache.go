package ramclfus

import (
	"context"
	"log/slog"
	"time"

	"github.com/avbelov/go-ramclfus/internal/buffer"
	"github.com/avbelov/go-ramclfus/internal/cache"
	"github.com/avbelov/go-ramclfus/internal/codec"
	"github.com/avbelov/go-ramclfus/internal/compressor"
	"github.com/avbelov/go-ramclfus/internal/config"
	"github.com/avbelov/go-ramclfus/internal/metrics"
	"github.com/avbelov/go-ramclfus/internal/telemetry"
)

const compressionTickInterval = time.Second

// Cache is the CLFUS engine wired to its scheduler, metrics sink and
// compression walker. It exposes the operations spec.md names — Get,
// Put, Fixup — plus Stats, ForceCompressionPass, and Close to stop the
// background walker.
type Cache struct {
	engine    *cache.Engine
	walker    compressor.Walker
	metrics   MetricsSink
	telemetry *telemetry.Logs
	cancel    context.CancelFunc
}

// New builds a Cache. volume supplies the mutex every operation
// serializes on and drives the compression walker's ticks; bufs
// allocates entry storage; if metricsSink is nil a process-local
// *metrics.AtomicSink is used, which also enables the periodic
// telemetry logger when cfg.DB.IsTelemetryLogsEnabled is set.
func New(ctx context.Context, volume Scheduler, bufs BufferProvider, metricsSink MetricsSink, cfg *config.Cache, logger *slog.Logger) *Cache {
	ctx, cancel := context.WithCancel(ctx)

	var ownSink *metrics.AtomicSink
	if metricsSink == nil {
		ownSink = metrics.NewAtomicSink()
		metricsSink = ownSink
	}
	if bufs == nil {
		bufs = buffer.NewPool(0, 20)
	}

	var tag codec.Tag
	var percent, doAtMost, ratePerSec int
	if cfg.Compression.Enabled() {
		tag = codec.Tag(cfg.Compression.Codec)
		percent = cfg.Compression.Percent
		doAtMost = cfg.Compression.DoAtMost
		ratePerSec = cfg.Compression.RatePerSec
	}

	engine := cache.New(cache.Config{
		MaxBytes:        cfg.DB.SizeBytes,
		Lock:            volume.Locker(),
		Buffers:         bufs,
		Metrics:         metricsSink,
		Dispatch:        codec.Default(),
		CompressionTag:  tag,
		CompressPercent: percent,
		DoAtMost:        doAtMost,
	})

	var walker compressor.Walker
	if cfg.Compression.Enabled() {
		walker = compressor.New(ctx, volume, engine, logger, compressionTickInterval, ratePerSec)
	} else {
		walker = compressor.NoOp{}
	}

	var logs *telemetry.Logs
	if ownSink != nil && cfg.DB.IsTelemetryLogsEnabled {
		logs = telemetry.New(ctx, cfg, logger, engine, ownSink, walker)
	}

	return &Cache{engine: engine, walker: walker, metrics: metricsSink, telemetry: logs, cancel: cancel}
}

func (c *Cache) Get(k Key, aux1, aux2 uint32) (buf buffer.Ref, length int64, ok bool) {
	return c.engine.Get(k, aux1, aux2)
}

func (c *Cache) Put(k Key, buf buffer.Ref, length int64, copySemantics bool, aux1, aux2 uint32) (admitted bool) {
	return c.engine.Put(k, buf, length, copySemantics, aux1, aux2)
}

func (c *Cache) Fixup(k Key, oldAux1, oldAux2, newAux1, newAux2 uint32) (updated bool) {
	return c.engine.Fixup(k, oldAux1, oldAux2, newAux1, newAux2)
}

// Stats returns a point-in-time snapshot of the engine's accounting
// counters.
func (c *Cache) Stats() cache.Stats { return c.engine.Stats() }

// ForceCompressionPass synchronously triggers one compression walker
// invocation, waiting up to timeout for it to be picked up.
func (c *Cache) ForceCompressionPass(timeout time.Duration) error {
	return c.walker.ForceCall(timeout)
}

func (c *Cache) Close() error {
	c.cancel()
	if c.telemetry != nil {
		_ = c.telemetry.Close()
	}
	return c.walker.Close()
}
