// Package telemetry periodically logs the engine's resident footprint
// and compression walker activity through the ambient slog logger, the
// way the teacher's telemetry package logs cache/evictor/lifetimer
// counters — generalized here to the CLFUS engine's own counters.
package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/avbelov/go-ramclfus/internal/cache"
	"github.com/avbelov/go-ramclfus/internal/config"
	"github.com/avbelov/go-ramclfus/internal/shared/bytes"
)

type Logger interface {
	Interval() time.Duration
	Close() error
}

type Logs struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cfg      *config.Cache
	logger   *slog.Logger
	engine   *cache.Engine
	sink     hitMissSource
	walker   walkerMetrics
	interval time.Duration
}

func New(
	ctx context.Context,
	cfg *config.Cache,
	logger *slog.Logger,
	engine *cache.Engine,
	sink hitMissSource,
	walker walkerMetrics,
) *Logs {
	ctx, cancel := context.WithCancel(ctx)
	return (&Logs{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		logger:   logger,
		engine:   engine,
		sink:     sink,
		walker:   walker,
		interval: cfg.DB.TelemetryLogsInterval,
	}).run()
}

func (l *Logs) Interval() time.Duration { return l.interval }

func (l *Logs) Close() error {
	l.cancel()
	return nil
}

func (l *Logs) run() *Logs {
	if l.cfg.DB.IsTelemetryLogsEnabled && l.interval > 0 {
		go l.loop()
	}
	return l
}

func (l *Logs) loop() {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	hardLimit := bytes.FmtMem(uint64(l.cfg.DB.SizeBytes))

	s := newSampler(l.engine, l.sink, l.walker)
	prev := s.snapshot()

	for {
		select {
		case <-l.ctx.Done():
			return
		case <-ticker.C:
			cur := s.snapshot()
			d := deltaSnapshot(prev, cur)
			prev = cur

			common := []any{"interval", l.interval.String()}

			l.logger.Info("ram_cache",
				append(common,
					"hits", d.hits,
					"misses", d.misses,
					"objects", cur.objects,
					"history", cur.history,
					"size", bytes.FmtMem(uint64(max(cur.bytesHeld, 0))),
					"hard_limit", hardLimit,
				)...,
			)

			if l.cfg.Compression.Enabled() {
				l.logger.Info("compression_walker",
					append(common,
						"passes", d.walkerPasses,
						"compressed", d.walkerCompressed,
						"tightened", d.walkerTightened,
						"incompressible", d.walkerIncompressible,
					)...,
				)
			}
		}
	}
}
