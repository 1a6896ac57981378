package dataset

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Loader memoizes the first successful load of a Source. Concurrent first
// loads share one read. Failures are not cached, so a file placed after
// startup is picked up by the next request.
type Loader struct {
	src    Source
	logger *zap.Logger

	group singleflight.Group
	mu    sync.RWMutex
	data  *Dataset
}

func NewLoader(src Source, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{src: src, logger: logger}
}

func (l *Loader) Get(ctx context.Context) (*Dataset, error) {
	l.mu.RLock()
	d := l.data
	l.mu.RUnlock()
	if d != nil {
		return d, nil
	}

	v, err, _ := l.group.Do("dataset", func() (interface{}, error) {
		l.mu.RLock()
		cached := l.data
		l.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		// Coalesced waiters share this load; one caller going away must not fail it.
		d, err := l.src.Load(context.WithoutCancel(ctx))
		if err != nil {
			l.logger.Warn("dataset load failed", zap.Error(err))
			return nil, err
		}
		l.logger.Info("dataset loaded",
			zap.Int("records", d.Len()),
			zap.Bool("has_outcome", d.HasOutcome()))

		l.mu.Lock()
		l.data = d
		l.mu.Unlock()
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dataset), nil
}
