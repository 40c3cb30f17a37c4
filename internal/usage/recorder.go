package usage

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kapu/painpoint-scout-go/internal/config"
)

// Recorder 는 요청별 토큰 사용량을 즉시 저장하거나 주기 플러시로 적재한다.
type Recorder struct {
	repo   *Repository
	logger *slog.Logger

	batchEnabled bool
	flushTimeout time.Duration

	mu                  sync.Mutex
	pendingInput        int64
	pendingOutput       int64
	pendingRequestCount int64

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewRecorder 는 설정에 따라 배치 사용 여부를 결정해 Recorder를 생성한다.
func NewRecorder(cfg *config.Config, repo *Repository, logger *slog.Logger) *Recorder {
	recorder := &Recorder{
		repo:   repo,
		logger: logger,
	}

	if cfg == nil || !cfg.Database.UsageBatchEnabled || !repo.Enabled() {
		return recorder
	}

	flushInterval := time.Duration(cfg.Database.UsageBatchFlushIntervalSeconds) * time.Second
	if flushInterval <= 0 {
		flushInterval = 30 * time.Second
	}
	recorder.flushTimeout = time.Duration(cfg.Database.UsageBatchFlushTimeoutSeconds) * time.Second
	if recorder.flushTimeout <= 0 {
		recorder.flushTimeout = 10 * time.Second
	}

	recorder.batchEnabled = true
	recorder.stopCh = make(chan struct{})
	recorder.doneCh = make(chan struct{})
	go recorder.flushLoop(flushInterval)

	if logger != nil {
		logger.Info(
			"usage_db_batch_enabled",
			"flush_interval", flushInterval,
			"flush_timeout", recorder.flushTimeout,
		)
	}
	return recorder
}

// Record 는 1회 요청의 토큰 사용량을 기록한다.
func (r *Recorder) Record(ctx context.Context, inputTokens int64, outputTokens int64) {
	if r == nil || r.repo == nil || !r.repo.Enabled() {
		return
	}
	if inputTokens <= 0 && outputTokens <= 0 {
		return
	}

	if r.batchEnabled {
		r.mu.Lock()
		r.pendingInput += inputTokens
		r.pendingOutput += outputTokens
		r.pendingRequestCount++
		r.mu.Unlock()
		return
	}

	if err := r.repo.RecordUsage(ctx, inputTokens, outputTokens, 1, time.Time{}); err != nil {
		if r.logger != nil {
			r.logger.Warn("usage_db_save_failed", "err", err)
		}
	}
}

// Close 는 플러시 루프를 중지하고 잔여 집계를 저장한다.
func (r *Recorder) Close() {
	if r == nil || !r.batchEnabled {
		return
	}
	close(r.stopCh)
	<-r.doneCh
}

func (r *Recorder) flushLoop(interval time.Duration) {
	defer close(r.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.flush()
		case <-r.stopCh:
			r.flush()
			return
		}
	}
}

func (r *Recorder) flush() {
	r.mu.Lock()
	input := r.pendingInput
	output := r.pendingOutput
	requests := r.pendingRequestCount
	r.pendingInput = 0
	r.pendingOutput = 0
	r.pendingRequestCount = 0
	r.mu.Unlock()

	if requests == 0 && input == 0 && output == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.flushTimeout)
	defer cancel()

	if err := r.repo.RecordUsage(ctx, input, output, requests, time.Time{}); err != nil {
		if r.logger != nil {
			r.logger.Warn("usage_db_flush_failed", "err", err, "requests", requests)
		}
		// 저장 실패분은 다음 플러시에 합산한다.
		r.mu.Lock()
		r.pendingInput += input
		r.pendingOutput += output
		r.pendingRequestCount += requests
		r.mu.Unlock()
	}
}
