package emitter

import (
	"context"
	"strings"
	"time"

	"trade-producer/pkg/common_errors"

	"golang.org/x/time/rate"
)

const DEFAULT_DELAY = 10 * time.Millisecond

// Pacer suspends a worker between two sends. Wait returns the context's
// error if the context ends first.
type Pacer interface {
	Wait(ctx context.Context) error
}

// FixedDelay sleeps the same amount after every send whatever the
// configured rate is, so a worker never exceeds about 1s/Delay messages per
// second.
type FixedDelay struct {
	Delay time.Duration
}

func (p FixedDelay) Wait(ctx context.Context) error {
	if p.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// TokenBucket holds a worker to messagesPerSec with a burst of one.
type TokenBucket struct {
	limiter *rate.Limiter
}

func NewTokenBucket(messagesPerSec int) *TokenBucket {
	return &TokenBucket{limiter: rate.NewLimiter(rate.Limit(messagesPerSec), 1)}
}

func (p *TokenBucket) Wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		// next token is due after the deadline
		return context.DeadlineExceeded
	}
	return nil
}

type PacingMode uint8

const (
	PacingFixed PacingMode = 0
	PacingToken PacingMode = 1
)

func (m PacingMode) String() string {
	switch m {
	case PacingFixed:
		return "fixed"
	case PacingToken:
		return "token"
	default:
		return "unknown"
	}
}

func ParsePacingMode(s string) (PacingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fixed":
		return PacingFixed, nil
	case "token":
		return PacingToken, nil
	default:
		return PacingFixed, common_errors.ErrUnrecognizedPacing
	}
}

// PacerFactory builds the pacer of one worker.
type PacerFactory func(workerID int) Pacer

func NewPacerFactory(mode PacingMode, delay time.Duration, messagesPerSec int) (PacerFactory, error) {
	switch mode {
	case PacingFixed:
		if delay < 0 {
			return nil, common_errors.ErrInvalidDelay
		}
		p := FixedDelay{Delay: delay}
		return func(int) Pacer { return p }, nil
	case PacingToken:
		if messagesPerSec < 1 {
			return nil, common_errors.ErrInvalidRate
		}
		return func(int) Pacer { return NewTokenBucket(messagesPerSec) }, nil
	default:
		return nil, common_errors.ErrUnrecognizedPacing
	}
}
