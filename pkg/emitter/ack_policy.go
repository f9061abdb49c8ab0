package emitter

import (
	"strings"

	"trade-producer/pkg/common_errors"
)

// AckPolicy decides what a worker does with a failed submission. No policy
// retries or stops the worker.
type AckPolicy uint8

const (
	// FireAndForget drops submission errors unseen.
	FireAndForget AckPolicy = 0
	// CountFailures counts submission errors and logs them at debug level.
	CountFailures AckPolicy = 1
)

func (p AckPolicy) String() string {
	switch p {
	case FireAndForget:
		return "fire_and_forget"
	case CountFailures:
		return "count_failures"
	default:
		return "unknown"
	}
}

func ParseAckPolicy(s string) (AckPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fire_and_forget":
		return FireAndForget, nil
	case "count_failures":
		return CountFailures, nil
	default:
		return FireAndForget, common_errors.ErrUnrecognizedAckPolicy
	}
}
