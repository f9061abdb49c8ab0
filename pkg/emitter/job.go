package emitter

import (
	"strconv"

	"trade-producer/pkg/common_errors"
)

// JobConfig describes one emission run. TotalMessages is split evenly over
// Workers with integer division; the remainder is never sent.
type JobConfig struct {
	TotalMessages  int
	Workers        int
	MessagesPerSec int
	Topic          string
}

func (c JobConfig) Validate() error {
	if c.TotalMessages < 0 {
		return common_errors.ErrInvalidTotalMessages
	}
	if c.Workers < 1 {
		return common_errors.ErrInvalidWorkers
	}
	if c.MessagesPerSec < 1 {
		return common_errors.ErrInvalidRate
	}
	if c.Topic == "" {
		return common_errors.ErrEmptyTopic
	}
	return nil
}

// Share is the number of messages each worker sends.
func (c JobConfig) Share() int {
	if c.Workers < 1 {
		return 0
	}
	return c.TotalMessages / c.Workers
}

// Dropped is the part of the budget lost to integer division.
func (c JobConfig) Dropped() int {
	if c.Workers < 1 {
		return c.TotalMessages
	}
	return c.TotalMessages % c.Workers
}

func WorkerKey(workerID int) string {
	return "key-" + strconv.Itoa(workerID)
}
