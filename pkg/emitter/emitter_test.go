package emitter

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"trade-producer/pkg/broker"
	"trade-producer/pkg/common_errors"
	"trade-producer/pkg/generator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

// recordingClient keeps every submission in call order.
type recordingClient struct {
	mu   sync.Mutex
	msgs []broker.Message
	err  error
}

func (r *recordingClient) Send(topic, key, payload string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, broker.Message{Topic: topic, Key: key, Payload: payload})
	return r.err
}

func (r *recordingClient) Close(ctx context.Context) error { return nil }

func (r *recordingClient) Stats() broker.DeliveryStats { return broker.DeliveryStats{} }

func (r *recordingClient) messages() []broker.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]broker.Message, len(r.msgs))
	copy(out, r.msgs)
	return out
}

func (r *recordingClient) byKey() map[string][]broker.Message {
	out := make(map[string][]broker.Message)
	for _, m := range r.messages() {
		out[m.Key] = append(out[m.Key], m)
	}
	return out
}

func countingGenerator() generator.Generator {
	var n atomic.Int64
	return generator.Func(func() string {
		return fmt.Sprintf("payload-%d", n.Add(1))
	})
}

func noDelay() Option {
	return WithPacerFactory(func(int) Pacer { return FixedDelay{} })
}

func runJob(t *testing.T, cfg JobConfig, opts ...Option) (*Coordinator, *recordingClient) {
	client := &recordingClient{}
	c, err := NewCoordinator(cfg, countingGenerator(), client, append([]Option{noDelay()}, opts...)...)
	require.NoError(t, err)
	require.NoError(t, c.Run(context.Background()))
	return c, client
}

func TestEvenSplit(t *testing.T) {
	c, client := runJob(t, JobConfig{TotalMessages: 10, Workers: 2, MessagesPerSec: 500, Topic: "trade"})
	assert.Equal(t, 5, c.Share())
	assert.Equal(t, 0, c.Dropped())

	msgs := client.messages()
	assert.Len(t, msgs, 10)
	byKey := client.byKey()
	assert.Len(t, byKey, 2)
	assert.Len(t, byKey["key-0"], 5)
	assert.Len(t, byKey["key-1"], 5)
	for _, m := range msgs {
		assert.Equal(t, "trade", m.Topic)
	}
	assert.Equal(t, []int64{5, 5}, c.Progress())
}

func TestRemainderIsDropped(t *testing.T) {
	c, client := runJob(t, JobConfig{TotalMessages: 7, Workers: 2, MessagesPerSec: 1, Topic: "trade"})
	assert.Equal(t, 3, c.Share())
	assert.Equal(t, 1, c.Dropped())
	assert.Len(t, client.messages(), 6)
	byKey := client.byKey()
	assert.Len(t, byKey["key-0"], 3)
	assert.Len(t, byKey["key-1"], 3)
}

func TestTotalSubmissionsNeverExceedShareTimesWorkers(t *testing.T) {
	for _, total := range []int{0, 1, 2, 5, 9, 17, 100} {
		for _, workers := range []int{1, 2, 3, 7} {
			c, client := runJob(t, JobConfig{TotalMessages: total, Workers: workers, MessagesPerSec: 3, Topic: "t"})
			assert.Len(t, client.messages(), workers*(total/workers), "total=%d workers=%d", total, workers)
			for _, p := range c.Progress() {
				assert.Equal(t, int64(total/workers), p)
			}
			for key, msgs := range client.byKey() {
				assert.Len(t, msgs, total/workers, key)
			}
		}
	}
}

func TestZeroBudgetReturnsImmediately(t *testing.T) {
	client := &recordingClient{}
	c, err := NewCoordinator(JobConfig{TotalMessages: 0, Workers: 3, MessagesPerSec: 1, Topic: "t"},
		countingGenerator(), client)
	require.NoError(t, err)
	start := time.Now()
	require.NoError(t, c.Run(context.Background()))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
	assert.Empty(t, client.messages())
	assert.Equal(t, []int64{0, 0, 0}, c.Progress())
}

func TestKeyIsConstantPerWorker(t *testing.T) {
	_, client := runJob(t, JobConfig{TotalMessages: 40, Workers: 4, MessagesPerSec: 10, Topic: "trade"})
	byKey := client.byKey()
	require.Len(t, byKey, 4)
	for i := 0; i < 4; i++ {
		assert.Len(t, byKey[fmt.Sprintf("key-%d", i)], 10)
	}
}

func TestPayloadsAreUnique(t *testing.T) {
	_, client := runJob(t, JobConfig{TotalMessages: 60, Workers: 3, MessagesPerSec: 10, Topic: "trade"})
	seen := make(map[string]bool)
	for _, m := range client.messages() {
		assert.True(t, strings.HasPrefix(m.Payload, "payload-"))
		assert.False(t, seen[m.Payload], m.Payload)
		seen[m.Payload] = true
	}
}

func TestSubmissionErrorsDoNotStopWorkers(t *testing.T) {
	client := &recordingClient{err: xerrors.New("queue full")}
	c, err := NewCoordinator(JobConfig{TotalMessages: 6, Workers: 2, MessagesPerSec: 1, Topic: "t"},
		countingGenerator(), client, noDelay())
	require.NoError(t, err)
	require.NoError(t, c.Run(context.Background()))
	assert.Len(t, client.messages(), 6)
	// errors are not retried and, by default, not even counted
	assert.Equal(t, uint64(0), c.Failed())
}

func TestCountFailuresPolicy(t *testing.T) {
	client := &recordingClient{err: xerrors.New("queue full")}
	c, err := NewCoordinator(JobConfig{TotalMessages: 6, Workers: 2, MessagesPerSec: 1, Topic: "t"},
		countingGenerator(), client, noDelay(), WithAckPolicy(CountFailures))
	require.NoError(t, err)
	require.NoError(t, c.Run(context.Background()))
	assert.Len(t, client.messages(), 6)
	assert.Equal(t, uint64(6), c.Failed())
}

func TestCancelDuringSuspension(t *testing.T) {
	client := &recordingClient{}
	c, err := NewCoordinator(JobConfig{TotalMessages: 1000, Workers: 3, MessagesPerSec: 1, Topic: "t"},
		countingGenerator(), client,
		WithPacerFactory(func(int) Pacer { return FixedDelay{Delay: time.Hour} }))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.Run(ctx)
	}()
	require.Eventually(t, func() bool {
		return len(client.messages()) == 3
	}, 2*time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.True(t, xerrors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("coordinator did not return after cancellation")
	}
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, client.messages(), 3)
	assert.Equal(t, []int64{1, 1, 1}, c.Progress())
}

func TestAlreadyCancelledContext(t *testing.T) {
	client := &recordingClient{}
	c, err := NewCoordinator(JobConfig{TotalMessages: 10, Workers: 2, MessagesPerSec: 1, Topic: "t"},
		countingGenerator(), client, noDelay())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = c.Run(ctx)
	assert.True(t, xerrors.Is(err, context.Canceled))
	assert.Empty(t, client.messages())
}

func TestDeadlineSurfacesFromRun(t *testing.T) {
	client := &recordingClient{}
	c, err := NewCoordinator(JobConfig{TotalMessages: 1000, Workers: 2, MessagesPerSec: 1, Topic: "t"},
		countingGenerator(), client,
		WithPacerFactory(func(int) Pacer { return FixedDelay{Delay: 5 * time.Millisecond} }))
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err = c.Run(ctx)
	assert.True(t, xerrors.Is(err, context.DeadlineExceeded))
	n := len(client.messages())
	assert.Greater(t, n, 0)
	assert.Less(t, n, 1000)
}

func TestFixedDelayIgnoresConfiguredRate(t *testing.T) {
	client := &recordingClient{}
	c, err := NewCoordinator(JobConfig{TotalMessages: 10, Workers: 2, MessagesPerSec: 1_000_000, Topic: "t"},
		countingGenerator(), client,
		WithPacerFactory(func(int) Pacer { return FixedDelay{Delay: 20 * time.Millisecond} }))
	require.NoError(t, err)
	start := time.Now()
	require.NoError(t, c.Run(context.Background()))
	// five sends per worker, each followed by the full delay
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	assert.Len(t, client.messages(), 10)
}

func TestTokenBucketPacing(t *testing.T) {
	factory, err := NewPacerFactory(PacingToken, 0, 100)
	require.NoError(t, err)
	client := &recordingClient{}
	c, err := NewCoordinator(JobConfig{TotalMessages: 20, Workers: 2, MessagesPerSec: 100, Topic: "t"},
		countingGenerator(), client, WithPacerFactory(factory))
	require.NoError(t, err)
	start := time.Now()
	require.NoError(t, c.Run(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	assert.Len(t, client.messages(), 20)
}

func TestWithMemoryBroker(t *testing.T) {
	mem := broker.NewMemory(5)
	c, err := NewCoordinator(JobConfig{TotalMessages: 50, Workers: 5, MessagesPerSec: 500, Topic: "trade"},
		countingGenerator(), mem, noDelay())
	require.NoError(t, err)
	require.NoError(t, c.Run(context.Background()))
	recs := mem.AllRecords("trade")
	assert.Len(t, recs, 50)
	for _, r := range recs {
		assert.Equal(t, broker.PartitionFor(r.Key, 5), r.Partition)
	}
	assert.Equal(t, uint64(50), mem.Stats().Acked)
}

func TestNewCoordinatorValidates(t *testing.T) {
	gen := countingGenerator()
	client := &recordingClient{}
	cases := []struct {
		cfg JobConfig
		err error
	}{
		{JobConfig{TotalMessages: -1, Workers: 1, MessagesPerSec: 1, Topic: "t"}, common_errors.ErrInvalidTotalMessages},
		{JobConfig{TotalMessages: 1, Workers: 0, MessagesPerSec: 1, Topic: "t"}, common_errors.ErrInvalidWorkers},
		{JobConfig{TotalMessages: 1, Workers: 1, MessagesPerSec: 0, Topic: "t"}, common_errors.ErrInvalidRate},
		{JobConfig{TotalMessages: 1, Workers: 1, MessagesPerSec: 1, Topic: ""}, common_errors.ErrEmptyTopic},
	}
	for _, tc := range cases {
		_, err := NewCoordinator(tc.cfg, gen, client)
		assert.True(t, xerrors.Is(err, tc.err), "%+v", tc.cfg)
	}
}

func TestProgressBeforeRun(t *testing.T) {
	c, err := NewCoordinator(JobConfig{TotalMessages: 1, Workers: 1, MessagesPerSec: 1, Topic: "t"},
		countingGenerator(), &recordingClient{})
	require.NoError(t, err)
	assert.Nil(t, c.Progress())
}
