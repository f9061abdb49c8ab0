package broker

import (
	"context"

	"trade-producer/pkg/common_errors"
	"trade-producer/pkg/utils/syncutils"

	"github.com/cespare/xxhash/v2"
	"github.com/gammazero/deque"
)

// Record is a message as stored by the memory broker.
type Record struct {
	Message
	Partition int32
	Offset    int64
}

// Memory keeps every submitted message in per-partition logs. Partitions
// are chosen by hashing the key, so one key always lands in one partition.
type Memory struct {
	mu         syncutils.Mutex
	partitions map[string]int32
	defaultPar int32
	logs       map[string][]*deque.Deque[Record]
	offsets    map[string][]int64
	delivery   *deliveryCounter
	closed     syncutils.Flag
}

var _ = Client(&Memory{})

func NewMemory(numPartitions int) *Memory {
	if numPartitions <= 0 {
		numPartitions = 1
	}
	return &Memory{
		partitions: make(map[string]int32),
		defaultPar: int32(numPartitions),
		logs:       make(map[string][]*deque.Deque[Record]),
		offsets:    make(map[string][]int64),
		delivery:   newDeliveryCounter("memory_acked", DEFAULT_REPORT_INTERVAL),
	}
}

// CreateTopic fixes the partition count of a topic. It is a no-op for a
// topic that already exists.
func (m *Memory) CreateTopic(topic string, numPartitions int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createTopicLocked(topic, int32(numPartitions))
}

func (m *Memory) createTopicLocked(topic string, numPartitions int32) {
	if _, ok := m.partitions[topic]; ok {
		return
	}
	if numPartitions <= 0 {
		numPartitions = m.defaultPar
	}
	m.partitions[topic] = numPartitions
	logs := make([]*deque.Deque[Record], numPartitions)
	for i := range logs {
		logs[i] = deque.New[Record]()
	}
	m.logs[topic] = logs
	m.offsets[topic] = make([]int64, numPartitions)
}

func PartitionFor(key string, numPartitions int32) int32 {
	return int32(xxhash.Sum64String(key) % uint64(numPartitions))
}

func (m *Memory) Send(topic, key, payload string) error {
	if m.closed.IsRaised() {
		return common_errors.ErrClientClosed
	}
	if payload == "" {
		return common_errors.ErrEmptyPayload
	}
	m.mu.Lock()
	m.createTopicLocked(topic, m.defaultPar)
	par := PartitionFor(key, m.partitions[topic])
	off := m.offsets[topic][par]
	m.offsets[topic][par] = off + 1
	m.logs[topic][par].PushBack(Record{
		Message:   Message{Topic: topic, Key: key, Payload: payload},
		Partition: par,
		Offset:    off,
	})
	m.mu.Unlock()
	m.delivery.ack(1)
	return nil
}

func (m *Memory) NumPartitions(topic string) int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.partitions[topic]
}

// Records returns the retained records of one partition in offset order.
func (m *Memory) Records(topic string, partition int32) []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	logs, ok := m.logs[topic]
	if !ok || partition < 0 || int(partition) >= len(logs) {
		return nil
	}
	q := logs[partition]
	out := make([]Record, q.Len())
	for i := 0; i < q.Len(); i++ {
		out[i] = q.At(i)
	}
	return out
}

// AllRecords returns the retained records of every partition of topic,
// partition by partition.
func (m *Memory) AllRecords(topic string) []Record {
	n := m.NumPartitions(topic)
	out := make([]Record, 0)
	for p := int32(0); p < n; p++ {
		out = append(out, m.Records(topic, p)...)
	}
	return out
}

// Drain removes and returns up to max records from the head of a
// partition. A max of zero or less drains everything.
func (m *Memory) Drain(topic string, partition int32, max int) []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	logs, ok := m.logs[topic]
	if !ok || partition < 0 || int(partition) >= len(logs) {
		return nil
	}
	q := logs[partition]
	n := q.Len()
	if max > 0 && max < n {
		n = max
	}
	out := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, q.PopFront())
	}
	return out
}

func (m *Memory) Close(ctx context.Context) error {
	m.closed.Raise()
	return nil
}

func (m *Memory) Stats() DeliveryStats {
	return m.delivery.snapshot()
}
