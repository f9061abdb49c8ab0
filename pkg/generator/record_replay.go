package generator

import (
	"trade-producer/pkg/common_errors"
	"trade-producer/pkg/recordloader"
	"trade-producer/pkg/utils/syncutils"
)

// RecordReplay cycles through loaded records, id by id in sorted order and
// in file order within an id, wrapping around at the end.
type RecordReplay struct {
	mu       syncutils.Mutex
	payloads []string
	next     int
}

var _ = Generator(&RecordReplay{})

func NewRecordReplay(idx recordloader.Index) (*RecordReplay, error) {
	if idx.NumRecords() == 0 {
		return nil, common_errors.ErrEmptyIndex
	}
	payloads := make([]string, 0, idx.NumRecords())
	for _, id := range idx.IDs() {
		for _, rec := range idx.Records(id) {
			payloads = append(payloads, rec.String())
		}
	}
	return &RecordReplay{payloads: payloads}, nil
}

func (r *RecordReplay) Generate() string {
	r.mu.Lock()
	p := r.payloads[r.next]
	r.next = (r.next + 1) % len(r.payloads)
	r.mu.Unlock()
	return p
}
