package recordloader

import (
	"sort"

	"github.com/Jeffail/gabs/v2"
)

// Index groups loaded records by their id, keeping file order within each
// id.
type Index map[string][]*gabs.Container

func (idx Index) Len() int {
	return len(idx)
}

func (idx Index) Records(id string) []*gabs.Container {
	return idx[id]
}

// IDs returns every id in sorted order.
func (idx Index) IDs() []string {
	ids := make([]string, 0, len(idx))
	for id := range idx {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NumRecords counts records across all ids.
func (idx Index) NumRecords() int {
	n := 0
	for _, recs := range idx {
		n += len(recs)
	}
	return n
}
