package auditlog

import (
	"fmt"

	"github.com/handlebauer/ar-io-observer/internal/infrastructure/dedup"
)

// DedupingRecorder suppresses repeat entries that share kind, host, name,
// outcome and error message, so a gateway failing the same way thousands
// of times fills the trail with one line instead of thousands.
type DedupingRecorder struct {
	next   Recorder
	filter *dedup.Filter
}

// NewDedupingRecorder wraps next, suppressing entries the filter has
// already seen.
func NewDedupingRecorder(next Recorder, filter *dedup.Filter) *DedupingRecorder {
	return &DedupingRecorder{next: next, filter: filter}
}

// Record forwards entry to next unless an identical entry was already
// recorded.
func (r *DedupingRecorder) Record(entry Entry) error {
	key := fmt.Sprintf("%s:%s:%s:%s:%s", entry.Kind, entry.Host, entry.Name, entry.Outcome, entry.Error)
	if r.filter.SeenBefore(key) {
		return nil
	}
	return r.next.Record(entry)
}
