package watch

// queue accumulates pending records between polls. It is not safe for
// concurrent use; the Watcher guards it.
//
// Only adjacent records coalesce: a record equal to the newest pending one
// is dropped, and a MOD directly following an ADD of the same path is
// absorbed by it. Records for other paths in between keep both.
type queue struct {
	limit      int
	records    []Record
	overflowed bool
}

func newQueue(limit int) *queue {
	return &queue{limit: limit}
}

// push appends r unless it coalesces with the newest pending record. It
// returns false when r was dropped because the queue is full.
func (q *queue) push(r Record) bool {
	if r.Kind != KindError && len(q.records) > 0 {
		last := q.records[len(q.records)-1]
		if last == r {
			return true
		}
		if r.Kind == KindModify && last == (Record{KindAdd, r.Path}) {
			return true
		}
	}

	if q.limit > 0 && len(q.records) >= q.limit {
		q.markOverflow()
		return false
	}
	q.records = append(q.records, r)
	return true
}

// markOverflow appends the loss marker once per drain cycle. The marker may
// exceed the limit by one.
func (q *queue) markOverflow() {
	if q.overflowed {
		return
	}
	q.overflowed = true
	q.records = append(q.records, Record{KindError, overflowMessage})
}

// drain returns every pending record in arrival order and resets the queue.
func (q *queue) drain() []Record {
	out := q.records
	q.records = nil
	q.overflowed = false
	return out
}

func (q *queue) len() int {
	return len(q.records)
}
