package watch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueueCoalescesAdjacentDuplicates(t *testing.T) {
	q := newQueue(0)
	q.push(Record{KindModify, "/a"})
	q.push(Record{KindModify, "/a"})
	q.push(Record{KindModify, "/b"})

	assert.Equal(t, []Record{{KindModify, "/a"}, {KindModify, "/b"}}, q.drain())
	assert.Empty(t, q.drain())
}

func TestQueueKeepsInterleavedRecords(t *testing.T) {
	q := newQueue(0)
	q.push(Record{KindModify, "/a"})
	q.push(Record{KindModify, "/b"})
	q.push(Record{KindModify, "/a"})

	assert.Equal(t, []Record{
		{KindModify, "/a"},
		{KindModify, "/b"},
		{KindModify, "/a"},
	}, q.drain())
}

func TestQueueAddAbsorbsModify(t *testing.T) {
	q := newQueue(0)
	q.push(Record{KindAdd, "/f"})
	q.push(Record{KindModify, "/f"})
	q.push(Record{KindRemove, "/f"})
	q.push(Record{KindModify, "/f"})

	assert.Equal(t, []Record{
		{KindAdd, "/f"},
		{KindRemove, "/f"},
		{KindModify, "/f"},
	}, q.drain())
}

func TestQueueAddAbsorbsOnlyAdjacentModify(t *testing.T) {
	q := newQueue(0)
	q.push(Record{KindAdd, "/f"})
	q.push(Record{KindAdd, "/g"})
	q.push(Record{KindModify, "/f"})

	assert.Equal(t, []Record{
		{KindAdd, "/f"},
		{KindAdd, "/g"},
		{KindModify, "/f"},
	}, q.drain())
}

func TestQueueOverflowMarksLossOnce(t *testing.T) {
	q := newQueue(2)
	assert.True(t, q.push(Record{KindAdd, "/1"}))
	assert.True(t, q.push(Record{KindAdd, "/2"}))
	assert.False(t, q.push(Record{KindAdd, "/3"}))
	assert.False(t, q.push(Record{KindAdd, "/4"}))

	got := q.drain()
	assert.Equal(t, []Record{
		{KindAdd, "/1"},
		{KindAdd, "/2"},
		{KindError, overflowMessage},
	}, got)

	// A fresh cycle accepts records again.
	assert.True(t, q.push(Record{KindAdd, "/5"}))
	assert.Len(t, q.drain(), 1)
}

func TestQueueErrorsNeverCoalesce(t *testing.T) {
	q := newQueue(0)
	q.push(Record{KindError, "boom"})
	q.push(Record{KindError, "boom"})
	assert.Len(t, q.drain(), 2)
}

func TestParseRecord(t *testing.T) {
	r, err := ParseRecord("ADD:/tmp/x:y")
	assert.NoError(t, err)
	assert.Equal(t, Record{KindAdd, "/tmp/x:y"}, r)
	assert.Equal(t, "ADD:/tmp/x:y", r.String())

	_, err = ParseRecord("no-colon")
	assert.Error(t, err)
	_, err = ParseRecord("XYZ:/p")
	assert.Error(t, err)
}
