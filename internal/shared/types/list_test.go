package types

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListRoundTrip(t *testing.T) {
	l := NewStringList()
	assert.Equal(t, 0, l.Len())

	want := []string{"alpha", "beta", "alpha", "", "gamma/delta"}
	for i, item := range want {
		assert.Equal(t, i+1, l.Push(item))
	}

	require.Equal(t, len(want), l.Len())
	for i, item := range want {
		got, ok := l.Get(i)
		require.True(t, ok)
		assert.Equal(t, item, got)
	}
	assert.Equal(t, want, l.Items())
}

func TestStringListGetOutOfRange(t *testing.T) {
	l := NewStringList("only")

	for _, i := range []int{-1, 1, 100} {
		got, ok := l.Get(i)
		assert.False(t, ok, "index %d", i)
		assert.Empty(t, got)
	}
}

func TestStringListItemsIsSnapshot(t *testing.T) {
	src := []string{"a", "b"}
	l := NewStringList(src...)
	src[0] = "changed"

	items := l.Items()
	items[1] = "mutated"

	got, _ := l.Get(0)
	assert.Equal(t, "a", got)
	got, _ = l.Get(1)
	assert.Equal(t, "b", got)
}

func TestStringListConcurrentPush(t *testing.T) {
	l := NewStringList()
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				l.Push(fmt.Sprintf("%d-%d", w, i))
			}
		}(w)
	}
	wg.Wait()
	assert.Equal(t, 1000, l.Len())
}
