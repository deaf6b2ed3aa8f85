package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestManager_Open(t *testing.T) {
	m := NewManager()
	sess, err := m.Open("s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", sess.ID())
	assert.Equal(t, StateMenu, sess.State())
	assert.Equal(t, 1, m.Count())
}

func TestManager_OpenDuplicate(t *testing.T) {
	m := NewManager()
	_, err := m.Open("s1")
	require.NoError(t, err)
	_, err = m.Open("s1")
	assert.Error(t, err)
	assert.Equal(t, 1, m.Count())
}

func TestManager_OpenEmptyID(t *testing.T) {
	_, err := NewManager().Open("")
	assert.Error(t, err)
}

func TestManager_Close(t *testing.T) {
	m := NewManager()
	_, err := m.Open("s1")
	require.NoError(t, err)
	require.NoError(t, m.Close("s1"))
	_, ok := m.Get("s1")
	assert.False(t, ok)
	assert.Error(t, m.Close("s1"))
}

func TestManager_IDsSorted(t *testing.T) {
	m := NewManager()
	for _, id := range []string{"c", "a", "b"} {
		_, err := m.Open(id)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"a", "b", "c"}, m.IDs())
}

func TestManager_ConcurrentOpenClose(t *testing.T) {
	m := NewManager()
	const n = 100
	var wg sync.WaitGroup

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, _ = m.Open(fmt.Sprintf("s%d", i))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, n, m.Count())

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_ = m.Close(fmt.Sprintf("s%d", i))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 0, m.Count())
	assert.Empty(t, m.IDs())
}

func TestPropertyCountMatchesIDs(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := NewManager()
		open := map[string]bool{}
		ops := rapid.IntRange(1, 40).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			id := fmt.Sprintf("s%d", rapid.IntRange(0, 9).Draw(t, "id"))
			if rapid.Bool().Draw(t, "open") {
				_, err := m.Open(id)
				if (err == nil) == open[id] {
					t.Fatalf("Open(%s) err=%v with open=%v", id, err, open[id])
				}
				open[id] = true
			} else {
				err := m.Close(id)
				if (err == nil) != open[id] {
					t.Fatalf("Close(%s) err=%v with open=%v", id, err, open[id])
				}
				delete(open, id)
			}
		}
		if m.Count() != len(open) || len(m.IDs()) != len(open) {
			t.Fatalf("count %d, ids %d, want %d", m.Count(), len(m.IDs()), len(open))
		}
	})
}
