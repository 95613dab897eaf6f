package selection

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinator_SelectAndClear(t *testing.T) {
	c := NewCoordinator()
	c.SetVisible([]string{"a", "b"})

	assert.Equal(t, Unselected(), c.State())

	require.NoError(t, c.Select("a"))
	assert.Equal(t, SelectedState("a"), c.State())

	require.NoError(t, c.Select("b"))
	assert.Equal(t, SelectedState("b"), c.State())

	c.Clear()
	assert.Equal(t, Unselected(), c.State())
}

func TestCoordinator_RejectsInvisible(t *testing.T) {
	c := NewCoordinator()
	c.SetVisible([]string{"a"})
	require.NoError(t, c.Select("a"))

	err := c.Select("zzz")
	assert.ErrorIs(t, err, ErrNotVisible)
	assert.Equal(t, SelectedState("a"), c.State())
}

func TestCoordinator_FilterChangeClearsSelection(t *testing.T) {
	c := NewCoordinator()
	c.SetVisible([]string{"a", "b"})
	require.NoError(t, c.Select("a"))

	assert.False(t, c.SetVisible([]string{"a"}))
	assert.Equal(t, SelectedState("a"), c.State())

	assert.True(t, c.SetVisible([]string{"b"}))
	assert.Equal(t, Unselected(), c.State())

	// tekrar görünür olması seçimi geri getirmez
	c.SetVisible([]string{"a", "b"})
	assert.Equal(t, Unselected(), c.State())
}

func TestCoordinator_Subscribers(t *testing.T) {
	c := NewCoordinator()
	c.SetVisible([]string{"a", "b"})

	var got []State
	cancel := c.Subscribe(func(s State) { got = append(got, s) })

	require.NoError(t, c.Select("a"))
	require.NoError(t, c.Select("a")) // değişiklik yok, bildirim yok
	c.SetVisible([]string{"b"})
	c.Clear() // zaten boş

	assert.Equal(t, []State{SelectedState("a"), Unselected()}, got)

	cancel()
	require.NoError(t, c.Select("b"))
	assert.Len(t, got, 2)
}

func TestCoordinator_ListenerMayReadState(t *testing.T) {
	c := NewCoordinator()
	c.SetVisible([]string{"a"})

	var seen State
	c.Subscribe(func(State) { seen = c.State() })
	require.NoError(t, c.Select("a"))
	assert.Equal(t, SelectedState("a"), seen)
}

func TestCoordinator_Concurrent(t *testing.T) {
	c := NewCoordinator()
	ids := []string{"a", "b", "c", "d"}
	c.SetVisible(ids)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = c.Select(ids[i%len(ids)])
			if i%7 == 0 {
				c.Clear()
			}
		}(i)
	}
	wg.Wait()

	s := c.State()
	if s.Selected {
		assert.Contains(t, ids, s.ID)
	}
}
