package game

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSession(t *testing.T) {
	s := NewSession(State{WorldID: 73})
	assert.Equal(t, uint32(73), s.HomeWorld())
	assert.False(t, s.InCombat())

	s.Apply(func(st *State) { *st = State{WorldID: 40, InCombat: true, InContent: true} })
	assert.Equal(t, uint32(40), s.HomeWorld())
	assert.True(t, s.InCombat())
	assert.True(t, s.InRestrictedContent())
	assert.False(t, s.KeybindPressed())

	s.SetKeybind(true)
	assert.True(t, s.KeybindPressed())
	assert.Equal(t, uint32(40), s.HomeWorld())
}

func TestSession_ApplyKeepsOtherFields(t *testing.T) {
	s := NewSession(State{WorldID: 73, InContent: true})
	s.Apply(func(st *State) { st.InCombat = true })
	assert.Equal(t, State{WorldID: 73, InCombat: true, InContent: true}, s.State())
}

func TestSession_ConcurrentPartialUpdates(t *testing.T) {
	s := NewSession(State{})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Apply(func(st *State) { st.WorldID++ })
		}()
		go func() {
			defer wg.Done()
			_ = s.HomeWorld()
			s.Apply(func(st *State) { st.InCombat = !st.InCombat })
		}()
	}
	wg.Wait()

	assert.Equal(t, uint32(50), s.HomeWorld(), "no increment lost")
	assert.False(t, s.InCombat())
}
