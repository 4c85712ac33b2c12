package observe

import (
	"slices"
	"sync"
	"testing"
)

type state struct {
	Names []string
	Count int
}

func TestGetAndSet(t *testing.T) {
	s := New(state{Count: 1})
	if got := s.Get().Count; got != 1 {
		t.Fatalf("Get().Count = %d, want 1", got)
	}

	s.Set(state{Count: 2})
	if got := s.Get().Count; got != 2 {
		t.Errorf("Get().Count = %d, want 2", got)
	}
}

func TestUpdateNoChangeSkipsListeners(t *testing.T) {
	s := New(state{})
	calls := 0
	s.Subscribe(func(state, prev state) { calls++ })

	_, changed := s.Update(func(st state) (state, bool) { return st, false })
	if changed {
		t.Error("Update reported a change")
	}
	if calls != 0 {
		t.Errorf("listener called %d times, want 0", calls)
	}

	s.Update(func(st state) (state, bool) {
		st.Count++
		return st, true
	})
	if calls != 1 {
		t.Errorf("listener called %d times, want 1", calls)
	}
}

func TestListenerReceivesPrevious(t *testing.T) {
	s := New(state{Count: 1})
	var gotPrev, gotNext int
	s.Subscribe(func(next, prev state) {
		gotNext, gotPrev = next.Count, prev.Count
	})

	s.Set(state{Count: 5})
	if gotPrev != 1 || gotNext != 5 {
		t.Errorf("listener got prev=%d next=%d, want 1, 5", gotPrev, gotNext)
	}
}

func TestUnsubscribe(t *testing.T) {
	s := New(state{})
	calls := 0
	unsubscribe := s.Subscribe(func(state, state) { calls++ })

	s.Set(state{Count: 1})
	unsubscribe()
	unsubscribe()
	s.Set(state{Count: 2})

	if calls != 1 {
		t.Errorf("listener called %d times, want 1", calls)
	}
}

func TestSelect(t *testing.T) {
	s := New(state{})
	var seen [][]string
	Select(s, func(st state) []string { return st.Names }, func(a, b []string) bool { return slices.Equal(a, b) }, func(names []string) {
		seen = append(seen, names)
	})

	s.Update(func(st state) (state, bool) {
		st.Count++
		return st, true
	})
	if len(seen) != 0 {
		t.Fatalf("selector fired for unrelated change: %v", seen)
	}

	s.Update(func(st state) (state, bool) {
		st.Names = append(slices.Clone(st.Names), "react")
		return st, true
	})
	if len(seen) != 1 || !slices.Equal(seen[0], []string{"react"}) {
		t.Errorf("seen = %v, want [[react]]", seen)
	}
}

func TestConcurrentUpdates(t *testing.T) {
	s := New(state{})
	var mu sync.Mutex
	lastSeen := 0
	ordered := true
	s.Subscribe(func(next, prev state) {
		mu.Lock()
		defer mu.Unlock()
		if prev.Count != lastSeen || next.Count != prev.Count+1 {
			ordered = false
		}
		lastSeen = next.Count
	})

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update(func(st state) (state, bool) {
				st.Count++
				return st, true
			})
		}()
	}
	wg.Wait()

	if got := s.Get().Count; got != 50 {
		t.Errorf("Count = %d, want 50", got)
	}
	if !ordered {
		t.Error("listeners observed transitions out of order")
	}
}
