package nav

import "testing"

func TestMemoryHistoryPushTruncatesForward(t *testing.T) {
	h := NewMemoryHistory("/")
	h.Push(State{Path: "/a"}, "/a")
	h.Push(State{Path: "/b"}, "/b")
	h.Back()
	h.Push(State{Path: "/c"}, "/c")

	if h.Len() != 3 {
		t.Errorf("Len() = %d, want 3", h.Len())
	}
	if h.Forward() {
		t.Error("Forward() after push should have nowhere to go")
	}
	if h.Location() != "/c" {
		t.Errorf("Location() = %q", h.Location())
	}
}

func TestMemoryHistoryBounds(t *testing.T) {
	h := NewMemoryHistory("")
	if h.Location() != "/" {
		t.Errorf("Location() = %q, want /", h.Location())
	}
	if h.Back() || h.Forward() || h.Go(0) {
		t.Error("moves on a single-entry history should fail")
	}
}

func TestMemoryHistoryPopState(t *testing.T) {
	h := NewMemoryHistory("/")
	h.Push(State{}, "/sobre")

	var got []string
	remove := h.OnPopState(func(loc string) { got = append(got, loc) })

	h.Back()
	h.Forward()
	remove()
	h.Back()

	if len(got) != 2 || got[0] != "/" || got[1] != "/sobre" {
		t.Errorf("popstate locations = %v", got)
	}
}

func TestMemoryHistoryPushDoesNotFirePopState(t *testing.T) {
	h := NewMemoryHistory("/")
	fired := false
	h.OnPopState(func(string) { fired = true })
	h.Push(State{}, "/a")
	h.Replace(State{}, "/b")
	if fired {
		t.Error("Push/Replace must not fire popstate")
	}
}
