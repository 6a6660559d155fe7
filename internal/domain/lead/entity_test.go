package lead

import "testing"

func TestCloses(t *testing.T) {
	for _, prev := range Statuses {
		for _, next := range Statuses {
			want := next == StatusClosed && prev != StatusClosed
			if got := Closes(prev, next); got != want {
				t.Errorf("Closes(%s, %s) = %v, want %v", prev, next, got, want)
			}
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range Statuses {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []Status{"", "closed", "PENDING", "DONE"} {
		if s.Valid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}
