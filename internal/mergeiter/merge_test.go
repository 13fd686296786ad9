package mergeiter

import "testing"

func less(a, b int) bool { return a < b }

func TestMergeFourSortedSequences(t *testing.T) {
	a := []int{1, 3, 5, 7, 9}
	b := []int{2, 4, 6, 8, 10}
	c := []int{11, 13, 15, 17, 19}
	d := []int{12, 14, 16, 18, 20}

	it := New(less, FromSlice(a), FromSlice(b), FromSlice(c), FromSlice(d))

	for want := 1; want <= 20; want++ {
		got, ok := it.Next()
		if !ok {
			t.Fatalf("iterator exhausted early, expected %d", want)
		}
		if got != want {
			t.Fatalf("got %d, want %d", got, want)
		}
	}

	if _, ok := it.Next(); ok {
		t.Fatal("expected iterator to be exhausted")
	}
}

func TestTakeTruncates(t *testing.T) {
	got := MergeSlices(less, 3, []int{1, 4, 7}, []int{2, 5, 8}, []int{3, 6, 9})
	want := []int{1, 2, 3}
	for i, v := range want {
		if got[i] != v {
			t.Fatalf("index %d: got %d, want %d", i, got[i], v)
		}
	}
	if len(got) != len(want) {
		t.Fatalf("got %d elements, want %d", len(got), len(want))
	}
}

func TestMergeHandlesEmptySources(t *testing.T) {
	got := MergeSlices(less, 10, nil, []int{1, 2}, nil)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("unexpected result: %v", got)
	}
}
