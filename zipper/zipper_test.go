package zipper

import "testing"

func TestZipperEmpty(t *testing.T) {
	z := New[int]()
	if !z.Empty() {
		t.Errorf("new zipper is not empty")
	}
	if _, ok := z.Focus(); ok {
		t.Errorf("empty zipper has a focus")
	}
	if z.Len() != 0 {
		t.Errorf("empty zipper has length %d", z.Len())
	}
}

func TestZipperInsertFocuses(t *testing.T) {
	z := New[int]()
	z.Insert(1)
	z.Insert(2)
	z.Insert(3)
	if f, _ := z.Focus(); f != 3 {
		t.Errorf("focus is %d, want 3", f)
	}
	got := ToSlice(z)
	want := []int{3, 2, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("order is %v, want %v", got, want)
			break
		}
	}
}

func TestZipperInsertDeleteRoundTrip(t *testing.T) {
	z := FromSlice([]int{1, 2, 3})
	before := ToSlice(z)
	z.Insert(9)
	z.Delete(func(v int) bool { return v == 9 })
	after := ToSlice(z)
	if len(before) != len(after) {
		t.Fatalf("length changed: %v -> %v", before, after)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("round trip changed order: %v -> %v", before, after)
			break
		}
	}
	if f, _ := z.Focus(); f != 1 {
		t.Errorf("focus is %d after round trip, want 1", f)
	}
}

func TestZipperDeleteFocusMovesNext(t *testing.T) {
	z := FromSlice([]int{1, 2, 3})
	if !z.Delete(func(v int) bool { return v == 1 }) {
		t.Fatalf("delete of focused element failed")
	}
	if f, _ := z.Focus(); f != 2 {
		t.Errorf("focus is %d, want next element 2", f)
	}
	z = FromSlice([]int{1})
	z.Delete(func(v int) bool { return v == 1 })
	if !z.Empty() {
		t.Errorf("zipper not empty after deleting the only element")
	}
}

func TestZipperDeleteLastFocusMovesPrevious(t *testing.T) {
	z := FromSlice([]int{1, 2})
	z.FocusDown()
	if f, _ := z.Focus(); f != 2 {
		t.Fatalf("focus is %d, want 2", f)
	}
	z.Delete(func(v int) bool { return v == 2 })
	if f, _ := z.Focus(); f != 1 {
		t.Errorf("focus is %d, want previous element 1", f)
	}
}

func TestZipperFocusWraps(t *testing.T) {
	z := FromSlice([]int{1, 2, 3})
	z.FocusDown()
	z.FocusDown()
	z.FocusDown()
	if f, _ := z.Focus(); f != 1 {
		t.Errorf("focus is %d after wrap, want 1", f)
	}
	z.FocusUp()
	if f, _ := z.Focus(); f != 3 {
		t.Errorf("focus is %d after wrapping up, want 3", f)
	}
}

func TestZipperFilter(t *testing.T) {
	z := FromSlice([]int{1, 2, 3, 4})
	z.Filter(func(v int) bool { return v%2 == 0 })
	got := ToSlice(z)
	if len(got) != 2 || got[0] != 2 || got[1] != 4 {
		t.Errorf("filter kept %v, want [2 4]", got)
	}
	if f, _ := z.Focus(); f != 2 {
		t.Errorf("focus is %d after filter, want 2", f)
	}
	z.Filter(func(v int) bool { return false })
	if !z.Empty() {
		t.Errorf("zipper not empty after filtering everything out")
	}
}
