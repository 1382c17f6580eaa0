package tree

import "testing"

// buildTestTree returns
//
//	    1
//	   / \
//	below above
//	 2     3
//	       |
//	       4 (below 3)
func buildTestTree() Tree[int] {
	t3 := Leaf(3)
	t3.Below = append(t3.Below, Leaf(4))
	return Tree[int]{
		Below: []Tree[int]{Leaf(2)},
		Label: 1,
		Above: []Tree[int]{t3},
	}
}

func sliceEq(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTreeFlattenOrder(t *testing.T) {
	got := buildTestTree().Flatten()
	want := []int{2, 1, 4, 3}
	if !sliceEq(got, want) {
		t.Errorf("flatten order is %v, want %v", got, want)
	}
}

func TestTreeFind(t *testing.T) {
	z, ok := Find(buildTestTree(), func(v int) bool { return v == 4 })
	if !ok {
		t.Fatalf("did not find label 4")
	}
	if z.Focus().Label != 4 {
		t.Errorf("focus label is %d, want 4", z.Focus().Label)
	}
	if _, ok := Find(buildTestTree(), func(v int) bool { return v == 9 }); ok {
		t.Errorf("found a label that is not in the tree")
	}
}

func TestTreeDelete(t *testing.T) {
	z, ok := Find(buildTestTree(), func(v int) bool { return v == 3 })
	if !ok {
		t.Fatalf("did not find label 3")
	}
	remaining, removed, at, ok := z.Delete()
	if !ok {
		t.Fatalf("delete of non-root failed")
	}
	if !sliceEq(remaining.Flatten(), []int{2, 1}) {
		t.Errorf("remaining tree is %v, want [2 1]", remaining.Flatten())
	}
	if !sliceEq(removed.Flatten(), []int{4, 3}) {
		t.Errorf("removed sub-tree is %v, want [4 3]", removed.Flatten())
	}
	if at.Parent != 1 || at.InBelow || at.Index != 0 {
		t.Errorf("unexpected shuffle record: %+v", at)
	}
}

func TestTreeDeleteRootFails(t *testing.T) {
	z, _ := Find(buildTestTree(), func(v int) bool { return v == 1 })
	if _, _, _, ok := z.Delete(); ok {
		t.Errorf("deleting the root should not be possible")
	}
}

func TestTreeGraftViaRebuild(t *testing.T) {
	root := buildTestTree()
	z, ok := Find(root, func(v int) bool { return v == 2 })
	if !ok {
		t.Fatalf("did not find label 2")
	}
	focus := z.Focus()
	focus.Insert(Leaf(5))
	rebuilt := z.WithFocus(focus).Rebuild()
	if !sliceEq(rebuilt.Flatten(), []int{2, 5, 1, 4, 3}) {
		t.Errorf("rebuilt tree is %v, want [2 5 1 4 3]", rebuilt.Flatten())
	}
	// the original tree is untouched
	if !sliceEq(root.Flatten(), []int{2, 1, 4, 3}) {
		t.Errorf("rebuild modified the source tree: %v", root.Flatten())
	}
}

func TestTreeCount(t *testing.T) {
	if n := buildTestTree().Count(); n != 4 {
		t.Errorf("count is %d, want 4", n)
	}
}
