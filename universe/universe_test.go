package universe

import (
	"testing"

	"github.com/sivertb/woburn/geometry"
	"github.com/sivertb/woburn/output"
	"github.com/sivertb/woburn/zipper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapped(id output.ID, x int32, w, h uint32) output.Mapped {
	return output.Mapped{
		Output: output.Output{ID: id, Size: geometry.Size{W: w, H: h}, Scale: 1},
		Rect:   geometry.NewRect(geometry.V2{X: x}, geometry.Size{W: w, H: h}),
	}
}

func tags(u *Universe[int]) (screens, hidden []string) {
	u.Screens.Each(func(s Screen[int]) {
		screens = append(screens, s.Workspace.Tag)
	})
	for _, ws := range u.Hidden {
		hidden = append(hidden, ws.Tag)
	}
	return
}

func countOf(u *Universe[int], w int) int {
	n := 0
	match := func(o int) bool { return o == w }
	u.Screens.Each(func(s Screen[int]) {
		if s.Workspace.Windows.Any(match) {
			n++
		}
	})
	for _, ws := range u.Hidden {
		if ws.Windows.Any(match) {
			n++
		}
	}
	return n
}

func TestNewUniverseAllWorkspacesHidden(t *testing.T) {
	u := New[int]([]string{"1", "2", "3"})
	screens, hidden := tags(u)
	assert.Empty(t, screens)
	assert.Equal(t, []string{"1", "2", "3"}, hidden)
}

func TestSetOutputsDrawsFromHidden(t *testing.T) {
	u := New[int]([]string{"1", "2", "3"})
	u.SetOutputs([]output.Mapped{mapped(1, 0, 1920, 1080), mapped(2, 1920, 1280, 720)})
	screens, hidden := tags(u)
	assert.Equal(t, []string{"1", "2"}, screens)
	assert.Equal(t, []string{"3"}, hidden)
}

func TestSetOutputsSurplusOutputsGetNoScreen(t *testing.T) {
	u := New[int]([]string{"1"})
	u.SetOutputs([]output.Mapped{mapped(1, 0, 1920, 1080), mapped(2, 1920, 1280, 720)})
	assert.Equal(t, 1, u.Screens.Len())
}

func TestSetOutputsIdempotent(t *testing.T) {
	u := New[int]([]string{"1", "2"})
	outs := []output.Mapped{mapped(1, 0, 1920, 1080)}
	u.Insert(7)
	u.SetOutputs(outs)
	u.Insert(9)
	first, firstHidden := tags(u)
	u.SetOutputs(outs)
	second, secondHidden := tags(u)
	assert.Equal(t, first, second)
	assert.Equal(t, firstHidden, secondHidden)
	assert.Equal(t, 1, countOf(u, 7))
	assert.Equal(t, 1, countOf(u, 9))
}

func TestInsertGoesToFocusedWorkspace(t *testing.T) {
	u := New[int]([]string{"1", "2"})
	u.SetOutputs([]output.Mapped{mapped(1, 0, 1920, 1080)})
	u.Insert(7)
	require.Equal(t, 1, countOf(u, 7))
	s, ok := u.Screens.Focus()
	require.True(t, ok)
	f, ok := s.Workspace.Windows.Focus()
	require.True(t, ok)
	assert.Equal(t, 7, f)
}

func TestInsertWithoutScreensGoesToFirstHidden(t *testing.T) {
	u := New[int]([]string{"1", "2"})
	u.Insert(7)
	assert.True(t, u.Hidden[0].Windows.Any(func(w int) bool { return w == 7 }))
}

func TestInsertWithoutWorkspacesIsNoop(t *testing.T) {
	u := New[int](nil)
	u.Insert(7)
	assert.Equal(t, 0, countOf(u, 7))
}

func TestWindowUniqueness(t *testing.T) {
	u := New[int]([]string{"1", "2", "3"})
	u.SetOutputs([]output.Mapped{mapped(1, 0, 1920, 1080), mapped(2, 1920, 1280, 720)})
	for w := 0; w < 5; w++ {
		u.Insert(w)
	}
	u.View("2")
	u.Insert(5)
	for w := 0; w < 6; w++ {
		assert.LessOrEqual(t, countOf(u, w), 1, "window %d appears in more than one workspace", w)
	}
}

func TestInsertDeleteRoundTrip(t *testing.T) {
	u := New[int]([]string{"1"})
	u.SetOutputs([]output.Mapped{mapped(1, 0, 1920, 1080)})
	u.Insert(1)
	u.Insert(2)
	s, _ := u.Screens.Focus()
	before := zipper.ToSlice(s.Workspace.Windows)
	u.Insert(9)
	u.Delete(9)
	s, _ = u.Screens.Focus()
	assert.Equal(t, before, zipper.ToSlice(s.Workspace.Windows))
}

func TestDeleteRemovesFloating(t *testing.T) {
	u := New[int]([]string{"1"})
	u.SetOutputs([]output.Mapped{mapped(1, 0, 1920, 1080)})
	u.Insert(1)
	u.Float(1, geometry.NewRect(geometry.V2{X: 10, Y: 10}, geometry.Size{W: 100, H: 100}))
	u.Delete(1)
	assert.Equal(t, 0, countOf(u, 1))
	assert.Empty(t, u.Floating)
}

func TestFilterDropsRejectedEverywhere(t *testing.T) {
	u := New[int]([]string{"1", "2"})
	u.SetOutputs([]output.Mapped{mapped(1, 0, 1920, 1080)})
	u.Insert(1)
	u.Insert(2)
	u.View("2")
	u.Insert(3)
	u.Float(3, geometry.NewRect(geometry.V2{}, geometry.Size{W: 10, H: 10}))
	u.Filter(func(w int) bool { return w%2 == 0 })
	assert.Equal(t, 0, countOf(u, 1))
	assert.Equal(t, 1, countOf(u, 2))
	assert.Equal(t, 0, countOf(u, 3))
	assert.Empty(t, u.Floating)
}

func TestOnOutput(t *testing.T) {
	u := New[int]([]string{"1", "2"})
	u.SetOutputs([]output.Mapped{mapped(1, 0, 1920, 1080), mapped(2, 1920, 1280, 720)})
	u.Insert(7)
	assert.Equal(t, []int{7}, u.OnOutput(1))
	assert.Empty(t, u.OnOutput(2))
	assert.Empty(t, u.OnOutput(9))
}

func TestViewSwapsWithHidden(t *testing.T) {
	u := New[int]([]string{"1", "2"})
	u.SetOutputs([]output.Mapped{mapped(1, 0, 1920, 1080)})
	u.Insert(7)
	u.View("2")
	screens, hidden := tags(u)
	assert.Equal(t, []string{"2"}, screens)
	assert.Equal(t, []string{"1"}, hidden)
	assert.True(t, u.Hidden[0].Windows.Any(func(w int) bool { return w == 7 }))
}

func TestViewSwapsBetweenScreens(t *testing.T) {
	u := New[int]([]string{"1", "2"})
	u.SetOutputs([]output.Mapped{mapped(1, 0, 1920, 1080), mapped(2, 1920, 1280, 720)})
	u.View("2")
	screens, _ := tags(u)
	assert.Equal(t, []string{"2", "1"}, screens)
}

func TestViewUnknownTagIsNoop(t *testing.T) {
	u := New[int]([]string{"1"})
	u.SetOutputs([]output.Mapped{mapped(1, 0, 1920, 1080)})
	u.View("9")
	screens, _ := tags(u)
	assert.Equal(t, []string{"1"}, screens)
}
