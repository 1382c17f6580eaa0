package diet

import "testing"

func TestDietAllocatesSmallestFree(t *testing.T) {
	d := New()
	for want := uint32(0); want < 5; want++ {
		got, ok := d.Alloc()
		if !ok {
			t.Fatalf("alloc failed at %d", want)
		}
		if got != want {
			t.Errorf("allocated %d, want %d", got, want)
		}
	}
}

func TestDietReusesFreedIds(t *testing.T) {
	d := New()
	for i := 0; i < 4; i++ {
		d.Alloc()
	}
	d.Free(1)
	d.Free(2)
	if got, _ := d.Alloc(); got != 1 {
		t.Errorf("allocated %d after freeing 1 and 2, want 1", got)
	}
	if got, _ := d.Alloc(); got != 2 {
		t.Errorf("allocated %d, want 2", got)
	}
	if got, _ := d.Alloc(); got != 4 {
		t.Errorf("allocated %d, want 4", got)
	}
}

func TestDietFreeMergesIntervals(t *testing.T) {
	d := New()
	for i := 0; i < 5; i++ {
		d.Alloc()
	}
	d.Free(2)
	if d.Contains(2) {
		t.Errorf("id 2 still allocated after free")
	}
	if len(d.ivs) != 2 {
		t.Errorf("free in the middle should split into 2 intervals, got %d", len(d.ivs))
	}
	if got, _ := d.Alloc(); got != 2 {
		t.Fatalf("allocated %d, want 2", got)
	}
	if len(d.ivs) != 1 {
		t.Errorf("re-allocating the hole should merge back to 1 interval, got %d", len(d.ivs))
	}
}

func TestDietFreeUnallocatedIsNoop(t *testing.T) {
	d := New()
	d.Free(7)
	if d.Contains(7) {
		t.Errorf("freeing an unallocated id allocated it")
	}
	if got, _ := d.Alloc(); got != 0 {
		t.Errorf("allocated %d, want 0", got)
	}
}
