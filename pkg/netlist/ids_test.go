package netlist

import "testing"

func TestIDAllocator(t *testing.T) {
	a := newIDAllocator()
	for want := uint32(1); want <= 3; want++ {
		if got := a.take(); got != want {
			t.Fatalf("take() = %d, want %d", got, want)
		}
	}

	a.release(2)
	a.release(1)
	if got := a.take(); got != 1 {
		t.Errorf("take() after release = %d, want lowest free id 1", got)
	}
	if got := a.take(); got != 2 {
		t.Errorf("take() = %d, want 2", got)
	}
	if got := a.take(); got != 4 {
		t.Errorf("take() = %d, want 4", got)
	}
}

func TestIDAllocatorClaim(t *testing.T) {
	a := newIDAllocator()
	if a.claim(0) {
		t.Error("claim(0) succeeded, want reserved")
	}
	if !a.claim(2) {
		t.Fatal("claim(2) failed")
	}
	if a.claim(2) {
		t.Error("second claim(2) succeeded")
	}
	if got := a.take(); got != 1 {
		t.Errorf("take() = %d, want 1", got)
	}
	if got := a.take(); got != 3 {
		t.Errorf("take() = %d, want 3 (2 is claimed)", got)
	}

	a.release(2)
	if a.inUse(2) {
		t.Error("inUse(2) after release")
	}
	if !a.claim(2) {
		t.Error("claim of released id failed")
	}
	if got := a.take(); got != 4 {
		t.Errorf("take() = %d, want 4 (claimed id left the free list)", got)
	}
}

func TestIDAllocatorReleaseUnknown(t *testing.T) {
	a := newIDAllocator()
	a.release(7)
	if got := a.take(); got != 1 {
		t.Errorf("take() = %d, want 1", got)
	}
}
