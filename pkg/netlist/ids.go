package netlist

import (
	"slices"
	"strconv"
)

// GateID identifies a gate within its netlist. The zero value is invalid.
type GateID uint32

// NetID identifies a net within its netlist. The zero value is invalid.
type NetID uint32

// ModuleID identifies a module within its netlist. The zero value is invalid.
// The top module always has id 1.
type ModuleID uint32

// TopModuleID is the id of the top module of every netlist.
const TopModuleID ModuleID = 1

func (id GateID) String() string   { return strconv.FormatUint(uint64(id), 10) }
func (id NetID) String() string    { return strconv.FormatUint(uint64(id), 10) }
func (id ModuleID) String() string { return strconv.FormatUint(uint64(id), 10) }

// idAllocator hands out unique ids for one entity kind. Released ids go to a
// free list and are handed out again lowest first; otherwise ids grow from
// next, skipping ids that were claimed explicitly.
type idAllocator struct {
	next uint32
	used map[uint32]struct{}
	free []uint32 // sorted ascending
}

func newIDAllocator() idAllocator {
	return idAllocator{next: 1, used: make(map[uint32]struct{})}
}

// take returns a fresh id and marks it used.
func (a *idAllocator) take() uint32 {
	if len(a.free) > 0 {
		id := a.free[0]
		a.free = a.free[1:]
		a.used[id] = struct{}{}
		return id
	}
	for {
		if _, taken := a.used[a.next]; !taken {
			break
		}
		a.next++
	}
	id := a.next
	a.next++
	a.used[id] = struct{}{}
	return id
}

// claim marks an explicit id as used. It reports false for 0 and for ids
// that are already in use.
func (a *idAllocator) claim(id uint32) bool {
	if id == 0 {
		return false
	}
	if _, taken := a.used[id]; taken {
		return false
	}
	a.used[id] = struct{}{}
	if i, found := slices.BinarySearch(a.free, id); found {
		a.free = slices.Delete(a.free, i, i+1)
	}
	return true
}

// release returns id to the free list.
func (a *idAllocator) release(id uint32) {
	if _, taken := a.used[id]; !taken {
		return
	}
	delete(a.used, id)
	i, found := slices.BinarySearch(a.free, id)
	if !found {
		a.free = slices.Insert(a.free, i, id)
	}
}

func (a *idAllocator) inUse(id uint32) bool {
	_, taken := a.used[id]
	return taken
}
