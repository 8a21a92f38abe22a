package netlist

import (
	"maps"
	"slices"

	"github.com/matzehuels/gatewalk/pkg/errors"
)

// Module is a node of the design hierarchy. It references, but does not own,
// a subset of the netlist's gates; every gate belongs to exactly one module.
type Module struct {
	id       ModuleID
	name     string
	parent   ModuleID
	children []ModuleID
	gates    map[GateID]struct{}
}

func newModule(id ModuleID, name string, parent ModuleID) *Module {
	return &Module{id: id, name: name, parent: parent, gates: make(map[GateID]struct{})}
}

// ID returns the module id.
func (m *Module) ID() ModuleID { return m.id }

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// Parent returns the parent id, or 0 for the top module.
func (m *Module) Parent() ModuleID { return m.parent }

// IsTop reports whether m is the top module.
func (m *Module) IsTop() bool { return m.parent == 0 }

// Gates returns the ids of the gates directly assigned to m, sorted.
func (m *Module) Gates() []GateID { return slices.Sorted(maps.Keys(m.gates)) }

// Submodules returns the ids of the direct children in creation order.
func (m *Module) Submodules() []ModuleID { return slices.Clone(m.children) }

// TopModule returns the root of the hierarchy.
func (nl *Netlist) TopModule() *Module { return nl.top }

// Module returns the module with the given id, or nil.
func (nl *Netlist) Module(id ModuleID) *Module { return nl.modules[id] }

// Modules returns all modules sorted by id, the top module first.
func (nl *Netlist) Modules() []*Module { return sortedValues(nl.modules) }

// ContainsModule reports whether m is a live module of this netlist.
func (nl *Netlist) ContainsModule(m *Module) bool {
	return m != nil && nl.modules[m.id] == m
}

// CreateModule creates a module below parent and moves gates into it.
func (nl *Netlist) CreateModule(name string, parent *Module, gates ...*Gate) (*Module, error) {
	if err := nl.validateModule(name, parent, gates); err != nil {
		return nil, err
	}
	return nl.addModule(ModuleID(nl.moduleIDs.take()), name, parent, gates), nil
}

// CreateModuleWithID creates a module with an explicit id. It fails with
// ID_IN_USE when the id belongs to a live module.
func (nl *Netlist) CreateModuleWithID(id ModuleID, name string, parent *Module, gates ...*Gate) (*Module, error) {
	if id == 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "module id 0 is reserved")
	}
	if err := nl.validateModule(name, parent, gates); err != nil {
		return nil, err
	}
	if !nl.moduleIDs.claim(uint32(id)) {
		return nil, errors.New(errors.ErrCodeIDInUse, "module id %d is already in use", id)
	}
	return nl.addModule(id, name, parent, gates), nil
}

func (nl *Netlist) validateModule(name string, parent *Module, gates []*Gate) error {
	if err := errors.ValidateName("module", name); err != nil {
		return err
	}
	if parent == nil {
		return errors.New(errors.ErrCodeInvalidArgument, "module %s needs a parent; only the top module has none", name)
	}
	if err := nl.checkModule(parent); err != nil {
		return err
	}
	for _, g := range gates {
		if err := nl.checkGate(g); err != nil {
			return err
		}
	}
	return nil
}

func (nl *Netlist) addModule(id ModuleID, name string, parent *Module, gates []*Gate) *Module {
	m := newModule(id, name, parent.id)
	nl.modules[id] = m
	parent.children = append(parent.children, id)
	for _, g := range gates {
		nl.moveGate(g, m)
	}
	nl.bump()
	return m
}

// DeleteModule removes m. Its gates and submodules move to its parent.
// The top module cannot be deleted.
func (nl *Netlist) DeleteModule(m *Module) error {
	if err := nl.checkModule(m); err != nil {
		return err
	}
	if m.IsTop() {
		return errors.New(errors.ErrCodeInvalidArgument, "the top module cannot be deleted")
	}
	parent := nl.modules[m.parent]
	for _, id := range m.Gates() {
		nl.moveGate(nl.gates[id], parent)
	}
	for _, child := range m.children {
		nl.modules[child].parent = parent.id
		parent.children = append(parent.children, child)
	}
	parent.children = slices.DeleteFunc(parent.children, func(id ModuleID) bool { return id == m.id })
	m.children = nil
	delete(nl.modules, m.id)
	nl.moduleIDs.release(uint32(m.id))
	nl.bump()
	return nil
}

// AssignGate moves g into m, removing it from its previous module.
func (nl *Netlist) AssignGate(m *Module, g *Gate) error {
	if err := nl.checkModule(m); err != nil {
		return err
	}
	if err := nl.checkGate(g); err != nil {
		return err
	}
	if g.module == m.id {
		return nil
	}
	nl.moveGate(g, m)
	nl.bump()
	return nil
}

// RemoveGateFromModule removes g from m and reassigns it to the top module.
func (nl *Netlist) RemoveGateFromModule(m *Module, g *Gate) error {
	if err := nl.checkModule(m); err != nil {
		return err
	}
	if err := nl.checkGate(g); err != nil {
		return err
	}
	if m.IsTop() {
		return errors.New(errors.ErrCodeInvalidArgument, "gate %s cannot be removed from the top module", g.name)
	}
	if g.module != m.id {
		return errors.New(errors.ErrCodeInvalidArgument, "gate %s is not assigned to module %s", g.name, m.name)
	}
	nl.moveGate(g, nl.top)
	nl.bump()
	return nil
}

func (nl *Netlist) moveGate(g *Gate, to *Module) {
	delete(nl.modules[g.module].gates, g.id)
	to.gates[g.id] = struct{}{}
	g.module = to.id
}

// SetParentModule moves m below parent. If parent is currently a descendant
// of m, parent is first lifted to m's old parent so the hierarchy stays a tree.
func (nl *Netlist) SetParentModule(m, parent *Module) error {
	if err := nl.checkModule(m); err != nil {
		return err
	}
	if parent == nil {
		return errors.New(errors.ErrCodeInvalidArgument, "nil parent module")
	}
	if err := nl.checkModule(parent); err != nil {
		return err
	}
	if m.IsTop() {
		return errors.New(errors.ErrCodeInvalidArgument, "the top module cannot have a parent")
	}
	if m == parent {
		return errors.New(errors.ErrCodeInvalidArgument, "module %s cannot be its own parent", m.name)
	}
	if m.parent == parent.id {
		return nil
	}
	if nl.isDescendant(parent, m) {
		nl.reparent(parent, nl.modules[m.parent])
	}
	nl.reparent(m, parent)
	nl.bump()
	return nil
}

func (nl *Netlist) reparent(m, parent *Module) {
	old := nl.modules[m.parent]
	old.children = slices.DeleteFunc(old.children, func(id ModuleID) bool { return id == m.id })
	parent.children = append(parent.children, m.id)
	m.parent = parent.id
}

// isDescendant reports whether m lies strictly below ancestor.
func (nl *Netlist) isDescendant(m, ancestor *Module) bool {
	for id := m.parent; id != 0; id = nl.modules[id].parent {
		if id == ancestor.id {
			return true
		}
	}
	return false
}

// ModuleContainsGate reports whether g is assigned to m or, when recursive,
// to any module below m.
func (nl *Netlist) ModuleContainsGate(m *Module, g *Gate, recursive bool) bool {
	if !nl.ContainsModule(m) || !nl.ContainsGate(g) {
		return false
	}
	if g.module == m.id {
		return true
	}
	return recursive && nl.isDescendant(nl.modules[g.module], m)
}

// ModuleContainsModule reports whether other is a direct child of m or, when
// recursive, any descendant.
func (nl *Netlist) ModuleContainsModule(m, other *Module, recursive bool) bool {
	if !nl.ContainsModule(m) || !nl.ContainsModule(other) || m == other {
		return false
	}
	if other.parent == m.id {
		return true
	}
	return recursive && nl.isDescendant(other, m)
}

func (nl *Netlist) checkModule(m *Module) error {
	if m == nil {
		return errors.New(errors.ErrCodeInvalidArgument, "nil module")
	}
	if nl.modules[m.id] != m {
		return errors.New(errors.ErrCodeNotInNetlist, "module %d (%s) does not belong to the netlist", m.id, m.name)
	}
	return nil
}
