package lattice

import "github.com/flowlattice/flowlattice/policy"

// MultiLabelling is the abstract store: variable name -> MultiLabel
// (spec.md §3).
type MultiLabelling struct {
	vars map[string]MultiLabel
}

// NewMultiLabelling returns an empty store.
func NewMultiLabelling() *MultiLabelling {
	return &MultiLabelling{vars: make(map[string]MultiLabel)}
}

// Get returns the MultiLabel bound to name, and whether it is bound.
func (m *MultiLabelling) Get(name string) (MultiLabel, bool) {
	ml, ok := m.vars[name]
	return ml, ok
}

// IsInitialised reports whether name has ever been bound.
func (m *MultiLabelling) IsInitialised(name string) bool {
	_, ok := m.vars[name]
	return ok
}

// Set binds name to ml, overwriting any prior binding.
func (m *MultiLabelling) Set(name string, ml MultiLabel) {
	m.vars[name] = ml
}

// AddMultilabel combines ml into whatever is already bound to name
// (or installs it directly if name is unbound).
func (m *MultiLabelling) AddMultilabel(name string, ml MultiLabel) {
	if existing, ok := m.vars[name]; ok {
		m.vars[name] = existing.Combine(ml)
	} else {
		m.vars[name] = ml
	}
}

// Delete unbinds name.
func (m *MultiLabelling) Delete(name string) {
	delete(m.vars, name)
}

// Names returns every bound variable name. Order is unspecified.
func (m *MultiLabelling) Names() []string {
	out := make([]string, 0, len(m.vars))
	for name := range m.vars {
		out = append(out, name)
	}
	return out
}

// Clone deep-copies the store, the way a branch fork needs to (spec.md
// §5: "forking for branch analysis is by deep copy").
func (m *MultiLabelling) Clone() *MultiLabelling {
	out := NewMultiLabelling()
	for name, ml := range m.vars {
		out.vars[name] = ml.Clone()
	}
	return out
}

// CombineLabellings merges a and b per-variable via MultiLabel.Combine;
// a variable present in only one side passes through unchanged.
func CombineLabellings(a, b *MultiLabelling) *MultiLabelling {
	out := a.Clone()
	for name, ml := range b.vars {
		if existing, ok := out.vars[name]; ok {
			out.vars[name] = existing.Combine(ml)
		} else {
			out.vars[name] = ml.Clone()
		}
	}
	return out
}

// Conciliate merges a and b for a branch join (spec.md §3): a variable
// bound on both sides combines normally; a variable bound on only one
// side is combined with for_uninitialised_variable(policy,
// Node(name, UninitialisedLine)) to record that it may be undefined on
// the other path.
func Conciliate(pol *policy.Policy, a, b *MultiLabelling) *MultiLabelling {
	out := NewMultiLabelling()

	for name, ml := range a.vars {
		if otherML, ok := b.vars[name]; ok {
			out.vars[name] = ml.Combine(otherML)
		} else {
			synthetic := ForUninitialisedVariable(pol, Node{Name: name, Line: UninitialisedLine, Initialise: true})
			out.vars[name] = ml.Combine(synthetic)
		}
	}
	for name, ml := range b.vars {
		if _, ok := a.vars[name]; ok {
			continue // already merged above
		}
		synthetic := ForUninitialisedVariable(pol, Node{Name: name, Line: UninitialisedLine, Initialise: true})
		out.vars[name] = synthetic.Combine(ml)
	}

	return out
}

// Equal reports whether a and b bind exactly the same variables to
// structurally equal MultiLabels. Used by the loop fixpoint's
// structural-history check (spec.md §4.4's While).
func (m *MultiLabelling) Equal(other *MultiLabelling) bool {
	if len(m.vars) != len(other.vars) {
		return false
	}
	for name, ml := range m.vars {
		oml, ok := other.vars[name]
		if !ok || !ml.Equal(oml) {
			return false
		}
	}
	return true
}
