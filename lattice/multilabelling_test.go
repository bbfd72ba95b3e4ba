package lattice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMultiLabelling_SetGet(t *testing.T) {
	m := NewMultiLabelling()
	assert.False(t, m.IsInitialised("x"))

	ml := EmptyMultiLabel()
	ml.labels["sqli"] = SingleSource(NewNode("request", 1))
	m.Set("x", ml)

	assert.True(t, m.IsInitialised("x"))
	got, ok := m.Get("x")
	assert.True(t, ok)
	assert.True(t, got.Equal(ml))
}

func TestMultiLabelling_AddMultilabelCombines(t *testing.T) {
	m := NewMultiLabelling()
	first := EmptyMultiLabel()
	first.labels["sqli"] = SingleSource(NewNode("request", 1))
	m.Set("x", first)

	second := EmptyMultiLabel()
	second.labels["sqli"] = SingleSource(NewNode("other", 2))
	m.AddMultilabel("x", second)

	got, _ := m.Get("x")
	label, _ := got.Get("sqli")
	assert.Len(t, label.Pairs(), 2)
}

func TestMultiLabelling_Delete(t *testing.T) {
	m := NewMultiLabelling()
	m.Set("x", EmptyMultiLabel())
	m.Delete("x")

	assert.False(t, m.IsInitialised("x"))
}

func TestMultiLabelling_CloneIsIndependent(t *testing.T) {
	m := NewMultiLabelling()
	ml := EmptyMultiLabel()
	ml.labels["sqli"] = SingleSource(NewNode("request", 1))
	m.Set("x", ml)

	clone := m.Clone()
	clone.Delete("x")

	assert.True(t, m.IsInitialised("x"))
	assert.False(t, clone.IsInitialised("x"))
}

func TestMultiLabelling_ConciliateUndefinedOnOneSide(t *testing.T) {
	pol := samplePolicy()

	s1 := NewMultiLabelling()
	defined := EmptyMultiLabel()
	defined.labels["sqli"] = SingleSource(NewNode("request", 1))
	s1.Set("a", defined)

	s2 := NewMultiLabelling()

	merged := Conciliate(pol, s1, s2)

	ml, ok := merged.Get("a")
	assert.True(t, ok)
	label, _ := ml.Get("sqli")
	pairs := label.Pairs()

	assert.Len(t, pairs, 2)

	var sawSynthetic, sawRequest bool
	for _, p := range pairs {
		if p.Source.Name == "a" && p.Source.Line == UninitialisedLine {
			sawSynthetic = true
		}
		if p.Source.Name == "request" {
			sawRequest = true
		}
	}
	assert.True(t, sawSynthetic)
	assert.True(t, sawRequest)
}

func TestMultiLabelling_ConciliateBothDefinedJustCombines(t *testing.T) {
	pol := samplePolicy()

	s1 := NewMultiLabelling()
	ml1 := EmptyMultiLabel()
	ml1.labels["sqli"] = SingleSource(NewNode("request", 1))
	s1.Set("a", ml1)

	s2 := NewMultiLabelling()
	ml2 := EmptyMultiLabel()
	ml2.labels["sqli"] = SingleSource(NewNode("request", 1))
	s2.Set("a", ml2)

	merged := Conciliate(pol, s1, s2)

	ml, _ := merged.Get("a")
	label, _ := ml.Get("sqli")
	assert.Len(t, label.Pairs(), 1)
}

func TestMultiLabelling_Equal(t *testing.T) {
	m1 := NewMultiLabelling()
	m2 := NewMultiLabelling()
	assert.True(t, m1.Equal(m2))

	ml := EmptyMultiLabel()
	ml.labels["sqli"] = SingleSource(NewNode("request", 1))
	m1.Set("x", ml)

	assert.False(t, m1.Equal(m2))

	m2.Set("x", ml.Clone())
	assert.True(t, m1.Equal(m2))
}
