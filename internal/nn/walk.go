package nn

import (
	"math/rand/v2"

	"github.com/born-ml/depthdet/internal/tensor"
)

// NamedParameter is a parameter together with its dotted path in the module
// tree, e.g. "backbone.conv1.bn.running_mean".
type NamedParameter[B tensor.Backend] struct {
	Path      string
	Parameter *Parameter[B]
}

// Walk calls fn for m and every descendant, parents before children, in the
// order the containers list them. The root has an empty path.
func Walk[B tensor.Backend](m Module[B], fn func(path string, m Module[B])) {
	walk("", m, fn)
}

func walk[B tensor.Backend](path string, m Module[B], fn func(string, Module[B])) {
	fn(path, m)

	c, ok := m.(Container[B])
	if !ok {
		return
	}
	for _, child := range c.Children() {
		walk(joinPath(path, child.Name), child.Module, fn)
	}
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func isLeaf[B tensor.Backend](m Module[B]) bool {
	_, ok := m.(Container[B])
	return !ok
}

// NamedParameters returns the trainable parameters of the tree with their
// paths, in walk order.
func NamedParameters[B tensor.Backend](m Module[B]) []NamedParameter[B] {
	var out []NamedParameter[B]
	Walk(m, func(path string, m Module[B]) {
		if !isLeaf(m) {
			return
		}
		for _, p := range m.Parameters() {
			out = append(out, NamedParameter[B]{Path: joinPath(path, p.Name()), Parameter: p})
		}
	})
	return out
}

// NamedBuffers returns the non-trainable buffers of the tree with their paths.
func NamedBuffers[B tensor.Backend](m Module[B]) []NamedParameter[B] {
	var out []NamedParameter[B]
	Walk(m, func(path string, m Module[B]) {
		b, ok := m.(Buffered[B])
		if !ok || !isLeaf(m) {
			return
		}
		for _, p := range b.Buffers() {
			out = append(out, NamedParameter[B]{Path: joinPath(path, p.Name()), Parameter: p})
		}
	})
	return out
}

// SetTraining switches every layer of the tree into training or evaluation
// mode.
func SetTraining[B tensor.Backend](m Module[B], training bool) {
	Walk(m, func(_ string, m Module[B]) {
		if t, ok := m.(Trainer); ok {
			t.Train(training)
		}
	})
}

// ResetParameters re-initializes every layer of the tree from src. Layers are
// visited in walk order, so a seeded source gives reproducible weights.
func ResetParameters[B tensor.Backend](m Module[B], src rand.Source) {
	Walk(m, func(_ string, m Module[B]) {
		if r, ok := m.(Resetter); ok {
			r.ResetParameters(src)
		}
	})
}
