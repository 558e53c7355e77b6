package model

import (
	"github.com/born-ml/depthdet/internal/nn"
	"github.com/born-ml/depthdet/internal/tensor"
)

// SummaryRow describes one graph node.
type SummaryRow struct {
	Name   string
	Kind   string
	Inputs []string
	Output tensor.Shape
	Params int // trainable scalars owned by the node
}

// Summary is a per-layer overview of a detector for a given input shape.
type Summary struct {
	Variant Variant
	Input   tensor.Shape
	Rows    []SummaryRow

	TotalParams   int // trainable scalars
	BufferScalars int // batch-norm running statistics
}

// Summary infers the output shape of every node for input and pairs it with
// the node's parameter count. It returns the errors of InferShapes.
func (d *Detector[B]) Summary(input tensor.Shape) (*Summary, error) {
	report, err := InferShapes(d.cfg, input)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		Variant: d.cfg.Variant,
		Input:   report.Input,
		Rows:    make([]SummaryRow, len(d.nodes)),
	}
	for i, n := range d.nodes {
		row := SummaryRow{
			Name:   n.name,
			Kind:   n.op.String(),
			Inputs: n.inputs,
			Output: report.Layers[i].Shape,
		}
		if m := d.layers[n.name]; m != nil {
			row.Params = nn.CountParameters(m.Parameters())
		}
		s.Rows[i] = row
		s.TotalParams += row.Params
	}
	for _, b := range d.NamedBuffers() {
		s.BufferScalars += b.Parameter.NumElements()
	}

	return s, nil
}

// NamedParameters returns every trainable parameter with its dotted path,
// e.g. "c2f_1.bottlenecks.0.conv1.conv.weight".
func (d *Detector[B]) NamedParameters() []nn.NamedParameter[B] {
	return d.named(nn.NamedParameters[B])
}

// NamedBuffers returns every batch-norm running statistic with its path.
func (d *Detector[B]) NamedBuffers() []nn.NamedParameter[B] {
	return d.named(nn.NamedBuffers[B])
}

func (d *Detector[B]) named(collect func(nn.Module[B]) []nn.NamedParameter[B]) []nn.NamedParameter[B] {
	var out []nn.NamedParameter[B]
	for _, c := range d.children {
		for _, p := range collect(c.Module) {
			p.Path = c.Name + "." + p.Path
			out = append(out, p)
		}
	}
	return out
}
