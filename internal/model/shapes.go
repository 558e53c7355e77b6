package model

import (
	"fmt"

	"github.com/born-ml/depthdet/internal/nn"
	"github.com/born-ml/depthdet/internal/tensor"
)

// LayerShape is the output shape of one graph node.
type LayerShape struct {
	Name  string
	Kind  string
	Shape tensor.Shape
}

// HeadShape is the output shape of one detection head.
type HeadShape struct {
	Name   string
	Stride int
	Shape  tensor.Shape
}

// ShapeReport is the result of static shape inference.
type ShapeReport struct {
	Input  tensor.Shape
	Layers []LayerShape // every node, in execution order
	Heads  []HeadShape  // heads in output order
}

// InferShapes propagates input through the graph of cfg without allocating
// any tensors.
//
// It returns ErrInvalidConfig for a bad architecture, ErrInvalidInput when
// input is not a positive [N, 3, H, W] shape, and ErrShapeMismatch when the
// graph cannot combine the maps it produces for this input (e.g. a side
// length that is not a multiple of Config.SizeMultiple).
func InferShapes(cfg Config, input tensor.Shape) (*ShapeReport, error) {
	if err := cfg.validateArchitecture(); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	nodes := topology(cfg.Variant)
	report := &ShapeReport{
		Input:  input.Clone(),
		Layers: make([]LayerShape, 0, len(nodes)),
	}

	shapes := map[string]tensor.Shape{inputNode: input}
	for _, n := range nodes {
		out, err := n.outputShape(cfg, shapes)
		if err != nil {
			return nil, err
		}
		shapes[n.name] = out

		report.Layers = append(report.Layers, LayerShape{Name: n.name, Kind: n.op.String(), Shape: out})
		if n.op == opHead {
			report.Heads = append(report.Heads, HeadShape{Name: n.name, Stride: n.stride, Shape: out})
		}
	}

	return report, nil
}

func validateInput(input tensor.Shape) error {
	if len(input) != 4 {
		return fmt.Errorf("%w: expected [N, %d, H, W], got %v", ErrInvalidInput, InputChannels, input)
	}
	if err := input.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if input[1] != InputChannels {
		return fmt.Errorf("%w: expected %d channels, got %d", ErrInvalidInput, InputChannels, input[1])
	}
	return nil
}

func (n node) outputShape(cfg Config, shapes map[string]tensor.Shape) (tensor.Shape, error) {
	in := shapes[n.inputs[0]]

	if n.op != opConcat && n.op != opUpsample && in[1] != n.cin {
		return nil, fmt.Errorf("%w: %s expects %d channels, %s has %d",
			ErrShapeMismatch, n.name, n.cin, n.inputs[0], in[1])
	}

	switch n.op {
	case opConv:
		return tensor.Shape{
			in[0], n.cout,
			nn.OutputSize(in[2], convKernel, n.stride, convPadding),
			nn.OutputSize(in[3], convKernel, n.stride, convPadding),
		}, nil

	case opC2f, opSPPF:
		return tensor.Shape{in[0], n.cout, in[2], in[3]}, nil

	case opHead:
		return tensor.Shape{in[0], cfg.HeadChannels(), in[2], in[3]}, nil

	case opUpsample:
		return tensor.Shape{in[0], in[1], in[2] * upScale, in[3] * upScale}, nil

	case opConcat:
		out := in.Clone()
		for _, name := range n.inputs[1:] {
			other := shapes[name]
			if other[0] != in[0] || other[2] != in[2] || other[3] != in[3] {
				return nil, fmt.Errorf("%w: %s cannot concatenate %s %v with %s %v",
					ErrShapeMismatch, n.name, n.inputs[0], in, name, other)
			}
			out[1] += other[1]
		}
		return out, nil
	}

	return nil, fmt.Errorf("unknown op %v in node %s", n.op, n.name)
}
