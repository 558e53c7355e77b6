package model

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/born-ml/depthdet/internal/logutil"
	"github.com/born-ml/depthdet/internal/nn"
	"github.com/born-ml/depthdet/internal/tensor"
)

// HeadOutput is the raw map of one detection head.
type HeadOutput[B tensor.Backend] struct {
	Name   string
	Stride int // input pixels per map cell
	Tensor *tensor.Tensor[float32, B]
}

// Detector is the depth-aware object detector.
//
// The full variant runs a five-stage backbone ending in SPPF, fuses features
// top-down (upsample and concatenate) and bottom-up (strided conv and
// concatenate), and predicts at strides 8, 16 and 32. Every head map has
// Config.HeadChannels channels laid out as described by LayoutFor.
//
// A Detector in evaluation mode may be used by concurrent Forward and
// Predict calls. Training mode updates batch-norm statistics and must not be
// shared.
type Detector[B tensor.Backend] struct {
	cfg      Config
	nodes    []node
	layers   map[string]nn.Module[B]
	children []nn.Child[B]
	lastUse  map[string]int
	backend  B
}

// New builds a detector for cfg. Weights are drawn from cfg.Seed when it is
// non-zero, otherwise from the global random source. The detector starts in
// evaluation mode.
func New[B tensor.Backend](cfg Config, backend B) (*Detector[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Detector[B]{
		cfg:     cfg,
		nodes:   topology(cfg.Variant),
		layers:  make(map[string]nn.Module[B]),
		backend: backend,
	}
	d.lastUse = lastUses(d.nodes)

	bn := cfg.batchNorm()
	up := nn.NewUpsample(upScale, backend)

	for _, n := range d.nodes {
		var m nn.Module[B]
		switch n.op {
		case opConv:
			m = newConvModule(n.cin, n.cout, convKernel, n.stride, convPadding, bn, backend)
		case opC2f:
			m = newC2f(n.cin, n.cout, n.depth, bn, backend)
		case opSPPF:
			m = newSPPF(n.cin, bn, backend)
		case opHead:
			m = newDetectionHead(n.cin, cfg.RegMax, cfg.NumClasses, bn, backend)
		case opUpsample:
			d.layers[n.name] = up
			continue
		default:
			continue
		}
		d.layers[n.name] = m
		d.children = append(d.children, nn.Child[B]{Name: n.name, Module: m})
	}

	if cfg.Seed != 0 {
		d.ResetParameters(rand.NewPCG(cfg.Seed, cfg.Seed))
	}

	return d, nil
}

// ResetParameters re-initializes every layer from src, in execution order.
func (d *Detector[B]) ResetParameters(src rand.Source) {
	for _, c := range d.children {
		nn.ResetParameters(c.Module, src)
	}
}

// Config returns the configuration the detector was built from.
func (d *Detector[B]) Config() Config {
	return d.cfg
}

// Layer returns the module of the named graph node, or nil.
func (d *Detector[B]) Layer(name string) nn.Module[B] {
	return d.layers[name]
}

// Children returns the layers with parameters, in execution order.
func (d *Detector[B]) Children() []nn.Child[B] {
	return d.children
}

// Parameters returns all trainable parameters.
func (d *Detector[B]) Parameters() []*nn.Parameter[B] {
	var params []*nn.Parameter[B]
	for _, c := range d.children {
		params = append(params, c.Module.Parameters()...)
	}
	return params
}

// NumParameters returns the number of trainable scalars.
func (d *Detector[B]) NumParameters() int {
	return nn.CountParameters(d.Parameters())
}

// Train switches every batch-norm layer between training (batch statistics,
// running statistics updated) and evaluation (running statistics) mode.
func (d *Detector[B]) Train(training bool) {
	for _, c := range d.children {
		nn.SetTraining(c.Module, training)
	}
}

// Forward runs the network sequentially on x [N, 3, H, W] and returns the
// head maps in stride order.
//
// Forward panics if x cannot flow through the graph, e.g. when H or W is not
// a multiple of Config.SizeMultiple and the neck's maps no longer line up.
// Use Predict for a checked call.
func (d *Detector[B]) Forward(x *tensor.Tensor[float32, B]) []*tensor.Tensor[float32, B] {
	maps := map[string]*tensor.Tensor[float32, B]{inputNode: x}
	var heads []*tensor.Tensor[float32, B]

	for i, n := range d.nodes {
		out := d.step(n, maps)
		logutil.Trace("layer", "name", n.name, "kind", n.op, "shape", out.Shape())
		if n.op == opHead {
			heads = append(heads, out)
			continue
		}
		maps[n.name] = out
		d.release(i, n, maps)
	}
	return heads
}

// Predict validates the shape of x, runs the backbone and neck, and then
// evaluates the heads concurrently.
//
// Shape problems are reported as errors wrapping ErrInvalidInput or
// ErrShapeMismatch instead of panics. Cancellation of ctx is honoured
// between layers.
func (d *Detector[B]) Predict(ctx context.Context, x *tensor.Tensor[float32, B]) ([]HeadOutput[B], error) {
	if _, err := InferShapes(d.cfg, x.Shape()); err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	start := time.Now()
	maps := map[string]*tensor.Tensor[float32, B]{inputNode: x}
	var heads []node

	for i, n := range d.nodes {
		if n.op == opHead {
			heads = append(heads, n)
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		layerStart := time.Now()
		maps[n.name] = d.step(n, maps)
		logutil.TraceContext(ctx, "layer", "name", n.name, "kind", n.op, "shape", maps[n.name].Shape(), "elapsed", time.Since(layerStart))
		d.release(i, n, maps)
	}

	// Heads only read the neck maps, so they can run side by side.
	outputs := make([]HeadOutput[B], len(heads))
	g, gctx := errgroup.WithContext(ctx)
	for i, n := range heads {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outputs[i] = HeadOutput[B]{
				Name:   n.name,
				Stride: n.stride,
				Tensor: d.step(n, maps),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "predict", "variant", d.cfg.Variant, "input", x.Shape(), "heads", len(outputs), "elapsed", time.Since(start))
	return outputs, nil
}

func (d *Detector[B]) step(n node, maps map[string]*tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if n.op == opConcat {
		inputs := make([]*tensor.Tensor[float32, B], len(n.inputs))
		for i, name := range n.inputs {
			inputs[i] = maps[name]
		}
		return tensor.Cat(inputs, 1)
	}
	return d.layers[n.name].Forward(maps[n.inputs[0]])
}

// release drops the maps whose last reader is node i.
func (d *Detector[B]) release(i int, n node, maps map[string]*tensor.Tensor[float32, B]) {
	for _, in := range n.inputs {
		if in != inputNode && d.lastUse[in] == i {
			delete(maps, in)
		}
	}
}
