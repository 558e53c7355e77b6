// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package detect_test

import (
	"context"
	"errors"
	"testing"

	"github.com/born-ml/depthdet/backend/cpu"
	"github.com/born-ml/depthdet/detect"
	"github.com/born-ml/depthdet/tensor"
)

func TestPredictLite(t *testing.T) {
	cfg := detect.DefaultConfig()
	cfg.Variant = detect.VariantLite
	cfg.NumClasses = 2
	cfg.InputSize = 32
	cfg.Seed = 3

	backend := cpu.New()
	det, err := detect.New(cfg, backend)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	heads, err := det.Predict(context.Background(), tensor.Rand[float32](tensor.Shape{1, 3, 32, 32}, backend))
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if len(heads) != 1 || heads[0].Stride != 8 {
		t.Fatalf("got %d heads, want one head at stride 8", len(heads))
	}

	bbox, cls, depth, err := detect.SplitHead(detect.LayoutFor(cfg), heads[0].Tensor)
	if err != nil {
		t.Fatalf("SplitHead: %v", err)
	}
	for name, got := range map[string]tensor.Shape{"bbox": bbox.Shape(), "cls": cls.Shape(), "depth": depth.Shape()} {
		want := map[string]int{"bbox": 4, "cls": 2, "depth": 1}[name]
		if got[1] != want {
			t.Errorf("%s has %d channels, want %d", name, got[1], want)
		}
	}
}

func TestInferShapesMismatch(t *testing.T) {
	_, err := detect.InferShapes(detect.DefaultConfig(), tensor.Shape{1, 3, 48, 48})
	if !errors.Is(err, detect.ErrShapeMismatch) {
		t.Errorf("InferShapes(48x48) error = %v, want ErrShapeMismatch", err)
	}
}
