// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package detect provides the depth-aware object detector.
//
// A detector maps an RGB batch [N, 3, H, W] to one raw map per head. Every
// map has 4*RegMax box-distribution channels, NumClasses class channels and
// one depth channel; use LayoutFor and SplitHead to separate them.
//
//	backend := cpu.New()
//	det, err := detect.New(detect.DefaultConfig(), backend)
//	if err != nil {
//	    return err
//	}
//	heads, err := det.Predict(ctx, input)
package detect

import (
	"github.com/born-ml/depthdet/internal/model"
	"github.com/born-ml/depthdet/tensor"
)

// Config describes a detector.
type Config = model.Config

// Variant selects the network topology.
type Variant = model.Variant

// Supported variants.
const (
	VariantFull = model.VariantFull
	VariantLite = model.VariantLite
)

// DefaultConfig returns the configuration of the reference detector: one
// class, RegMax 1, full variant, 640x640 input.
func DefaultConfig() Config { return model.DefaultConfig() }

// Errors returned by configuration, shape inference and Predict.
var (
	ErrInvalidConfig = model.ErrInvalidConfig
	ErrInvalidInput  = model.ErrInvalidInput
	ErrShapeMismatch = model.ErrShapeMismatch
)

// Detector is the depth-aware object detector.
type Detector[B tensor.Backend] = model.Detector[B]

// HeadOutput is the raw map produced by one head.
type HeadOutput[B tensor.Backend] = model.HeadOutput[B]

// New validates cfg and builds a detector in evaluation mode.
func New[B tensor.Backend](cfg Config, backend B) (*Detector[B], error) {
	return model.New(cfg, backend)
}

// ShapeReport is the result of InferShapes.
type ShapeReport = model.ShapeReport

// InferShapes propagates an input shape through the graph of cfg without
// running it.
func InferShapes(cfg Config, input tensor.Shape) (*ShapeReport, error) {
	return model.InferShapes(cfg, input)
}

// HeadLayout locates the branch outputs inside a head map.
type HeadLayout = model.HeadLayout

// LayoutFor returns the channel layout of the head maps for cfg.
func LayoutFor(cfg Config) HeadLayout { return model.LayoutFor(cfg) }

// SplitHead separates a head map into its box, class and depth channels.
func SplitHead[B tensor.Backend](layout HeadLayout, head *tensor.Tensor[float32, B]) (bbox, cls, depth *tensor.Tensor[float32, B], err error) {
	return model.SplitHead(layout, head)
}
