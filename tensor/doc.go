// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public tensor API used by the detector.
//
// # Overview
//
// Tensors are generic over their element type and their compute backend:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{1, 3, 640, 640}, backend)
//	y := tensor.Ones[float32](tensor.Shape{1, 3, 640, 640}, backend)
//	z := x.Add(y)
//
// Every operation is executed eagerly by the backend. Operations panic with
// an "<op>: <detail>" message when shapes are incompatible.
//
// # Layout
//
// Data is stored contiguously in row-major order. Feature maps use NCHW:
// [batch, channels, height, width].
package tensor
