// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go CPU backend.
//
// Convolutions are lowered to im2col plus a gonum BLAS GEMM. Kernels run in
// parallel over batch items and channels.
//
//	backend := cpu.New(cpu.WithThreads(4))
//	x := tensor.Zeros[float32](tensor.Shape{1, 3, 640, 640}, backend)
package cpu

import (
	internalcpu "github.com/born-ml/depthdet/internal/backend/cpu"
	"github.com/born-ml/depthdet/tensor"
)

// Backend is the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Option configures a Backend.
type Option = internalcpu.Option

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a CPU backend.
func New(opts ...Option) *Backend {
	return internalcpu.New(opts...)
}

// WithThreads limits the kernels to n worker goroutines. n <= 0 uses one
// worker per CPU.
func WithThreads(n int) Option {
	return internalcpu.WithThreads(n)
}
