package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/born-ml/depthdet/internal/backend/cpu"
	"github.com/born-ml/depthdet/internal/imageproc"
	"github.com/born-ml/depthdet/internal/model"
	"github.com/born-ml/depthdet/internal/tensor"
)

// result is the outcome of one forward pass.
type result struct {
	Input   string
	Heads   []headStats
	Elapsed time.Duration
}

type headStats struct {
	model.HeadShape
	// DepthMean is the mean raw depth logit over the map.
	DepthMean float32
}

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [IMAGE...]",
		Short: "Run the detector on images, or on random input when none are given",
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, _ := cmd.Flags().GetInt("batch")
			if batch <= 0 {
				return fmt.Errorf("batch must be positive, got %d", batch)
			}

			d, err := model.New(a.file.Model, a.backend)
			if err != nil {
				return err
			}

			var results []result
			if len(args) == 0 {
				results, err = a.runRandom(cmd.Context(), d, batch)
			} else {
				results, err = a.runImages(cmd.Context(), d, args)
			}
			if err != nil {
				return err
			}
			return writeResults(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().Int("batch", 1, "Batch size of the random input")
	return cmd
}

func (a *app) runRandom(ctx context.Context, d *model.Detector[*cpu.CPUBackend], batch int) ([]result, error) {
	x := tensor.Rand[float32](a.inputShape(batch), a.backend)

	r, err := a.predict(ctx, d, x)
	if err != nil {
		return nil, err
	}
	r.Input = fmt.Sprintf("random[%d]", batch)
	return []result{r}, nil
}

// runImages letterboxes and runs every image, several at a time.
func (a *app) runImages(ctx context.Context, d *model.Detector[*cpu.CPUBackend], paths []string) ([]result, error) {
	limit := a.file.Runtime.Threads
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([]result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range paths {
		g.Go(func() error {
			in, err := imageproc.Open(path, a.file.Model.InputSize)
			if err != nil {
				return err
			}
			slog.Debug("image", "path", path, "format", in.Format,
				"source", fmt.Sprintf("%dx%d", in.Box.SrcWidth, in.Box.SrcHeight), "scale", in.Box.Scale)

			x, err := tensor.FromSlice(in.Pixels, a.inputShape(1), a.backend)
			if err != nil {
				return err
			}

			r, err := a.predict(gctx, d, x)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			r.Input = path
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (a *app) predict(ctx context.Context, d *model.Detector[*cpu.CPUBackend], x *tensor.Tensor[float32, *cpu.CPUBackend]) (result, error) {
	start := time.Now()
	heads, err := d.Predict(ctx, x)
	if err != nil {
		return result{}, err
	}
	elapsed := time.Since(start)

	layout := model.LayoutFor(a.file.Model)
	r := result{Elapsed: elapsed}
	for _, h := range heads {
		_, _, depth, err := model.SplitHead(layout, h.Tensor)
		if err != nil {
			return result{}, err
		}
		r.Heads = append(r.Heads, headStats{
			HeadShape: model.HeadShape{Name: h.Name, Stride: h.Stride, Shape: h.Tensor.Shape()},
			DepthMean: mean(depth.Data()),
		})
	}
	return r, nil
}

func mean(values []float32) float32 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	return float32(sum / float64(len(values)))
}

func writeResults(w io.Writer, results []result) error {
	if len(results) == 0 {
		return errors.New("no results")
	}

	var data [][]string
	for _, r := range results {
		for _, h := range r.Heads {
			data = append(data, []string{
				r.Input,
				h.Name,
				strconv.Itoa(h.Stride),
				formatShape(h.Shape),
				strconv.FormatFloat(float64(h.DepthMean), 'f', 4, 32),
				r.Elapsed.Round(time.Millisecond).String(),
			})
		}
	}

	table := newTable(w, []string{"INPUT", "HEAD", "STRIDE", "SHAPE", "DEPTH MEAN", "TIME"})
	table.AppendBulk(data)
	table.Render()
	return nil
}
