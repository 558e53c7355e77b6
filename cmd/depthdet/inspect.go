package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/born-ml/depthdet/internal/model"
)

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	return table
}

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "List every layer with its output shape and parameter count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := model.New(a.file.Model, a.backend)
			if err != nil {
				return err
			}

			s, err := d.Summary(a.inputShape(1))
			if err != nil {
				return err
			}
			return writeSummary(cmd.OutOrStdout(), s)
		},
	}
}

func writeSummary(w io.Writer, s *model.Summary) error {
	var data [][]string
	for _, r := range s.Rows {
		data = append(data, []string{r.Name, r.Kind, strings.Join(r.Inputs, ","), formatShape(r.Output), strconv.Itoa(r.Params)})
	}

	table := newTable(w, []string{"NAME", "KIND", "FROM", "OUTPUT", "PARAMS"})
	table.AppendBulk(data)
	table.Render()

	_, err := fmt.Fprintf(w, "\nvariant %s, input %s\nparameters %d, buffer scalars %d\n",
		s.Variant, formatShape(s.Input), s.TotalParams, s.BufferScalars)
	return err
}

func newShapesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shapes",
		Short: "Infer the head output shapes without running the network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, _ := cmd.Flags().GetInt("batch")
			layers, _ := cmd.Flags().GetBool("layers")

			report, err := model.InferShapes(a.file.Model, a.inputShape(batch))
			if err != nil {
				return err
			}
			return writeShapes(cmd.OutOrStdout(), report, model.LayoutFor(a.file.Model), layers)
		},
	}

	cmd.Flags().Int("batch", 1, "Batch size of the inferred input")
	cmd.Flags().Bool("layers", false, "Also list every intermediate layer")
	return cmd
}

func writeShapes(w io.Writer, report *model.ShapeReport, layout model.HeadLayout, layers bool) error {
	if layers {
		var data [][]string
		for _, l := range report.Layers {
			data = append(data, []string{l.Name, l.Kind, formatShape(l.Shape)})
		}
		table := newTable(w, []string{"LAYER", "KIND", "SHAPE"})
		table.AppendBulk(data)
		table.Render()
		fmt.Fprintln(w)
	}

	var data [][]string
	for _, h := range report.Heads {
		data = append(data, []string{h.Name, strconv.Itoa(h.Stride), formatShape(h.Shape)})
	}
	table := newTable(w, []string{"HEAD", "STRIDE", "SHAPE"})
	table.AppendBulk(data)
	table.Render()

	_, err := fmt.Fprintf(w, "\nchannels: bbox %s, class %s, depth %s\n",
		formatRange(layout.BBox), formatRange(layout.Class), formatRange(layout.Depth))
	return err
}
