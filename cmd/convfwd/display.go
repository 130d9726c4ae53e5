package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"gonum.org/v1/gonum/floats"

	"github.com/fumitoshi0524/convforward/tensor"
)

type namedTensor struct {
	name string
	t    *tensor.Tensor
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	return table
}

func printSummary(w io.Writer, rows []namedTensor) {
	table := newTable(w, []string{"TENSOR", "SHAPE", "MIN", "MAX", "MEAN"})
	for _, r := range rows {
		data := r.t.Data()
		table.Append([]string{
			r.name,
			fmt.Sprint(r.t.Shape()),
			formatFloat(floats.Min(data)),
			formatFloat(floats.Max(data)),
			formatFloat(tensor.Mean(r.t)),
		})
	}
	table.Render()
}

// printCells lists every element of a rank-4 tensor with its NHWC index.
func printCells(w io.Writer, t *tensor.Tensor) {
	m, h, wd, c, err := t.Dims4()
	if err != nil {
		return
	}
	table := newTable(w, []string{"CELL", "VALUE"})
	for n := 0; n < m; n++ {
		for i := 0; i < h; i++ {
			for j := 0; j < wd; j++ {
				for k := 0; k < c; k++ {
					table.Append([]string{fmt.Sprint([]int{n, i, j, k}), formatFloat(t.At(n, i, j, k))})
				}
			}
		}
	}
	table.Render()
}

func printCheck(w io.Writer, cell string, got, manual float64) {
	table := newTable(w, []string{"CELL", "CONV2D", "MANUAL"})
	table.Append([]string{cell, formatFloat(got), formatFloat(manual)})
	table.Render()
}

func printEnv(w io.Writer, values [][2]string) {
	table := newTable(w, []string{"NAME", "VALUE"})
	for _, kv := range values {
		table.Append([]string{kv[0], kv[1]})
	}
	table.Render()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
