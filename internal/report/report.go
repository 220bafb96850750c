// Package report renders a pipeline result for the terminal.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/born-ml/convcheck/internal/pipeline"
)

const tableBorderColor = "240"

var (
	matchStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	mismatchStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	labelStyle    = lipgloss.NewStyle().Align(lipgloss.Right).Padding(0, 1)
)

// Verdict returns the styled one-line verdict.
func Verdict(res *pipeline.Result) string {
	if res.Match() {
		return matchStyle.Render(res.Report.Verdict())
	}
	return mismatchStyle.Render(res.Report.Verdict())
}

// Render returns the verdict followed by a table of dimensions, comparison
// statistics, memory and stage timings.
func Render(res *pipeline.Result) string {
	d := res.Dims
	rep := res.Report

	rows := [][]string{
		{"input map", res.Shapes.Input.String()},
		{"filter weights", res.Shapes.Filter.String()},
		{"stride", fmt.Sprint(d.U)},
		{"output size", fmt.Sprintf("%dx%d", d.F, d.E)},
		{"input matrix", res.Shapes.InputMatrix.String()},
		{"filter matrix", res.Shapes.FilterMatrix.String()},
		{"matmul output", res.Shapes.MatMul.String()},
		{"matmul", string(res.Config.MatMul)},
		{"elements compared", humanize.Comma(int64(rep.Rows * rep.Cols))},
		{"tolerance", fmt.Sprintf("%g", rep.Tolerance)},
		{"mismatches", humanize.Comma(int64(rep.Mismatches))},
		{"max |diff|", fmt.Sprintf("%.3e", rep.MaxAbsDiff)},
	}
	if rep.First != nil {
		rows = append(rows, []string{"first mismatch", rep.First.String()})
	}
	rows = append(rows, []string{"memory", humanize.IBytes(uint64(res.Bytes))})
	rows = append(rows, []string{"run id", res.ID})
	for _, t := range res.Timings {
		rows = append(rows, []string{t.Stage.String(), t.Duration.String()})
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(tableBorderColor))).
		Headers("", "value").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return labelStyle
			}
			return cellStyle
		})

	var sb strings.Builder
	sb.WriteString(Verdict(res))
	sb.WriteString("\n")
	sb.WriteString(tbl.String())
	sb.WriteString("\n")
	return sb.String()
}
