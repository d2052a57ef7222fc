// Package report renders the final benchmark summary. The summary itself is a
// plain data shape; rendering targets a human table (colored hit ratios,
// humanized counts) or machine formats (JSON, YAML).
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/tokbench/pkg/aggregate"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ErrUnknownFormat indicates an unsupported output format name.
var ErrUnknownFormat = errors.New("unknown report format")

// Ratio color thresholds.
const (
	thresholdGood = 0.8
	thresholdFair = 0.5
)

// Summary is one row of the final report.
type Summary struct {
	Language       string  `json:"language"        yaml:"language"`
	Tokenizer      string  `json:"tokenizer"       yaml:"tokenizer"`
	HitRatio       float64 `json:"hit_ratio"       yaml:"hit_ratio"`
	TotalSentences uint64  `json:"total_sentences" yaml:"total_sentences"`
	TotalTokens    uint64  `json:"total_tokens"    yaml:"total_tokens"`
	TotalHits      uint64  `json:"total_hits"      yaml:"total_hits"`
	Skipped        uint64  `json:"skipped"         yaml:"skipped"`
	Degenerate     uint64  `json:"degenerate"      yaml:"degenerate"`
}

// Build converts aggregation results into report rows, sorted by language
// then descending hit ratio so the best tokenizer per language leads.
func Build(results []aggregate.Result) []Summary {
	rows := make([]Summary, 0, len(results))

	for _, res := range results {
		rows = append(rows, Summary{
			Language:       string(res.Lang),
			Tokenizer:      res.Tokenizer,
			HitRatio:       res.HitRatio(),
			TotalSentences: res.Sentences,
			TotalTokens:    res.Tokens,
			TotalHits:      res.Hits,
			Skipped:        res.Skipped,
			Degenerate:     res.Degenerate,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Language != rows[j].Language {
			return rows[i].Language < rows[j].Language
		}

		return rows[i].HitRatio > rows[j].HitRatio
	})

	return rows
}

// Render writes the rows to w in the requested format.
func Render(w io.Writer, rows []Summary, format string, noColor bool) error {
	switch format {
	case FormatTable:
		renderTable(w, rows, noColor)

		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		err := enc.Encode(rows)
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}

		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)

		err := enc.Encode(rows)
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}

		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func renderTable(w io.Writer, rows []Summary, noColor bool) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{
		"Language", "Tokenizer", "Hit Ratio", "Sentences", "Tokens", "Hits", "Skipped", "Degenerate",
	})

	for _, row := range rows {
		t.AppendRow(table.Row{
			row.Language,
			row.Tokenizer,
			formatRatio(row.HitRatio, noColor),
			humanize.Comma(int64(row.TotalSentences)),
			humanize.Comma(int64(row.TotalTokens)),
			humanize.Comma(int64(row.TotalHits)),
			humanize.Comma(int64(row.Skipped)),
			humanize.Comma(int64(row.Degenerate)),
		})
	}

	t.SetStyle(table.StyleLight)
	t.Render()
}

// formatRatio colors the ratio by quality band: green for strong vocabulary
// coverage, yellow for middling, red for poor.
func formatRatio(ratio float64, noColor bool) string {
	text := fmt.Sprintf("%.4f", ratio)

	if noColor {
		return text
	}

	switch {
	case ratio >= thresholdGood:
		return color.GreenString(text)
	case ratio >= thresholdFair:
		return color.YellowString(text)
	default:
		return color.RedString(text)
	}
}
