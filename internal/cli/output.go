package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"

	"postmetrics/internal/adapters/sheet"
	"postmetrics/internal/domain"
	"postmetrics/internal/usecases"
)

type fetchOutput struct {
	URL        string          `json:"url"`
	Platform   domain.Platform `json:"platform,omitempty"`
	Identifier string          `json:"identifier,omitempty"`
	Source     usecases.Source `json:"source,omitempty"`
	Metrics    *domain.Metrics `json:"metrics"`
}

func newFetchOutput(res usecases.FetchResult) fetchOutput {
	return fetchOutput{
		URL:        res.Reference.RawURL,
		Platform:   res.Reference.Platform,
		Identifier: res.Reference.Identifier,
		Source:     res.Source,
		Metrics:    res.Metrics,
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printFetch(w io.Writer, res usecases.FetchResult) error {
	label := color.New(color.Bold).SprintFunc()
	ref := res.Reference

	if res.Failed() {
		_, err := fmt.Fprintf(w, "%s %s\n%s %s\n", label("url:"), ref.RawURL,
			color.RedString("error (%s):", res.Metrics.Kind), res.Metrics.Error)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", label("platform"), ref.Platform)
	fmt.Fprintf(tw, "%s\t%s\n", label("url"), ref.NormalizedURL)
	if ref.Identifier != "" {
		fmt.Fprintf(tw, "%s\t%s\n", label("id"), ref.Identifier)
	}
	fmt.Fprintf(tw, "%s\t%s\n", label("source"), res.Source)
	for _, metric := range ref.Platform.Metrics() {
		v, _ := res.Metrics.Get(metric)
		fmt.Fprintf(tw, "%s\t%s\n", label(string(metric)), color.CyanString(strconv.Itoa(v)))
	}
	if res.Metrics.MediaType != "" {
		fmt.Fprintf(tw, "%s\t%s\n", label("media type"), res.Metrics.MediaType)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for i, text := range res.Metrics.CommentTexts {
		if _, err := fmt.Fprintf(w, "  %2d. %s\n", i+1, text); err != nil {
			return err
		}
	}
	return nil
}

func printBatch(w io.Writer, rows []domain.BatchRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := sheet.Header()
	// comment texts do not fit a terminal table
	header = append(header[:len(header)-2], header[len(header)-1])
	writeCells(tw, header)

	failed := 0
	for _, row := range rows {
		rec := sheet.Record(row)
		rec = append(rec[:len(rec)-2], rec[len(rec)-1])
		if row.Placeholder() {
			failed++
			for i := range rec {
				rec[i] = color.RedString(rec[i])
			}
		}
		writeCells(tw, rec)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "%d rows, %d failed\n", len(rows), failed)
	return err
}

func writeCells(w io.Writer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			io.WriteString(w, "\t")
		}
		io.WriteString(w, c)
	}
	io.WriteString(w, "\n")
}
