package usecases

import (
	"context"

	"postmetrics/internal/domain"
	"postmetrics/pkg/log"
)

// RunBatchUseCase fetches a list of links one after another.
type RunBatchUseCase struct {
	fetch *FetchMetricsUseCase
}

func NewRunBatchUseCase(fetch *FetchMetricsUseCase) *RunBatchUseCase {
	return &RunBatchUseCase{fetch: fetch}
}

// BatchProgress is called after each row, for progress reporting.
type BatchProgress func(done, total int, row domain.BatchRow)

// Execute returns exactly one row per input, in input order. Links are not
// de-duplicated. A failing row becomes a placeholder and never stops the
// batch. Once ctx is done the remaining rows become placeholders carrying
// the context error.
func (uc *RunBatchUseCase) Execute(ctx context.Context, inputs []domain.BatchInput, progress BatchProgress) []domain.BatchRow {
	rows := make([]domain.BatchRow, 0, len(inputs))
	failed := 0

	for i, in := range inputs {
		var row domain.BatchRow
		if err := ctx.Err(); err != nil {
			p, _ := domain.Classify(in.Link)
			row = domain.PlaceholderRow(in, p, err)
		} else {
			rowCtx := log.WithFields(ctx, "row", i+1, "name", in.Name)
			res := uc.fetch.Execute(rowCtx, in.Link)
			row = domain.NewBatchRow(in, res.Reference.Platform, res.Metrics)
		}

		if row.Placeholder() {
			failed++
		}
		rows = append(rows, row)
		if progress != nil {
			progress(i+1, len(inputs), row)
		}
	}

	log.GlobalInfoCtx(ctx, "batch finished", "rows", len(rows), "failed", failed)
	return rows
}
