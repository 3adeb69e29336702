package cli

import (
	"context"
	"fmt"

	"github.com/johnqtcg/spoon/internal/config"
)

func (a *App) runBatch(ctx context.Context, cfg config.Config, an Analyzer) (RunSummary, error) {
	var items []ItemResult

	err := a.inputReader.Read(cfg.InputFile, func(line string) error {
		item, processErr := a.processOne(ctx, cfg, ModeBatch, line, an)
		if processErr != nil {
			item.Status = StatusFailed
			item.Reason = processErr.Error()
		}
		items = append(items, item)
		writeStatusLine(a.stdout, item)
		// Stop reading once the run is canceled; the remaining lines would fail anyway.
		return ctx.Err()
	})
	if err != nil {
		return BuildSummary(items), fmt.Errorf("read batch input file %q: %w", cfg.InputFile, err)
	}

	return BuildSummary(items), nil
}
