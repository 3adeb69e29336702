package cli

import (
	"encoding/json"
	"fmt"

	"github.com/johnqtcg/spoon/internal/config"
	"github.com/johnqtcg/spoon/internal/insight"
	"github.com/johnqtcg/spoon/internal/report"
)

// Encode serializes res in the requested output format.
func Encode(format string, res insight.Result) ([]byte, error) {
	switch format {
	case config.FormatJSON:
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json report: %w", err)
		}
		return append(data, '\n'), nil
	case config.FormatMarkdown, "":
		data, err := report.Render(res)
		if err != nil {
			return nil, fmt.Errorf("render markdown report: %w", err)
		}
		return data, nil
	default:
		return nil, config.NewValidationError("format", "must be markdown or json")
	}
}
