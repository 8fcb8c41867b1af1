package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/oakwood-commons/gridkit/internal/filter"
	"github.com/oakwood-commons/gridkit/internal/limiter"
	"github.com/oakwood-commons/gridkit/pkg/loader"
	"github.com/oakwood-commons/gridkit/pkg/logger"
	"github.com/oakwood-commons/gridkit/pkg/settings"
)

// errNoInput is returned when neither a file nor piped stdin is given.
var errNoInput = errors.New("no input: pass a file or pipe records on stdin")

// loadRecords reads the input named by the run settings in ctx, applies the
// CEL selector, and trims the records with limits.
func loadRecords(ctx context.Context, stdin io.Reader, selectExpr string, limits limiter.Config) ([]map[string]any, error) {
	run := settings.OrDefault(ctx)
	lgr := logger.FromContext(ctx)

	format, err := loader.ParseFormat(run.Input.Format)
	if err != nil {
		return nil, err
	}

	var doc any
	if run.FromStdin() {
		if stdin == nil || (stdin == defaultStdin() && !stdinIsPiped()) {
			return nil, errNoInput
		}
		doc, err = loader.LoadReader(stdin, format)
	} else {
		doc, err = loader.LoadFile(run.Input.Path, format)
	}
	if errors.Is(err, loader.ErrEmptyInput) {
		lgr.V(1).Info("empty input, showing an empty grid")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load input: %w", err)
	}

	if selectExpr != "" {
		if doc, err = filter.Select(selectExpr, doc); err != nil {
			return nil, fmt.Errorf("select %q: %w", selectExpr, err)
		}
	}
	records, err := loader.Records(doc)
	if errors.Is(err, loader.ErrEmptyInput) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if limits.IsActive() {
		before := len(records)
		records = limiter.Apply(limits, records)
		lgr.V(1).Info("records limited", "before", before, "after", len(records))
	}
	return records, nil
}
