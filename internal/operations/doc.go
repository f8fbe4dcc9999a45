// Package operations runs the workbook pipeline for one run.
//
// A Pipeline walks the table registry in order. For every entry it extracts
// the sheet window, cleans it, applies the entry's policy and writes the
// resulting table to the run's processed directory. Sheets fail on their own:
// a missing sheet or an out-of-range window is recorded in the run report and
// the next sheet is processed. Only failures that concern the whole run, such
// as an unreadable workbook, stop it.
//
// After the tables, the pipeline ranks the detailed month comparative
// variances and persists both views, then writes manifest.json describing
// every sheet's outcome and all warnings.
//
// Example usage:
//
//	pipeline := operations.NewPipeline(reg,
//		operations.WithLogger(logger),
//		operations.WithReporter(operations.NewStatusBroadcaster(hub, logger)),
//	)
//	report, err := pipeline.Run(ctx, run)
//
// Progress is reported per sheet through a Reporter; StatusBroadcaster forwards
// it to the WebSocket hub.
package operations
