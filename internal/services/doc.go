// Package services implements the use cases shared by the CLI and the HTTP
// surface: processing an uploaded workbook into a run, reading a run's tables
// and ranked variances back, analysing a run and generating its report.
//
// Services take their collaborators through constructors and return domain
// errors. Callers map those errors onto their own surface: exit codes for the
// CLI, problem details for HTTP.
//
// Example usage:
//
//	runs := services.NewRunService(fileManager, pipeline, logger)
//	report, err := runs.Process(ctx, header.Filename, file)
//
//	reports := services.NewReportService(runs, analyses, composer, writer, logger)
//	generated, err := reports.Generate(ctx, report.RunID, true)
package services
