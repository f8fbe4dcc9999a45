package services

import "errors"

// Service errors
var (
	// Run errors
	ErrRunNotProcessed = errors.New("run has not been processed")
	ErrNoVariance      = errors.New("run has no ranked variance")

	// Upload errors
	ErrNotWorkbook = errors.New("upload is not an xlsx workbook")

	// Report errors
	ErrReportNotFound = errors.New("report not found")
)
