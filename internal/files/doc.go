// Package files manages the on-disk layout of pipeline runs.
//
// Every uploaded workbook gets its own run directory under the uploads root,
// named after the upload time and a short content hash:
//
//	uploads/
//	  20240930_142501_3f2a9c1b/
//	    raw/2024 09 Financial Statements.xlsx
//	    processed/
//
// A run directory is owned by exactly one pipeline run, so no locking is
// needed between runs.
package files
