// Package dataprocessing turns the raw cell grids read from a workbook window
// into clean, single-header tables.
//
// Processing happens in three stages:
//
//  1. Clean trims every cell and removes blank rows, banner rows and rows that
//     carry fewer than two values.
//  2. ReconstructHeader merges one to three physical header rows into a single
//     column name per column.
//  3. A Policy applies the sheet-specific touch-ups: time-series sheets promote
//     a date row to the header and tag the year-to-date column, detail sheets
//     reconstruct multi-row headers.
//
// Process chains the stages and returns the table with any recoverable
// data-quality warnings:
//
//	policy, err := dataprocessing.NewPolicy(dataprocessing.PolicyTimeSeries, dataprocessing.PolicyOptions{})
//	if err != nil {
//	    return err
//	}
//	table, warnings, err := dataprocessing.Process("Income Statement T-12", grid, policy)
//
// The empty string is the missing-cell marker throughout.
package dataprocessing
