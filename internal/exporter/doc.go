// Package exporter persists processed tables and derived artifacts into a
// run's processed directory.
//
// Every write goes to a temporary file in the destination directory that is
// renamed into place once complete, so readers see either the whole file or
// no file at all.
//
// Example usage:
//
//	path, err := exporter.WriteTable(run.ProcessedDir(), table)
//
//	store := exporter.NewStore(run.ProcessedDir())
//	labor, err := store.Table("Labor")
package exporter
