// Package validation checks local workbook paths and output directories used
// by the command line tools.
package validation
