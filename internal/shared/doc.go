// Package shared holds helpers used by more than one package.
//
// testutil provides the log capture handler and the workbook fixture builder
// used throughout the test suites. It must only be imported from _test.go
// files.
package shared
