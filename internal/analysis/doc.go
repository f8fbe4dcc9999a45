// Package analysis derives the summary tables the narrative and the report are
// built from: group sums over line items, filtered total rows, ranked expense
// variances and the revenue to expense flow. Analyses only read processed
// tables and never modify them.
package analysis
