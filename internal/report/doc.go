// Package report renders a run's narrative and ranked tables as an HTML
// document, and prints that document to PDF with headless Chrome.
//
// The report has two parts. "Qualitative Analysis" is the narrative summary,
// written by the model in markdown. "Quantitative Analysis"
// holds the ranked variance tables and the revenue to expense flow.
package report
