// Package report prints comparison results and keeps an SQLite history of
// past comparisons. The history is an audit log; nothing in the pipeline
// reads it back.
package report
