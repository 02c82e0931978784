// Package format renders job-board values for display: salaries in lakhs per
// annum, relative and short dates, and human labels for enum codes.
package format
