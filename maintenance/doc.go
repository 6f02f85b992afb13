// Package maintenance provides offline consistency checking and repair for
// the category index.
//
// This package supports full-store verification of record/index agreement,
// progress tracking, retry logic with exponential backoff, and batched
// index rebuilds.
package maintenance
