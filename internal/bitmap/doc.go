// Package bitmap wraps Roaring Bitmaps for slot-set operations in the
// query index: postings lists, tombstones and candidate selection.
package bitmap
