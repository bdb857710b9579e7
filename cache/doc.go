// Package cache holds compiled queries keyed by query id. Entries are
// created eagerly on commit and lazily on first candidate lookup; the
// background purge cycle evicts entries whose id no longer has a live
// index entry.
package cache
