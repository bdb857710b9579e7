// Package index implements the inverted index over decomposed query
// terms: commit, tombstoning delete, candidate search through a
// pluggable presearch filter, full scans and the purge cycle that
// bounds index and cache growth.
package index
