// Package blobstore abstracts the object stores corpus exports are
// written to. Built-in backends: in-memory (tests), local filesystem,
// MinIO/S3-compatible (blobstore/minio) and AWS S3 (blobstore/s3).
package blobstore
