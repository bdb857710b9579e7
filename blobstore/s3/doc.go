// Package s3 implements blobstore.Store on AWS S3 using the v2 SDK.
// Uploads go through the s3/manager concurrent uploader.
package s3
