// Package s3cache provides an S3-backed cache.Store.
//
// Each entry is one JSON object in a bucket, with its storage time kept in
// object metadata. S3 applies no expiry of its own here; staleness is
// computed from the stored-at timestamp at read time, and old objects are
// left to bucket lifecycle rules. Suited to large, slowly changing
// responses shared between instances, not to hot small entries.
package s3cache
