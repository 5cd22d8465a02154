// Package avatars stores one profile image per user as a base64 data URI.
//
// Uploads are checked (non-empty, at most MaxSize, image MIME type) and renamed
// to <unix-millis>_<original name>. The Store is PostgreSQL or S3 backed, usually
// wrapped in a CachedStore.
package avatars
