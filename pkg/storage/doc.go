// Package storage holds the configuration and error vocabulary shared by the
// persistence backends.
//
// Stores never leak driver errors to callers. A missing row is ErrNotFound and a
// uniqueness violation is ErrConflict, so services and the HTTP layer can classify
// failures with errors.Is:
//
//	user, err := store.GetByNIP(ctx, nip)
//	if errors.Is(err, storage.ErrNotFound) {
//		// 404
//	}
//
// The PostgreSQL, Redis and S3 implementations live in pkg/storage/postgres and the
// schema migrations in pkg/storage/migrations.
package storage
