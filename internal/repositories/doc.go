// Package repositories implements SQLite persistence for the client's durable state.
//
// The only durable state is the pair of session slots (token and user). Catalog and profile data are
// never persisted; they live for the session only.
//
// Key Implementations:
//   - [StorageRepository] : key/value slots in the local_storage table, implementing session.Storage
package repositories
