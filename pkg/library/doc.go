// Package library persists package registries in SQLite.
//
// Each package is stored as its serialized package document plus a few
// indexed columns (name, hash version, node count) and its direct nesting
// edges, so a library can be listed and searched without decoding every
// graph. [Store.Registry] loads the whole library into a
// [registry.Registry]; [Store.Replace] writes one back after a migration or
// cascading delete.
package library
