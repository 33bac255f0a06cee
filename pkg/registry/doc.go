// Package registry stores packages by content address.
//
// [Hash] derives a package's address from the structure of its graph. The
// address carries a format version prefix; when the hashing scheme changes,
// [Migrate] re-hashes stale packages bottom-up and rewrites every reference
// to them. [Bundle] turns a node selection into a deduplicated package and
// [Delete] removes a package together with everything that nests it.
package registry
