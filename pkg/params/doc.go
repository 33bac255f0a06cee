// Package params packs an object's typed parameter record into the flat
// array of 32-bit words stored in the blueprint, and back.
//
// A [Schema] is a tree of named [Group] and [Field] nodes. Each field binds an
// [Adapter] to a word offset; the offset may depend on fields decoded before
// it, which is how layouts that shift when an earlier field is set are
// expressed. Encoding walks the tree writing every leaf; decoding is the
// structural mirror and rebuilds the same nested [Record].
//
// Schemas are looked up in a static table keyed by object type id and, for
// splitters, model variant ([Lookup]). Object types without a schema, and
// word arrays that do not fit their schema, decode to a passthrough record
// holding the raw words unchanged so unknown data survives a round trip.
//
// Round-trip law: Decode(Encode(r)) equals r for every record inside the
// schema's domain.
package params
