// Package blueprint reads and writes the external blueprint text format.
//
// A blueprint string has three parts:
//
//	BLUEPRINT:0,<layout>,<icon0>,...,<icon4>,0,<ticks>,<gameVersion>,<short>,<desc>
//	"<base64(gzip(payload))>"
//	<32 upper-case hex digest>
//
// The digest is computed with [NewMD5F] over everything before the closing
// quote. [FromText] verifies it before looking at the payload; a mismatch is
// a CHECKSUM_MISMATCH error. The payload is a little-endian record of the
// [Blueprint] meta fields, its areas and its buildings. Each building ends
// with its parameter block, packed by package params.
package blueprint
