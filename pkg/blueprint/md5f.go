package blueprint

import (
	"encoding/binary"
	"hash"
	"math/bits"
)

// md5Params is one member of the MD5 family: an initial state and a table of
// additive round constants. Everything else is the RFC 1321 construction.
type md5Params struct {
	init [4]uint32
	t    [64]uint32
}

var md5Standard = md5Params{
	init: [4]uint32{0x67452301, 0xefcdab89, 0x98badcfe, 0x10325476},
	t: [64]uint32{
		0xd76aa478, 0xe8c7b756, 0x242070db, 0xc1bdceee, 0xf57c0faf, 0x4787c62a, 0xa8304613, 0xfd469501,
		0x698098d8, 0x8b44f7af, 0xffff5bb1, 0x895cd7be, 0x6b901122, 0xfd987193, 0xa679438e, 0x49b40821,
		0xf61e2562, 0xc040b340, 0x265e5a51, 0xe9b6c7aa, 0xd62f105d, 0x02441453, 0xd8a1e681, 0xe7d3fbc8,
		0x21e1cde6, 0xc33707d6, 0xf4d50d87, 0x455a14ed, 0xa9e3e905, 0xfcefa3f8, 0x676f02d9, 0x8d2a4c8a,
		0xfffa3942, 0x8771f681, 0x6d9d6122, 0xfde5380c, 0xa4beea44, 0x4bdecfa9, 0xf6bb4b60, 0xbebfbc70,
		0x289b7ec6, 0xeaa127fa, 0xd4ef3085, 0x04881d05, 0xd9d4d039, 0xe6db99e5, 0x1fa27cf8, 0xc4ac5665,
		0xf4292244, 0x432aff97, 0xab9423a7, 0xfc93a039, 0x655b59c3, 0x8f0ccc92, 0xffeff47d, 0x85845dd1,
		0x6fa87e4f, 0xfe2ce6e0, 0xa3014314, 0x4e0811a1, 0xf7537e82, 0xbd3af235, 0x2ad7d2bb, 0xeb86d391,
	},
}

// md5F is the variant the blueprint verifier uses: a different initial state
// and five altered round constants.
var md5F = func() md5Params {
	p := md5Standard
	p.init = [4]uint32{0x67452301, 0xefdcab89, 0x98badcfe, 0x10325746}
	p.t[1] = 0xe8d7b756
	p.t[6] = 0xa8304623
	p.t[12] = 0x6b9f1122
	p.t[25] = 0xc3d707d6
	p.t[40] = 0x289e7ec6
	return p
}()

var md5Shifts = [4][4]int{{7, 12, 17, 22}, {5, 9, 14, 20}, {4, 11, 16, 23}, {6, 10, 15, 21}}

const (
	md5Size      = 16
	md5BlockSize = 64
)

type md5Digest struct {
	p   *md5Params
	s   [4]uint32
	x   [md5BlockSize]byte
	nx  int
	len uint64
}

// NewMD5F returns a hash.Hash computing the blueprint digest.
func NewMD5F() hash.Hash { return newMD5(&md5F) }

func newMD5(p *md5Params) *md5Digest {
	d := &md5Digest{p: p}
	d.Reset()
	return d
}

func (d *md5Digest) Reset() {
	d.s = d.p.init
	d.nx = 0
	d.len = 0
}

func (d *md5Digest) Size() int      { return md5Size }
func (d *md5Digest) BlockSize() int { return md5BlockSize }

func (d *md5Digest) Write(b []byte) (int, error) {
	n := len(b)
	d.len += uint64(n)
	if d.nx > 0 {
		c := copy(d.x[d.nx:], b)
		d.nx += c
		b = b[c:]
		if d.nx == md5BlockSize {
			d.block(d.x[:])
			d.nx = 0
		}
	}
	for len(b) >= md5BlockSize {
		d.block(b[:md5BlockSize])
		b = b[md5BlockSize:]
	}
	d.nx = copy(d.x[:], b)
	return n, nil
}

// Sum appends the digest of the data written so far without changing state.
func (d *md5Digest) Sum(in []byte) []byte {
	c := *d
	var pad [md5BlockSize + 8]byte
	pad[0] = 0x80
	padLen := 56 - int(c.len%64)
	if padLen <= 0 {
		padLen += 64
	}
	binary.LittleEndian.PutUint64(pad[padLen:], c.len<<3)
	c.Write(pad[:padLen+8])

	out := make([]byte, 0, md5Size)
	for _, v := range c.s {
		out = binary.LittleEndian.AppendUint32(out, v)
	}
	return append(in, out...)
}

func (d *md5Digest) block(p []byte) {
	var m [16]uint32
	for i := range m {
		m[i] = binary.LittleEndian.Uint32(p[4*i:])
	}
	a, b, c, dd := d.s[0], d.s[1], d.s[2], d.s[3]
	for i := 0; i < 64; i++ {
		var f uint32
		var g int
		switch i / 16 {
		case 0:
			f = (b & c) | (^b & dd)
			g = i
		case 1:
			f = (b & dd) | (c & ^dd)
			g = (5*i + 1) % 16
		case 2:
			f = b ^ c ^ dd
			g = (3*i + 5) % 16
		default:
			f = c ^ (b | ^dd)
			g = (7 * i) % 16
		}
		f += a + d.p.t[i] + m[g]
		a, dd, c = dd, c, b
		b += bits.RotateLeft32(f, md5Shifts[i/16][i%4])
	}
	d.s[0] += a
	d.s[1] += b
	d.s[2] += c
	d.s[3] += dd
}
