// Package checksum implements the SHA-256 digest used to fingerprint backup
// content. It is self-contained on purpose: the digest is the foundation of
// every integrity invariant in catdog, and its output must be identical on
// every platform the tool runs on.
package checksum

import (
	"encoding/binary"
	"encoding/hex"
	"io"
	"math/bits"
	"os"
)

// Size is the digest length in bytes.
const Size = 32

// blockSize is the SHA-256 compression block length in bytes.
const blockSize = 64

var roundConstants = [64]uint32{
	0x428a2f98, 0x71374491, 0xb5c0fbcf, 0xe9b5dba5, 0x3956c25b, 0x59f111f1, 0x923f82a4, 0xab1c5ed5,
	0xd807aa98, 0x12835b01, 0x243185be, 0x550c7dc3, 0x72be5d74, 0x80deb1fe, 0x9bdc06a7, 0xc19bf174,
	0xe49b69c1, 0xefbe4786, 0x0fc19dc6, 0x240ca1cc, 0x2de92c6f, 0x4a7484aa, 0x5cb0a9dc, 0x76f988da,
	0x983e5152, 0xa831c66d, 0xb00327c8, 0xbf597fc7, 0xc6e00bf3, 0xd5a79147, 0x06ca6351, 0x14292967,
	0x27b70a85, 0x2e1b2138, 0x4d2c6dfc, 0x53380d13, 0x650a7354, 0x766a0abb, 0x81c2c92e, 0x92722c85,
	0xa2bfe8a1, 0xa81a664b, 0xc24b8b70, 0xc76c51a3, 0xd192e819, 0xd6990624, 0xf40e3585, 0x106aa070,
	0x19a4c116, 0x1e376c08, 0x2748774c, 0x34b0bcb5, 0x391c0cb3, 0x4ed8aa4a, 0x5b9cca4f, 0x682e6ff3,
	0x748f82ee, 0x78a5636f, 0x84c87814, 0x8cc70208, 0x90befffa, 0xa4506ceb, 0xbef9a3f7, 0xc67178f2,
}

// Digest is a streaming SHA-256 state. The zero value is not usable; call New.
type Digest struct {
	state    [8]uint32
	buf      [blockSize]byte
	buffered int
	length   uint64
}

// New returns a Digest initialized to the SHA-256 starting state.
func New() *Digest {
	d := &Digest{}
	d.Reset()
	return d
}

// Reset restores the starting state so the Digest can be reused.
func (d *Digest) Reset() {
	d.state = [8]uint32{
		0x6a09e667, 0xbb67ae85, 0x3c6ef372, 0xa54ff53a,
		0x510e527f, 0x9b05688c, 0x1f83d9ab, 0x5be0cd19,
	}
	d.buffered = 0
	d.length = 0
}

// Write absorbs p into the digest state. It never fails; the error return
// exists to satisfy io.Writer.
func (d *Digest) Write(p []byte) (int, error) {
	n := len(p)
	d.length += uint64(n)

	if d.buffered > 0 {
		c := copy(d.buf[d.buffered:], p)
		d.buffered += c
		p = p[c:]
		if d.buffered == blockSize {
			d.compress(d.buf[:])
			d.buffered = 0
		}
	}

	for len(p) >= blockSize {
		d.compress(p[:blockSize])
		p = p[blockSize:]
	}

	if len(p) > 0 {
		d.buffered = copy(d.buf[:], p)
	}

	return n, nil
}

// Sum returns the hex-encoded digest of everything written so far.
// The receiver state is not consumed; more data may be written afterwards.
func (d *Digest) Sum() string {
	// Finalize a copy so padding does not disturb the running state.
	f := *d

	bitLen := f.length * 8
	f.writePadding()

	var lenSuffix [8]byte
	binary.BigEndian.PutUint64(lenSuffix[:], bitLen)
	f.Write(lenSuffix[:])

	var out [Size]byte
	for i, w := range f.state {
		binary.BigEndian.PutUint32(out[i*4:], w)
	}
	return hex.EncodeToString(out[:])
}

// writePadding appends the 0x80 marker and zero fill so that exactly 8 bytes
// remain before the next block boundary.
func (d *Digest) writePadding() {
	var pad [blockSize + 1]byte
	pad[0] = 0x80

	rem := int(d.length % blockSize)
	padLen := blockSize - 8 - rem
	if padLen <= 0 {
		padLen += blockSize
	}
	d.Write(pad[:padLen])
}

func (d *Digest) compress(block []byte) {
	var w [64]uint32
	for i := 0; i < 16; i++ {
		w[i] = binary.BigEndian.Uint32(block[i*4:])
	}
	for i := 16; i < 64; i++ {
		s0 := bits.RotateLeft32(w[i-15], -7) ^ bits.RotateLeft32(w[i-15], -18) ^ (w[i-15] >> 3)
		s1 := bits.RotateLeft32(w[i-2], -17) ^ bits.RotateLeft32(w[i-2], -19) ^ (w[i-2] >> 10)
		w[i] = w[i-16] + s0 + w[i-7] + s1
	}

	a, b, c, dd := d.state[0], d.state[1], d.state[2], d.state[3]
	e, f, g, h := d.state[4], d.state[5], d.state[6], d.state[7]

	for i := 0; i < 64; i++ {
		s1 := bits.RotateLeft32(e, -6) ^ bits.RotateLeft32(e, -11) ^ bits.RotateLeft32(e, -25)
		ch := (e & f) ^ (^e & g)
		t1 := h + s1 + ch + roundConstants[i] + w[i]
		s0 := bits.RotateLeft32(a, -2) ^ bits.RotateLeft32(a, -13) ^ bits.RotateLeft32(a, -22)
		maj := (a & b) ^ (a & c) ^ (b & c)
		t2 := s0 + maj

		h = g
		g = f
		f = e
		e = dd + t1
		dd = c
		c = b
		b = a
		a = t1 + t2
	}

	d.state[0] += a
	d.state[1] += b
	d.state[2] += c
	d.state[3] += dd
	d.state[4] += e
	d.state[5] += f
	d.state[6] += g
	d.state[7] += h
}

// Sum returns the hex-encoded SHA-256 of data.
func Sum(data []byte) string {
	d := New()
	d.Write(data)
	return d.Sum()
}

// Reader consumes r to EOF and returns the hex-encoded digest of its bytes.
// Memory use is bounded regardless of input size.
func Reader(r io.Reader) (string, error) {
	d := New()
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			d.Write(buf[:n])
		}
		if err == io.EOF {
			return d.Sum(), nil
		}
		if err != nil {
			return "", err
		}
	}
}

// File streams the file at path through the digest.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return Reader(f)
}
