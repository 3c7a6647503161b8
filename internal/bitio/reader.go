package bitio

import "github.com/bugVanisher/damps/common/errs"

// Reader walks a fixed byte slice, handing out big-endian bit groups,
// byte-aligned byte runs, and byte-position seeks. It never allocates beyond
// construction.
type Reader struct {
	buf      []byte
	bytePos  int
	bitBuf   uint64
	bitCount uint
}

// NewReader wraps buf for reading. buf is not copied; the caller must not
// mutate it while the Reader is in use.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Len returns the total number of bytes in the underlying buffer.
func (r *Reader) Len() int {
	return len(r.buf)
}

// Tell returns the current byte offset, not counting any pending sub-byte
// bits consumed via ReadBits.
func (r *Reader) Tell() int {
	return r.bytePos
}

// Seek moves the byte cursor to an absolute position and discards any
// pending sub-byte bits.
func (r *Reader) Seek(pos int) error {
	if pos < 0 || pos > len(r.buf) {
		return errs.Newf(errs.KindUnexpectedEof, "bitio: seek %d out of range [0,%d]", pos, len(r.buf))
	}
	r.bytePos = pos
	r.bitBuf = 0
	r.bitCount = 0
	return nil
}

// Remaining reports how many whole bytes are left to read after the byte
// cursor (pending sub-byte bits are ignored).
func (r *Reader) Remaining() int {
	return len(r.buf) - r.bytePos
}

// ReadBits reads n bits (n in [0, 57]) as a big-endian unsigned integer,
// most-significant bit first.
func (r *Reader) ReadBits(n uint) (uint64, error) {
	for r.bitCount < n {
		if r.bytePos >= len(r.buf) {
			return 0, errs.New(errs.KindUnexpectedEof, "bitio: read past end of buffer")
		}
		r.bitBuf = (r.bitBuf << 8) | uint64(r.buf[r.bytePos])
		r.bytePos++
		r.bitCount += 8
	}
	r.bitCount -= n
	v := (r.bitBuf >> r.bitCount) & (uint64(1)<<n - 1)
	return v, nil
}

// PeekByte returns the next byte-aligned byte without consuming it. The
// reader must be byte-aligned (no pending bits).
func (r *Reader) PeekByte() (byte, error) {
	if r.bitCount != 0 {
		return 0, errs.New(errs.KindInvalidField, "bitio: peek while not byte-aligned")
	}
	if r.bytePos >= len(r.buf) {
		return 0, errs.New(errs.KindUnexpectedEof, "bitio: peek past end of buffer")
	}
	return r.buf[r.bytePos], nil
}

// PeekBytes returns the next n bytes without consuming them. The reader must
// be byte-aligned.
func (r *Reader) PeekBytes(n int) ([]byte, error) {
	if r.bitCount != 0 {
		return nil, errs.New(errs.KindInvalidField, "bitio: peek while not byte-aligned")
	}
	if r.bytePos+n > len(r.buf) {
		return nil, errs.New(errs.KindUnexpectedEof, "bitio: peek past end of buffer")
	}
	return r.buf[r.bytePos : r.bytePos+n], nil
}

// ReadBytes consumes and returns n byte-aligned bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if r.bitCount != 0 {
		return nil, errs.New(errs.KindInvalidField, "bitio: read while not byte-aligned")
	}
	if r.bytePos+n > len(r.buf) {
		return nil, errs.New(errs.KindUnexpectedEof, "bitio: read past end of buffer")
	}
	b := r.buf[r.bytePos : r.bytePos+n]
	r.bytePos += n
	return b, nil
}

// SkipBits discards n pending bits without producing a value.
func (r *Reader) SkipBits(n uint) error {
	_, err := r.ReadBits(n)
	return err
}

// AlignToByte discards any partial bits so the next read starts at a byte
// boundary (the already-consumed whole bytes backing the pending bits are
// not un-read).
func (r *Reader) AlignToByte() {
	r.bitBuf = 0
	r.bitCount = 0
}
