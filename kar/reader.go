// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package kar

import (
	"io"

	"github.com/pierrec/lz4"
)

func newDecompressor(r io.Reader) io.Reader {
	return lz4.NewReader(r)
}

// Reader is a reader for a single file in an Archive.
// Abstracts away the location that needs to be known.
type Reader struct {
	inner     io.Reader
	remaining int64
}

// Read reads already decompressed data. It reports io.EOF once the
// file's uncompressed size has been consumed.
func (r *Reader) Read(p []byte) (n int, err error) {
	if r.remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > r.remaining {
		p = p[:r.remaining]
	}
	n, err = r.inner.Read(p)
	r.remaining -= int64(n)
	if err == io.EOF && r.remaining > 0 {
		err = io.ErrUnexpectedEOF
	}
	return n, err
}
