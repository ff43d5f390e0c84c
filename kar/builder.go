// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package kar

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	"github.com/pierrec/lz4"
)

// NewBuilder creates a new Builder. Do not fill the Index in
// the header, it will be overwritten anyway.
func NewBuilder(header Header) (*Builder, error) {
	temp, err := os.MkdirTemp("", "karBuilder")
	if err != nil {
		return nil, err
	}
	builder := &Builder{
		tempDir: temp,
		header:  header,
	}
	// TODO: Not sure if this is a good place to clean up.
	// Measure if GC will take a hit later.
	runtime.SetFinalizer(builder, func(builder *Builder) {
		os.RemoveAll(builder.tempDir)
	})
	return builder, nil
}

type tempFile struct {

	// Name is the actual name of the file
	Name string

	// TempName is the temporary name given by the Builder
	TempName string

	// Size in uncompressed state
	Size int64

	Compressed int64
}

// Builder is the high level builder for the archive format.
// Archives are versioned and cannot be appended to, this Builder
// is the way to create an archive. Whenever Add is called, the Builder
// compresses the data into a temporary dir, finally bundling everything
// together and writing it out with WriteTo.
type Builder struct {
	tempDir string
	header  Header

	mutex    sync.Mutex
	files    []tempFile
	nextTemp int
}

// Add appends data to the builder with a given name.
// Will block until lz4 finishes compression. Is safe
// to use concurrently in different goroutines. A failed
// Add leaves no trace in the archive, later Adds and
// WriteTo proceed as if it never happened.
func (b *Builder) Add(name string, data io.Reader) error {
	b.mutex.Lock()
	tempName := strconv.Itoa(b.nextTemp)
	b.nextTemp++
	b.files = append(b.files, tempFile{Name: name, TempName: tempName})
	b.mutex.Unlock()

	size, compressed, err := b.compress(tempName, data)
	if err != nil {
		b.discard(tempName)
		return err
	}

	b.mutex.Lock()
	for i := range b.files {
		if b.files[i].TempName == tempName {
			b.files[i].Size = size
			b.files[i].Compressed = compressed
			break
		}
	}
	b.mutex.Unlock()
	return nil
}

func (b *Builder) compress(tempName string, data io.Reader) (int64, int64, error) {
	f, err := os.Create(filepath.Join(b.tempDir, tempName))
	if err != nil {
		return 0, 0, ErrTempFail
	}
	defer f.Close()

	writer := lz4.NewWriter(f)
	size, err := io.Copy(writer, data)
	if err != nil {
		return 0, 0, err
	}
	if err := writer.Close(); err != nil {
		return 0, 0, err
	}
	if err := f.Sync(); err != nil {
		return 0, 0, ErrTempFail
	}
	info, err := f.Stat()
	if err != nil {
		return 0, 0, ErrTempFail
	}
	return size, info.Size(), nil
}

// discard drops the index slot reserved by a failed Add along with
// whatever made it into the temp file.
func (b *Builder) discard(tempName string) {
	b.mutex.Lock()
	for i := range b.files {
		if b.files[i].TempName == tempName {
			b.files = append(b.files[:i], b.files[i+1:]...)
			break
		}
	}
	b.mutex.Unlock()
	os.Remove(filepath.Join(b.tempDir, tempName))
}

// WriteTo bundles and writes all of the files added to the Builder
// into a kar archive that is ready to use.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	header := b.header
	header.Index = nil
	var offset int64
	for _, v := range b.files {
		header.Index = append(header.Index, IndexEntry{
			Name:           v.Name,
			Size:           v.Size,
			CompressedSize: v.Compressed,
			Offset:         offset,
		})
		offset += v.Compressed
	}

	rawHeader, err := gobEncode(header)
	if err != nil {
		return 0, err
	}

	var written int64
	n, err := w.Write(magic[:])
	written += int64(n)
	if err != nil {
		return written, err
	}

	sizeBytes := make([]byte, HeaderSizeNumberLength)
	binary.LittleEndian.PutUint64(sizeBytes, uint64(len(rawHeader)))
	n, err = w.Write(sizeBytes)
	written += int64(n)
	if err != nil {
		return written, err
	}

	n, err = w.Write(rawHeader)
	written += int64(n)
	if err != nil {
		return written, err
	}

	for _, v := range b.files {
		f, err := os.Open(filepath.Join(b.tempDir, v.TempName))
		if err != nil {
			return written, ErrTempFail
		}
		copied, err := io.Copy(w, f)
		written += copied
		f.Close()
		if err != nil {
			return written, err
		}
	}

	b.files = b.files[:0]
	return written, nil
}
