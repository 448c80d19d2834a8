package cas

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"
)

// Codec selects how object payloads are encoded on disk. Object ids are
// always computed over the decoded bytes.
type Codec string

const (
	CodecNone Codec = "none"
	CodecZstd Codec = "zstd"
)

// FileCAS implements CAS using file system storage, one file per object
// named by its hex hash.
type FileCAS struct {
	fs    afero.Fs
	root  string
	codec Codec

	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewFileCAS creates a new file-based CAS in the given directory of fs.
func NewFileCAS(fs afero.Fs, root string, codec Codec) (*FileCAS, error) {
	if err := fs.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create CAS directory: %w", err)
	}

	f := &FileCAS{fs: fs, root: root, codec: codec}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	f.dec = dec

	switch codec {
	case CodecNone, "":
		f.codec = CodecNone
	case CodecZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("zstd writer: %w", err)
		}
		f.enc = enc
	default:
		return nil, fmt.Errorf("unknown object codec %q", codec)
	}

	return f, nil
}

// getPath returns the file path for a given hash.
func (f *FileCAS) getPath(hash Hash) string {
	return filepath.Join(f.root, hash.String())
}

// Put implements CAS.Put.
func (f *FileCAS) Put(hash Hash, data []byte) error {
	computed := SumB3(data)
	if computed != hash {
		return fmt.Errorf("hash mismatch: expected %s, got %s", hash.String(), computed.String())
	}

	path := f.getPath(hash)

	// Content-addressed, so an existing file already holds these bytes.
	if _, err := f.fs.Stat(path); err == nil {
		return nil
	}

	payload := data
	if f.codec == CodecZstd {
		payload = f.enc.EncodeAll(data, make([]byte, 0, len(data)))
	}

	tmp, err := afero.TempFile(f.fs, f.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, err = tmp.Write(payload)
	closeErr := tmp.Close()

	if err != nil {
		f.fs.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}

	if closeErr != nil {
		f.fs.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := f.fs.Rename(tmpPath, path); err != nil {
		f.fs.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}

// Get implements CAS.Get. Objects written under either codec are readable.
func (f *FileCAS) Get(hash Hash) ([]byte, error) {
	raw, err := afero.ReadFile(f.fs, f.getPath(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, hash.String())
		}
		return nil, fmt.Errorf("failed to read object: %w", err)
	}

	if SumB3(raw) == hash {
		return raw, nil
	}

	data, err := f.dec.DecodeAll(raw, nil)
	if err != nil || SumB3(data) != hash {
		return nil, fmt.Errorf("corrupted data: hash mismatch for %s", hash.String())
	}

	return data, nil
}

// Has implements CAS.Has.
func (f *FileCAS) Has(hash Hash) (bool, error) {
	_, err := f.fs.Stat(f.getPath(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check file: %w", err)
	}

	return true, nil
}
