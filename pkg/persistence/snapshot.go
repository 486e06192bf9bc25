// Package persistence handles durable storage of the terrain state as a
// framed snapshot file. The frame format guards the JSON payload with a
// magic byte, a version and a CRC32 checksum so a truncated or corrupted
// file is detected on load instead of producing a half-built graph.
package persistence

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"

	"github.com/xnoubis/rosetta/pkg/core"
)

// Constants for the snapshot binary framing.
const (
	// MagicByte marks the start of a valid snapshot frame.
	MagicByte = 0xA7

	// FormatVersion is bumped on incompatible payload changes.
	FormatVersion = 0x01

	// HeaderSize is the fixed frame metadata:
	// 1 byte (Magic) + 1 byte (Version) + 4 bytes (Length) + 4 bytes (CRC32).
	HeaderSize = 10
)

var (
	// ErrNoState indicates no usable snapshot exists at the given path.
	// Missing files, bad magic bytes, checksum mismatches and truncated
	// frames all collapse into this error: callers treat every one of
	// them as a fresh start.
	ErrNoState = errors.New("no saved state")

	// ErrUnsupportedVersion indicates the file was written by an
	// incompatible format revision.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)

// Save serializes the snapshot and writes it atomically to path.
// The frame is written to a temp file in the same directory and renamed
// over the destination, so a crash mid-write never corrupts an existing
// snapshot.
func Save(path string, snap *core.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	var buf bytes.Buffer
	if err := writeFrame(&buf, payload); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

// Load reads and validates the snapshot at path. Any failure to produce
// a complete, checksum-verified payload is reported as ErrNoState.
func Load(path string) (*core.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrNoState
	}
	defer f.Close()

	payload, err := readFrame(f)
	if err != nil {
		return nil, ErrNoState
	}

	var snap core.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, ErrNoState
	}
	return &snap, nil
}

// Exists reports whether a snapshot file is present at path. It does not
// validate the contents.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Remove deletes the snapshot file. A missing file is not an error.
func Remove(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// writeFrame encodes the payload into a binary frame:
// [Magic(1)][Version(1)][Length(4 LE)][CRC32(4 LE)][Payload(N)]
func writeFrame(w io.Writer, payload []byte) error {
	header := make([]byte, HeaderSize)
	header[0] = MagicByte
	header[1] = FormatVersion
	binary.LittleEndian.PutUint32(header[2:6], uint32(len(payload)))
	binary.LittleEndian.PutUint32(header[6:10], crc32.ChecksumIEEE(payload))

	if _, err := w.Write(header); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	return nil
}

// readFrame reads one frame and verifies magic, version and checksum.
func readFrame(r io.Reader) ([]byte, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("incomplete frame header: %w", err)
	}

	if header[0] != MagicByte {
		return nil, errors.New("invalid magic byte")
	}
	if header[1] != FormatVersion {
		return nil, ErrUnsupportedVersion
	}

	length := binary.LittleEndian.Uint32(header[2:6])
	expectedCRC := binary.LittleEndian.Uint32(header[6:10])

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("incomplete frame payload: %w", err)
	}

	if crc32.ChecksumIEEE(payload) != expectedCRC {
		return nil, errors.New("crc32 checksum mismatch")
	}
	return payload, nil
}
