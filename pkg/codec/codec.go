// Package codec frames schema-versioned messages over msgpack.
//
// Every message carries a 4-byte big-endian schema version followed by the
// msgpack encoding of the value. Msgpack structs are encoded as string-keyed
// maps, so a newer reader can still decode an older payload as long as the
// schema version matches; genuinely incompatible layouts bump the version.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-msgpack/v2/codec"
)

// ErrVersion is returned when a message's schema version does not match
// the caller's expectation.
var ErrVersion = errors.New("unsupported schema version")

var handle = func() *codec.MsgpackHandle {
	h := &codec.MsgpackHandle{}
	h.Canonical = true
	return h
}()

// Encode writes the version header followed by the msgpack encoding of v.
func Encode(w io.Writer, version uint32, v interface{}) error {
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], version)
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write message header: %w", err)
	}
	if err := codec.NewEncoder(w, handle).Encode(v); err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	return nil
}

// Decode reads one message from r into v, requiring the given schema
// version. A version mismatch is reported as ErrVersion.
func Decode(r io.Reader, version uint32, v interface{}) error {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return fmt.Errorf("read message header: %w", err)
	}
	if got := binary.BigEndian.Uint32(header[:]); got != version {
		return fmt.Errorf("%w: got %d, want %d", ErrVersion, got, version)
	}
	if err := codec.NewDecoder(r, handle).Decode(v); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	return nil
}
