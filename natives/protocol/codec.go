package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

const (
	// MaxPacketPayload limits a single packet payload, before and after
	// decompression.
	MaxPacketPayload = 1 << 21 // 2 MiB

	// DefaultThreshold is the payload size from which packets get compressed.
	DefaultThreshold = 256

	headerSize = 6

	flagCompressed = 0x01
)

var (
	ErrPacketTooLarge = errors.New("protocol: packet payload too large")
	ErrInvalidID      = errors.New("protocol: invalid packet id")
	ErrUnknownFlags   = errors.New("protocol: unknown packet flags")
)

// Codec reads and writes packets.
// Format:
//
//	1 byte: flags (bit 0 set when the payload is lz4 compressed)
//	1 byte: packet id
//	4 bytes: payload length on the wire (big endian)
//	N bytes: payload
//
// A Codec holds no per-connection state and may be shared.
type Codec struct {
	// Threshold is the smallest payload that is compressed. Zero or
	// negative disables compression.
	Threshold int
	// Level is the lz4 compression level; the zero value is lz4.Fast.
	Level lz4.CompressionLevel
}

// NewCodec returns a codec compressing payloads of at least threshold bytes.
func NewCodec(threshold int) *Codec {
	return &Codec{Threshold: threshold}
}

// WritePacket encodes p and writes it with a single Write call, so that a
// packet maps to one contiguous span when w encrypts.
func (c *Codec) WritePacket(w io.Writer, p Packet) error {
	if p.ID == 0 {
		return ErrInvalidID
	}
	if len(p.Payload) > MaxPacketPayload {
		return ErrPacketTooLarge
	}

	var flags byte
	payload := p.Payload
	if c.Threshold > 0 && len(payload) >= c.Threshold {
		// Sent as is when compression does not pay off.
		if z, err := compress(payload, c.Level); err == nil && len(z) < len(payload) {
			payload = z
			flags |= flagCompressed
		}
	}

	buf := make([]byte, headerSize+len(payload))
	buf[0] = flags
	buf[1] = byte(p.ID)
	binary.BigEndian.PutUint32(buf[2:headerSize], uint32(len(payload)))
	copy(buf[headerSize:], payload)

	_, err := w.Write(buf)
	return err
}

// ReadPacket reads exactly one packet from r.
func (c *Codec) ReadPacket(r io.Reader) (Packet, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Packet{}, err
	}
	flags := hdr[0]
	if flags&^flagCompressed != 0 {
		return Packet{}, fmt.Errorf("%w: %#x", ErrUnknownFlags, flags)
	}
	id := PacketID(hdr[1])
	if id == 0 {
		return Packet{}, ErrInvalidID
	}
	n := binary.BigEndian.Uint32(hdr[2:])
	if n > MaxPacketPayload {
		return Packet{}, fmt.Errorf("%w: %d", ErrPacketTooLarge, n)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Packet{}, err
	}
	if flags&flagCompressed != 0 {
		var err error
		if payload, err = decompress(payload, MaxPacketPayload); err != nil {
			return Packet{}, err
		}
	}
	return Packet{ID: id, Payload: payload}, nil
}
