package infrastructure

import (
	"bytes"
	"errors"
	"io"
)

var (
	errInvalidOggMagic   = errors.New("ogg: invalid capture pattern")
	errInvalidOggVersion = errors.New("ogg: unsupported version")
)

// oggPacketReader demuxes Opus packets from a non-seekable Ogg stream, one
// page at a time. Packets spanning a page boundary are reassembled from
// the lacing values.
type oggPacketReader struct {
	r       io.Reader
	packets [][]byte
	partial []byte
}

func newOggPacketReader(r io.Reader) *oggPacketReader {
	return &oggPacketReader{r: r}
}

// NextPacket returns the next complete packet. io.EOF signals a cleanly
// finished stream.
func (o *oggPacketReader) NextPacket() ([]byte, error) {
	for len(o.packets) == 0 {
		if err := o.readPage(); err != nil {
			return nil, err
		}
	}

	packet := o.packets[0]
	o.packets = o.packets[1:]
	return packet, nil
}

func (o *oggPacketReader) readPage() error {
	// Fixed page header is 27 bytes, then the segment table.
	var header [27]byte
	if _, err := io.ReadFull(o.r, header[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return io.EOF
		}
		return err
	}

	if string(header[0:4]) != "OggS" {
		return errInvalidOggMagic
	}
	if header[4] != 0 {
		return errInvalidOggVersion
	}

	numSegments := int(header[26])
	if numSegments == 0 {
		return nil
	}

	segmentTable := make([]byte, numSegments)
	if _, err := io.ReadFull(o.r, segmentTable); err != nil {
		return err
	}

	bodySize := 0
	for _, lacing := range segmentTable {
		bodySize += int(lacing)
	}

	body := make([]byte, bodySize)
	if _, err := io.ReadFull(o.r, body); err != nil {
		return err
	}

	// A lacing value of 255 means the packet continues in the next
	// segment; anything smaller terminates it.
	offset := 0
	for _, lacing := range segmentTable {
		o.partial = append(o.partial, body[offset:offset+int(lacing)]...)
		offset += int(lacing)

		if lacing < 255 {
			packet := make([]byte, len(o.partial))
			copy(packet, o.partial)
			o.packets = append(o.packets, packet)
			o.partial = o.partial[:0]
		}
	}

	return nil
}

// isOpusHeaderPacket reports whether the packet is one of the two Ogg Opus
// stream headers, which must not be sent as audio.
func isOpusHeaderPacket(packet []byte) bool {
	return bytes.HasPrefix(packet, []byte("OpusHead")) || bytes.HasPrefix(packet, []byte("OpusTags"))
}
