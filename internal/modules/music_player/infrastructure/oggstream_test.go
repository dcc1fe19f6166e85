package infrastructure

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// buildPage assembles an Ogg page around the given segments. A segment is
// written verbatim; its lacing value is its length, so segments of exactly
// 255 bytes mark a packet as continued.
func buildPage(segments ...[]byte) []byte {
	var page bytes.Buffer
	page.WriteString("OggS")
	page.Write(make([]byte, 22)) // version, flags, granule, serial, sequence, checksum
	page.WriteByte(byte(len(segments)))
	for _, segment := range segments {
		page.WriteByte(byte(len(segment)))
	}
	for _, segment := range segments {
		page.Write(segment)
	}
	return page.Bytes()
}

func TestOggPacketReader_SinglePage(t *testing.T) {
	stream := buildPage([]byte("first"), []byte("second"))
	reader := newOggPacketReader(bytes.NewReader(stream))

	packet, err := reader.NextPacket()
	if err != nil {
		t.Fatalf("NextPacket failed: %v", err)
	}
	if string(packet) != "first" {
		t.Errorf("expected %q, got %q", "first", packet)
	}

	packet, err = reader.NextPacket()
	if err != nil {
		t.Fatalf("NextPacket failed: %v", err)
	}
	if string(packet) != "second" {
		t.Errorf("expected %q, got %q", "second", packet)
	}

	if _, err := reader.NextPacket(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF at stream end, got %v", err)
	}
}

func TestOggPacketReader_PacketSpansSegments(t *testing.T) {
	// A 300-byte packet occupies a 255-lacing segment plus a 45-byte one.
	payload := bytes.Repeat([]byte{0xAB}, 300)
	stream := buildPage(payload[:255], payload[255:])
	reader := newOggPacketReader(bytes.NewReader(stream))

	packet, err := reader.NextPacket()
	if err != nil {
		t.Fatalf("NextPacket failed: %v", err)
	}
	if !bytes.Equal(packet, payload) {
		t.Errorf("expected 300-byte packet reassembled, got %d bytes", len(packet))
	}
}

func TestOggPacketReader_PacketSpansPages(t *testing.T) {
	payload := bytes.Repeat([]byte{0xCD}, 400)
	var stream bytes.Buffer
	// First page ends mid-packet: its only segment has lacing 255.
	stream.Write(buildPage(payload[:255]))
	stream.Write(buildPage(payload[255:]))
	reader := newOggPacketReader(&stream)

	packet, err := reader.NextPacket()
	if err != nil {
		t.Fatalf("NextPacket failed: %v", err)
	}
	if !bytes.Equal(packet, payload) {
		t.Errorf("expected packet reassembled across pages, got %d bytes", len(packet))
	}
}

func TestOggPacketReader_EmptyPageIsSkipped(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(buildPage()) // zero segments
	stream.Write(buildPage([]byte("data")))
	reader := newOggPacketReader(&stream)

	packet, err := reader.NextPacket()
	if err != nil {
		t.Fatalf("NextPacket failed: %v", err)
	}
	if string(packet) != "data" {
		t.Errorf("expected %q, got %q", "data", packet)
	}
}

func TestOggPacketReader_BadMagic(t *testing.T) {
	stream := buildPage([]byte("data"))
	stream[0] = 'X'
	reader := newOggPacketReader(bytes.NewReader(stream))

	if _, err := reader.NextPacket(); !errors.Is(err, errInvalidOggMagic) {
		t.Fatalf("expected errInvalidOggMagic, got %v", err)
	}
}

func TestOggPacketReader_BadVersion(t *testing.T) {
	stream := buildPage([]byte("data"))
	stream[4] = 1
	reader := newOggPacketReader(bytes.NewReader(stream))

	if _, err := reader.NextPacket(); !errors.Is(err, errInvalidOggVersion) {
		t.Fatalf("expected errInvalidOggVersion, got %v", err)
	}
}

func TestOggPacketReader_TruncatedHeaderIsEOF(t *testing.T) {
	// A partial page header means the producer went away; treat it as a
	// finished stream rather than an error.
	reader := newOggPacketReader(bytes.NewReader([]byte("OggS\x00partial")))

	if _, err := reader.NextPacket(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF on truncated header, got %v", err)
	}
}

func TestIsOpusHeaderPacket(t *testing.T) {
	tests := []struct {
		name   string
		packet []byte
		want   bool
	}{
		{"id header", []byte("OpusHead\x01\x02"), true},
		{"comment header", []byte("OpusTags\x00"), true},
		{"audio frame", []byte{0xFC, 0xFF, 0xFE}, false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isOpusHeaderPacket(tt.packet); got != tt.want {
				t.Errorf("isOpusHeaderPacket(%q) = %v, want %v", tt.packet, got, tt.want)
			}
		})
	}
}
