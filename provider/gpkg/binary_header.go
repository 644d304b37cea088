package gpkg

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// envelope sizes in bytes indexed by the flag's envelope contents indicator
var envelopeSizes = [...]int{0, 32, 48, 48, 64}

// BinaryHeader is the header that precedes the WKB of a GeoPackage geometry blob.
type BinaryHeader struct {
	magic    [2]byte
	version  uint8
	flags    uint8
	srsid    int32
	envelope []float64
}

// NewBinaryHeader decodes the header at the start of data.
func NewBinaryHeader(data []byte) (*BinaryHeader, error) {
	if len(data) < 8 {
		return nil, errors.New("gpkg: geometry blob too short for header")
	}

	var h BinaryHeader
	h.magic[0], h.magic[1] = data[0], data[1]
	if h.magic[0] != 'G' || h.magic[1] != 'P' {
		return nil, fmt.Errorf("gpkg: invalid geometry magic %q", string(h.magic[:]))
	}
	h.version = data[2]
	h.flags = data[3]

	var order binary.ByteOrder = binary.BigEndian
	if h.flags&0x01 == 1 {
		order = binary.LittleEndian
	}
	h.srsid = int32(order.Uint32(data[4:8]))

	indicator := int(h.flags>>1) & 0x07
	if indicator >= len(envelopeSizes) {
		return nil, fmt.Errorf("gpkg: invalid envelope indicator %v", indicator)
	}
	size := envelopeSizes[indicator]
	if len(data) < 8+size {
		return nil, errors.New("gpkg: geometry blob too short for envelope")
	}
	for i := 0; i < size/8; i++ {
		bits := order.Uint64(data[8+i*8:])
		h.envelope = append(h.envelope, math.Float64frombits(bits))
	}
	return &h, nil
}

// Size is the length of the header in bytes.
func (h *BinaryHeader) Size() int { return 8 + len(h.envelope)*8 }

// SRSId is the spatial reference id of the geometry.
func (h *BinaryHeader) SRSId() int32 { return h.srsid }

// IsEmpty reports the empty geometry flag.
func (h *BinaryHeader) IsEmpty() bool { return h.flags&0x10 != 0 }

// Envelope returns the envelope values, which may be nil.
func (h *BinaryHeader) Envelope() []float64 { return h.envelope }
