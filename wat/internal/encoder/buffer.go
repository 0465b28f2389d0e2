package encoder

// buffer accumulates binary WASM output with LEB128 and section-framing
// helpers layered over a plain byte slice.
type buffer struct {
	b []byte
}

func (buf *buffer) writeByte(b byte)    { buf.b = append(buf.b, b) }
func (buf *buffer) writeBytes(b []byte) { buf.b = append(buf.b, b...) }
func (buf *buffer) bytes() []byte       { return buf.b }

func (buf *buffer) writeName(s string) {
	buf.writeULEB(uint64(len(s)))
	buf.writeBytes([]byte(s))
}

// writeSection appends a complete section: id, ULEB128 payload length, payload.
func (buf *buffer) writeSection(id byte, payload []byte) {
	buf.writeByte(id)
	buf.writeULEB(uint64(len(payload)))
	buf.writeBytes(payload)
}

func (buf *buffer) writeULEB(v uint64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		buf.writeByte(b)
		if v == 0 {
			return
		}
	}
}

func (buf *buffer) writeSLEB(v int64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			buf.writeByte(b)
			return
		}
		buf.writeByte(b | 0x80)
	}
}
