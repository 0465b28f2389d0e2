package transfer

import (
	"encoding/binary"
	"errors"
	"testing"
)

// fakeMemory is a bump-allocated, leak-tracking wasmfn.MemoryController
// used to exercise the transfer package without a real wasm instance.
type fakeMemory struct {
	buf   []byte
	next  uint32
	spans map[uint32]uint32 // live allocation ptr -> length
}

func newFakeMemory() *fakeMemory {
	return &fakeMemory{buf: make([]byte, 0, 4096), next: 8, spans: make(map[uint32]uint32)}
}

func (m *fakeMemory) Alloc(length, align uint32) (uint32, error) {
	if align == 0 {
		align = 1
	}
	if rem := m.next % align; rem != 0 {
		m.next += align - rem
	}
	ptr := m.next
	end := ptr + length
	if end > uint32(cap(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	if uint32(len(m.buf)) < end {
		m.buf = m.buf[:end]
	}
	m.next = end
	m.spans[ptr] = length
	return ptr, nil
}

func (m *fakeMemory) Free(ptr, length uint32) error {
	got, ok := m.spans[ptr]
	if !ok {
		return errors.New("double free or invalid pointer")
	}
	if got != length {
		return errors.New("free length mismatch")
	}
	delete(m.spans, ptr)
	return nil
}

func (m *fakeMemory) liveAllocations() int { return len(m.spans) }

func (m *fakeMemory) Read(offset, length uint32) ([]byte, error) {
	if uint64(offset)+uint64(length) > uint64(len(m.buf)) {
		return nil, errors.New("out of bounds read")
	}
	return m.buf[offset : offset+length], nil
}

func (m *fakeMemory) Write(offset uint32, data []byte) error {
	if uint64(offset)+uint64(len(data)) > uint64(len(m.buf)) {
		return errors.New("out of bounds write")
	}
	copy(m.buf[offset:], data)
	return nil
}

func (m *fakeMemory) ReadU8(offset uint32) (uint8, error) {
	b, err := m.Read(offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (m *fakeMemory) ReadU16(offset uint32) (uint16, error) {
	b, err := m.Read(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (m *fakeMemory) ReadU32(offset uint32) (uint32, error) {
	b, err := m.Read(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (m *fakeMemory) ReadU64(offset uint32) (uint64, error) {
	b, err := m.Read(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (m *fakeMemory) WriteU8(offset uint32, v uint8) error {
	return m.Write(offset, []byte{v})
}

func (m *fakeMemory) WriteU16(offset uint32, v uint16) error {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return m.Write(offset, b)
}

func (m *fakeMemory) WriteU32(offset uint32, v uint32) error {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return m.Write(offset, b)
}

func (m *fakeMemory) WriteU64(offset uint32, v uint64) error {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return m.Write(offset, b)
}

func (m *fakeMemory) Size() uint32 { return uint32(len(m.buf)) }

func requireNoLeaks(t *testing.T, m *fakeMemory) {
	t.Helper()
	if n := m.liveAllocations(); n != 0 {
		t.Errorf("expected zero outstanding allocations, got %d", n)
	}
}
