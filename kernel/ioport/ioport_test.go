package ioport

import (
	"pmboot/kernel/cpu"
	"testing"
)

func TestPort8(t *testing.T) {
	defer func() {
		portReadByteFn = cpu.PortReadByte
		portWriteByteFn = cpu.PortWriteByte
	}()

	var (
		ports    = map[uint16]uint8{0x92: 0x01}
		outCalls int
	)

	portReadByteFn = func(port uint16) uint8 {
		return ports[port]
	}
	portWriteByteFn = func(port uint16, val uint8) {
		outCalls++
		ports[port] = val
	}

	p := NewPort8(Native, 0x92)
	if p.port != 0x92 {
		t.Fatalf("expected port number 0x92; got 0x%x", p.port)
	}

	if got := p.Get(); got != 0x01 {
		t.Fatalf("expected to read 0x01; got 0x%x", got)
	}

	p.SetBits(0x02)
	if got := ports[0x92]; got != 0x03 {
		t.Fatalf("expected SetBits to preserve existing bits and write 0x03; got 0x%x", got)
	}

	p.Set(0x00)
	if got := p.Get(); got != 0x00 {
		t.Fatalf("expected to read 0x00; got 0x%x", got)
	}

	if exp := 2; outCalls != exp {
		t.Fatalf("expected %d port writes; got %d", exp, outCalls)
	}
}
