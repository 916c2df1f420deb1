package hal

import (
	"pmboot/kernel/driver/video/console"
	"testing"
	"unsafe"
)

func TestInitTerminal(t *testing.T) {
	fb := testFB
	for i := range fb {
		fb[i] = 0xDEAD
	}

	InitTerminal(uintptr(unsafe.Pointer(&fb[0])))

	for i, cell := range fb {
		if cell != ' ' {
			t.Fatalf("expected cell %d to be cleared; got 0x%x", i, cell)
		}
	}

	ActiveTerminal.Write([]byte("hi"))
	if fb[0]&0xFF != 'h' || fb[1]&0xFF != 'i' {
		t.Fatalf("expected terminal output to reach the cell buffer; got 0x%x 0x%x", fb[0], fb[1])
	}
}

// testFB lives on the heap so that its address stays fixed while a console
// holds on to it.
var testFB = make([]uint16, console.TextWidth*console.TextHeight)
