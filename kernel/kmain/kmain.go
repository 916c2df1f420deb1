package kmain

import (
	"pmboot/kernel/a20"
	"pmboot/kernel/cpu"
	"pmboot/kernel/driver/video/console"
	"pmboot/kernel/gdt"
	"pmboot/kernel/hal"
	"pmboot/kernel/kfmt"
)

var (
	// The following functions are mocked by tests and are automatically
	// inlined by the compiler.
	disableInterruptsFn = cpu.DisableInterrupts
	a20EnableFn         = a20.Enable
	loadGDTFn           = gdt.Load
	cpuHaltFn           = cpu.Halt
)

// Kmain is the only Go symbol that is visible (exported) from the boot entry
// code. It is invoked before any memory above 1 MiB has been touched.
//
// Kmain enables the A20 line, installs the flat descriptor table and then
// halts forever. The far jump into protected mode that follows the table load
// belongs to the entry code. The boot log is shown on the text-mode console
// once both steps are done.
//
//go:noinline
func Kmain() {
	bringUp()
	attachConsole(console.TextBufferAddr)

	for {
		cpuHaltFn()
	}
}

// bringUp enables A20 before the table load so that everything after it
// sees a linear address space.
func bringUp() {
	disableInterruptsFn()

	if a20EnableFn() {
		kfmt.Printf("[a20] line masked; fast gate command issued on port 0x%x\n", uint16(a20.SystemControlPortA))
	} else {
		kfmt.Printf("[a20] line already enabled\n")
	}

	loadGDTFn()
	kfmt.Printf("[gdt] loaded %d entries at 0x%x; code selector 0x%x, data selector 0x%x\n",
		gdt.GDTR.Len(), gdt.GDTR.Address, uint16(gdt.CodeSelector), uint16(gdt.DataSelector),
	)
}

// attachConsole flushes the boot log to a terminal on the text-mode buffer
// at fbAddr and sends all further output there.
func attachConsole(fbAddr uintptr) {
	hal.InitTerminal(fbAddr)
	kfmt.SetOutputSink(hal.ActiveTerminal)
}
