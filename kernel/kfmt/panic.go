package kfmt

import (
	"pmboot/kernel"
	"pmboot/kernel/cpu"
)

const haltBanner = "\n-----------------------------------\n"

var (
	// cpuHaltFn is mocked by tests and is automatically inlined by the compiler.
	cpuHaltFn = cpu.Halt

	// bootFault reports causes that do not carry their own module name.
	bootFault = &kernel.Error{Module: "rt"}
)

// Panic stops the boot. It writes the cause to the boot log, framed so it
// stands out once the log reaches a console, and halts the CPU. Nothing has
// been set up yet that could recover, so Panic never returns.
//
// A nil cause only prints the banner. Causes other than *kernel.Error, error
// or string are reported as "unknown cause".
func Panic(cause interface{}) {
	Printf(haltBanner)
	if err := faultFor(cause); err != nil {
		Printf("[%s] unrecoverable error: %s\n", err.Module, err.Message)
	}
	Printf("*** boot halted ***")
	Printf(haltBanner)

	cpuHaltFn()
}

// faultFor maps a panic cause to the error that gets reported. bootFault is
// reused as there may be no allocator to build a new error with.
func faultFor(cause interface{}) *kernel.Error {
	switch c := cause.(type) {
	case nil:
		return nil
	case *kernel.Error:
		return c
	case error:
		bootFault.Message = c.Error()
	case string:
		bootFault.Message = c
	default:
		bootFault.Message = "unknown cause"
	}
	return bootFault
}
