package main

import "pmboot/kernel/kmain"

// main makes a dummy call to the actual kernel entrypoint. It is
// intentionally defined to prevent the Go compiler from optimizing away the
// bring-up code, which is only reachable from the boot entry code.
func main() {
	kmain.Kmain()
}
