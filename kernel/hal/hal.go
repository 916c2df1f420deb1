package hal

import (
	"pmboot/kernel/driver/tty"
	"pmboot/kernel/driver/video/console"
)

var (
	textConsole = &console.Text{}

	// ActiveTerminal points to the currently active terminal.
	ActiveTerminal = &tty.Vt{}
)

// InitTerminal provides a basic terminal on top of the text-mode buffer at
// fbAddr so the boot log has somewhere to go.
func InitTerminal(fbAddr uintptr) {
	textConsole.Init(console.TextWidth, console.TextHeight, fbAddr)
	ActiveTerminal.AttachTo(textConsole)
	ActiveTerminal.Clear()
}
