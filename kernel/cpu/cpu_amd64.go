package cpu

// DisableInterrupts disables interrupt handling.
func DisableInterrupts()

// Halt stops instruction execution.
func Halt()

// LoadGDT loads the global descriptor table register from the 10-byte
// pseudo-descriptor (16-bit size followed by a 64-bit address) stored at
// gdtrAddr.
func LoadGDT(gdtrAddr uintptr)

// PortWriteByte writes a uint8 value to the requested port.
func PortWriteByte(port uint16, val uint8)

// PortReadByte reads a uint8 value from the requested port.
func PortReadByte(port uint16) uint8
