package kernel

// Error describes an error raised while bringing up the machine. Errors must
// be declared as package-level pointers to Error: this code runs before any
// allocator exists so errors.New and fmt.Errorf are off limits.
type Error struct {
	// The module where the error occurred.
	Module string

	// The error message
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}
