package tty

import "pmboot/kernel/driver/video/console"

const (
	defaultFg = console.LightGrey
	defaultBg = console.Black
	tabWidth  = 4
)

// Vt implements a simple terminal that can process LF, CR, BS and TAB
// characters. The terminal uses a console device for its output.
type Vt struct {
	// Interface calls are avoided as this terminal is attached before the
	// runtime is fully usable.
	cons *console.Text

	width  uint16
	height uint16

	curX    uint16
	curY    uint16
	curAttr console.Attr
}

// AttachTo links the terminal with the specified console device and resets
// the cursor to the top-left corner.
func (t *Vt) AttachTo(cons *console.Text) {
	t.cons = cons
	t.width, t.height = cons.Dimensions()
	t.curX = 0
	t.curY = 0
	t.curAttr = console.MakeAttr(defaultFg, defaultBg)
}

// Clear clears the terminal.
func (t *Vt) Clear() {
	t.cons.Clear(0, 0, t.width, t.height)
}

// setPosition moves the cursor to (x,y), clamped to the terminal.
func (t *Vt) setPosition(x, y uint16) {
	if x >= t.width {
		x = t.width - 1
	}

	if y >= t.height {
		y = t.height - 1
	}

	t.curX, t.curY = x, y
}

// Write implements io.Writer.
func (t *Vt) Write(data []byte) (int, error) {
	for _, b := range data {
		t.WriteByte(b)
	}

	return len(data), nil
}

// WriteByte implements io.ByteWriter.
func (t *Vt) WriteByte(b byte) error {
	switch b {
	case '\r':
		t.cr()
	case '\n':
		t.cr()
		t.lf()
	case '\b':
		if t.curX > 0 {
			t.curX--
		}
	case '\t':
		for n := tabWidth - t.curX%tabWidth; n > 0; n-- {
			t.put(' ')
		}
	default:
		t.put(b)
	}

	return nil
}

// put writes a character at the cursor and advances it, wrapping to the next
// line at the right edge.
func (t *Vt) put(b byte) {
	t.cons.Write(b, t.curAttr, t.curX, t.curY)
	t.curX++
	if t.curX == t.width {
		t.cr()
		t.lf()
	}
}

// cr resets the x coordinate of the terminal cursor to 0.
func (t *Vt) cr() {
	t.curX = 0
}

// lf advances the y coordinate of the terminal cursor by one line scrolling
// the terminal contents if the end of the last terminal line is reached.
func (t *Vt) lf() {
	if t.curY+1 < t.height {
		t.curY++
		return
	}

	t.cons.Scroll(console.Up, 1)
	t.cons.Clear(0, t.height-1, t.width, 1)
}
