// Package console drives the 80x25 colour text mode that the firmware leaves
// the display in.
package console

import "unsafe"

// Attr is a cell attribute: foreground colour in the low nibble, background
// in the high nibble. Only the colours used during boot are named.
type Attr uint16

const (
	Black     Attr = 0x0
	Blue      Attr = 0x1
	LightGrey Attr = 0x7
	White     Attr = 0xF
)

// MakeAttr packs a foreground and background colour into a cell attribute.
func MakeAttr(fg, bg Attr) Attr {
	return (bg&0xF)<<4 | fg&0xF
}

// ScrollDir selects the direction of Text.Scroll.
type ScrollDir uint8

const (
	Up ScrollDir = iota
	Down
)

const (
	// TextBufferAddr is the physical address of the colour text-mode
	// buffer. It sits below 1 MiB and is usable regardless of the A20 line.
	TextBufferAddr = uintptr(0xB8000)

	// TextWidth and TextHeight are the dimensions of the 80x25 text mode
	// that the firmware leaves behind.
	TextWidth  = 80
	TextHeight = 25

	clearColor = Black
	clearChar  = byte(' ')
)

// Text implements a text-mode console backed by a buffer of 16-bit cells:
// the low byte holds the character and the high byte its attribute.
type Text struct {
	width  uint16
	height uint16

	fb []uint16
}

// Init sets up the console on top of the cell buffer at fbPhysAddr.
func (cons *Text) Init(width, height uint16, fbPhysAddr uintptr) {
	cons.width = width
	cons.height = height
	cons.fb = unsafe.Slice((*uint16)(unsafe.Pointer(fbPhysAddr)), int(width)*int(height))
}

// Clear clears the specified rectangular region
func (cons *Text) Clear(x, y, width, height uint16) {
	var (
		clr                  = uint16(MakeAttr(clearColor, clearColor))<<8 | uint16(clearChar)
		rowOffset, colOffset uint16
	)

	// clip rectangle
	if x >= cons.width {
		x = cons.width
	}
	if y >= cons.height {
		y = cons.height
	}

	if x+width > cons.width {
		width = cons.width - x
	}
	if y+height > cons.height {
		height = cons.height - y
	}

	rowOffset = (y * cons.width) + x
	for ; height > 0; height, rowOffset = height-1, rowOffset+cons.width {
		for colOffset = rowOffset; colOffset < rowOffset+width; colOffset++ {
			cons.fb[colOffset] = clr
		}
	}
}

// Dimensions returns the console width and height in characters.
func (cons *Text) Dimensions() (uint16, uint16) {
	return cons.width, cons.height
}

// Scroll a particular number of lines to the specified direction. The lines
// that scroll into view keep their previous contents.
func (cons *Text) Scroll(dir ScrollDir, lines uint16) {
	if lines == 0 || lines > cons.height {
		return
	}

	offset := lines * cons.width

	switch dir {
	case Up:
		copy(cons.fb, cons.fb[offset:])
	case Down:
		copy(cons.fb[offset:], cons.fb)
	}
}

// Write a char to the specified location.
func (cons *Text) Write(ch byte, attr Attr, x, y uint16) {
	if x >= cons.width || y >= cons.height {
		return
	}

	cons.fb[(y*cons.width)+x] = (uint16(attr) << 8) | uint16(ch)
}
