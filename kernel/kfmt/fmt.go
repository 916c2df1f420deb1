// Package kfmt implements the boot-time console plumbing: an allocation-free
// Printf whose output is buffered until a sink is attached, and a Panic that
// halts the CPU.
package kfmt

import (
	"io"
	"unsafe"
)

// maxBufSize defines the buffer size for formatting numbers.
const maxBufSize = 32

var (
	errMissingArg   = []byte("(MISSING)")
	errWrongArgType = []byte("%!(WRONGTYPE)")
	errNoVerb       = []byte("%!(NOVERB)")
	errExtraArg     = []byte("%!(EXTRA)")
	trueValue       = []byte("true")
	falseValue      = []byte("false")

	numFmtBuf [maxBufSize]byte

	// singleByte is a shared buffer for writing one character at a time.
	singleByte = []byte(" ")

	// bootLog buffers Printf output while no sink is attached.
	bootLog ringBuffer

	// outputSink receives Printf output. When nil, output goes to bootLog.
	outputSink io.Writer
)

// SetOutputSink sets the default target for calls to Printf to w and drains
// any output accumulated in the boot log into it.
func SetOutputSink(w io.Writer) {
	outputSink = w
	if w != nil {
		io.Copy(w, &bootLog)
	}
}

// Printf is a minimal, allocation-free Printf. It supports the following
// verbs:
//
//	%s string or []byte
//	%d base 10 integer
//	%x base 16 integer, lower-case
//	%t bool
//
// An optional decimal width may precede the verb. Strings and base-10
// integers are left-padded with spaces; base-16 integers with zeroes.
//
// Arguments are never checked for fmt.Stringer support as itables may not be
// initialized when Printf runs.
func Printf(format string, args ...interface{}) {
	Fprintf(outputSink, format, args...)
}

// Fprintf behaves like Printf but writes its output to w. A nil w writes to
// the boot log.
func Fprintf(w io.Writer, format string, args ...interface{}) {
	var (
		argIndex int
		padLen   int
		fmtLen   = len(format)
	)

	for i := 0; i < fmtLen; i++ {
		if format[i] != '%' {
			writeByte(w, format[i])
			continue
		}

		padLen = 0
		for i++; i < fmtLen && format[i] >= '0' && format[i] <= '9'; i++ {
			padLen = padLen*10 + int(format[i]-'0')
		}

		if i == fmtLen {
			doWrite(w, errNoVerb)
			break
		}

		switch verb := format[i]; verb {
		case '%':
			writeByte(w, '%')
		case 's', 'd', 'x', 't':
			if argIndex >= len(args) {
				doWrite(w, errMissingArg)
				continue
			}

			switch verb {
			case 's':
				fmtString(w, args[argIndex], padLen)
			case 'd':
				fmtInt(w, args[argIndex], 10, padLen)
			case 'x':
				fmtInt(w, args[argIndex], 16, padLen)
			case 't':
				fmtBool(w, args[argIndex])
			}
			argIndex++
		default:
			doWrite(w, errNoVerb)
		}
	}

	for ; argIndex < len(args); argIndex++ {
		doWrite(w, errExtraArg)
	}
}

func fmtBool(w io.Writer, v interface{}) {
	bVal, ok := v.(bool)
	switch {
	case !ok:
		doWrite(w, errWrongArgType)
	case bVal:
		doWrite(w, trueValue)
	default:
		doWrite(w, falseValue)
	}
}

func fmtString(w io.Writer, v interface{}, padLen int) {
	switch castedVal := v.(type) {
	case string:
		fmtRepeat(w, ' ', padLen-len(castedVal))
		// converting the string to a byte slice allocates.
		for i := 0; i < len(castedVal); i++ {
			writeByte(w, castedVal[i])
		}
	case []byte:
		fmtRepeat(w, ' ', padLen-len(castedVal))
		doWrite(w, castedVal)
	default:
		doWrite(w, errWrongArgType)
	}
}

func fmtRepeat(w io.Writer, ch byte, count int) {
	for ; count > 0; count-- {
		writeByte(w, ch)
	}
}

// fmtInt prints v in the requested base (10 or 16), applying padLen. All
// built-in integer types are supported.
func fmtInt(w io.Writer, v interface{}, base uint64, padLen int) {
	var (
		uval  uint64
		neg   bool
		padCh byte = ' '
	)

	switch t := v.(type) {
	case uint8:
		uval = uint64(t)
	case uint16:
		uval = uint64(t)
	case uint32:
		uval = uint64(t)
	case uint64:
		uval = t
	case uint:
		uval = uint64(t)
	case uintptr:
		uval = uint64(t)
	case int8:
		uval, neg = abs(int64(t))
	case int16:
		uval, neg = abs(int64(t))
	case int32:
		uval, neg = abs(int64(t))
	case int64:
		uval, neg = abs(t)
	case int:
		uval, neg = abs(int64(t))
	default:
		doWrite(w, errWrongArgType)
		return
	}

	if base == 16 {
		padCh = '0'
	}

	if padLen >= maxBufSize {
		padLen = maxBufSize - 1
	}

	// Digits are emitted right to left starting at the end of numFmtBuf.
	pos := maxBufSize
	for {
		pos--
		digit := uval % base
		if digit < 10 {
			numFmtBuf[pos] = byte(digit) + '0'
		} else {
			numFmtBuf[pos] = byte(digit-10) + 'a'
		}

		if uval /= base; uval == 0 {
			break
		}
	}

	if neg {
		pos--
		numFmtBuf[pos] = '-'
	}

	for ; maxBufSize-pos < padLen; pos-- {
		numFmtBuf[pos-1] = padCh
	}

	doWrite(w, numFmtBuf[pos:])
}

func abs(v int64) (uint64, bool) {
	if v < 0 {
		return uint64(-v), true
	}
	return uint64(v), false
}

func writeByte(w io.Writer, ch byte) {
	singleByte[0] = ch
	doWrite(w, singleByte)
}

// doWrite hides p from escape analysis. Without this, the call through the
// unknown io.Writer makes the compiler flag p as escaping which turns every
// Printf call into a heap allocation.
func doWrite(w io.Writer, p []byte) {
	doRealWrite(w, noEscape(unsafe.Pointer(&p)))
}

func doRealWrite(w io.Writer, bufPtr unsafe.Pointer) {
	p := *(*[]byte)(bufPtr)
	if w != nil {
		w.Write(p)
	} else {
		bootLog.Write(p)
	}
}

// noEscape hides a pointer from escape analysis. Copied from runtime/stubs.go.
//
//go:nosplit
func noEscape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}
