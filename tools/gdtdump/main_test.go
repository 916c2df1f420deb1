package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-stdlog/stdlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var expListing = "GDT: 3 entries, 24 bytes\n" +
	"  [0] selector=0x00 null\n" +
	"  [1] selector=0x08 base=0x00000000 limit=0xfffff access=P|S|E|RW flags=G|DB byte-limit=0xffffffff\n" +
	"      bytes=ff ff 00 00 00 9a cf 00\n" +
	"  [2] selector=0x10 base=0x00000000 limit=0xfffff access=P|S|RW flags=G|DB byte-limit=0xffffffff\n" +
	"      bytes=ff ff 00 00 00 92 cf 00\n" +
	"GDTR: size=0x17 entries=3\n"

var expTableImage = []byte{
	0, 0, 0, 0, 0, 0, 0, 0,
	0xff, 0xff, 0, 0, 0, 0x9a, 0xcf, 0,
	0xff, 0xff, 0, 0, 0, 0x92, 0xcf, 0,
}

func TestListing(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(nil, &stdout, &stderr, stdlog.Discard))
	assert.Equal(t, expListing, stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRawImage(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, run([]string{"-raw"}, &stdout, io.Discard, stdlog.Discard))
	assert.Equal(t, expTableImage, stdout.Bytes())
}

func TestRawImageWithLocator(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, run([]string{"-raw", "-gdtr", "-base", "0x7c00"}, &stdout, io.Discard, stdlog.Discard))

	out := stdout.Bytes()
	require.Len(t, out, len(expTableImage)+10)
	assert.Equal(t, expTableImage, out[:len(expTableImage)])
	assert.Equal(t, []byte{0x17, 0x00, 0x00, 0x7c, 0, 0, 0, 0, 0, 0}, out[len(expTableImage):])
}

func TestRawImageToFile(t *testing.T) {
	defer func() { isTerminalFn = isTerminal }()
	isTerminalFn = func(io.Writer) bool { return true }

	path := filepath.Join(t.TempDir(), "gdt.bin")

	var stdout bytes.Buffer
	require.NoError(t, run([]string{"-raw", "-o", path}, &stdout, io.Discard, stdlog.Discard))
	assert.Zero(t, stdout.Len())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, expTableImage, data)
}

func TestRawImageRefusesTerminal(t *testing.T) {
	defer func() { isTerminalFn = isTerminal }()
	isTerminalFn = func(io.Writer) bool { return true }

	var stdout bytes.Buffer
	err := run([]string{"-raw"}, &stdout, io.Discard, stdlog.Discard)
	assert.ErrorIs(t, err, errTerminalOutput)
	assert.Zero(t, stdout.Len())

	// The listing is plain text and may go to a terminal.
	require.NoError(t, run(nil, &stdout, io.Discard, stdlog.Discard))
	assert.Equal(t, expListing, stdout.String())
}

func TestInvalidArguments(t *testing.T) {
	specs := [][]string{
		{"-gdtr"},
		{"-unknown"},
		{"extra"},
		{"-base", "nope"},
	}

	for _, args := range specs {
		var stdout, stderr bytes.Buffer
		assert.Error(t, run(args, &stdout, &stderr, stdlog.Discard), "args %v", args)
		assert.Zero(t, stdout.Len(), "args %v", args)
	}
}

func TestCreateOutputFileError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "gdt.bin")
	err := run([]string{"-o", path}, io.Discard, io.Discard, stdlog.Discard)
	assert.ErrorContains(t, err, "creating output file")
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, isTerminal(&bytes.Buffer{}))

	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, isTerminal(f))
}

type failingCloser struct {
	bytes.Buffer
	closeErr error
}

func (w *failingCloser) Close() error {
	return w.closeErr
}

func TestOutputFileCloseError(t *testing.T) {
	defer func() { createOutputFn = createOutput }()

	errFlush := errors.New("disk full")
	out := &failingCloser{closeErr: errFlush}
	createOutputFn = func(string) (io.WriteCloser, error) { return out, nil }

	err := run([]string{"-raw", "-o", "gdt.bin"}, io.Discard, io.Discard, stdlog.Discard)
	assert.ErrorIs(t, err, errFlush)
	assert.ErrorContains(t, err, "closing output file")
	assert.Equal(t, expTableImage, out.Bytes())

	// The listing goes through the same file and reports the same error.
	out = &failingCloser{closeErr: errFlush}
	err = run([]string{"-o", "listing.txt"}, io.Discard, io.Discard, stdlog.Discard)
	assert.ErrorIs(t, err, errFlush)
	assert.Equal(t, expListing, out.String())

	out = &failingCloser{}
	require.NoError(t, run([]string{"-o", "listing.txt"}, io.Discard, io.Discard, stdlog.Discard))
}
