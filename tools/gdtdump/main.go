package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"pmboot/kernel/gdt"

	"github.com/go-stdlog/stdlog"
	"golang.org/x/term"
)

var (
	errTerminalOutput = errors.New("refusing to write a raw image to a terminal; redirect stdout or use -o")

	// The following functions are mocked by tests.
	isTerminalFn   = isTerminal
	createOutputFn = createOutput
)

func createOutput(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type options struct {
	raw     bool
	gdtr    bool
	base    uint64
	outFile string
}

func parseOptions(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("gdtdump", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.raw, "raw", false, "emit the binary table image instead of a listing")
	fs.BoolVar(&opts.gdtr, "gdtr", false, "append the packed locator record to the raw image")
	fs.Uint64Var(&opts.base, "base", 0, "physical address the table is loaded at; used for the raw locator record")
	fs.StringVar(&opts.outFile, "o", "", "write output to `file` instead of stdout")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() != 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if opts.gdtr && !opts.raw {
		return opts, errors.New("-gdtr requires -raw")
	}

	return opts, nil
}

func run(args []string, stdout, stderr io.Writer, log stdlog.Logger) (err error) {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		return err
	}

	if kerr := gdt.Validate(gdt.Table[:]); kerr != nil {
		return fmt.Errorf("validating descriptor table: %w", kerr)
	}

	out := stdout
	if opts.outFile != "" {
		f, createErr := createOutputFn(opts.outFile)
		if createErr != nil {
			return fmt.Errorf("creating output file: %w", createErr)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("closing output file: %w", closeErr)
			}
		}()
		out = f
	} else if opts.raw && isTerminalFn(stdout) {
		return errTerminalOutput
	}

	if opts.raw {
		n, err := writeRaw(out, opts)
		if err != nil {
			return fmt.Errorf("writing raw image: %w", err)
		}
		log.Debug("Raw image written", "bytes", n, "gdtr", opts.gdtr)
		return nil
	}

	if err := writeListing(out); err != nil {
		return fmt.Errorf("writing listing: %w", err)
	}
	return nil
}

// writeRaw emits the table exactly as it sits in memory, optionally followed
// by a locator record that points at opts.base.
func writeRaw(w io.Writer, opts options) (int, error) {
	var written int
	for _, entry := range gdt.Table {
		n, err := w.Write(entry.Bytes())
		written += n
		if err != nil {
			return written, err
		}
	}

	if opts.gdtr {
		ptr := gdt.Pointer{Size: gdt.GDTR.Size, Address: uintptr(opts.base)}
		image := ptr.Bytes()
		n, err := w.Write(image[:])
		written += n
		if err != nil {
			return written, err
		}
	}

	return written, nil
}

func writeListing(w io.Writer) error {
	var err error
	printf := func(format string, args ...interface{}) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	printf("GDT: %d entries, %d bytes\n", len(gdt.Table), len(gdt.Table)*gdt.EntrySize)
	for index, entry := range gdt.Table {
		sel := gdt.SelectorFor(index, 0)
		if entry.IsNull() {
			printf("  [%d] selector=0x%02x null\n", index, uint16(sel))
			continue
		}
		printf("  [%d] selector=0x%02x %s byte-limit=0x%x\n", index, uint16(sel), entry, uint64(entry.ByteLimit()))
		printf("      bytes=% x\n", entry.Bytes())
	}

	printf("GDTR: size=0x%x entries=%d\n", gdt.GDTR.Size, gdt.GDTR.Len())
	return err
}

func main() {
	log := stdlog.NewStd(os.Stderr).Named("gdtdump")
	if err := run(os.Args[1:], os.Stdout, os.Stderr, log); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Error(err, "gdtdump failed")
		os.Exit(1)
	}
}
