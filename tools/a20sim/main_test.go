package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	specs := []struct {
		name string
		args []string
		exp  string
	}{
		{
			name: "masked at power-on",
			exp: "power-on: gate=masked ram=4MiB fast-gate=true\n" +
				"enable #1: command-issued=true state=enabled mem-reads=2 mem-writes=2 port-reads=1 port-writes=1\n" +
				"enable #2: command-issued=false state=enabled mem-reads=0 mem-writes=0 port-reads=0 port-writes=0\n" +
				"result: gate=enabled probe=enabled fast-resets=0\n" +
				"memory: 0x0fffff=ee ff c0 00 0x1fffff=ef be ad de\n",
		},
		{
			name: "enabled at power-on",
			args: []string{"-enabled", "-runs", "1"},
			exp: "power-on: gate=enabled ram=4MiB fast-gate=true\n" +
				"enable #1: command-issued=false state=enabled mem-reads=2 mem-writes=2 port-reads=0 port-writes=0\n" +
				"result: gate=enabled probe=enabled fast-resets=0\n" +
				"memory: 0x0fffff=ee ff c0 00 0x1fffff=ef be ad de\n",
		},
		{
			name: "fast gate not wired",
			args: []string{"-no-fast-gate", "-ram-size", "2"},
			exp: "power-on: gate=masked ram=2MiB fast-gate=false\n" +
				"enable #1: command-issued=true state=enabled mem-reads=2 mem-writes=2 port-reads=1 port-writes=1\n" +
				"enable #2: command-issued=false state=enabled mem-reads=0 mem-writes=0 port-reads=0 port-writes=0\n" +
				"result: gate=masked probe=masked fast-resets=0\n" +
				"memory: 0x0fffff=ef be ad de 0x1fffff=00 ff ff ff\n",
		},
	}

	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			require.NoError(t, run(spec.args, &stdout, &stderr))
			assert.Equal(t, spec.exp, stdout.String())
		})
	}
}

func TestRunVerbose(t *testing.T) {
	var quiet, verbose bytes.Buffer
	require.NoError(t, run(nil, &quiet, io.Discard))
	require.NoError(t, run([]string{"-v"}, &verbose, io.Discard))
	assert.Equal(t, quiet.String(), verbose.String())
}

func TestRunWithRAMFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ram.img")

	var stdout bytes.Buffer
	require.NoError(t, run([]string{"-ram", path, "-ram-size", "3"}, &stdout, io.Discard))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, 3<<20)

	// Sentinels left behind by the final probe, stored little-endian.
	assert.Equal(t, []byte{0xee, 0xff, 0xc0, 0x00}, data[0x0FFFFF:0x100003])
	assert.Equal(t, []byte{0xef, 0xbe, 0xad, 0xde}, data[0x1FFFFF:0x200003])
}

func TestRunErrors(t *testing.T) {
	specs := [][]string{
		{"-ram-size", "0"},
		{"-runs", "0"},
		{"-bogus"},
		{"extra"},
		{"-ram", filepath.Join(t.TempDir(), "missing", "ram.img")},
	}

	for _, args := range specs {
		var stdout bytes.Buffer
		assert.Error(t, run(args, &stdout, io.Discard), "args %v", args)
		assert.Zero(t, stdout.Len(), "args %v", args)
	}
}
