package gdt

import (
	"pmboot/kernel/mem"
	"runtime"
	"testing"
	"unsafe"
)

func TestNewPointerSize(t *testing.T) {
	counts := []int{maxEntries / 2, maxEntries - 1, maxEntries}
	for count := 1; count <= 64; count++ {
		counts = append(counts, count)
	}

	for _, count := range counts {
		table := make([]Entry, count)

		p, err := NewPointer(table)
		if err != nil {
			t.Fatalf("[%d entries] unexpected error: %v", count, err)
		}

		if exp := uint16(count*EntrySize - 1); p.Size != exp {
			t.Fatalf("[%d entries] expected size %d; got %d", count, exp, p.Size)
		}

		if got := p.Len(); got != count {
			t.Fatalf("[%d entries] expected Len() to return %d; got %d", count, count, got)
		}

		if exp := uintptr(unsafe.Pointer(&table[0])); p.Address != exp {
			t.Fatalf("[%d entries] expected address 0x%x; got 0x%x", count, exp, p.Address)
		}

		runtime.KeepAlive(table)
	}
}

func TestNewPointerErrors(t *testing.T) {
	specs := []struct {
		table  []Entry
		expErr error
	}{
		{nil, ErrTableEmpty},
		{[]Entry{}, ErrTableEmpty},
		{make([]Entry, maxEntries+1), ErrTableTooLarge},
	}

	for specIndex, spec := range specs {
		p, err := NewPointer(spec.table)
		if err != spec.expErr {
			t.Errorf("[spec %d] expected error %v; got %v", specIndex, spec.expErr, err)
		}

		if p != (Pointer{}) {
			t.Errorf("[spec %d] expected zero Pointer on error; got %+v", specIndex, p)
		}
	}
}

func TestMustPointerPanics(t *testing.T) {
	defer func() {
		if err := recover(); err != ErrTableEmpty {
			t.Fatalf("expected MustPointer to panic with ErrTableEmpty; got %v", err)
		}
	}()

	MustPointer(nil)
	t.Fatal("expected MustPointer to panic")
}

func TestPointerEntries(t *testing.T) {
	table := []Entry{NullEntry(), CodeSegment, DataSegment, MustEntry(0xb8000, 0xfff, AccessPresent|AccessDescriptorType|AccessRW, 0)}
	p := MustPointer(table)

	entries := p.Entries()
	if len(entries) != len(table) {
		t.Fatalf("expected %d entries; got %d", len(table), len(entries))
	}

	for i := range table {
		if entries[i] != table[i] {
			t.Errorf("expected entry %d to be %s; got %s", i, table[i], entries[i])
		}
	}

	if &entries[0] != &table[0] {
		t.Error("expected Entries to alias the backing table")
	}

	runtime.KeepAlive(table)

	if got := (Pointer{}).Entries(); got != nil {
		t.Errorf("expected nil entries for a zero Pointer; got %v", got)
	}
}

func TestPointerBytes(t *testing.T) {
	p := Pointer{Size: 0x0017, Address: 0x0000000000107c20}

	exp := [PointerImageSize]byte{0x17, 0x00, 0x20, 0x7c, 0x10, 0x00, 0x00, 0x00, 0x00, 0x00}
	if got := p.Bytes(); got != exp {
		t.Fatalf("expected packed pointer % x; got % x", exp, got)
	}

	if got := PointerFromBytes(exp); got != p {
		t.Fatalf("expected unpacked pointer %+v; got %+v", p, got)
	}

	if PointerImageSize != 2+mem.PointerSize {
		t.Fatalf("expected image size to be 2 + native pointer width; got %d", PointerImageSize)
	}
}
