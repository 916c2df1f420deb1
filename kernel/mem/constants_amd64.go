//go:build amd64

package mem

const (
	// PointerShift is equal to log2(unsafe.Sizeof(uintptr)). The pointer
	// size for this architecture is defined as (1 << PointerShift).
	PointerShift = 3

	// PointerSize is the width in bytes of a native address.
	PointerSize = 1 << PointerShift

	// PageShift is equal to log2(PageSize). Segment descriptors with the
	// granularity flag set scale their limit by this amount.
	PageShift = 12

	// PageSize defines the system's page size in bytes.
	PageSize = Size(1 << PageShift)
)
