package atomicptr

// MemOrder is an optional per-call memory-ordering hint.
//
// Go's sync/atomic exposes a single ordering strength (sequentially
// consistent), so the hint does not change the generated code. It
// exists so call sites can document the ordering the algorithm actually
// requires, the way they would in a language with selectable orderings,
// and so a later port to weaker primitives has the information in
// place. Omitting the argument means SeqCst.
type MemOrder int

const (
	// SeqCst is the default: sequentially consistent.
	SeqCst MemOrder = iota
	// Relaxed documents that the call needs atomicity only.
	Relaxed
	// Acquire documents load-acquire intent.
	Acquire
	// Release documents store-release intent.
	Release
	// AcqRel documents read-modify-write acquire+release intent.
	AcqRel
)

// String returns the name of the ordering hint.
func (o MemOrder) String() string {
	switch o {
	case SeqCst:
		return "seq_cst"
	case Relaxed:
		return "relaxed"
	case Acquire:
		return "acquire"
	case Release:
		return "release"
	case AcqRel:
		return "acq_rel"
	default:
		return "unknown"
	}
}
