package seqlock

import "unsafe"

// storeWords serializes the value at src (size o.size bytes) into the
// atomic word cells. The tail word is assembled in a zeroed stack
// buffer first, so the bytes beyond sizeof(T) are always stored as
// zero and a torn tail read cannot expose stray memory.
func (o *Object[T]) storeWords(src unsafe.Pointer) {
	for i := uintptr(0); i < o.fullWords; i++ {
		w := *(*uintptr)(unsafe.Add(src, i*wordSize))
		o.data[i].Store(w)
	}

	if o.tailBytes != 0 {
		var buf [8]byte // zeroed; at least one word on every supported arch
		tail := unsafe.Add(src, o.fullWords*wordSize)
		copy(buf[:o.tailBytes], unsafe.Slice((*byte)(tail), o.tailBytes))
		o.data[o.fullWords].Store(*(*uintptr)(unsafe.Pointer(&buf)))
	}
}

// loadWords copies the atomic word cells into the value at dst.
func (o *Object[T]) loadWords(dst unsafe.Pointer) {
	for i := uintptr(0); i < o.fullWords; i++ {
		w := o.data[i].Load()
		*(*uintptr)(unsafe.Add(dst, i*wordSize)) = w
	}

	if o.tailBytes != 0 {
		w := o.data[o.fullWords].Load()
		tail := unsafe.Add(dst, o.fullWords*wordSize)
		copy(unsafe.Slice((*byte)(tail), o.tailBytes), unsafe.Slice((*byte)(unsafe.Pointer(&w)), o.tailBytes))
	}
}
