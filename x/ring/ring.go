package ring

import "sync/atomic"

// Ring is a single-producer, single-consumer byte ring.
//
// One side pushes with TryWrite, the other drains with TryRead; neither
// call blocks. Indexes are monotonic atomics, so the producer and the
// consumer may live in different execution contexts (an interrupt
// handler feeding a polling loop, or two goroutines) without extra
// locking. Size must be a power of two.
type Ring struct {
	buf  []byte
	mask uint32
	rd   atomic.Uint32 // consumer index (monotonic)
	wr   atomic.Uint32 // producer index (monotonic)

	readable chan struct{} // 0->nonzero available edge
	writable chan struct{} // 0->nonzero space edge
}

// New returns an empty ring holding up to size bytes.
func New(size int) *Ring {
	if size < 2 || (size&(size-1)) != 0 {
		panic("ring: size must be power of two >= 2")
	}
	return &Ring{
		buf:      make([]byte, size),
		mask:     uint32(size - 1),
		readable: make(chan struct{}, 1),
		writable: make(chan struct{}, 1),
	}
}

func (r *Ring) size() uint32 { return uint32(len(r.buf)) }

// Len reports the number of buffered bytes.
func (r *Ring) Len() int {
	return int(r.wr.Load() - r.rd.Load())
}

// Free reports the remaining capacity.
func (r *Ring) Free() int {
	return int(r.size() - (r.wr.Load() - r.rd.Load()))
}

// TryWrite copies as much of src as fits and returns the count.
// Producer side only.
func (r *Ring) TryWrite(src []byte) (n int) {
	if len(src) == 0 {
		return 0
	}
	rd := r.rd.Load()
	wr := r.wr.Load()
	wasEmpty := wr == rd
	space := int(r.size() - (wr - rd))
	if space <= 0 {
		return 0
	}
	if len(src) < space {
		space = len(src)
	}
	n = space

	wrIdx := wr & r.mask
	first := int(r.size() - wrIdx)
	if first > n {
		first = n
	}
	copy(r.buf[wrIdx:wrIdx+uint32(first)], src[:first])
	if second := n - first; second > 0 {
		copy(r.buf[:second], src[first:n])
	}
	r.wr.Store(wr + uint32(n)) // release

	if wasEmpty {
		select {
		case r.readable <- struct{}{}:
		default:
		}
	}
	return n
}

// TryRead copies up to len(dst) buffered bytes out and returns the count.
// Consumer side only.
func (r *Ring) TryRead(dst []byte) (n int) {
	if len(dst) == 0 {
		return 0
	}
	rd := r.rd.Load()
	wr := r.wr.Load() // acquire
	avail := int(wr - rd)
	if avail <= 0 {
		return 0
	}
	if len(dst) < avail {
		avail = len(dst)
	}
	n = avail

	rdIdx := rd & r.mask
	first := int(r.size() - rdIdx)
	if first > n {
		first = n
	}
	copy(dst[:first], r.buf[rdIdx:rdIdx+uint32(first)])
	if second := n - first; second > 0 {
		copy(dst[first:n], r.buf[:second])
	}
	r.rd.Store(rd + uint32(n)) // release

	wasFull := wr-rd == r.size()
	if wasFull {
		select {
		case r.writable <- struct{}{}:
		default:
		}
	}
	return n
}

// Readable fires once per empty-to-nonempty transition.
func (r *Ring) Readable() <-chan struct{} { return r.readable }

// Writable fires once per full-to-nonfull transition.
func (r *Ring) Writable() <-chan struct{} { return r.writable }
