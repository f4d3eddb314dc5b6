package transport

import "io"

// Port is a byte-oriented endpoint with non-blocking reads.
//
// Read returns (0, nil) when nothing is buffered; it never waits for
// data to arrive. Write blocks until every byte has been accepted or
// fails with an error. Buffered reports received bytes waiting to be
// read. Whatever interrupt wiring is needed to keep the receive side
// fed belongs to the implementation, not to callers.
type Port interface {
	io.ReadWriter
	Buffered() int
}
