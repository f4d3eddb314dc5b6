package link

import (
	"io"
	"runtime"
)

// The transport hands out whatever its interrupt side has buffered and
// returns (0, nil) otherwise. These helpers layer exact-count reads on
// top of that contract. They are free functions over any such reader,
// not methods of a particular transport type.

// ReadExactWhenAvailable fills buf from r without waiting. It returns
// false when the buffered bytes ran out before buf was full; whatever
// was read stays consumed.
func ReadExactWhenAvailable(r io.Reader, buf []byte) (bool, error) {
	got := 0
	for got < len(buf) {
		n, err := r.Read(buf[got:])
		if err != nil {
			return false, err
		}
		if n == 0 {
			return false, nil
		}
		got += n
	}
	return true, nil
}

// ReadExactBlocking fills buf from r, busy-retrying empty polls until
// every byte has arrived. There is no timeout: a peer that opens a
// frame and never finishes it stalls the caller. See the dispatch
// notes in channel.go.
func ReadExactBlocking(r io.Reader, buf []byte) error {
	got := 0
	for got < len(buf) {
		n, err := r.Read(buf[got:])
		if err != nil {
			return err
		}
		if n == 0 {
			runtime.Gosched()
			continue
		}
		got += n
	}
	return nil
}

// DrainAvailable discards every immediately-available byte from r and
// reports how many were dropped. Used to resynchronize after garbage:
// it stops at the first empty poll, so it consumes exactly the bytes
// that were already buffered.
func DrainAvailable(r io.Reader) (int, error) {
	var tmp [16]byte
	total := 0
	for {
		n, err := r.Read(tmp[:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, nil
		}
	}
}
