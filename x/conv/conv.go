package conv

// Append-style number formatting for diagnostic messages.
// No allocations beyond the destination slice; no fmt/strconv dependency,
// so the helpers stay cheap on MCU builds.

// AppendInt appends the base-10 form of n to dst.
func AppendInt(dst []byte, n int64) []byte {
	if n < 0 {
		dst = append(dst, '-')
		return AppendUint(dst, uint64(-n))
	}
	return AppendUint(dst, uint64(n))
}

// AppendUint appends the base-10 form of n to dst.
func AppendUint(dst []byte, n uint64) []byte {
	var buf [20]byte
	i := len(buf)
	if n == 0 {
		i--
		buf[i] = '0'
	}
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return append(dst, buf[i:]...)
}

const hexd = "0123456789ABCDEF"

// AppendByteHex appends the two-digit uppercase hex form of b to dst.
func AppendByteHex(dst []byte, b byte) []byte {
	return append(dst, hexd[b>>4], hexd[b&0xF])
}

// AppendU32Hex appends the 8-digit zero-padded uppercase hex form of n.
func AppendU32Hex(dst []byte, n uint32) []byte {
	for s := 28; s >= 0; s -= 4 {
		dst = append(dst, hexd[(n>>uint(s))&0xF])
	}
	return dst
}

// Itoa returns the base-10 form of n as a string.
func Itoa(n int64) string {
	return string(AppendInt(nil, n))
}

// Utoa returns the base-10 form of n as a string.
func Utoa(n uint64) string {
	return string(AppendUint(nil, n))
}
