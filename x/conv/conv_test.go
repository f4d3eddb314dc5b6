package conv

import "testing"

func TestAppendInt(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{-7, "-7"},
		{84, "84"},
		{65535, "65535"},
		{-2147483648, "-2147483648"},
	}
	for _, c := range cases {
		got := string(AppendInt([]byte("n="), c.n))
		if got != "n="+c.want {
			t.Fatalf("AppendInt(%d) = %q, want %q", c.n, got, "n="+c.want)
		}
	}
}

func TestAppendUint(t *testing.T) {
	got := string(AppendUint(nil, 18446744073709551615))
	if got != "18446744073709551615" {
		t.Fatalf("AppendUint(max) = %q", got)
	}
}

func TestAppendHex(t *testing.T) {
	if got := string(AppendByteHex(nil, 0x0A)); got != "0A" {
		t.Fatalf("AppendByteHex(0x0A) = %q, want %q", got, "0A")
	}
	if got := string(AppendByteHex(nil, 0xF0)); got != "F0" {
		t.Fatalf("AppendByteHex(0xF0) = %q, want %q", got, "F0")
	}
	if got := string(AppendU32Hex(nil, 0xDEAD10CC)); got != "DEAD10CC" {
		t.Fatalf("AppendU32Hex = %q", got)
	}
	if got := string(AppendU32Hex(nil, 1)); got != "00000001" {
		t.Fatalf("AppendU32Hex(1) = %q, want zero-padded", got)
	}
}

func TestItoaUtoa(t *testing.T) {
	if Itoa(-42) != "-42" {
		t.Fatalf("Itoa(-42) = %q", Itoa(-42))
	}
	if Utoa(11) != "11" {
		t.Fatalf("Utoa(11) = %q", Utoa(11))
	}
}
