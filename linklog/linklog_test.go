package linklog

import (
	"bytes"
	"testing"

	"devlink-go/errcode"
	"devlink-go/link"
)

// Logger must plug in as the channel's diagnostics sink.
var _ link.Diag = (*Logger)(nil)

// captureSender records forwarded pseudo-calls.
type captureSender struct {
	names    []string
	payloads [][]byte
	err      error
}

func (c *captureSender) SendCommand(name string, payload []byte) error {
	if c.err != nil {
		return c.err
	}
	c.names = append(c.names, name)
	c.payloads = append(c.payloads, append([]byte(nil), payload...))
	return nil
}

func TestLogGoldenPayload(t *testing.T) {
	sender := &captureSender{}
	lg := New(sender, LevelDebug)

	lg.Info("hi")

	if len(sender.names) != 1 || sender.names[0] != "log" {
		t.Fatalf("forwarded names = %v, want [log]", sender.names)
	}
	want := []byte{4, 'I', 'N', 'F', 'O', 2, 0, 'h', 'i'}
	if !bytes.Equal(sender.payloads[0], want) {
		t.Fatalf("payload = %v, want %v", sender.payloads[0], want)
	}
}

func TestLogLevelNames(t *testing.T) {
	sender := &captureSender{}
	lg := New(sender, LevelDebug)

	lg.Debug("d")
	lg.Warn("w")
	lg.Error("e")

	wantLevels := []string{"DEBUG", "WARN", "ERROR"}
	for i, want := range wantLevels {
		level, _, err := ParseRecord(sender.payloads[i])
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		if level != want {
			t.Fatalf("record %d level = %q, want %q", i, level, want)
		}
	}
}

func TestLogDropsBelowMinimum(t *testing.T) {
	sender := &captureSender{}
	lg := New(sender, LevelWarn)

	lg.Debug("nope")
	lg.Info("nope")
	if len(sender.names) != 0 {
		t.Fatalf("below-minimum records forwarded: %v", sender.names)
	}

	lg.Warn("yes")
	if len(sender.names) != 1 {
		t.Fatalf("at-minimum record dropped")
	}
}

func TestLogSwallowsNotReady(t *testing.T) {
	sender := &captureSender{err: errcode.NotReady}
	lg := New(sender, LevelDebug)
	// Must not panic or accumulate anything; pre-handshake records
	// just vanish.
	lg.Info("early")
	if len(sender.names) != 0 {
		t.Fatalf("names = %v", sender.names)
	}
}

func TestLogNilReceiverAndUnbound(t *testing.T) {
	var lg *Logger
	lg.Info("no-op")
	New(nil, LevelDebug).Info("no-op")
}

func TestAppendRecordTruncatesLongMessages(t *testing.T) {
	long := string(bytes.Repeat([]byte{'m'}, maxMsgLen+100))
	rec := AppendRecord(nil, "INFO", long)
	_, msg, err := ParseRecord(rec)
	if err != nil {
		t.Fatalf("ParseRecord: %v", err)
	}
	if len(msg) != maxMsgLen {
		t.Fatalf("message length = %d, want %d", len(msg), maxMsgLen)
	}
}

func TestParseRecordMalformed(t *testing.T) {
	cases := []struct {
		name    string
		payload []byte
	}{
		{"empty", nil},
		{"level cut short", []byte{4, 'I', 'N'}},
		{"missing msg length", []byte{1, 'I'}},
		{"msg cut short", []byte{1, 'I', 5, 0, 'h', 'i'}},
	}
	for _, c := range cases {
		if _, _, err := ParseRecord(c.payload); errcode.Of(err) != errcode.Protocol {
			t.Fatalf("%s: err = %v, want protocol", c.name, err)
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"Warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"verbose", LevelInfo},
	}
	for _, c := range cases {
		if got := ParseLevel(c.in); got != c.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
