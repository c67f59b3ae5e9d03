package sip

import (
	"bytes"
	"strings"
	"testing"
)

func TestAddHeaderBasic(t *testing.T) {
	buf := make([]byte, 200)
	w := NewWriter(buf)
	if _, ok := w.AddHeader("Via", []byte("SIP/2.0/UDP 1.2.3.4:5060")); !ok {
		t.Fatal("AddHeader failed")
	}
	if _, ok := w.AddHeader("Call-ID", []byte("abc@host")); !ok {
		t.Fatal("AddHeader failed")
	}
	got := string(w.Bytes())
	want := "Via: SIP/2.0/UDP 1.2.3.4:5060\r\nCall-ID: abc@host\r\n"
	if got != want {
		t.Fatalf("composed = %q, want %q", got, want)
	}
}

func TestAddHeaderOverflow(t *testing.T) {
	buf := make([]byte, 10)
	w := NewWriter(buf)
	if _, ok := w.AddHeader("Via", []byte("SIP/2.0/UDP 1.2.3.4:5060")); ok {
		t.Fatal("expected overflow to be reported")
	}
	if w.Len() != 0 {
		t.Fatalf("buffer must be unchanged on overflow, len=%d", w.Len())
	}
}

func TestAddHeaderAngle(t *testing.T) {
	buf := make([]byte, 200)
	w := NewWriter(buf)
	if _, ok := w.AddHeaderAngle("Refer-To", []byte("sip:123@host")); !ok {
		t.Fatal("AddHeaderAngle failed")
	}
	want := "Refer-To: <sip:123@host>\r\n"
	if got := string(w.Bytes()); got != want {
		t.Fatalf("composed = %q, want %q", got, want)
	}
}

func TestAddExtraTag(t *testing.T) {
	buf := make([]byte, 200)
	w := NewWriter(buf)
	w.AddHeader("To", []byte("<sip:1234@host>"))
	w.AddExtra("tag", []byte("5060"), true, ';', false, false)
	want := "To: <sip:1234@host>;tag=5060\r\n"
	if got := string(w.Bytes()); got != want {
		t.Fatalf("composed = %q, want %q", got, want)
	}
}

func TestAddExtraQuoted(t *testing.T) {
	buf := make([]byte, 200)
	w := NewWriter(buf)
	w.AddHeader("Authorization", []byte("Digest"))
	w.AddExtra("username", []byte("bob"), true, ',', true, false)
	want := `Authorization: Digest,username="bob"` + "\r\n"
	if got := string(w.Bytes()); got != want {
		t.Fatalf("composed = %q, want %q", got, want)
	}
}

func TestAddExtraFoldsPast120Columns(t *testing.T) {
	buf := make([]byte, 4000)
	w := NewWriter(buf)
	w.AddHeader("Contact", []byte("<sip:a@host>"))
	for i := 0; i < 20; i++ {
		w.AddExtra("p", bytes.Repeat([]byte("x"), 10), true, ',', false, true)
	}
	for _, line := range strings.Split(string(w.Bytes()), "\r\n") {
		if len(line) > foldColumn {
			t.Fatalf("line exceeds %d columns: %q (%d)", foldColumn, line, len(line))
		}
	}
	if !strings.Contains(string(w.Bytes()), "\r\n\t") {
		t.Fatal("expected at least one folded continuation line")
	}
}

func TestWriteStatusLine(t *testing.T) {
	buf := make([]byte, 200)
	w := NewWriter(buf)
	if !w.WriteStatusLine(183, "Call progress") {
		t.Fatal("WriteStatusLine failed")
	}
	want := "SIP/2.0 183 Call progress\r\n"
	if got := string(w.Bytes()); got != want {
		t.Fatalf("composed = %q, want %q", got, want)
	}
}

func TestWriteRequestLine(t *testing.T) {
	buf := make([]byte, 200)
	w := NewWriter(buf)
	if !w.WriteRequestLine("BYE", []byte("sip:123@host")) {
		t.Fatal("WriteRequestLine failed")
	}
	want := "BYE sip:123@host SIP/2.0\r\n"
	if got := string(w.Bytes()); got != want {
		t.Fatalf("composed = %q, want %q", got, want)
	}
}

func TestEndHeadersAndAppendBody(t *testing.T) {
	buf := make([]byte, 200)
	w := NewWriter(buf)
	w.AddHeader("l", []byte("5"))
	if !w.EndHeaders() {
		t.Fatal("EndHeaders failed")
	}
	if !w.AppendBody([]byte("hello")) {
		t.Fatal("AppendBody failed")
	}
	want := "l: 5\r\n\r\nhello"
	if got := string(w.Bytes()); got != want {
		t.Fatalf("composed = %q, want %q", got, want)
	}
}

func TestAppendBodyOverflow(t *testing.T) {
	buf := make([]byte, 8)
	w := NewWriter(buf)
	w.AddHeader("l", []byte("0"))
	if w.AppendBody([]byte("this is far too long")) {
		t.Fatal("expected overflow to be reported")
	}
}

func TestAddExtraSingleValueExceeding120IsNotSplit(t *testing.T) {
	buf := make([]byte, 4000)
	w := NewWriter(buf)
	w.AddHeader("Contact", []byte("<sip:a@host>"))
	huge := bytes.Repeat([]byte("x"), 200)
	if !w.AddExtra("p", huge, true, ',', false, true) {
		t.Fatal("AddExtra failed")
	}
	if strings.Contains(string(w.Bytes()), "\r\n\t") {
		t.Fatal("a single oversized value must not be folded")
	}
}
