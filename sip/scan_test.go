package sip

import "testing"

func TestFindHost(t *testing.T) {
	type testCase struct {
		uri string
		exp string
	}
	tests := [...]testCase{
		{"sip:user@[2001:db8::1]:5060;lr", "[2001:db8::1]"},
		{"sip:1234@192.168.0.1:5060", "192.168.0.1"},
		{"sip:example.com", "example.com"},
		{"sip:alice@example.com;transport=tcp", "example.com"},
	}
	for _, tc := range tests {
		buf := []byte(tc.uri)
		r, ok := FindHost(buf, 0, len(buf))
		if !ok {
			t.Errorf("FindHost(%q): not found", tc.uri)
			continue
		}
		got := string(r.Get(buf))
		if got != tc.exp {
			t.Errorf("FindHost(%q) = %q, want %q", tc.uri, got, tc.exp)
		}
	}
}

func TestFindLocal(t *testing.T) {
	buf := []byte("sip:1234@example.com")
	r, ok := FindLocal(buf, 0, len(buf))
	if !ok || string(r.Get(buf)) != "1234" {
		t.Fatalf("FindLocal = %q, %v", r.Get(buf), ok)
	}
	noAt := []byte("sip:example.com")
	if _, ok := FindLocal(noAt, 0, len(noAt)); ok {
		t.Fatalf("FindLocal should be absent without '@'")
	}
}

func TestFindRequest(t *testing.T) {
	buf := []byte("INVITE sip:9999=@host SIP/2.0\r\n")
	r, ok := FindRequest(buf, 0, len(buf))
	if !ok {
		t.Fatal("FindRequest: not found")
	}
	if got := string(r.Get(buf)); got != "sip:9999=@host" {
		t.Fatalf("FindRequest = %q", got)
	}
}

func TestFindURI(t *testing.T) {
	buf := []byte(`"Alice" <sip:alice@example.com>;tag=123`)
	r, ok := FindURI(buf, 0, len(buf))
	if !ok || string(r.Get(buf)) != "sip:alice@example.com" {
		t.Fatalf("FindURI = %q, %v", r.Get(buf), ok)
	}
}

func TestFindDisplayQuoted(t *testing.T) {
	buf := []byte(`"Alice Example" <sip:alice@example.com>`)
	r, ok, after := FindDisplay(buf, 0, len(buf))
	if !ok || string(r.Get(buf)) != "Alice Example" {
		t.Fatalf("FindDisplay = %q, %v", r.Get(buf), ok)
	}
	if buf[after] != ' ' && buf[after] != '<' {
		t.Fatalf("FindDisplay after = %q", buf[after:])
	}
}

func TestFindDisplayLastAtomReserved(t *testing.T) {
	// a bare token form: "Bob Smith sip:bob@example.com" - the last
	// atom (the URI) must not be consumed as part of the display name.
	buf := []byte("Bob Smith sip:bob@example.com")
	r, ok, after := FindDisplay(buf, 0, len(buf))
	if !ok {
		t.Fatal("FindDisplay: expected a display name")
	}
	if string(r.Get(buf)) != "Bob Smith" {
		t.Fatalf("FindDisplay = %q", r.Get(buf))
	}
	if string(buf[after:]) != "sip:bob@example.com" {
		t.Fatalf("FindDisplay left remainder %q", buf[after:])
	}
}
