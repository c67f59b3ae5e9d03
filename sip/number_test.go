package sip

import "testing"

func TestReadUnsigned(t *testing.T) {
	buf := []byte("0123hi")
	p := 0
	if v := ReadUnsigned(&p, buf, len(buf)); v != 123 {
		t.Fatalf("ReadUnsigned = %d, want 123", v)
	}
	if p != 4 {
		t.Fatalf("p = %d, want 4", p)
	}
}

func TestReadUnsignedRespectsEnd(t *testing.T) {
	buf := []byte("0123hi")
	p := 0
	if v := ReadUnsigned(&p, buf, 2); v != 1 || p != 2 {
		t.Fatalf("ReadUnsigned(end=2) = %d, p=%d", v, p)
	}
}

func TestReadUnsignedNoDigits(t *testing.T) {
	buf := []byte("hi")
	p := 0
	if v := ReadUnsigned(&p, buf, len(buf)); v != 0 || p != 0 {
		t.Fatalf("ReadUnsigned(no digits) = %d, p=%d", v, p)
	}
}
