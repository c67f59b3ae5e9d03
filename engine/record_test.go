package engine

import "testing"

func TestParseXRecordRecipientsOnly(t *testing.T) {
	buf := []byte(`"Alice" <sip:alice@example.com>, <sip:bob@example.com>`)
	rec := ParseXRecord(buf, 0, len(buf))
	if len(rec.Recipients) != 2 {
		t.Fatalf("Recipients = %+v, want 2 entries", rec.Recipients)
	}
	if rec.Recipients[0].Name != "Alice" || rec.Recipients[0].Address != "sip:alice@example.com" {
		t.Fatalf("Recipients[0] = %+v", rec.Recipients[0])
	}
	if rec.Recipients[1].Name != "" || rec.Recipients[1].Address != "sip:bob@example.com" {
		t.Fatalf("Recipients[1] = %+v", rec.Recipients[1])
	}
	if len(rec.Params) != 0 {
		t.Fatalf("Params = %+v, want none", rec.Params)
	}
}

func TestParseXRecordWithParams(t *testing.T) {
	buf := []byte(`<sip:alice@example.com>;subject="call back";duration=30`)
	rec := ParseXRecord(buf, 0, len(buf))
	if len(rec.Recipients) != 1 || rec.Recipients[0].Address != "sip:alice@example.com" {
		t.Fatalf("Recipients = %+v", rec.Recipients)
	}
	if rec.Params["subject"] != "call back" {
		t.Fatalf("subject param = %q, want %q", rec.Params["subject"], "call back")
	}
	if rec.Params["duration"] != "30" {
		t.Fatalf("duration param = %q, want 30", rec.Params["duration"])
	}
}

func TestParseXRecordMultipleRecipientsWithParams(t *testing.T) {
	buf := []byte(`<sip:a@example.com>, "Bob" <sip:b@example.com>;urgent=yes`)
	rec := ParseXRecord(buf, 0, len(buf))
	if len(rec.Recipients) != 2 {
		t.Fatalf("Recipients = %+v, want 2 entries", rec.Recipients)
	}
	if rec.Params["urgent"] != "yes" {
		t.Fatalf("urgent param = %q, want yes", rec.Params["urgent"])
	}
}
