package engine

import "github.com/revk/voip-answer/sip"

// Recipient is one entry of a comma-separated X-Record header: an
// optional display name plus the SIP URI used both as the "email" the
// recording script mails to and as a positional argument on its
// command line.
type Recipient struct {
	Name    string
	Address string
}

// XRecord is a parsed X-Record header: the free-form ";name=value"
// parameters that become environment variables for the recording
// script, plus the list of recipients to invoke it for.
type XRecord struct {
	Params     map[string]string
	Recipients []Recipient
}

// ParseXRecord parses an X-Record header's value. It mirrors the
// upstream device's two-pass scan: first walk the recipient list to
// find where the trailing ";name=value" parameter block starts (right
// after the first recipient URI that is followed by ';', normally the
// last recipient's), then walk the full recipient list
// a second time to build the per-recipient script invocations.
func ParseXRecord(buf []byte, s, e int) XRecord {
	rec := XRecord{Params: map[string]string{}}

	z := -1
	for p := s; p < e; {
		uri, ok := sip.FindURI(buf, p, e)
		if !ok {
			break
		}
		z = uri.End
		if z < e && buf[z] == '>' {
			z++
		}
		if z < e && buf[z] == ';' {
			break
		}
		if z < e && buf[z] == ',' {
			z++
		}
		p = z
	}
	if z >= 0 && z < e && buf[z] == ';' {
		parseXRecordParams(buf, z, e, rec.Params)
	}

	for p := s; p < e; {
		name := ""
		if disp, ok, _ := sip.FindDisplay(buf, p, e); ok {
			name = string(buf[disp.Start:disp.End])
		}
		uri, ok := sip.FindURI(buf, p, e)
		if !ok {
			break
		}
		rec.Recipients = append(rec.Recipients, Recipient{
			Name:    name,
			Address: string(buf[uri.Start:uri.End]),
		})
		z := uri.End
		if z < e && buf[z] == '>' {
			z++
		}
		if z < e && buf[z] == ';' {
			break
		}
		if z < e && buf[z] == ',' {
			z++
		}
		p = z
	}
	return rec
}

func parseXRecordParams(buf []byte, z, e int, params map[string]string) {
	for z < e && buf[z] == ';' {
		z++
		ts := z
		for z < e && buf[z] != '=' {
			z++
		}
		if z == e {
			return
		}
		te := z
		z++
		var vs, ve int
		if z < e && buf[z] == '"' {
			z++
			vs = z
			for z < e && buf[z] != '"' {
				z++
			}
			ve = z
			if z < e {
				z++
			}
		} else {
			vs = z
			for z < e && buf[z] != ';' {
				z++
			}
			ve = z
		}
		if te > ts {
			params[string(buf[ts:te])] = string(buf[vs:ve])
		}
	}
}
