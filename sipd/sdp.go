package sipd

import (
	psdp "github.com/pion/sdp/v3"
)

// BuildAnswerSDP composes the SDP body offered for every answered call:
// mono and stereo A-law plus telephone-event, 20ms packetization,
// sendrecv, on the given local address and RTP port.
func BuildAnswerSDP(localIP string, addrType string, port int) ([]byte, error) {
	sd := &psdp.SessionDescription{
		Version: 0,
		Origin: psdp.Origin{
			Username:       "-",
			SessionID:      uint64(port),
			SessionVersion: 1,
			NetworkType:    "IN",
			AddressType:    addrType,
			UnicastAddress: localIP,
		},
		SessionName: "call",
		ConnectionInformation: &psdp.ConnectionInformation{
			NetworkType: "IN",
			AddressType: addrType,
			Address:     &psdp.Address{Address: localIP},
		},
		TimeDescriptions: []psdp.TimeDescription{{Timing: psdp.Timing{StartTime: 0, StopTime: 0}}},
		MediaDescriptions: []*psdp.MediaDescription{
			{
				MediaName: psdp.MediaName{
					Media:   "audio",
					Port:    psdp.RangedPort{Value: port},
					Protos:  []string{"RTP", "AVP"},
					Formats: []string{"8", "9", "101"},
				},
				Attributes: []psdp.Attribute{
					psdp.NewAttribute("rtpmap:8", "pcma/8000"),
					psdp.NewAttribute("rtpmap:9", "pcma/8000/2"),
					psdp.NewAttribute("rtpmap:101", "telephone-event/8000"),
					psdp.NewAttribute("fmtp:101", "0-16"),
					psdp.NewAttribute("ptime", "20"),
					psdp.NewAttribute("sendrecv", ""),
				},
			},
		},
	}
	return sd.Marshal()
}
