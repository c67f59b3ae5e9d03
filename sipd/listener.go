// Package sipd implements the SIP listener and dispatcher: it binds a
// dual-stack UDP socket, classifies each datagram, decides whether an
// INVITE starts a new call, and builds the provisional/final replies
// the parent process sends while the per-call engine runs in its own
// goroutine.
package sipd

import (
	"net"
	"strings"

	"golang.org/x/net/ipv6"
)

// Listener is the bound SIP signaling socket, wrapped so every receive
// also reports which local address the datagram arrived on - the
// information the original device recovers via IP_PKTINFO /
// IPV6_RECVPKTINFO, needed to put the right address in the SDP answer.
type Listener struct {
	conn *net.UDPConn
	pc   *ipv6.PacketConn
}

// Listen binds host:port (host may be empty for the wildcard address)
// as a dual-stack UDP socket and enables destination-address delivery.
func Listen(host, port string) (*Listener, error) {
	addr := net.JoinHostPort(host, port)
	if host == "" {
		addr = ":" + port
	}
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, err
	}
	pc := ipv6.NewPacketConn(conn)
	if err := pc.SetControlMessage(ipv6.FlagDst, true); err != nil {
		conn.Close()
		return nil, err
	}
	return &Listener{conn: conn, pc: pc}, nil
}

// Close releases the socket.
func (l *Listener) Close() error { return l.conn.Close() }

// Datagram is one received SIP message plus the addresses needed to
// reply to it and to describe the local media address in an SDP
// answer.
type Datagram struct {
	Data     []byte
	Peer     *net.UDPAddr
	LocalIP  net.IP
	Family   string // "IP4" or "IP6", for the SDP "c=" line
}

// ReadFrom blocks for the next datagram.
func (l *Listener) ReadFrom(buf []byte) (Datagram, error) {
	for {
		n, cm, peer, err := l.pc.ReadFrom(buf)
		if err != nil {
			return Datagram{}, err
		}
		udpPeer, _ := peer.(*net.UDPAddr)
		local := net.IPv4zero
		if cm != nil && cm.Dst != nil {
			local = cm.Dst
		}
		family := "IP6"
		if v4 := local.To4(); v4 != nil {
			local = v4
			family = "IP4"
		}
		if udpPeer != nil {
			udpPeer.IP = normalizeV4Mapped(udpPeer.IP)
		}
		return Datagram{Data: buf[:n], Peer: udpPeer, LocalIP: local, Family: family}, nil
	}
}

// WriteTo sends a reply to peer from the listening socket.
func (l *Listener) WriteTo(buf []byte, peer *net.UDPAddr) error {
	_, err := l.conn.WriteToUDP(buf, peer)
	return err
}

func normalizeV4Mapped(ip net.IP) net.IP {
	s := ip.String()
	if strings.HasPrefix(s, "::ffff:") {
		if v4 := ip.To4(); v4 != nil {
			return v4
		}
	}
	return ip
}
