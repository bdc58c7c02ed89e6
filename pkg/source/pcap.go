package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// ReadPcap concatenates the TCP payloads of a pcap or pcapng capture.
// When port is non-zero only segments from or to that port are kept.
func ReadPcap(r io.Reader, port uint16) ([]byte, error) {
	br, ok := r.(*bytes.Reader)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		br = bytes.NewReader(data)
	}

	src, linkType, err := openCapture(br)
	if err != nil {
		return nil, err
	}

	ps := gopacket.NewPacketSource(src, linkType)
	ps.DecodeOptions = gopacket.DecodeOptions{Lazy: true}

	var out []byte
	for {
		packet, err := ps.NextPacket()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read packet: %w", err)
		}
		tcp, ok := packet.Layer(layers.LayerTypeTCP).(*layers.TCP)
		if !ok || len(tcp.Payload) == 0 {
			continue
		}
		if port != 0 && uint16(tcp.SrcPort) != port && uint16(tcp.DstPort) != port {
			continue
		}
		out = append(out, tcp.Payload...)
	}
}

func openCapture(br *bytes.Reader) (gopacket.PacketDataSource, layers.LinkType, error) {
	var magic [4]byte
	if _, err := br.ReadAt(magic[:], 0); err != nil {
		return nil, 0, fmt.Errorf("read capture header: %w", err)
	}
	if magic == [4]byte{0x0a, 0x0d, 0x0d, 0x0a} {
		ng, err := pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			return nil, 0, fmt.Errorf("open pcapng: %w", err)
		}
		return ng, ng.LinkType(), nil
	}
	pr, err := pcapgo.NewReader(br)
	if err != nil {
		return nil, 0, fmt.Errorf("open pcap: %w", err)
	}
	return pr, pr.LinkType(), nil
}
