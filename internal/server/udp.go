package server

import (
	"context"
	"errors"
	"log/slog"
	"net"

	"github.com/pepbut/nsd/internal/authority"
)

// udpWorkers mirrors the teacher's hand-rolled fast-path UDP server: a
// fixed pool of goroutines sharing one *net.UDPConn via ReadFromUDP,
// each packet handled on its own goroutine so one slow lookup never
// stalls the read loop.
const udpWorkers = 4

// udpReadBuffer and udpWriteBuffer match the teacher's 4MB socket
// buffer sizing for high packet-rate UDP service.
const (
	udpReadBuffer  = 4 * 1024 * 1024
	udpWriteBuffer = 4 * 1024 * 1024
)

func runUDP(ctx context.Context, addr string, auth *authority.Authority, logger *slog.Logger, m *metrics) error {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.SetReadBuffer(udpReadBuffer); err != nil {
		logger.Warn("udp: set read buffer", "error", err)
	}
	if err := conn.SetWriteBuffer(udpWriteBuffer); err != nil {
		logger.Warn("udp: set write buffer", "error", err)
	}

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	done := make(chan struct{})
	for i := 0; i < udpWorkers; i++ {
		go udpWorker(conn, auth, logger, m, done)
	}

	<-ctx.Done()
	close(done)
	return nil
}

func udpWorker(conn *net.UDPConn, auth *authority.Authority, logger *slog.Logger, m *metrics, done chan struct{}) {
	buf := make([]byte, 65535)
	for {
		select {
		case <-done:
			return
		default:
		}

		n, raddr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}

		packet := make([]byte, n)
		copy(packet, buf[:n])
		go handleUDPPacket(conn, raddr, packet, auth, logger, m)
	}
}

func handleUDPPacket(conn *net.UDPConn, raddr *net.UDPAddr, packet []byte, auth *authority.Authority, logger *slog.Logger, m *metrics) {
	m.queriesTotal.Inc()
	resp := auth.ProcessMessage(logger, packet)
	m.answersTotal.WithLabelValues(rcodeLabel(resp)).Inc()
	if _, err := conn.WriteToUDP(resp, raddr); err != nil {
		logger.Debug("udp: write reply", "error", err, "peer", raddr)
	}
}

// rcodeLabel extracts the 4-bit RCODE from an encoded response's header
// (byte offset 3, low nibble) for metrics labeling, without requiring
// the authority layer to expose it separately.
func rcodeLabel(resp []byte) string {
	if len(resp) < 4 {
		return "unknown"
	}
	switch resp[3] & 0x0F {
	case 0:
		return "noerror"
	case 1:
		return "formerr"
	case 2:
		return "servfail"
	case 3:
		return "nxdomain"
	case 5:
		return "refused"
	default:
		return "other"
	}
}
