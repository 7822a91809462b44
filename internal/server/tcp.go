package server

import (
	"context"
	"errors"
	"log/slog"
	"net"

	"github.com/pepbut/nsd/internal/authority"
	"github.com/pepbut/nsd/internal/wire"
)

func runTCP(ctx context.Context, addr string, auth *authority.Authority, logger *slog.Logger, m *metrics) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer ln.Close()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			continue
		}
		go handleTCPConn(conn, auth, logger, m)
	}
}

func handleTCPConn(conn net.Conn, auth *authority.Authority, logger *slog.Logger, m *metrics) {
	defer conn.Close()
	for {
		frame, err := wire.ReadTCPFrame(conn)
		if err != nil {
			return
		}

		m.queriesTotal.Inc()
		resp := auth.ProcessMessage(logger, frame)
		m.answersTotal.WithLabelValues(rcodeLabel(resp)).Inc()

		if err := wire.WriteTCPFrame(conn, resp); err != nil {
			if errors.Is(err, wire.ErrMessageTooLarge) {
				logger.Warn("tcp: response too large to frame", "error", err)
			}
			return
		}
	}
}
