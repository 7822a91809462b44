package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"

	"github.com/pepbut/nsd/internal/authority"
	"github.com/pepbut/nsd/internal/ctlproto"
	"github.com/pepbut/nsd/internal/name"
)

func runControl(ctx context.Context, socketPath string, auth *authority.Authority, mname, rname name.Name, logger *slog.Logger, m *metrics) error {
	// A stale socket file from an unclean previous shutdown would
	// otherwise make this bind fail with "address already in use".
	if err := os.RemoveAll(socketPath); err != nil {
		return err
	}

	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return err
	}
	defer ln.Close()
	defer os.Remove(socketPath)

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
		go handleControlConn(conn, auth, mname, rname, logger, m)
	}
}

func handleControlConn(conn net.Conn, auth *authority.Authority, mname, rname name.Name, logger *slog.Logger, m *metrics) {
	defer conn.Close()
	dec := json.NewDecoder(conn)
	for {
		var req ctlproto.Request
		if err := dec.Decode(&req); err != nil {
			return
		}

		var resp any
		switch req.Method {
		case ctlproto.ListZonesMethod:
			resp = handleListZones(auth)
		case ctlproto.LoadZoneMethod:
			resp = handleLoadZone(auth, req.Path, mname, rname, m)
		default:
			resp = ctlproto.ErrorResponse{Error: "unknown method: " + req.Method}
		}

		out, err := ctlproto.Encode(resp)
		if err != nil {
			logger.Warn("control: encode response", "error", err)
			return
		}
		if _, err := conn.Write(out); err != nil {
			return
		}
	}
}

func handleListZones(auth *authority.Authority) ctlproto.ListZonesResponse {
	resp := make(ctlproto.ListZonesResponse)
	for _, origin := range auth.ZoneOrigins() {
		z, ok := auth.Zone(origin)
		if !ok {
			continue
		}
		resp[origin.String()+"."] = z.Serial
	}
	return resp
}

// handleLoadZone returns a ctlproto.LoadZoneResponse on success or a
// bare error string (per spec.md §6's two-shape load-zone contract) on
// failure, including the case where z's serial is strictly lower than
// the zone already loaded under its origin — such a stale reload is
// ignored rather than replacing the newer in-memory zone. Origins are
// reported fully qualified, with a trailing ".".
func handleLoadZone(auth *authority.Authority, path string, mname, rname name.Name, m *metrics) any {
	if path == "" {
		return "load-zone: missing path"
	}
	z, err := loadZoneFile(path, mname, rname)
	if err != nil {
		return err.Error()
	}
	if !auth.LoadZone(z) {
		return fmt.Sprintf("load-zone: %s: serial %d not newer than loaded serial, ignored", z.Origin, z.Serial)
	}
	if m != nil {
		m.zonesLoaded.Set(float64(len(auth.ZoneOrigins())))
	}
	return ctlproto.LoadZoneResponse{Origin: z.Origin.String() + ".", Serial: z.Serial}
}
