// Command nsctl is a thin control-socket client: it sends a single
// list-zones or load-zone request and prints the JSON reply.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/pepbut/nsd/internal/ctlproto"
)

func main() {
	sockPath := flag.String("s", "/run/pepbut/nsd.sock", "control socket path")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: nsctl [-s path] list-zones | load-zone PATH")
		os.Exit(2)
	}

	var req ctlproto.Request
	switch args[0] {
	case "list-zones":
		req = ctlproto.Request{Method: ctlproto.ListZonesMethod}
	case "load-zone":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: nsctl load-zone PATH")
			os.Exit(2)
		}
		req = ctlproto.Request{Method: ctlproto.LoadZoneMethod, Path: args[1]}
	default:
		fmt.Fprintf(os.Stderr, "nsctl: unknown command %q\n", args[0])
		os.Exit(2)
	}

	conn, err := net.Dial("unix", *sockPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nsctl: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	enc := json.NewEncoder(conn)
	if err := enc.Encode(req); err != nil {
		fmt.Fprintf(os.Stderr, "nsctl: %v\n", err)
		os.Exit(1)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(conn).Decode(&raw); err != nil {
		fmt.Fprintf(os.Stderr, "nsctl: %v\n", err)
		os.Exit(1)
	}

	pretty, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "nsctl: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(pretty))
}
