package server

import (
	"fmt"
	"os"

	"github.com/pepbut/nsd/internal/name"
	"github.com/pepbut/nsd/internal/zone"
	"github.com/pepbut/nsd/internal/zonefile"
)

// loadZoneFile reads a binary zone file at path and builds a *zone.Zone
// from it, using mname/rname as the running instance's SOA constants
// (the file itself carries only origin, serial, and records).
func loadZoneFile(path string, mname, rname name.Name) (*zone.Zone, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	partial, err := zonefile.ReadPhase1(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	records, err := partial.ReadPhase2(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	z := zone.New(partial.Origin, partial.Serial, mname, rname)
	for _, rec := range records {
		z.AddRecord(rec)
	}
	return z, nil
}
