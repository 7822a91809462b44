// Package ctlproto defines the JSON request/response shapes exchanged
// over the control socket: list-zones and load-zone. It has no I/O of
// its own; internal/server frames these over a Unix stream socket and
// nsctl is the client that sends them.
package ctlproto

import "encoding/json"

// Request is a control-socket request, tagged by its "method" field the
// way the original control channel tagged its request enum.
type Request struct {
	Method string `json:"method"`

	// Path is set for a "load-zone" request: the zone file to load.
	Path string `json:"path,omitempty"`
}

// ListZonesMethod and LoadZoneMethod are the two supported request
// methods.
const (
	ListZonesMethod = "list-zones"
	LoadZoneMethod  = "load-zone"
)

// ListZonesResponse maps each loaded zone's origin to its serial.
type ListZonesResponse map[string]uint32

// LoadZoneResponse reports the origin and serial of a successfully
// loaded zone. It marshals as the two-element array spec.md §6
// specifies (`[origin, serial]`), not as an object.
type LoadZoneResponse struct {
	Origin string
	Serial uint32
}

// MarshalJSON encodes r as [origin, serial].
func (r LoadZoneResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{r.Origin, r.Serial})
}

// ErrorResponse wraps a failed request's error message for requests
// outside the two documented methods (an unrecognized "method" field).
// load-zone's own failures use a bare JSON string per spec.md §6.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Encode marshals v (one of the response types above) to a single JSON
// line, ready to be written to the control connection.
func Encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}
