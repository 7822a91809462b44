package ctlproto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestRoundTripListZones(t *testing.T) {
	var req Request
	require.NoError(t, json.Unmarshal([]byte(`{"method":"list-zones"}`), &req))
	assert.Equal(t, ListZonesMethod, req.Method)
	assert.Empty(t, req.Path)
}

func TestRequestRoundTripLoadZone(t *testing.T) {
	var req Request
	require.NoError(t, json.Unmarshal([]byte(`{"method":"load-zone","path":"/zones/example.zone"}`), &req))
	assert.Equal(t, LoadZoneMethod, req.Method)
	assert.Equal(t, "/zones/example.zone", req.Path)
}

func TestEncodeListZonesResponse(t *testing.T) {
	resp := ListZonesResponse{"example.invalid.": 42}
	out, err := Encode(resp)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"example.invalid.":42`)
	assert.Equal(t, byte('\n'), out[len(out)-1])
}

func TestEncodeErrorResponse(t *testing.T) {
	out, err := Encode(ErrorResponse{Error: "no such file"})
	require.NoError(t, err)
	assert.Contains(t, string(out), "no such file")
}

func TestEncodeLoadZoneResponseAsArray(t *testing.T) {
	resp := LoadZoneResponse{Origin: "example.invalid.", Serial: 42}
	out, err := Encode(resp)
	require.NoError(t, err)
	assert.Equal(t, `["example.invalid.",42]`+"\n", string(out))
}

func TestEncodeLoadZoneFailureAsBareString(t *testing.T) {
	out, err := Encode("load-zone: no such file")
	require.NoError(t, err)
	assert.Equal(t, `"load-zone: no such file"`+"\n", string(out))
}
