package rpc

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

func TestJSONCodecRoundTrip(t *testing.T) {
	c := jsonCodec{}
	req := SetKeyActionRequest{Profile: 1, KeyIndex: 9, Layer: 0, CfgType: 1, B1: 1, B2: 2, B3: 3}

	data, err := c.Marshal(req)
	require.NoError(t, err)

	var got SetKeyActionRequest
	require.NoError(t, c.Unmarshal(data, &got))
	require.Equal(t, req, got)
}

func TestJSONCodecIsRegisteredUnderItsName(t *testing.T) {
	require.Equal(t, "json", CodecName)
	require.NotNil(t, encoding.GetCodec(CodecName))
}
