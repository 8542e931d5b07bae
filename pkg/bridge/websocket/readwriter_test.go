package websocket

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEchoPackets(t *testing.T) {
	srv := httptest.NewServer(Handler(func(rw *ReadWriter) {
		for {
			pkt, err := rw.ReadPacket()
			if err != nil {
				return
			}
			if err = rw.WritePacket(append([]byte{0xee}, pkt...)); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	rw, err := Dial("ws"+strings.TrimPrefix(srv.URL, "http"), srv.URL)
	require.NoError(t, err)
	defer rw.Close()

	for _, pkt := range [][]byte{{1}, {0, 0xff, 0x80}} {
		require.NoError(t, rw.WritePacket(pkt))
		reply, err := rw.ReadPacket()
		require.NoError(t, err)
		require.Equal(t, append([]byte{0xee}, pkt...), reply)
	}
}
