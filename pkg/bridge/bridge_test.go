package bridge

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/softuart/pkg/hal/soft"
	"github.com/robotalks/softuart/pkg/uart"
)

type chanConn struct {
	readCh  chan []byte
	writeCh chan []byte
	closeCh chan struct{}
}

func newChanConn() *chanConn {
	return &chanConn{
		readCh:  make(chan []byte, 4),
		writeCh: make(chan []byte, 16),
		closeCh: make(chan struct{}),
	}
}

func (c *chanConn) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-c.readCh:
		return pkt, nil
	case <-c.closeCh:
		return nil, io.EOF
	}
}

func (c *chanConn) WritePacket(pkt []byte) error {
	c.writeCh <- append([]byte(nil), pkt...)
	return nil
}

func (c *chanConn) Close() error {
	close(c.closeCh)
	return nil
}

func TestCodecs(t *testing.T) {
	for _, name := range []string{"raw", "proto"} {
		codec, err := CodecByName(name)
		require.NoError(t, err)
		pkt, err := codec.Encode([]byte{0, 1, 0xff})
		require.NoError(t, err)
		data, err := codec.Decode(pkt)
		require.NoError(t, err)
		assert.Equal(t, []byte{0, 1, 0xff}, data, name)
	}
	_, err := CodecByName("json")
	assert.Error(t, err)
	_, err = ProtoCodec{}.Decode([]byte{0xff, 0xff})
	assert.Error(t, err)
}

func TestBridgeOverSoftLink(t *testing.T) {
	a, b := soft.NewNullModem("a", "b")
	pa, pb := a.NewPort(uart.PortConfig{}), b.NewPort(uart.PortConfig{})
	conn := newChanConn()
	codec := ProtoCodec{}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	go soft.NewClock(20*time.Microsecond).Add(a, b).Run(ctx)
	done := make(chan error, 1)
	go func() {
		done <- New("a", pa, conn).WithCodec(codec).Run(ctx)
	}()

	pkt, err := codec.Encode([]byte("ping"))
	require.NoError(t, err)
	conn.readCh <- pkt
	buf := make([]byte, 4)
	_, err = io.ReadFull(pb, buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("ping"), buf)

	conn.readCh <- []byte{0xff, 0xff}

	_, err = pb.Write([]byte("pong"))
	require.NoError(t, err)
	var up []byte
	for len(up) < 4 {
		select {
		case pkt := <-conn.writeCh:
			data, err := codec.Decode(pkt)
			require.NoError(t, err)
			up = append(up, data...)
		case <-ctx.Done():
			t.Fatal("timeout")
		}
	}
	assert.Equal(t, []byte("pong"), up)

	cancel()
	assert.NoError(t, <-done)
	_, err = pa.Write([]byte{1})
	assert.Equal(t, uart.ErrClosed, err)
}

func TestConfigValidate(t *testing.T) {
	conf := NewConfig()
	conf.Name = "u0"
	require.NoError(t, conf.Validate())
	assert.False(t, conf.HasTransport())
	conf.MQTTBrokerURL, conf.SerialDevice = "mqtt://localhost:1883/", "/dev/ttyUSB0"
	assert.Error(t, conf.Validate())
	conf.SerialDevice = ""
	assert.NoError(t, conf.Validate())
	assert.True(t, conf.HasTransport())
	conf.Codec = "xml"
	assert.Error(t, conf.Validate())
}
