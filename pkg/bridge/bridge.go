package bridge

import (
	"context"
	"io"

	"github.com/golang/glog"

	fx "github.com/robotalks/softuart/pkg/framework"
)

// DefaultMaxPacket is the default limit of bytes read from
// the port into one packet.
const DefaultMaxPacket = 64

// Bridge pumps bytes between a port and a packet transport. Bytes read
// from the port are sent as packets, packets received are written to
// the port.
//
// Run closes the Port, and the Conn if it is an io.Closer, when it
// returns. A Conn which is not an io.Closer must return from ReadPacket
// on its own once the context is canceled.
type Bridge struct {
	Name      string
	Port      io.ReadWriteCloser
	Conn      PacketReadWriter
	Codec     Codec
	MaxPacket int
}

// New creates a Bridge.
func New(name string, port io.ReadWriteCloser, conn PacketReadWriter) *Bridge {
	return &Bridge{
		Name:      name,
		Port:      port,
		Conn:      conn,
		Codec:     RawCodec{},
		MaxPacket: DefaultMaxPacket,
	}
}

// WithCodec specifies the codec.
func (b *Bridge) WithCodec(codec Codec) *Bridge {
	b.Codec = codec
	return b
}

// Run implements Runnable. It stops when either direction fails.
func (b *Bridge) Run(ctx context.Context) error {
	r := fx.NewRunnerWith(ctx).Go(
		fx.NamedRun(b.Name+"/uplink", fx.RunFunc(b.uplink)),
		fx.NamedRun(b.Name+"/downlink", fx.RunFunc(b.downlink)),
	)
	return r.Wait()
}

func (b *Bridge) codec() Codec {
	if b.Codec == nil {
		return RawCodec{}
	}
	return b.Codec
}

// uplink forwards bytes received from the port.
func (b *Bridge) uplink(ctx context.Context) error {
	size := b.MaxPacket
	if size <= 0 {
		size = DefaultMaxPacket
	}
	buf := make([]byte, size)
	return fx.RunWithContextCloser(ctx, b.Port, func() error {
		for {
			n, err := b.Port.Read(buf)
			if err != nil {
				return err
			}
			if n == 0 {
				continue
			}
			if glog.V(2) {
				glog.Infof("%s: up % x", b.Name, buf[:n])
			}
			pkt, err := b.codec().Encode(buf[:n])
			if err != nil {
				return err
			}
			if err = b.Conn.WritePacket(pkt); err != nil {
				return err
			}
		}
	})
}

// downlink writes received packets to the port.
func (b *Bridge) downlink(ctx context.Context) error {
	fn := func() error {
		for {
			pkt, err := b.Conn.ReadPacket()
			if err != nil {
				return err
			}
			data, err := b.codec().Decode(pkt)
			if err != nil {
				glog.Warningf("%s: drop packet: %v", b.Name, err)
				continue
			}
			if glog.V(2) {
				glog.Infof("%s: down % x", b.Name, data)
			}
			if _, err = b.Port.Write(data); err != nil {
				return err
			}
		}
	}
	if closer, ok := b.Conn.(io.Closer); ok {
		return fx.RunWithContextCloser(ctx, closer, fn)
	}
	return fx.RunWithContext(ctx, fn)
}
