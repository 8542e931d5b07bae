package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"io"

	"github.com/golang/glog"

	"github.com/robotalks/softuart/pkg/bridge"
	"github.com/robotalks/softuart/pkg/bridge/mqtt"
	"github.com/robotalks/softuart/pkg/bridge/stream"
	"github.com/robotalks/softuart/pkg/bridge/websocket"
	fx "github.com/robotalks/softuart/pkg/framework"
	"github.com/robotalks/softuart/pkg/hal/soft"
	"github.com/robotalks/softuart/pkg/uart"
)

var (
	echo   = true
	origin = "http://localhost/"
)

func init() {
	soft.SetupFlags()
	bridge.SetupFlags()
	flag.BoolVar(&echo, "echo", echo, "Echo bytes back on the peer board.")
	flag.StringVar(&origin, "origin", origin, "Websocket origin.")
}

// echoer writes back everything it reads.
func echoer(port *uart.Port) fx.RunFunc {
	return func(ctx context.Context) error {
		return fx.RunWithContextCloser(ctx, port, func() error {
			_, err := io.Copy(port, port)
			return err
		})
	}
}

// connect opens the configured transport, the returned Runnable, if
// not nil, must run along with the bridge.
func connect(conf *bridge.Config) (bridge.PacketReadWriter, bridge.Codec, fx.Runnable, error) {
	codec, err := bridge.CodecByName(conf.Codec)
	if err != nil {
		return nil, nil, nil, err
	}
	switch {
	case conf.MQTTBrokerURL != "":
		q, err := mqtt.NewQueueFromURL(conf.MQTTBrokerURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err = q.Connect(); err != nil {
			return nil, nil, nil, err
		}
		// the bridge closes conn on exit, which disconnects q.
		conn := mqtt.NewPacketReadWriter(q).ForUART(conf.Name).OwnQueue()
		return conn, codec, fx.NamedRun("mqtt", conn), nil
	case conf.WebsocketURL != "":
		conn, err := websocket.Dial(conf.WebsocketURL, origin)
		if err != nil {
			return nil, nil, nil, err
		}
		return conn, codec, nil, nil
	default:
		port, err := stream.OpenSerial(conf.SerialDevice, conf.SerialBaud)
		if err != nil {
			return nil, nil, nil, err
		}
		// a serial device carries plain bytes.
		return stream.NewRaw(port), bridge.RawCodec{}, nil, nil
	}
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf := bridge.NewConfig()
	if err := conf.Validate(); err != nil {
		glog.Exit(err)
	}
	if !conf.HasTransport() {
		glog.Exit("one of -mqtt, -ws or -serial is required")
	}
	conn, codec, connRunner, err := connect(conf)
	if err != nil {
		glog.Exitf("connect failed: %v", err)
	}

	boardA, boardB := soft.NewNullModem(conf.Name, conf.Name+"-peer")
	portA := boardA.NewPort(uart.DefaultPortConfig)
	runner := fx.NewRunner().HandleSignals().Go(
		fx.NamedRun("clock", fx.RunFunc(soft.NewConfig().NewClock(boardA, boardB).Run)),
		fx.NamedRun("bridge", bridge.New(conf.Name, portA, conn).WithCodec(codec)),
	)
	if connRunner != nil {
		runner.Go(connRunner)
	}
	if echo {
		runner.Go(fx.NamedRun("echo", echoer(boardB.NewPort(uart.DefaultPortConfig))))
	}
	glog.Infof("bridging %s", conf.Name)
	if err := runner.Wait(); err != nil {
		glog.Exit(err)
	}
}
