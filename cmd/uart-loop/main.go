package main

//go-build: CGO_ENABLED=0

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/softuart/pkg/framework"
	"github.com/robotalks/softuart/pkg/hal/soft"
	"github.com/robotalks/softuart/pkg/uart"
)

var (
	rounds    = 16
	chunkSize = 8
	seed      int64
)

func init() {
	soft.SetupFlags()
	flag.IntVar(&rounds, "rounds", rounds, "Number of send/receive cycles, 0 runs forever.")
	flag.IntVar(&chunkSize, "chunk", chunkSize, "Bytes sent in each direction per cycle.")
	flag.Int64Var(&seed, "seed", seed, "Random seed, 0 uses current time.")
}

// exchange sends data on tx and expects the same bytes on rx.
func exchange(tx, rx *uart.Port, data []byte) error {
	errCh := make(chan error, 1)
	go func() {
		_, err := tx.Write(data)
		errCh <- err
	}()
	got := make([]byte, len(data))
	if _, err := io.ReadFull(rx, got); err != nil {
		return err
	}
	if err := <-errCh; err != nil {
		return err
	}
	if !bytes.Equal(got, data) {
		return fmt.Errorf("mismatch: sent % x, received % x", data, got)
	}
	return nil
}

func loop(a, b *uart.Port, rnd *rand.Rand) fx.RunFunc {
	return func(ctx context.Context) error {
		return fx.RunWithContextCancel(ctx, func() {
			a.Close()
			b.Close()
		}, func() error {
			out, in := make([]byte, chunkSize), make([]byte, chunkSize)
			for n := 0; rounds == 0 || n < rounds; n++ {
				rnd.Read(out)
				rnd.Read(in)
				start := time.Now()
				errCh := make(chan error, 1)
				go func() { errCh <- exchange(b, a, in) }()
				err := exchange(a, b, out)
				if e := <-errCh; err == nil {
					err = e
				}
				if err != nil {
					return fmt.Errorf("round %d: %w", n, err)
				}
				glog.Infof("round %d: % x <-> % x in %v", n, out, in, time.Since(start))
			}
			return nil
		})
	}
}

func main() {
	flag.Parse()
	defer glog.Flush()

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	glog.Infof("seed %d", seed)

	boardA, boardB := soft.NewNullModem("a", "b")
	portA, portB := boardA.NewPort(uart.DefaultPortConfig), boardB.NewPort(uart.DefaultPortConfig)
	clock := soft.NewConfig().NewClock(boardA, boardB)

	err := fx.NewRunner().HandleSignals().Go(
		fx.NamedRun("clock", fx.RunFunc(clock.Run)),
		fx.NamedRun("loop", loop(portA, portB, rand.New(rand.NewSource(seed)))),
	).Wait()
	glog.Infof("a: %v overflows=%d", boardA.Status(), portA.Overflows())
	glog.Infof("b: %v overflows=%d", boardB.Status(), portB.Overflows())
	if err != nil {
		glog.Exit(err)
	}
}
