package sh

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/softuart/pkg/uart"
)

const frameTicks = (uart.DataBits + 2) * uart.TicksPerBit

var (
	// TickCmd advances ticks.
	TickCmd = ishell.Cmd{
		Name:    "tick",
		Aliases: []string{"t"},
		Help:    "[N|frame], advance N ticks (default 1) or a whole frame",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			n := 1
			if len(c.Args) > 0 {
				if c.Args[0] == "frame" {
					n = frameTicks
				} else {
					v, err := strconv.Atoi(c.Args[0])
					if err != nil || v < 0 {
						c.Err(fmt.Errorf("invalid tick count %q", c.Args[0]))
						return
					}
					n = v
				}
			}
			s.Tick(n)
			s.Print(c, s.Status())
		},
	}

	// RxCmd sets the RX line level.
	RxCmd = ishell.Cmd{
		Name: "rx",
		Help: "0|1, set RX line level",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 || (c.Args[0] != "0" && c.Args[0] != "1") {
				c.Err(fmt.Errorf("expect 0 or 1"))
				return
			}
			s := ShellFrom(c)
			s.Harness.SetRx(c.Args[0] == "1")
			s.Print(c, s.Status())
		},
	}

	// SendCmd requests sending a byte.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "BYTE, send a byte (ignored while busy)",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("expect one byte"))
				return
			}
			b, err := ParseByte(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			s := ShellFrom(c)
			if s.Harness.Link.Busy() {
				c.Println("busy, ignored")
				return
			}
			s.TxTrace = nil
			s.Harness.SendByte(b)
			s.Print(c, s.Status())
		},
	}

	// ClockInCmd feeds a complete frame into the receiver.
	ClockInCmd = ishell.Cmd{
		Name:    "clockin",
		Aliases: []string{"ci"},
		Help:    "BYTE, clock a complete frame into RX",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("expect one byte"))
				return
			}
			b, err := ParseByte(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			s := ShellFrom(c)
			s.Harness.ClockIn(b)
			s.Print(c, s.Status())
		},
	}

	// StatusCmd prints the status.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"st"},
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			s.Print(c, s.Status())
			for _, err := range s.Harness.Errors() {
				c.Println(err.Error())
			}
		},
	}

	// ReceivedCmd prints received bytes and the TX trace.
	ReceivedCmd = ishell.Cmd{
		Name:    "received",
		Aliases: []string{"r"},
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if s.OutputJSON {
				s.Print(c, map[string]interface{}{
					"received": s.Harness.Received,
					"tx_trace": s.TxTrace,
				})
				return
			}
			c.Printf("received: % x\n", s.Harness.Received)
			var trace strings.Builder
			for n, high := range s.TxTrace {
				if n > 0 && n%uart.TicksPerBit == 0 {
					trace.WriteByte(' ')
				}
				trace.WriteByte(byte('0' + level(high)))
			}
			c.Printf("tx trace: %s\n", trace.String())
		},
	}

	// ResetCmd resets the link.
	ResetCmd = ishell.Cmd{
		Name: "reset",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			s.Harness.Reset()
			s.TxTrace = nil
			s.Print(c, s.Status())
		},
	}
)
