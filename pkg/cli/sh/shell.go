// Package sh provides an interactive shell stepping a simulated UART link.
package sh

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/softuart/pkg/sim"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell   *ishell.Shell
	Harness *sim.Harness

	// TxTrace records the TX level after every tick since the last send.
	TxTrace []bool
}

const shellKey = "$shell"

var (
	// flags

	evalOnly   bool
	outputJSON bool

	commands = []*ishell.Cmd{
		&TickCmd,
		&RxCmd,
		&SendCmd,
		&ClockInCmd,
		&StatusCmd,
		&ReceivedCmd,
		&ResetCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New() *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:   ishell.New(),
		Harness: sim.NewHarness(),
	}
	s.Harness.Check = sim.CheckArbiter
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt("uart > ")
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// ParseByte parses a byte in hex (0x35, 35h), binary (0b101) or decimal.
func ParseByte(str string) (byte, error) {
	s := strings.ToLower(str)
	base := 10
	switch {
	case strings.HasPrefix(s, "0x"):
		s, base = s[2:], 16
	case strings.HasSuffix(s, "h"):
		s, base = s[:len(s)-1], 16
	case strings.HasPrefix(s, "0b"):
		s, base = s[2:], 2
	}
	v, err := strconv.ParseUint(s, base, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid byte %q", str)
	}
	return byte(v), nil
}

// Tick advances n ticks, recording the TX level.
func (s *Shell) Tick(n int) {
	for i := 0; i < n; i++ {
		s.Harness.Tick(1)
		s.TxTrace = append(s.TxTrace, s.Harness.HW.Tx)
	}
}

// Print prints a value in JSON or plain text.
func (s *Shell) Print(c *ishell.Context, v interface{}) {
	if s.OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(fmt.Sprint(v))
}

// StatusInfo is the printable status of the harness.
type StatusInfo struct {
	Rx             string `json:"rx"`
	RxCounter      int    `json:"rx_counter"`
	Tx             string `json:"tx"`
	TxCounter      int    `json:"tx_counter"`
	Timer          bool   `json:"timer"`
	PinWatch       bool   `json:"pin_watch"`
	RxLine         bool   `json:"rx_line"`
	TxLine         bool   `json:"tx_line"`
	Ticks          int    `json:"ticks"`
	Samples        int    `json:"samples"`
	BytesSent      int    `json:"bytes_sent"`
	ArbiterErrors  int    `json:"arbiter_errors"`
	ReceivedLength int    `json:"received"`
}

// String implements fmt.Stringer.
func (i StatusInfo) String() string {
	return fmt.Sprintf("rx=%s(%d) tx=%s(%d) timer=%v watch=%v lines=%d/%d ticks=%d samples=%d sent=%d received=%d errors=%d",
		i.Rx, i.RxCounter, i.Tx, i.TxCounter, i.Timer, i.PinWatch,
		level(i.RxLine), level(i.TxLine), i.Ticks, i.Samples, i.BytesSent, i.ReceivedLength, i.ArbiterErrors)
}

func level(high bool) int {
	if high {
		return 1
	}
	return 0
}

// Status collects the status.
func (s *Shell) Status() StatusInfo {
	h := s.Harness
	st := h.Link.Status()
	return StatusInfo{
		Rx:             st.Rx.String(),
		RxCounter:      st.RxCounter,
		Tx:             st.Tx.String(),
		TxCounter:      st.TxCounter,
		Timer:          h.HW.TimerOn,
		PinWatch:       h.HW.Watching,
		RxLine:         h.HW.Rx,
		TxLine:         h.HW.Tx,
		Ticks:          h.Ticks,
		Samples:        h.HW.Samples,
		BytesSent:      h.SentCount,
		ArbiterErrors:  len(h.Errors()),
		ReceivedLength: len(h.Received),
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if len(args) > 0 {
		for _, line := range strings.Split(strings.Join(args, " "), ";") {
			if fields := strings.Fields(line); len(fields) > 0 {
				if err := s.Shell.Process(fields...); err != nil {
					log.Fatalln(err)
				}
			}
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New().Run(flag.Args()...)
}
