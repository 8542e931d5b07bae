package stream

import (
	"fmt"

	"go.bug.st/serial"
)

// OpenSerial opens a serial device in 8N1 mode.
func OpenSerial(device string, baudRate int) (serial.Port, error) {
	port, err := serial.Open(device, &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %v", device, err)
	}
	return port, nil
}

// ListSerial lists serial devices on the host.
func ListSerial() ([]string, error) {
	return serial.GetPortsList()
}
