package bridge

import (
	"flag"
	"fmt"
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// Config provides options to bridge a UART to remote peers.
// At most one transport is used per side: MQTT, websocket or a
// serial device.
type Config struct {
	// Name identifies the UART, used as MQTT topic prefix.
	Name string
	// Codec is the packet codec name, "raw" or "proto".
	Codec string

	// MQTTBrokerURL specifies the MQTT broker to use.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
	// WebsocketURL specifies the websocket server to dial.
	WebsocketURL string
	// SerialDevice specifies a host serial device.
	SerialDevice string
	// SerialBaud is the baud rate of SerialDevice.
	SerialBaud int
}

var defaultConfig = Config{
	Codec:      "proto",
	SerialBaud: 115200,
}

func init() {
	if val := os.Getenv("SOFTUART_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	defaultConfig.Name = MachineName()
}

// MachineName derives a stable name from the machine id.
func MachineName() string {
	id, err := machineid.ProtectedID("softuart")
	if err != nil {
		glog.Warningf("machine id unavailable: %v", err)
		return "softuart"
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return "uart-" + id
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Name, "name", defaultConfig.Name, "UART name, used in MQTT topics.")
	flag.StringVar(&defaultConfig.Codec, "codec", defaultConfig.Codec, "Packet codec for MQTT/websocket: raw, proto.")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL.")
	flag.StringVar(&defaultConfig.WebsocketURL, "ws", defaultConfig.WebsocketURL, "Websocket server URL.")
	flag.StringVar(&defaultConfig.SerialDevice, "serial", defaultConfig.SerialDevice, "Host serial device.")
	flag.IntVar(&defaultConfig.SerialBaud, "baud", defaultConfig.SerialBaud, "Baud rate of host serial device.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Validate checks the config.
func (c *Config) Validate() error {
	var n int
	for _, s := range []string{c.MQTTBrokerURL, c.WebsocketURL, c.SerialDevice} {
		if s != "" {
			n++
		}
	}
	if n > 1 {
		return fmt.Errorf("only one of MQTT, websocket or serial transport can be used")
	}
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if _, err := CodecByName(c.Codec); err != nil {
		return err
	}
	return nil
}

// HasTransport indicates a transport is configured.
func (c *Config) HasTransport() bool {
	return c.MQTTBrokerURL != "" || c.WebsocketURL != "" || c.SerialDevice != ""
}
