package testserver

import (
	"encoding/json"
	"fmt"
	"os"
)

// Device is one entry in a devices.json inventory file.
type Device struct {
	SocketAddr string `json:"socket_addr"`
}

// Config is the shape of a devices.json integration-test inventory: a
// flat list of UDP socket addresses to run scenarios against.
type Config struct {
	MeasurementDevices []Device `json:"measurement_devices"`
}

// LoadConfig reads and parses a devices.json file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("testserver: reading %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("testserver: parsing %s: %w", path, err)
	}
	return cfg, nil
}
