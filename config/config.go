// MIT License
//
// Copyright (c) 2025 DaggerTech
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package config provides configuration management for the CampusLink relay
// and its clients. It handles loading settings from a JSON configuration
// file with sensible defaults applied for any missing optional parameters.
package config

import (
	"encoding/json"
	"os"
)

// Config holds the settings for both the relay and the campus client.
// Relay fields govern the listening side; the Server* fields tell a campus
// client where the relay lives.
type Config struct {
	IP            string `json:"ip"`            // Address the relay binds its TCP listener to (e.g., "0.0.0.0")
	Port          uint16 `json:"port"`          // TCP port the relay listens on (default: 5000)
	BufferSize    int    `json:"bufferSize"`    // Read buffer size; one read is one message (default: 1024)
	MaxSessions   int    `json:"maxSessions"`   // Cap on concurrent sessions, 0 for unlimited (default: 0)
	LogLevel      string `json:"logLevel"`      // Log level name (default: "info")
	ServerAddress string `json:"serverAddress"` // Relay address a campus client dials (default: "127.0.0.1")
	ServerPort    uint16 `json:"serverPort"`    // Relay port a campus client dials (default: 5000)
}

// Default returns a configuration with every field set to its default.
func Default() *Config {
	return &Config{
		IP:            "0.0.0.0",
		Port:          5000,
		BufferSize:    1024,
		LogLevel:      "info",
		ServerAddress: "127.0.0.1",
		ServerPort:    5000,
	}
}

// Load reads and parses the given JSON file into a Config struct.
// It applies default values for any missing optional parameters.
// A missing file is not an error: the defaults are returned.
//
// Returns:
//   - *Config: A fully initialized configuration with defaults applied
//   - error: nil if successful, or an error if the file is unreadable or invalid
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	var config Config
	if err := json.Unmarshal(b, &config); err != nil {
		return nil, err
	}
	if config.IP == "" {
		config.IP = "0.0.0.0"
	}
	if config.Port == 0 {
		config.Port = 5000
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 1024
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.ServerAddress == "" {
		config.ServerAddress = "127.0.0.1"
	}
	if config.ServerPort == 0 {
		config.ServerPort = 5000
	}
	return &config, nil
}

// MustLoad is like Load but panics if the configuration cannot be loaded.
// This should only be used during program initialization where an invalid
// configuration file is a fatal error.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}
	return config
}
