// Copyright (c) 2025 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package document reads and writes configurations as YAML. Entities refer
// to each other by name, so names must be unique within their kind.
package document

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dforsi/qdmr/model"
)

// Document is the YAML form of a model.Config.
type Document struct {
	Settings    Settings      `yaml:"settings"`
	Boot        Boot          `yaml:"boot,omitempty"`
	Contacts    []Contact     `yaml:"contacts,omitempty"`
	GroupLists  []GroupList   `yaml:"group_lists,omitempty"`
	Channels    []Channel     `yaml:"channels,omitempty"`
	Zones       []Zone        `yaml:"zones,omitempty"`
	ScanLists   []ScanList    `yaml:"scan_lists,omitempty"`
	Positioning []Positioning `yaml:"positioning,omitempty"`
}

type Settings struct {
	Name       string `yaml:"name"`
	RadioID    uint32 `yaml:"radio_id"`
	IntroLine1 string `yaml:"intro_line1,omitempty"`
	IntroLine2 string `yaml:"intro_line2,omitempty"`
	MicLevel   uint8  `yaml:"mic_level"`
	Squelch    uint8  `yaml:"squelch"`
	VOXLevel   uint8  `yaml:"vox_level,omitempty"`
	GPSEnabled bool   `yaml:"gps,omitempty"`
}

type Boot struct {
	ShowText bool   `yaml:"show_text,omitempty"`
	Password string `yaml:"password,omitempty"`
}

type Contact struct {
	ID       string `yaml:"id,omitempty"`
	Name     string `yaml:"name"`
	Number   uint32 `yaml:"number"`
	CallType string `yaml:"type"` // group, private, all
	Ring     bool   `yaml:"ring,omitempty"`
}

type Channel struct {
	ID          string  `yaml:"id,omitempty"`
	Name        string  `yaml:"name"`
	RxFrequency float64 `yaml:"rx"`              // MHz
	TxFrequency float64 `yaml:"tx"`              // MHz
	Mode        string  `yaml:"mode"`            // analog, digital
	Power       string  `yaml:"power,omitempty"` // low, mid, high
	Bandwidth   string  `yaml:"bandwidth,omitempty"`
	RxOnly      bool    `yaml:"rx_only,omitempty"`
	ColorCode   uint8   `yaml:"color_code,omitempty"`
	TimeSlot    uint8   `yaml:"time_slot,omitempty"`
	Timeout     uint    `yaml:"timeout,omitempty"` // seconds
	RxTone      float64 `yaml:"rx_tone,omitempty"` // Hz
	TxTone      float64 `yaml:"tx_tone,omitempty"` // Hz

	Contact     string `yaml:"contact,omitempty"`
	GroupList   string `yaml:"group_list,omitempty"`
	ScanList    string `yaml:"scan_list,omitempty"`
	Positioning string `yaml:"positioning,omitempty"`
}

type Zone struct {
	ID   string   `yaml:"id,omitempty"`
	Name string   `yaml:"name"`
	A    []string `yaml:"a"`
	B    []string `yaml:"b,omitempty"`
}

type ScanList struct {
	ID       string   `yaml:"id,omitempty"`
	Name     string   `yaml:"name"`
	Priority string   `yaml:"priority,omitempty"`
	Members  []string `yaml:"members"`
}

type GroupList struct {
	ID       string   `yaml:"id,omitempty"`
	Name     string   `yaml:"name"`
	Contacts []string `yaml:"contacts"`
}

type Positioning struct {
	ID          string `yaml:"id,omitempty"`
	Name        string `yaml:"name"`
	Destination string `yaml:"destination,omitempty"`
	Revert      string `yaml:"revert,omitempty"`
	Period      uint   `yaml:"period,omitempty"` // seconds
}

// Parse decodes a YAML document into a configuration. Unknown keys are errors.
func Parse(data []byte) (*model.Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return doc.Config()
}

// Marshal encodes the configuration as YAML.
func Marshal(cfg *model.Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(FromConfig(cfg)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load reads a configuration file.
func Load(path string) (*model.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes a configuration file.
func Save(path string, cfg *model.Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
