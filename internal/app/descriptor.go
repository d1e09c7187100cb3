// Package app loads application bundles: the descriptor, the archive, and
// the vendor profile selection.
package app

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Vendor selects the execution track for an application.
type Vendor string

// Supported vendor profiles.
const (
	VendorKtf Vendor = "ktf" // native ARM client under the emulator
	VendorJvm Vendor = "jvm" // managed bytecode track
)

// Descriptor is the per-app configuration read from app.yaml in the app
// directory.
type Descriptor struct {
	ID        string `yaml:"id"`
	Vendor    Vendor `yaml:"vendor"`
	MainClass string `yaml:"main_class"`
	Binary    string `yaml:"binary"`
	Archive   string `yaml:"archive"`
	Width     uint32 `yaml:"width"`
	Height    uint32 `yaml:"height"`
}

// DefaultDescriptorName is the descriptor filename inside an app directory.
const DefaultDescriptorName = "app.yaml"

// LoadDescriptor reads and validates the descriptor in dir.
func LoadDescriptor(dir string) (*Descriptor, error) {
	data, err := os.ReadFile(filepath.Join(dir, DefaultDescriptorName))
	if err != nil {
		return nil, fmt.Errorf("read descriptor: %w", err)
	}

	var desc Descriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("parse descriptor: %w", err)
	}

	if desc.ID == "" {
		return nil, fmt.Errorf("descriptor has no app id")
	}
	switch desc.Vendor {
	case VendorKtf, VendorJvm:
	case "":
		desc.Vendor = VendorKtf
	default:
		return nil, fmt.Errorf("unknown vendor profile %q", desc.Vendor)
	}
	if desc.Width == 0 {
		desc.Width = 240
	}
	if desc.Height == 0 {
		desc.Height = 320
	}

	return &desc, nil
}

// ReadArchive loads the app's ZIP archive, if the descriptor names one.
func (d *Descriptor) ReadArchive(dir string) ([]byte, error) {
	if d.Archive == "" {
		return nil, nil
	}
	data, err := os.ReadFile(filepath.Join(dir, d.Archive))
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	return data, nil
}

// ReadBinary loads the client binary for the native track.
func (d *Descriptor) ReadBinary(dir string) ([]byte, error) {
	if d.Binary == "" {
		return nil, fmt.Errorf("descriptor has no client binary")
	}
	data, err := os.ReadFile(filepath.Join(dir, d.Binary))
	if err != nil {
		return nil, fmt.Errorf("read client binary: %w", err)
	}
	return data, nil
}
