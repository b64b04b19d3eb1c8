package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := "transport: web\nchannels:\n  - gpio: 12\n    count: 144\n    color_order: GRBW\n"
	if err := os.WriteFile(path, []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Transport != "web" {
		t.Fatalf("transport = %q", c.Transport)
	}
	if len(c.Channels) != 1 || c.Channels[0].Count != 144 || c.Channels[0].ColorOrder != "GRBW" {
		t.Fatalf("channels = %+v", c.Channels)
	}
	// Fields the file omits keep their defaults.
	if c.DMA != 10 || c.FreqKHz != 800 {
		t.Fatalf("defaults lost: dma=%d freq=%d", c.DMA, c.FreqKHz)
	}
}

func TestSaveRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	c := Default()
	c.Transport = "spi"
	c.SPI.Dev = "/dev/spidev0.0"
	if err := Save(path, c); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Transport != "spi" || got.SPI.Dev != "/dev/spidev0.0" {
		t.Fatalf("round trip lost fields: %+v", got)
	}
}

func TestLoadRejectsOutOfRangeBrightness(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := "channels:\n  - gpio: 18\n    count: 10\n    brightness: 300\n"
	if err := os.WriteFile(path, []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("brightness 300 accepted")
	}
}

func TestValidate(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults rejected: %v", err)
	}
	c.Channels[0].Brightness = -1
	if err := c.Validate(); err == nil {
		t.Fatal("negative brightness accepted")
	}
	c.Channels[0].Brightness = 255
	c.Channels[0].Count = -5
	if err := c.Validate(); err == nil {
		t.Fatal("negative count accepted")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("missing file accepted")
	}
}
