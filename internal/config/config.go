package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Channel struct {
	GPIO       int    `yaml:"gpio"`
	Count      int    `yaml:"count"`
	ColorOrder string `yaml:"color_order"` // e.g. "GRB", "GRBW"
	Brightness int    `yaml:"brightness"`  // 0..255
	Invert     bool   `yaml:"invert"`
}

type SPI struct {
	Dev string `yaml:"dev"` // e.g. /dev/spidev0.0
}

type Web struct {
	Addr string `yaml:"addr"` // e.g. :8080
}

type Config struct {
	Transport string `yaml:"transport"` // "pwm" | "spi" | "web" | "console"
	FreqKHz   int    `yaml:"freq_khz"`
	DMA       int    `yaml:"dma"`
	ResetUs   int    `yaml:"reset_us"`
	FPS       int    `yaml:"fps"`

	Channels []Channel `yaml:"channels"`

	SPI SPI `yaml:"spi,omitempty"`
	Web Web `yaml:"web,omitempty"`
}

// Default matches a single 30-pixel GRB strip on the common PWM pin.
func Default() *Config {
	return &Config{
		Transport: "pwm",
		FreqKHz:   800,
		DMA:       10,
		ResetUs:   300,
		FPS:       30,
		Channels: []Channel{
			{GPIO: 18, Count: 30, ColorOrder: "GRB", Brightness: 255},
		},
		SPI: SPI{Dev: ""},
		Web: Web{Addr: ":8080"},
	}
}

// Validate rejects values the driver layer would otherwise truncate.
func (c *Config) Validate() error {
	for i, ch := range c.Channels {
		if ch.Brightness < 0 || ch.Brightness > 255 {
			return fmt.Errorf("config: channel %d brightness %d out of range 0..255", i, ch.Brightness)
		}
		if ch.Count < 0 {
			return fmt.Errorf("config: channel %d count %d is negative", i, ch.Count)
		}
	}
	if c.FPS < 0 {
		return fmt.Errorf("config: fps %d is negative", c.FPS)
	}
	return nil
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
