package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"

	ws281x "github.com/coreman2200/funtimes-ws281x"
	"github.com/coreman2200/funtimes-ws281x/internal/config"
	"github.com/coreman2200/funtimes-ws281x/internal/preview"
	"github.com/coreman2200/funtimes-ws281x/internal/spiout"
)

func main() {
	// ---- Flags (remain usable; config.yaml can override most) ----
	var (
		transport  = flag.String("transport", "", "transport: pwm | spi | web | console (overrides config)")
		gpio       = flag.Int("gpio", 18, "PWM data pin (BCM number)")
		count      = flag.Int("count", 30, "number of pixels")
		colorOrder = flag.String("color", "GRB", "LED color order (e.g. GRB, GRBW)")
		brightness = flag.Int("brightness", 255, "global brightness 0..255")
		invert     = flag.Bool("invert", false, "invert the data signal (external level inverter)")
		dma        = flag.Int("dma", 10, "DMA channel")
		fps        = flag.Int("fps", 30, "target frames per second")
		addr       = flag.String("addr", ":8080", "web preview listen address")
		spiDev     = flag.String("spi-dev", "", "SPI port name (empty for default)")
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Load config.yaml (optional) ----
	cfg := config.Default()
	if c, err := config.Load(*configPath); err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
		cfg.Channels[0] = config.Channel{
			GPIO: *gpio, Count: *count, ColorOrder: *colorOrder,
			Brightness: *brightness, Invert: *invert,
		}
		cfg.DMA = *dma
		cfg.FPS = *fps
		cfg.Web.Addr = *addr
		cfg.SPI.Dev = *spiDev
	} else {
		cfg = c
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("bad configuration")
	}

	selected := cfg.Transport
	if *transport != "" {
		selected = *transport
	}

	// ---- Build driver options ----
	opts := ws281x.Options{
		DMAChannel: cfg.DMA,
		ResetTime:  time.Duration(cfg.ResetUs) * time.Microsecond,
	}
	if cfg.FreqKHz > 0 {
		opts.Frequency = physic.Frequency(cfg.FreqKHz) * physic.KiloHertz
	}
	for _, ch := range cfg.Channels {
		st, err := ws281x.ParseStripType(ch.ColorOrder)
		if err != nil {
			log.Fatal().Err(err).Str("order", ch.ColorOrder).Msg("bad color order")
		}
		cc := ws281x.NewChannelConfig(ch.GPIO, ch.Count)
		cc.StripType = st
		cc.Invert = ch.Invert
		cc.Brightness = uint8(ch.Brightness)
		opts.Channels = append(opts.Channels, cc)
	}

	var dopts []ws281x.Option
	switch selected {
	case "pwm":
		// default transport
	case "spi":
		dopts = append(dopts, ws281x.WithTransport(spiout.New(cfg.SPI.Dev)))
	case "web":
		dopts = append(dopts, ws281x.WithTransport(preview.NewWeb(cfg.Web.Addr)))
	case "console":
		dopts = append(dopts, ws281x.WithTransport(preview.NewConsole()))
	default:
		log.Fatal().Str("transport", selected).Msg("unknown transport")
	}

	drv, err := ws281x.New(opts, dopts...)
	if err != nil {
		log.Fatal().Err(err).Msg("driver setup failed")
	}
	if err := drv.Init(); err != nil {
		log.Fatal().Err(err).Msg("driver init failed")
	}
	log.Info().
		Str("transport", selected).
		Int("channels", len(cfg.Channels)).
		Int("fps", cfg.FPS).
		Msg("ledstrip running")

	// ---- Animation loop & graceful shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	tick := time.NewTicker(time.Second / time.Duration(cfg.FPS))
	defer tick.Stop()

	pos := 0
	for {
		select {
		case s := <-sig:
			log.Info().Str("signal", s.String()).Msg("shutting down")
			if err := drv.Clear(); err != nil {
				log.Warn().Err(err).Msg("clear failed")
			}
			drv.Fini()
			return
		case <-tick.C:
			for i := 0; i < drv.Channels(); i++ {
				buf := drv.Buffer(i)
				for j := 0; j < buf.Len(); j++ {
					_ = buf.Set(j, colorWheel(uint8(pos+j*256/buf.Len()+i*85)))
				}
			}
			if err := drv.Render(); err != nil {
				log.Error().Err(err).Msg("render failed")
			}
			pos = (pos + 2) % 256
		}
	}
}

// colorWheel maps 0..255 onto a rainbow.
func colorWheel(p uint8) ws281x.Pixel {
	switch {
	case p < 85:
		return ws281x.Color(255-p*3, p*3, 0)
	case p < 170:
		p -= 85
		return ws281x.Color(0, 255-p*3, p*3)
	default:
		p -= 170
		return ws281x.Color(p*3, 0, 255-p*3)
	}
}
