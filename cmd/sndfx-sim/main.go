package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/sndfx/config"
	"github.com/lixenwraith/sndfx/driver/beepdrv"
	"github.com/lixenwraith/sndfx/engine"
	"github.com/lixenwraith/sndfx/sim"
	"github.com/lixenwraith/sndfx/source"
)

const (
	sampleRate   = 44100
	monoVoices   = 28
	stereoVoices = 4
	stepInterval = 50 * time.Millisecond
)

var (
	configFlag   = flag.String("config", "", "Path to a TOML config file; reloaded on change")
	sourcesFlag  = flag.Int("sources", 12, "Number of moving emitters")
	durationFlag = flag.Duration("duration", 0, "Stop after this long (0 runs until interrupted)")
	speakerFlag  = flag.Bool("speaker", false, "Play through the system audio device")
	headlessFlag = flag.Bool("headless", false, "Log diagnostics instead of drawing the overlay")
	logFlag      = flag.String("log", "", "Write logs to this file instead of stderr")
	seedFlag     = flag.Int64("seed", 1, "Level generation seed")
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n\x1b[31mSNDFX-SIM CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	var out io.Writer = os.Stderr
	if *logFlag != "" {
		f, err := os.OpenFile(*logFlag, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	} else if !*headlessFlag {
		// The overlay owns the terminal
		out = io.Discard
	}
	log.SetOutput(out)

	sceneCfg := sim.DefaultSceneConfig()
	sceneCfg.Emitters = *sourcesFlag
	sceneCfg.Seed = *seedFlag
	scene := sim.NewScene(sceneCfg)

	drv := beepdrv.New(sampleRate, monoVoices, stereoVoices, log.WithField("component", "beepdrv"))
	eng := engine.New(drv, scene, engine.WithConfig(cfg), engine.WithLogger(log))
	if !eng.Initialize() {
		log.WithError(eng.Err()).Warn("effects unavailable, sounds play dry")
	}

	if *configFlag != "" {
		w, err := config.Watch(*configFlag, func(c *config.Config) {
			if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
				log.SetLevel(lvl)
			}
			_ = eng.Reload(c) // logged by the engine
		}, func(err error) {
			log.WithError(err).Warn("config reload rejected")
		})
		if err != nil {
			log.WithError(err).Warn("config watch disabled")
		} else {
			defer w.Close()
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if *durationFlag > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, *durationFlag)
		defer stop()
	}

	if *speakerFlag {
		if err := drv.Start(100 * time.Millisecond); err != nil {
			log.WithError(err).Warn("speaker init failed, mixing to nowhere")
			go drv.Pump(ctx, 10*time.Millisecond)
		}
	} else {
		go drv.Pump(ctx, 10*time.Millisecond)
	}

	runner := sim.NewRunner(scene, eng, drv, log.WithField("component", "sim"))
	done := make(chan struct{})
	go func() {
		defer close(done)
		runner.Run(ctx, stepInterval)
	}()

	if *headlessFlag {
		logDiagnostics(ctx, eng, log)
	} else if err := overlay(ctx, cancel, eng); err != nil {
		log.WithError(err).Error("overlay failed")
		cancel()
	}
	<-done

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := eng.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown incomplete")
	}
	log.WithField("periods", eng.Periods()).Info("stopped")
}

func logDiagnostics(ctx context.Context, eng *engine.Engine, log logrus.FieldLogger) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			log.Info(eng.Diagnostic())
		}
	}
}

// overlay draws the diagnostic line, the source table and the metrics until q, Esc or Ctrl-C
func overlay(ctx context.Context, cancel context.CancelFunc, eng *engine.Engine) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
					cancel()
					return
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		}
	}()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		draw(screen, eng)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

var (
	styleTitle = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleHead  = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	styleRow   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleOff   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleStat  = tcell.StyleDefault.Foreground(tcell.ColorPurple)
)

func draw(screen tcell.Screen, eng *engine.Engine) {
	screen.Clear()
	_, height := screen.Size()

	y := 0
	put(screen, 0, y, styleTitle, eng.Diagnostic())
	y += 2
	put(screen, 0, y, styleHead, fmt.Sprintf("%-4s %-28s %6s %6s %6s %6s %6s", "ch", "sound", "gain", "hf", "rev0", "rev3", "air"))
	y++

	eng.Sources(func(s *source.Source) bool {
		if y >= height-8 {
			return false
		}
		name := "-"
		if snd, ok := s.Sound(); ok {
			name = snd.String()
		}
		p := s.Applied()
		style := styleRow
		if s.Disabled() {
			style = styleOff
		}
		put(screen, 0, y, style, fmt.Sprintf("%-4d %-28.28s %6.2f %6.2f %6.2f %6.2f %6.2f",
			s.ID(), name, p.Direct.Gain, p.Direct.GainHF, p.Aux[0].Gain, p.Aux[3].Gain, p.AirAbsorption))
		y++
		return true
	})

	y++
	for _, line := range eng.Registry().Lines() {
		if y >= height {
			break
		}
		put(screen, 0, y, styleStat, line)
		y++
	}
	screen.Show()
}

func put(screen tcell.Screen, x, y int, style tcell.Style, s string) {
	for _, r := range s {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}
