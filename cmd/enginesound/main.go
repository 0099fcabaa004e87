// Command enginesound drives the engine synthesizer from the command
// line: load a config, optionally play it live, or render it headlessly
// to a WAV file (spec §6).
package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/DasEtwas/enginesound/internal/config"
	"github.com/DasEtwas/enginesound/internal/device"
	"github.com/DasEtwas/enginesound/internal/engine"
	"github.com/DasEtwas/enginesound/internal/render"
	"github.com/DasEtwas/enginesound/internal/synth"
)

// Exit codes, per spec §6.
const (
	exitConfigBadPath    = 1
	exitConfigParse      = 2
	exitHeadlessNoConfig = 3
	exitCrossfadeTooLong = 4
	exitAudioDevice      = 5
	exitRecorder         = 6
)

var logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "enginesound"})

func main() {
	var (
		configPath = pflag.String("config", "", "load engine config from PATH")
		volume     = pflag.Float32("volume", 0.1, "master volume")
		rpm        = pflag.Float32("rpm", 0, "initial RPM (0 = config default)")
		sampleRate = pflag.Int("samplerate", 48000, "sample rate in Hz")
		headless   = pflag.Bool("headless", false, "render offline to a WAV file instead of opening an audio device")
		warmupTime = pflag.Float64("warmup_time", 3.0, "headless: seconds to generate and discard before recording")
		length     = pflag.Float64("length", 5.0, "headless: seconds of audio to render")
		output     = pflag.String("output", "output.wav", "headless: output WAV path")
		crossfade  = pflag.Float64("crossfade", 0.00133, "headless: seamless-loop crossfade duration in seconds, 0 to disable")
	)
	pflag.Parse()

	if *headless && *configPath == "" {
		logger.Error("--headless requires --config")
		os.Exit(exitHeadlessNoConfig)
	}

	if crossfadeTooLong(*crossfade, *length) {
		logger.Error("crossfade must be shorter than recording length", "crossfade", *crossfade, "length", *length)
		os.Exit(exitCrossfadeTooLong)
	}

	e := loadEngine(*configPath, *sampleRate)
	if *rpm > 0 {
		e.RPM = *rpm
	}

	g := synth.New(e, *sampleRate)
	g.Volume = *volume
	g.IntakeVolume = 1
	g.ExhaustVolume = 1
	g.EngineVibrationsVolume = 1

	if *headless {
		runHeadless(g, *sampleRate, *warmupTime, *length, *crossfade, *output)
		return
	}

	runLive(g, *sampleRate)
}

// crossfadeTooLong reports spec §6's exit-4 condition: a positive
// crossfade that is not strictly shorter than the recording length.
func crossfadeTooLong(crossfade, length float64) bool {
	return crossfade > 0 && crossfade >= length
}

// loadEngine loads configPath if given, or falls back to a small
// built-in default engine. Bad paths and parse errors are distinguished
// so the process can exit with the codes spec §6 assigns to each.
func loadEngine(configPath string, sampleRate int) *engine.Engine {
	if configPath == "" {
		logger.Info("no --config given, using built-in default engine")
		return config.Default(sampleRate)
	}

	if _, err := os.Stat(configPath); err != nil {
		logger.Error("cannot open config", "path", configPath, "err", err)
		os.Exit(exitConfigBadPath)
	}

	e, err := config.Load(configPath, sampleRate)
	if err != nil {
		logger.Error("cannot parse config", "path", configPath, "err", err)
		os.Exit(exitConfigParse)
	}
	return e
}

// runHeadless implements spec §4.9 end to end: warm up, record,
// crossfade, write WAV.
func runHeadless(g *synth.Generator, sampleRate int, warmupTime, length, crossfade float64, output string) {
	logger.Info("rendering headless", "warmup", warmupTime, "length", length, "crossfade", crossfade, "output", output)

	samples := render.Generate(g, sampleRate, render.Params{
		WarmupSeconds:    warmupTime,
		RecordSeconds:    length,
		CrossfadeSeconds: crossfade,
	})

	if err := render.WriteWAV(samples, output, sampleRate); err != nil {
		logger.Error("cannot write output WAV", "path", output, "err", err)
		os.Exit(exitRecorder)
	}

	logger.Info("wrote WAV", "path", output, "samples", len(samples))
}

// runLive opens the default audio backend and streams the generator into
// it until interrupted, printing the waveguides_dampened warning to
// stderr whenever it toggles (spec §9: there is no GUI in scope to show
// the warning light).
func runLive(g *synth.Generator, sampleRate int) {
	ch := make(chan []float32, device.ChannelCapacity)

	out, err := device.NewOto(sampleRate, ch)
	if err != nil {
		logger.Error("cannot open audio device", "err", err)
		os.Exit(exitAudioDevice)
	}
	defer out.Close()

	if err := out.Start(); err != nil {
		logger.Error("cannot start audio device", "err", err)
		os.Exit(exitAudioDevice)
	}

	highlight := term.IsTerminal(int(os.Stdout.Fd()))
	wasDampened := false

	for {
		buf := make([]float32, device.GeneratorBufferSize)
		g.Generate(buf)
		ch <- buf

		dampened, _ := g.Snapshot()
		if dampened != wasDampened {
			wasDampened = dampened
			warnDampened(dampened, highlight)
		}
	}
}

func warnDampened(dampened, highlight bool) {
	if !dampened {
		logger.Info("waveguides_dampened cleared")
		return
	}
	if highlight {
		logger.Warn("\x1b[31mwaveguides_dampened\x1b[0m: a waveguide is clipping, consider lowering reflectivities or resetting")
	} else {
		logger.Warn("waveguides_dampened: a waveguide is clipping, consider lowering reflectivities or resetting")
	}
}

