package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/go-musicfox/wasapi2"
	"github.com/go-musicfox/wasapi2/internal/wasapi2/waveformat"
)

// Version is the demo binary's version string.
var Version = "0.1.0"

func main() {
	var (
		device          = pflag.StringP("device", "d", "", "endpoint id; empty selects the system default")
		exclusive       = pflag.Bool("exclusive", false, "request exclusive-mode access")
		loopback        = pflag.Bool("loopback", false, "capture the render endpoint's mixed output instead of recording")
		lowLatency      = pflag.Bool("low-latency", false, "prefer IAudioClient3's minimum shared-stream period")
		volume          = pflag.Float32("volume", 1.0, "linear output gain in [0, 1]")
		continueOnError = pflag.Bool("continue-on-error", false, "degrade device failures to a fallback clock instead of exiting")
		rate            = pflag.Uint32("rate", 48000, "sample rate in Hz")
		channels        = pflag.Uint16P("channels", "c", 2, "channel count")
		durationSec     = pflag.Float64("seconds", 2, "tone duration / capture duration in seconds")
		list            = pflag.Bool("list", false, "list active endpoints and exit")
		source          = pflag.Bool("source", false, "open a capture stream instead of a render stream")
		version         = pflag.BoolP("version", "v", false, "print version and exit")
		help            = pflag.BoolP("help", "h", false, "print usage and exit")
	)
	pflag.Parse()

	if *version {
		fmt.Printf("wasapi2-demo v%s\n", Version)
		return
	}
	if *help {
		printUsage()
		return
	}

	log := slog.Default()

	if *list {
		if err := listEndpoints(log); err != nil {
			fmt.Fprintln(os.Stderr, "list:", err)
			os.Exit(1)
		}
		return
	}

	props := wasapi2.Properties{
		Device:          *device,
		Exclusive:       *exclusive,
		Loopback:        *loopback,
		LowLatency:      *lowLatency,
		Volume:          *volume,
		ContinueOnError: *continueOnError,
	}

	class := wasapi2.ClassSink
	if *source || *loopback {
		class = wasapi2.ClassSource
	}

	el := wasapi2.New(log, class, props)
	defer el.Shutdown()

	el.OnInvalidated(func(err error) {
		log.Warn("stream invalidated", "error", err)
	})

	if err := el.Open(); err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer el.Close()

	format := wasapi2.Format{
		Tag:           waveformat.TagPCM,
		Channels:      *channels,
		SampleRate:    *rate,
		BitsPerSample: 16,
		ValidBits:     16,
	}
	caps, err := el.Acquire(wasapi2.AcquireSpec{Format: format})
	if err != nil {
		fmt.Fprintln(os.Stderr, "acquire:", err)
		os.Exit(1)
	}
	defer el.Release()
	log.Info("acquired", "segment_size", caps.SegmentSize, "seg_total", caps.SegTotal, "format", caps.Format.String())

	if err := el.Start(); err != nil {
		fmt.Fprintln(os.Stderr, "start:", err)
		os.Exit(1)
	}
	defer el.Stop()

	if err := el.SetVolume(*volume, false); err != nil {
		log.Warn("set volume failed", "error", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		if class == wasapi2.ClassSink {
			writeTone(el, format, *durationSec)
		} else {
			readSilence(el, format, *durationSec)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-sigCh:
		log.Info("interrupted")
	}
}

func writeTone(el *wasapi2.Element, format wasapi2.Format, seconds float64) {
	const freq = 440.0
	blockAlign := int(format.BlockAlign())
	total := int(float64(format.SampleRate) * seconds)
	buf := make([]byte, blockAlign*256)

	written := 0
	for written < total {
		frames := len(buf) / blockAlign
		for i := 0; i < frames; i++ {
			t := float64(written+i) / float64(format.SampleRate)
			sample := int16(0.3 * math.MaxInt16 * math.Sin(2*math.Pi*freq*t))
			for ch := 0; ch < int(format.Channels); ch++ {
				off := i*blockAlign + ch*2
				buf[off] = byte(sample)
				buf[off+1] = byte(sample >> 8)
			}
		}
		n := el.Write(buf)
		if n == 0 {
			time.Sleep(time.Millisecond)
			continue
		}
		written += n / blockAlign
	}
}

func readSilence(el *wasapi2.Element, format wasapi2.Format, seconds float64) {
	blockAlign := int(format.BlockAlign())
	total := int(float64(format.SampleRate)*seconds) * blockAlign
	buf := make([]byte, 4096)
	read := 0
	for read < total {
		n := el.Read(buf)
		if n == 0 {
			time.Sleep(time.Millisecond)
			continue
		}
		read += n
	}
}

func listEndpoints(log *slog.Logger) error {
	el := wasapi2.New(log, wasapi2.ClassSource, wasapi2.Properties{})
	defer el.Shutdown()
	devices, err := el.ListDevices()
	if err != nil {
		return err
	}
	for _, d := range devices {
		def := ""
		if d.IsDefault {
			def = " (default)"
		}
		loop := ""
		if d.Loopback {
			loop = " [loopback]"
		}
		fmt.Printf("%-10s %-40s %s%s%s\n", d.Class, d.FriendlyName, d.ID, def, loop)
	}
	return nil
}

func printUsage() {
	fmt.Println("wasapi2-demo - exercise the WASAPI2 ring-buffer core from the command line")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  wasapi2-demo [flags]")
	fmt.Println()
	fmt.Println("Flags:")
	pflag.PrintDefaults()
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  wasapi2-demo --list")
	fmt.Println("  wasapi2-demo --seconds 3 --volume 0.5")
	fmt.Println("  wasapi2-demo --source --device <id>")
	fmt.Println("  wasapi2-demo --loopback --seconds 5")
}
