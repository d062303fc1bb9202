// Command ltefddlfs reads a recorded LTE FDD downlink I/Q capture and
// drives scanner.Scanner over it, which decodes MIB, SIB1-SIB4 and SIB8 as
// it finds them. The scanner needs a phy.Provider and this command builds
// none (see phyProviderFor), so a run stops with a configuration error
// before any input is scanned.
//
// Grounded on the teacher's pflag-driven CLI entry points (cmd/direwolf,
// cmd/fxrec): parse flags, optionally layer a YAML config file under
// them, open the input, and drive the core loop.
package main

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/openlte/lte-fdd-dl-file-scan/internal/config"
	"github.com/openlte/lte-fdd-dl-file-scan/phy"
	"github.com/openlte/lte-fdd-dl-file-scan/scanner"
)

func main() {
	fs := pflag.NewFlagSet("ltefddlfs", pflag.ExitOnError)
	config.RegisterFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	configPath, _ := fs.GetString("config")
	cfg, err := config.Load(configPath, fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ltefddlfs:", err)
		os.Exit(1)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warn("unrecognized log level, defaulting to info", "log_level", cfg.LogLevel)
		level = log.InfoLevel
	}
	logger.SetLevel(level)

	if err := run(cfg, logger); err != nil {
		logger.Error("scan failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *log.Logger) error {
	src, err := openInput(cfg.InputPath)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer src.Close()

	provider, err := phyProviderFor(cfg)
	if err != nil {
		return err
	}

	sc := scanner.New(provider, logger)

	const chunkSamples = 30720 // one subframe's worth of I/Q pairs per read
	buf := make([]byte, chunkSamples*2)
	reader := bufio.NewReaderSize(src, 1<<20)

	for {
		n, err := io.ReadFull(reader, buf)
		if n > 0 {
			sc.Ingest(buf[:n])
			sc.Work()
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
	}

	return nil
}

// openInput opens cfg.InputPath ("-" for stdin) and, when the capture is
// WAV-wrapped, strips the RIFF header so the scanner sees a raw
// interleaved-byte I/Q stream. Grounded on the teacher's audio.go WAV
// handling for its own recorded-audio input paths.
func openInput(path string) (io.ReadCloser, error) {
	var r io.ReadCloser
	if path == "-" {
		r = io.NopCloser(os.Stdin)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		r = f
	}

	br := bufio.NewReader(r)
	header, err := br.Peek(12)
	if err == nil && bytes.Equal(header[0:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE")) {
		if err := skipWAVHeader(br); err != nil {
			r.Close()
			return nil, err
		}
	}

	return struct {
		io.Reader
		io.Closer
	}{br, r}, nil
}

// skipWAVHeader consumes RIFF/WAVE chunks up to and including the "data"
// chunk header, leaving br positioned at the start of raw sample bytes.
func skipWAVHeader(br *bufio.Reader) error {
	if _, err := io.CopyN(io.Discard, br, 12); err != nil {
		return err
	}
	for {
		var chunkID [4]byte
		var chunkSize uint32
		if _, err := io.ReadFull(br, chunkID[:]); err != nil {
			return err
		}
		if err := binary.Read(br, binary.LittleEndian, &chunkSize); err != nil {
			return err
		}
		if string(chunkID[:]) == "data" {
			return nil
		}
		if _, err := io.CopyN(io.Discard, br, int64(chunkSize)); err != nil {
			return err
		}
	}
}

// phyProviderFor looks up cfg.PHYFixture. The real DSP chain is outside
// this repository's scope and no fixture names are defined, so it always
// returns an error: an empty name reports that no provider is configured,
// any other name is reported as unknown.
func phyProviderFor(cfg config.Config) (phy.Provider, error) {
	if cfg.PHYFixture == "" {
		return nil, fmt.Errorf("no PHY provider configured: pass --phy-fixture or wire a real phy.Provider")
	}
	return nil, fmt.Errorf("unknown phy fixture %q", cfg.PHYFixture)
}
