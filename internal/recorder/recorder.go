// Package recorder implements the alternate entry path used on Linux to capture
// key presses while the GUI runs unprivileged. It reads evdev input_event
// records from keyboard devices and prints one line per key transition.
package recorder

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Flag selects the recorder instead of the GUI when it is the only argument.
const Flag = "--linux-recorder"

// DeviceGlob matches the keyboard event devices udev creates.
const DeviceGlob = "/dev/input/by-path/*-event-kbd"

const evKey = 0x01

const (
	keyUp     = 0
	keyDown   = 1
	keyRepeat = 2
)

// inputEvent mirrors struct input_event on 64-bit Linux.
type inputEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

// Record copies key transitions from in to out until in is exhausted, closed or ctx is done.
func Record(ctx context.Context, in io.Reader, out io.Writer) error {
	var ev inputEvent
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		if err := binary.Read(in, binary.LittleEndian, &ev); err != nil {
			if eris.Is(err, io.EOF) || eris.Is(err, io.ErrUnexpectedEOF) || eris.Is(err, os.ErrClosed) {
				return nil
			}
			return eris.Wrap(err, "failed to read input event")
		}
		if ev.Type != evKey {
			continue
		}

		var action string
		switch ev.Value {
		case keyDown:
			action = "down"
		case keyUp:
			action = "up"
		default:
			continue
		}

		if _, err := fmt.Fprintf(out, "%s %d\n", action, ev.Code); err != nil {
			return eris.Wrap(err, "failed to write key event")
		}
	}
}

// Run records every keyboard matched by DeviceGlob to stdout and returns the process exit code.
func Run(ctx context.Context, log zerolog.Logger) int {
	devices, err := filepath.Glob(DeviceGlob)
	if err != nil || len(devices) == 0 {
		log.Error().Str("glob", DeviceGlob).Msg("No keyboard devices found")
		return 1
	}

	out := &lockedWriter{w: os.Stdout}
	var wg sync.WaitGroup
	failed := make(chan error, len(devices))

	for _, path := range devices {
		f, err := os.Open(path)
		if err != nil {
			log.Error().Err(err).Str("device", path).Msg("Failed to open keyboard")
			continue
		}

		wg.Add(1)
		go func(path string, f *os.File) {
			defer wg.Done()

			log.Debug().Str("device", path).Msg("Recording")
			if err := recordDevice(ctx, f, out); err != nil {
				failed <- eris.Wrapf(err, "device %s", path)
			}
		}(path, f)
	}

	wg.Wait()
	close(failed)

	code := 0
	for err := range failed {
		log.Error().Err(err).Msg("Recorder stopped")
		code = 1
	}
	return code
}

// recordDevice records f until ctx is done. A blocked read is released by
// closing f once ctx is cancelled.
func recordDevice(ctx context.Context, f *os.File, out io.Writer) error {
	stop := context.AfterFunc(ctx, func() { f.Close() })
	defer func() {
		if stop() {
			f.Close()
		}
	}()

	return Record(ctx, f, out)
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
