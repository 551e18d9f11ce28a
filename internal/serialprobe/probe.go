// Package serialprobe writes a fixed message to a serial device and reads
// one line back. It is a wiring smoke test, not a protocol.
package serialprobe

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	defaults "github.com/mcuadros/go-defaults"
	"go.bug.st/serial"
)

// ErrInvalidUTF8 is returned when the device answers with bytes that are not UTF-8.
var ErrInvalidUTF8 = errors.New("response is not valid UTF-8")

// Options configures a probe. Zero fields take the tag defaults.
type Options struct {
	Device      string        `default:"COM5"`
	BaudRate    int           `default:"9600"`
	ReadTimeout time.Duration `default:"1s"`
	Payload     string        `default:"Hello, World!"`
	MaxLineLen  int           `default:"4096"`
}

// WithDefaults returns a copy of o with unset fields filled in.
func (o Options) WithDefaults() Options {
	defaults.SetDefaults(&o)
	return o
}

// Port is the part of a serial port a probe needs.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

// Opener opens a device at the given baud rate.
type Opener func(device string, baudRate int) (Port, error)

// OpenSerial opens a real serial device with 8N1 framing.
func OpenSerial(device string, baudRate int) (Port, error) {
	p, err := serial.Open(device, &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", device, err)
	}
	return p, nil
}

// Run opens the device, writes the payload, reads until a newline or until a
// read times out with no data, and returns the line with trailing whitespace
// removed. The port is always closed.
func Run(open Opener, opts Options) (line string, err error) {
	opts = opts.WithDefaults()

	port, err := open(opts.Device, opts.BaudRate)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := port.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", opts.Device, cerr)
		}
	}()

	if err := port.SetReadTimeout(opts.ReadTimeout); err != nil {
		return "", fmt.Errorf("setting read timeout: %w", err)
	}
	if _, err := port.Write([]byte(opts.Payload)); err != nil {
		return "", fmt.Errorf("writing to %s: %w", opts.Device, err)
	}

	raw, err := readLine(port, opts.MaxLineLen)
	if err != nil {
		return "", fmt.Errorf("reading from %s: %w", opts.Device, err)
	}
	if !utf8.Valid(raw) {
		return "", ErrInvalidUTF8
	}
	return strings.TrimRightFunc(string(raw), unicode.IsSpace), nil
}

// readLine reads one byte at a time so nothing after the newline is consumed.
// A read returning no data means the timeout expired.
func readLine(r io.Reader, maxLen int) ([]byte, error) {
	var line []byte
	b := make([]byte, 1)
	for len(line) < maxLen {
		n, err := r.Read(b)
		if n > 0 {
			line = append(line, b[0])
			if b[0] == '\n' {
				return line, nil
			}
		}
		if errors.Is(err, io.EOF) {
			return line, nil
		}
		if err != nil {
			return line, err
		}
		if n == 0 {
			return line, nil
		}
	}
	return line, nil
}
