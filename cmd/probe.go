package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/facegate/internal/config"
	"github.com/kozaktomas/facegate/internal/serialprobe"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Send a greeting to the serial device and print its reply",
	Long: `Open the gate's serial device, write a greeting, read one line of
reply and print it with trailing whitespace removed. An empty line is
printed when the device does not answer within the read timeout.

Examples:
  facegate probe
  facegate probe --device /dev/ttyUSB0 --baud 115200`,
	Args: cobra.NoArgs,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)

	probeCmd.Flags().String("device", "", "Serial device (default from SERIAL_DEVICE or COM5)")
	probeCmd.Flags().Int("baud", 0, "Baud rate (default from SERIAL_BAUD_RATE or 9600)")
	probeCmd.Flags().Duration("timeout", 0, "Read timeout (default 1s)")
	probeCmd.Flags().String("payload", "", "Bytes to write (default \"Hello, World!\")")
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	opts := serialprobe.Options{
		Device:      cfg.Serial.Device,
		BaudRate:    cfg.Serial.BaudRate,
		ReadTimeout: mustGetDuration(cmd, "timeout"),
		Payload:     mustGetString(cmd, "payload"),
	}
	if device := mustGetString(cmd, "device"); device != "" {
		opts.Device = device
	}
	if baud := mustGetInt(cmd, "baud"); baud > 0 {
		opts.BaudRate = baud
	}

	line, err := serialprobe.Run(serialprobe.OpenSerial, opts)
	if err != nil {
		return fmt.Errorf("probing %s: %w", opts.WithDefaults().Device, err)
	}
	fmt.Println(line)
	return nil
}
