package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "facegate",
	Short: "Face recognition gate backed by AWS Rekognition",
	Long: `Facegate recognizes people in uploaded or camera-captured photos by
searching an AWS Rekognition face collection and resolving the matched
faces to names stored in DynamoDB. It also enrolls new faces and can
probe a serial device attached to the gate.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
