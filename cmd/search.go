package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/facegate/internal/config"
	"github.com/kozaktomas/facegate/internal/imaging"
	"github.com/kozaktomas/facegate/internal/logging"
	"github.com/kozaktomas/facegate/internal/recognition"
)

var searchCmd = &cobra.Command{
	Use:   "search <image>",
	Short: "Recognize the people in a local image",
	Long: `Run the same recognition as the web form on a local image file and
print one line per recognized person.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().String("note", "", "Text appended to every recognized line")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Load()

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	image, err := imaging.FromReader(f, imageOptions(cfg))
	if err != nil {
		fmt.Println(cfg.Messages.FailedToLoad)
		return err
	}

	clients, err := newAWSClients(ctx, cfg)
	if err != nil {
		return err
	}

	log := logging.NewWriter(os.Stderr)
	recognizer := recognition.New(clients.faces, clients.identities, cfg.Messages, log)
	res := recognizer.Identify(ctx, image, recognition.Options{AccessNote: mustGetString(cmd, "note")})
	for _, line := range res.Lines {
		fmt.Println(line)
	}
	if res.SearchErr != nil {
		return fmt.Errorf("face search failed: %w", res.SearchErr)
	}
	return nil
}
