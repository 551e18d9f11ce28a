package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/facegate/internal/config"
	"github.com/kozaktomas/facegate/internal/facesearch"
)

var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Manage the Rekognition face collection",
}

var collectionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the configured face collection",
	Args:  cobra.NoArgs,
	RunE:  runCollectionCreate,
}

func init() {
	rootCmd.AddCommand(collectionCmd)
	collectionCmd.AddCommand(collectionCreateCmd)
}

func runCollectionCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Load()

	clients, err := newAWSClients(ctx, cfg)
	if err != nil {
		return err
	}

	err = clients.faces.CreateCollection(ctx)
	if errors.Is(err, facesearch.ErrCollectionExists) {
		fmt.Printf("Collection %s already exists\n", clients.faces.Collection())
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("Created collection %s\n", clients.faces.Collection())
	return nil
}
