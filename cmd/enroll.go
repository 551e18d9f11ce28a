package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/facegate/internal/config"
	"github.com/kozaktomas/facegate/internal/enrollment"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <image-or-directory>",
	Short: "Add faces to the collection",
	Long: `Index the face in an image into the Rekognition collection and record
the person's name in the identity table.

When given a directory, every image directly inside it is enrolled and the
name is taken from the file name (jane_doe.jpg becomes "jane doe").

Examples:
  facegate enroll --name "Jane Doe" jane.jpg
  facegate enroll ./staff --concurrency 8`,
	Args: cobra.ExactArgs(1),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("name", "", "Display name (single image only; default derived from file name)")
	enrollCmd.Flags().Int("concurrency", 4, "Number of parallel enrollments for directories")
}

func runEnroll(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Load()
	target := args[0]
	name := mustGetString(cmd, "name")

	info, err := os.Stat(target)
	if err != nil {
		return err
	}

	clients, err := newAWSClients(ctx, cfg)
	if err != nil {
		return err
	}
	enroller := enrollment.New(clients.faces, clients.identities, imageOptions(cfg))

	if !info.IsDir() {
		rec, err := enroller.EnrollFile(ctx, target, name)
		if err != nil {
			return fmt.Errorf("enrolling: %w", err)
		}
		fmt.Printf("Enrolled %s as face %s\n", rec.FullName, rec.RekognitionID)
		return nil
	}

	if name != "" {
		return errors.New("--name cannot be used with a directory")
	}
	return enrollDirectory(ctx, enroller, target, mustGetInt(cmd, "concurrency"))
}

func enrollDirectory(ctx context.Context, enroller *enrollment.Enroller, dir string, concurrency int) error {
	files, err := enrollment.ImageFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No images found.")
		return nil
	}
	if concurrency < 1 {
		concurrency = 1
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("Enrolling faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	var mu sync.Mutex
	var failures []error
	successCount := 0

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, file := range files {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			_, err := enroller.EnrollFile(ctx, path, "")

			mu.Lock()
			if err != nil {
				failures = append(failures, err)
			} else {
				successCount++
			}
			mu.Unlock()
			bar.Add(1)
		}(file)
	}
	wg.Wait()
	bar.Finish()

	fmt.Printf("\n\nEnrolled %d of %d images\n", successCount, len(files))
	for _, err := range failures {
		fmt.Printf("  %v\n", err)
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d images failed to enroll", len(failures))
	}
	return nil
}
