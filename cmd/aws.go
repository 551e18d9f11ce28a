package cmd

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/kozaktomas/facegate/internal/config"
	"github.com/kozaktomas/facegate/internal/facesearch"
	"github.com/kozaktomas/facegate/internal/identity"
	"github.com/kozaktomas/facegate/internal/imaging"
)

// loadAWSConfig resolves credentials through the default provider chain.
func loadAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.AWS.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWS.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS configuration: %w", err)
	}
	return awsCfg, nil
}

// awsClients bundles the service clients shared by the commands.
type awsClients struct {
	faces      *facesearch.Client
	identities *identity.Store
}

func newAWSClients(ctx context.Context, cfg *config.Config) (*awsClients, error) {
	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &awsClients{
		faces:      facesearch.NewFromConfig(awsCfg, cfg.AWS.Endpoint, cfg.FaceSearch),
		identities: identity.NewFromConfig(awsCfg, cfg.AWS.Endpoint, cfg.Identity.Table),
	}, nil
}

func imageOptions(cfg *config.Config) imaging.Options {
	return imaging.Options{
		MaxDimension: cfg.Image.MaxDimension,
		Quality:      cfg.Image.JPEGQuality,
	}
}
