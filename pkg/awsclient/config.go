package awsclient

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/rs/zerolog/log"
)

// DefaultProfile is the shared config profile used when none is given on
// the command line. Passing it leaves profile resolution entirely to the
// SDK's default credential chain.
const DefaultProfile = "default"

// NewConfig loads AWS configuration for the given shared config profile
// and region. Region and profile resolution otherwise follow the SDK's
// default chain (env vars, shared config, instance metadata).
func NewConfig(ctx context.Context, profile, region string) (aws.Config, error) {
	var optFns []func(*config.LoadOptions) error
	if region != "" {
		optFns = append(optFns, config.WithRegion(region))
	}
	if profile != "" && profile != DefaultProfile {
		optFns = append(optFns, config.WithSharedConfigProfile(profile))
	}
	return config.LoadDefaultConfig(ctx, optFns...)
}

// HasValidCredentials returns true if the AWS config has valid credentials.
func HasValidCredentials(cfg aws.Config) bool {
	credentials, err := cfg.Credentials.Retrieve(context.Background())
	if err != nil {
		log.Debug().Err(err).Msg("Failed to check if we have valid AWS credentials")
		return false
	}
	return credentials.HasKeys()
}
