package server

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	appconfig "github.com/dmitrijs2005/projecthub/internal/server/config"
)

var loadDefaultAWSConfig = config.LoadDefaultConfig

// newAWSConfig resolves region and credentials. Static keys are only used
// when both are configured, e.g. against a local stack; otherwise the
// default provider chain applies.
func newAWSConfig(ctx context.Context, c *appconfig.Config) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(c.AWSRegion),
	}
	if c.AWSAccessKeyID != "" && c.AWSSecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.AWSAccessKeyID,
			c.AWSSecretAccessKey,
			"",
		)))
	}
	return loadDefaultAWSConfig(ctx, opts...)
}

func newCognitoClient(cfg aws.Config, c *appconfig.Config) *cip.Client {
	return cip.NewFromConfig(cfg, func(o *cip.Options) {
		if c.AWSEndpointURL != "" {
			o.BaseEndpoint = aws.String(c.AWSEndpointURL)
		}
	})
}

func newSecretsClient(cfg aws.Config, c *appconfig.Config) *secretsmanager.Client {
	return secretsmanager.NewFromConfig(cfg, func(o *secretsmanager.Options) {
		if c.AWSEndpointURL != "" {
			o.BaseEndpoint = aws.String(c.AWSEndpointURL)
		}
	})
}
