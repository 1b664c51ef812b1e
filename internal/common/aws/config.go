// internal/common/aws/config.go
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

// ClientOptions selects where a service client talks to. Endpoint is empty in
// production and points at DynamoDB Local or LocalStack during development.
type ClientOptions struct {
	Region   string
	Endpoint string
}

// LoadConfig resolves credentials from the default chain for opts.Region.
func LoadConfig(ctx context.Context, opts ClientOptions) (aws.Config, error) {
	if opts.Region == "" {
		return aws.Config{}, fmt.Errorf("load AWS config: region is required")
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(opts.Region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	return cfg, nil
}

func (o ClientOptions) baseEndpoint() *string {
	if o.Endpoint == "" {
		return nil
	}
	return aws.String(o.Endpoint)
}
