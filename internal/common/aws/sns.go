// internal/common/aws/sns.go
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// NewSNSClient builds the client that publishes operator alerts to a topic.
func NewSNSClient(ctx context.Context, opts ClientOptions) (*sns.Client, error) {
	cfg, err := LoadConfig(ctx, opts)
	if err != nil {
		return nil, err
	}
	return sns.NewFromConfig(cfg, func(o *sns.Options) {
		o.BaseEndpoint = opts.baseEndpoint()
	}), nil
}
