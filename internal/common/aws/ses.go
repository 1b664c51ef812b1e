// internal/common/aws/ses.go
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ses"
)

// NewSESClient builds the client used for operator alert emails.
func NewSESClient(ctx context.Context, opts ClientOptions) (*ses.Client, error) {
	cfg, err := LoadConfig(ctx, opts)
	if err != nil {
		return nil, err
	}
	return ses.NewFromConfig(cfg, func(o *ses.Options) {
		o.BaseEndpoint = opts.baseEndpoint()
	}), nil
}
