// internal/common/aws/dynamodb.go
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// NewDynamoDBClient builds the client behind the dynamodb intent store and the
// intent-loader seed command.
func NewDynamoDBClient(ctx context.Context, opts ClientOptions) (*dynamodb.Client, error) {
	cfg, err := LoadConfig(ctx, opts)
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = opts.baseEndpoint()
	}), nil
}
