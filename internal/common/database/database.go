// internal/common/database/database.go
package database

import (
	"context"
	"fmt"
)

// Pinger is a backing service probed by the readiness endpoint.
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}

// CheckAll pings every dependency in order and reports the first failure.
func CheckAll(ctx context.Context, deps ...Pinger) error {
	for _, d := range deps {
		if err := d.Ping(ctx); err != nil {
			return fmt.Errorf("%s: %w", d.Name(), err)
		}
	}
	return nil
}
