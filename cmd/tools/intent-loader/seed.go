package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	awsclient "messenger-responder/internal/common/aws"
	"messenger-responder/internal/common/config"
	"messenger-responder/internal/models"
	intentstore "messenger-responder/internal/responder/intent-store"
	"messenger-responder/pkg/intenttable"
)

var seedOpts struct {
	backend      string
	table        string
	partitionKey string
	region       string
	endpoint     string
	dsn          string
	redisAddr    string
	cachePrefix  string
	timeout      time.Duration
	dryRun       bool
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write every intent in the file to the intent store",
	Long: `seed validates the file, then upserts each intent into DynamoDB (PutItem)
or PostgreSQL (intent_answers). With --redis-addr the cached copies are dropped.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	f := seedCmd.Flags()
	f.StringVar(&seedOpts.backend, "backend", config.BackendDynamoDB, "store backend: dynamodb or postgres")
	f.StringVar(&seedOpts.table, "table", "IntentTable", "DynamoDB table name")
	f.StringVar(&seedOpts.partitionKey, "partition-key", "Intent", "DynamoDB partition key attribute")
	f.StringVar(&seedOpts.region, "region", "us-east-1", "AWS region")
	f.StringVar(&seedOpts.endpoint, "endpoint", "", "DynamoDB endpoint override, e.g. http://localhost:8000")
	f.StringVar(&seedOpts.dsn, "dsn", "", "PostgreSQL connection string")
	f.StringVar(&seedOpts.redisAddr, "redis-addr", "", "invalidate cached records on this Redis")
	f.StringVar(&seedOpts.cachePrefix, "cache-prefix", "intent:", "cache key prefix")
	f.DurationVar(&seedOpts.timeout, "timeout", 2*time.Minute, "overall timeout")
	f.BoolVar(&seedOpts.dryRun, "dry-run", false, "validate and print without writing")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	records, err := intenttable.LoadRecords(tableFile)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if seedOpts.dryRun {
		fmt.Fprintf(out, "dry run: %d intents would be written to %s\n", len(records), seedOpts.backend)
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), seedOpts.timeout)
	defer cancel()

	log := newLogger()

	var writer intentstore.IntentWriter
	switch seedOpts.backend {
	case config.BackendDynamoDB:
		client, err := awsclient.NewDynamoDBClient(ctx, awsclient.ClientOptions{
			Region:   seedOpts.region,
			Endpoint: seedOpts.endpoint,
		})
		if err != nil {
			return err
		}
		writer = intentstore.NewDynamoDBStore(client, seedOpts.table, seedOpts.partitionKey, log)
	case config.BackendPostgres:
		if seedOpts.dsn == "" {
			return fmt.Errorf("--dsn is required for the postgres backend")
		}
		db, err := sql.Open("postgres", seedOpts.dsn)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer db.Close()
		writer = intentstore.NewPostgresStore(db, log)
	default:
		return fmt.Errorf("unsupported backend %q", seedOpts.backend)
	}

	var cache cacheInvalidator
	if seedOpts.redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: seedOpts.redisAddr})
		defer rdb.Close()
		cache = intentstore.NewCachedStore(nil, rdb, 0, seedOpts.cachePrefix, log)
	}

	if err := seedRecords(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), writer, cache, records); err != nil {
		return err
	}
	fmt.Fprintf(out, "done: %d intents written to %s\n", len(records), seedOpts.backend)
	return nil
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, intent string) error
}

// seedRecords writes records in name order and stops at the first write error.
// A failed invalidation only warns: the cached copy expires on its own.
func seedRecords(ctx context.Context, out, errOut io.Writer, writer intentstore.IntentWriter, cache cacheInvalidator, records map[string]*models.IntentRecord) error {
	for _, name := range sortedNames(records) {
		if err := writer.PutIntent(ctx, records[name]); err != nil {
			return fmt.Errorf("seed %s: %w", name, err)
		}
		if cache != nil {
			if err := cache.Invalidate(ctx, name); err != nil {
				fmt.Fprintf(errOut, "warning: could not invalidate %s: %v\n", name, err)
			}
		}
		fmt.Fprintf(out, "seeded %s\n", name)
	}
	return nil
}
