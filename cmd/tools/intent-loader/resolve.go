package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"messenger-responder/internal/models"
	intentstore "messenger-responder/internal/responder/intent-store"
	resolveanswer "messenger-responder/internal/responder/resolve-answer"
	"messenger-responder/pkg/intenttable"
)

var (
	entitiesJSON string
	threshold    float64
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve an answer for NLP entities against the file",
	Example: `  intent-loader resolve -f intents.yaml \
    --entities '{"Intent":[{"value":"Flowers","confidence":0.9}],"color":[{"value":"red","confidence":0.8}]}'`,
	Args: cobra.NoArgs,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&entitiesJSON, "entities", "", "message.nlp.entities as JSON")
	resolveCmd.Flags().Float64Var(&threshold, "threshold", resolveanswer.DefaultThreshold, "confidence threshold")
	_ = resolveCmd.MarkFlagRequired("entities")
}

func runResolve(cmd *cobra.Command, _ []string) error {
	records, err := intenttable.LoadRecords(tableFile)
	if err != nil {
		return err
	}

	var entities models.Entities
	if err := json.Unmarshal([]byte(entitiesJSON), &entities); err != nil {
		return fmt.Errorf("parse --entities: %w", err)
	}

	cfg := resolveanswer.DefaultConfig()
	cfg.Threshold = threshold
	resolver := resolveanswer.NewResolver(intentstore.NewMemoryStore(records), cfg, newLogger())

	res, err := resolver.Resolve(cmd.Context(), entities)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func sortedNames(records map[string]*models.IntentRecord) []string {
	names := make([]string, 0, len(records))
	for name := range records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
