// Command legalcore is the thin CLI wiring layer around the document-
// structuring core: it reads a JSON envelope of one or more documents
// (canonical text plus a document descriptor) from a file or stdin,
// runs each through internal/bridge's parse -> materialize -> cite ->
// classify pipeline, and writes the resulting chunk parts as JSON to
// stdout.
//
// Input envelope:
//
//	{
//	  "documents": [
//	    {
//	      "document_id": "LEI-14133-2021",
//	      "document_type": "LEI",
//	      "number": "14133",
//	      "year": "2021",
//	      "version": "1",
//	      "text": "raw extracted text ..."
//	    }
//	  ]
//	}
//
// Output is a JSON array of per-document results, each either a list of
// chunk parts and the document's canonical hash, or an error record
// carrying the failing stage's Reason. It has no network listener, no
// authentication, and no persistence layer -- it exists to exercise and
// inspect the core end-to-end, the way document-chunker and
// legal-gateway exist as thin entrypoints around their own pipelines.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"legalcore/internal/bridge"
	"legalcore/internal/coreerr"
	"legalcore/internal/spanmodel"
	"legalcore/internal/xjson"
)

var fastjson = jsoniter.ConfigCompatibleWithStandardLibrary

// Config is populated from the environment with getEnv/getBoolEnv,
// mirroring go-enhanced-rag-service/main.go and legal-gateway/main.go.
// The core packages themselves never read the environment (spec §9:
// "pass configuration structs explicitly") -- only this Config does,
// threading its fields down as constructor/function arguments.
type Config struct {
	InputPath     string
	OutputPath    string
	MaxTextChars  int
	OverlapChars  int
	SchemaVersion string
	StrictMode    bool
	Workers       int
}

func loadConfig() Config {
	return Config{
		InputPath:     getEnv("LEGALCORE_INPUT", "-"),
		OutputPath:    getEnv("LEGALCORE_OUTPUT", "-"),
		MaxTextChars:  getIntEnv("LEGALCORE_MAX_TEXT_CHARS", 8000),
		OverlapChars:  getIntEnv("LEGALCORE_OVERLAP_CHARS", 200),
		SchemaVersion: getEnv("LEGALCORE_SCHEMA_VERSION", "1"),
		StrictMode:    getBoolEnv("LEGALCORE_STRICT_MODE", true),
		Workers:       getIntEnv("LEGALCORE_WORKERS", 4),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

// documentInput is one entry of the input envelope's "documents" array.
type documentInput struct {
	DocumentID   string `json:"document_id"`
	DocumentType string `json:"document_type"`
	Number       string `json:"number"`
	Year         string `json:"year"`
	Version      string `json:"version"`
	Text         string `json:"text"`
}

type inputEnvelope struct {
	Documents []documentInput `json:"documents"`
}

// documentOutput is one entry of the result array: either a materialized
// document's chunk parts, or the Reason/detail of whichever stage
// rejected it.
type documentOutput struct {
	DocumentID    string                 `json:"document_id"`
	CanonicalHash string                 `json:"canonical_hash,omitempty"`
	ChunkParts    []*spanmodel.ChunkPart `json:"chunk_parts,omitempty"`
	Error         *errorOutput           `json:"error,omitempty"`
}

type errorOutput struct {
	Reason string `json:"reason"`
	Detail string `json:"detail"`
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := loadConfig()
	runID := uuid.New().String()
	logger.Info("legalcore run starting", zap.String("ingest_run_id", runID), zap.Int("workers", cfg.Workers))

	if err := run(context.Background(), cfg, runID, logger); err != nil {
		logger.Error("legalcore run failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, runID string, logger *zap.Logger) error {
	raw, err := readInput(cfg.InputPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	var envelope inputEnvelope
	if err := fastjson.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decoding input envelope: %w", err)
	}

	results := processBatch(envelope.Documents, cfg, runID, logger)

	return writeOutput(cfg.OutputPath, results)
}

// processBatch runs the documents over a bounded pool of cfg.Workers
// goroutines, each document handled by exactly one of them (spec §5:
// "independent instances of the pipeline on isolated inputs" -- no shared
// mutable state between them), preserving input order in the result slice.
func processBatch(docs []documentInput, cfg Config, runID string, logger *zap.Logger) []documentOutput {
	results := make([]documentOutput, len(docs))

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(docs) {
		workers = len(docs)
	}
	if workers == 0 {
		return results
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = processOne(docs[i], cfg, runID, logger)
			}
		}()
	}
	for i := range docs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

func processOne(doc documentInput, cfg Config, runID string, logger *zap.Logger) documentOutput {
	meta := spanmodel.DocumentMeta{
		DocumentID:   doc.DocumentID,
		DocumentType: doc.DocumentType,
		Number:       doc.Number,
		Year:         doc.Year,
		Version:      doc.Version,
	}
	opts := bridge.Options{
		MaxTextChars:  cfg.MaxTextChars,
		OverlapChars:  cfg.OverlapChars,
		SchemaVersion: cfg.SchemaVersion,
		IngestRunID:   runID,
		Strict:        cfg.StrictMode,
	}

	result, err := bridge.BuildFromText(doc.Text, meta, opts)
	if err != nil {
		logger.Warn("document failed to materialize",
			zap.String("document_id", doc.DocumentID),
			zap.Error(err))
		return documentOutput{DocumentID: doc.DocumentID, Error: toErrorOutput(err)}
	}

	for _, mismatch := range result.AddressWarnings {
		logger.Warn("address mismatch (tolerant mode)",
			zap.String("document_id", doc.DocumentID),
			zap.String("span_id", mismatch.SpanID),
			zap.String("message", mismatch.Message))
	}

	logger.Info("document materialized",
		zap.String("document_id", doc.DocumentID),
		zap.Int("chunk_parts", len(result.ChunkParts)))

	return documentOutput{
		DocumentID:    doc.DocumentID,
		CanonicalHash: result.Hash,
		ChunkParts:    result.ChunkParts,
	}
}

func toErrorOutput(err error) *errorOutput {
	if ce, ok := err.(*coreerr.CoreError); ok {
		return &errorOutput{Reason: string(ce.Reason), Detail: ce.Error()}
	}
	return &errorOutput{Reason: "UNKNOWN", Detail: err.Error()}
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, results []documentOutput) error {
	data, err := xjson.Marshal(results)
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}

	if path == "" || path == "-" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
