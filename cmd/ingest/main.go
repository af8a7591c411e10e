// Command ingest loads curriculum chunks into the vector index so
// scheme generation can ground itself in official curriculum text.
//
// Input files are JSON arrays of chunk objects:
//
//	[{"subject": "Mathematics", "grade_level": "Primary 4",
//	  "topic": "Fractions", "content": "..."}]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/edukits/curriculum-builder-go/internal/config"
	"github.com/edukits/curriculum-builder-go/internal/logger"
	"github.com/edukits/curriculum-builder-go/internal/retrieval"
)

var (
	fileFlag = flag.String("file", "", "Path to a single chunk JSON file")
	dirFlag  = flag.String("dir", "", "Directory of chunk JSON files (*.json)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	if *fileFlag == "" && *dirFlag == "" {
		fmt.Fprintln(os.Stderr, "Usage: ingest -file chunks.json | -dir chunks/")
		os.Exit(2)
	}

	retriever, err := retrieval.New(retrieval.Options{
		PersistDir:    cfg.ChromemPath(),
		APIKey:        cfg.GeminiAPIKey,
		TopK:          cfg.RetrievalTopK,
		MinSimilarity: float32(cfg.RetrievalMinSimilarity),
		Logger:        log,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to open vector index")
	}
	if !retriever.IsEnabled() {
		log.Fatal("Retrieval is not configured, set GEMINI_API_KEY")
	}
	defer func() { _ = retriever.Close() }()

	files, err := collectFiles(*fileFlag, *dirFlag)
	if err != nil {
		log.WithError(err).Fatal("Failed to collect input files")
	}
	if len(files) == 0 {
		log.Fatal("No input files found")
	}

	ctx := context.Background()
	start := time.Now()
	var total int

	for _, path := range files {
		chunks, err := loadChunks(path)
		if err != nil {
			log.WithError(err).WithField("file", path).Error("Skipping unreadable chunk file")
			continue
		}

		added, err := retriever.AddChunks(ctx, chunks)
		if err != nil {
			log.WithError(err).WithField("file", path).Fatal("Failed to index chunks")
		}

		total += added
		log.WithFields(map[string]any{
			"file":  filepath.Base(path),
			"added": added,
		}).Info("Chunk file indexed")
	}

	log.WithFields(map[string]any{
		"chunks":   total,
		"indexed":  retriever.Count(),
		"duration": time.Since(start).String(),
	}).Info("Ingestion complete")
}

// collectFiles resolves the flag inputs into a list of JSON file paths.
func collectFiles(file, dir string) ([]string, error) {
	var files []string
	if file != "" {
		files = append(files, file)
	}
	if dir != "" {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

func loadChunks(path string) ([]retrieval.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var chunks []retrieval.Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return chunks, nil
}
