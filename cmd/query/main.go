// Command query runs a curriculum retrieval lookup from the command
// line. Useful for tuning the similarity threshold against a populated
// index before pointing the server at it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/edukits/curriculum-builder-go/internal/config"
	"github.com/edukits/curriculum-builder-go/internal/logger"
	"github.com/edukits/curriculum-builder-go/internal/retrieval"
)

var (
	subjectFlag = flag.String("subject", "", "Subject to search for")
	gradeFlag   = flag.String("grade", "", "Grade level to search for")
	topicFlag   = flag.String("topic", "", "Topic to search for")
)

func main() {
	flag.Parse()

	if *subjectFlag == "" || *gradeFlag == "" || *topicFlag == "" {
		fmt.Fprintln(os.Stderr, "Usage: query -subject Mathematics -grade 'Primary 4' -topic Fractions")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

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

	fmt.Printf("Index holds %d chunks, threshold %.2f, top %d\n\n",
		retriever.Count(), cfg.RetrievalMinSimilarity, cfg.RetrievalTopK)

	result := retriever.Retrieve(context.Background(), *subjectFlag, *gradeFlag, *topicFlag)
	fmt.Printf("Status: %s\n", result.Status)

	if len(result.Matches) > 0 {
		fmt.Println("\nAccepted matches:")
		printMatches(result.Matches)
	}
	if len(result.Alternatives) > 0 {
		fmt.Println("\nBelow-threshold alternatives:")
		printMatches(result.Alternatives)
	}
	if len(result.Matches) == 0 && len(result.Alternatives) == 0 {
		fmt.Println("\nNo matches found.")
	}
}

func printMatches(matches []retrieval.Match) {
	for i, m := range matches {
		preview := m.Content
		if len(preview) > 120 {
			preview = preview[:120] + "..."
		}
		fmt.Printf("%2d. [%.3f] %s / %s / %s\n    %s\n",
			i+1, m.Similarity, m.Subject, m.GradeLevel, m.Topic, preview)
	}
}
