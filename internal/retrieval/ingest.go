package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
)

// Chunk is one ingestible slice of curriculum text with its addressing
// metadata.
type Chunk struct {
	Subject    string `json:"subject"`
	GradeLevel string `json:"grade_level"`
	Topic      string `json:"topic"`
	Content    string `json:"content"`
}

// AddChunks embeds and stores curriculum chunks. Whitespace-only chunks
// are skipped. Returns the number of chunks actually added.
func (r *Retriever) AddChunks(ctx context.Context, chunks []Chunk) (int, error) {
	if r == nil || r.collection == nil {
		return 0, fmt.Errorf("retrieval is not enabled")
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk.Content) == "" {
			continue
		}
		docs = append(docs, chromem.Document{
			ID:      uuid.NewString(),
			Content: chunk.Content,
			Metadata: map[string]string{
				"subject":     chunk.Subject,
				"grade_level": chunk.GradeLevel,
				"topic":       chunk.Topic,
			},
		})
	}

	if len(docs) == 0 {
		return 0, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.collection.AddDocuments(ctx, docs, 4); err != nil { // 4 concurrent embeddings
		return 0, fmt.Errorf("failed to add curriculum chunks: %w", err)
	}

	if r.logger != nil {
		r.logger.WithField("count", len(docs)).Info("curriculum chunks indexed")
	}
	return len(docs), nil
}
