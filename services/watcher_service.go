package services

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// Watcher ingests supported files dropped into a directory while the server
// runs. Files are indexed once, on creation; rewrites and removals are
// ignored because indexed documents are immutable.
type Watcher struct {
	ragService RAGService
	processor  *DocumentProcessor
}

// NewWatcher creates a directory watcher that feeds new files into the
// ingestion pipeline.
func NewWatcher(ragService RAGService, processor *DocumentProcessor) *Watcher {
	return &Watcher{ragService: ragService, processor: processor}
}

// Watch blocks watching dirPath until the context is cancelled.
func (w *Watcher) Watch(ctx context.Context, dirPath string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dirPath); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dirPath, err)
	}
	log.Printf("WATCHER: Watching directory: %s", dirPath)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) || !IsSupportedFile(event.Name) {
				continue
			}
			log.Printf("WATCHER: New file detected: %s. Indexing...", event.Name)
			if err := w.ingestFile(ctx, event.Name); err != nil {
				log.Printf("WATCHER ERROR: Failed to index %s: %v", event.Name, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("WATCHER ERROR: %v", err)
		case <-ctx.Done():
			log.Println("WATCHER: Context cancelled, shutting down watcher.")
			return nil
		}
	}
}

// ingestFile runs one file through extract, chunk and index as a brand-new
// document.
func (w *Watcher) ingestFile(ctx context.Context, path string) error {
	text, err := ExtractTextFromFile(path)
	if err != nil {
		return err
	}
	chunks := w.processor.ChunkText(text)

	documentID := uuid.New().String()
	filename := filepath.Base(path)
	metadata := map[string]string{
		"filename":  filename,
		"file_type": strings.ToLower(filepath.Ext(filename)),
		"source":    "watcher",
	}

	count, err := w.ragService.IndexDocument(ctx, chunks, documentID, metadata)
	if err != nil {
		return err
	}
	log.Printf("WATCHER: Indexed %s as document %s (%d chunks)", filename, documentID, count)
	return nil
}
