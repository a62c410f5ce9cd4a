package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/poiesic/answerit/core"
)

// chunkRecord is one line of the ingestion JSONL format.
type chunkRecord struct {
	DocID        string `json:"doc_id"`
	ChunkID      string `json:"chunk_id"`
	SectionTitle string `json:"section_title"`
	Text         string `json:"text"`
}

// readChunkFile parses a JSONL file of documentation chunks.
// Blank lines are skipped; a malformed line fails the whole file so a bad
// export never half-ingests.
func readChunkFile(path string) ([]*core.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open chunk file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	var chunks []*core.Chunk
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var record chunkRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}

		chunks = append(chunks, &core.Chunk{
			DocID:        record.DocID,
			ChunkID:      record.ChunkID,
			SectionTitle: record.SectionTitle,
			Text:         record.Text,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chunk file: %w", err)
	}

	return chunks, nil
}
