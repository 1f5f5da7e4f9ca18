package main

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
)

//go:embed words.txt
var defaultWords string

// WordList is the pool of secret words, one of which is drawn per game.
type WordList struct {
	words []string
	intn  func(n int) int
}

// loadWordList builds the word pool from path, or from the embedded default
// list when path is empty. Lines are trimmed; blank lines and #-comments are
// skipped. An empty resulting pool is a configuration error.
func loadWordList(path string) (*WordList, error) {
	raw := defaultWords

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read word list: %w", err)
		}
		raw = string(data)
	}

	var words []string
	for _, line := range strings.Split(raw, "\n") {
		word := strings.TrimSpace(line)
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		words = append(words, word)
	}

	if len(words) == 0 {
		return nil, errors.New("word list contains no words")
	}

	return &WordList{words: words, intn: rand.Intn}, nil
}

// Pick draws one word uniformly at random. The list itself never changes.
func (w *WordList) Pick() string {
	return w.words[w.intn(len(w.words))]
}
