package app

import (
	"bufio"
	"os"

	"github.com/rs/zerolog"

	"github.com/iyannm/word-fuse/internal/domain"
)

// Dictionary answers whether a submitted word is acceptable. A disabled
// dictionary accepts everything so gameplay is unaffected.
type Dictionary interface {
	Enabled() bool
	Size() int
	Has(word string) bool
}

type wordList struct {
	words map[string]struct{}
}

func (d *wordList) Enabled() bool { return true }
func (d *wordList) Size() int     { return len(d.words) }

func (d *wordList) Has(word string) bool {
	_, ok := d.words[word]
	return ok
}

type disabledDictionary struct{}

func (disabledDictionary) Enabled() bool        { return false }
func (disabledDictionary) Size() int            { return 0 }
func (disabledDictionary) Has(word string) bool { return true }

// DisabledDictionary returns a dictionary that accepts every word
func DisabledDictionary() Dictionary {
	return disabledDictionary{}
}

// LoadDictionary reads a newline-delimited word file, lowercasing each entry
// and dropping anything that is not a playable word. Any failure degrades to
// a disabled dictionary rather than preventing startup.
func LoadDictionary(path string, logger zerolog.Logger) Dictionary {
	if path == "" {
		logger.Info().Msg("no dictionary configured, word validation disabled")
		return DisabledDictionary()
	}

	f, err := os.Open(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("failed to open dictionary, word validation disabled")
		return DisabledDictionary()
	}
	defer f.Close()

	words := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word := domain.NormalizeWord(scanner.Text())
		if domain.ValidWord(word) {
			words[word] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("failed to read dictionary, word validation disabled")
		return DisabledDictionary()
	}

	logger.Info().Int("words", len(words)).Str("path", path).Msg("dictionary loaded")
	return &wordList{words: words}
}
