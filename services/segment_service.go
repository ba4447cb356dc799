package services

import (
	"strings"
	"unicode"

	"github.com/tmc/langchaingo/textsplitter"

	"github/itish2003/meetingcanvas/workspace"
)

var segmentStopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "this": {},
	"from": {}, "are": {}, "was": {}, "were": {}, "will": {}, "have": {},
	"has": {}, "not": {}, "but": {}, "you": {}, "our": {}, "deadline": {},
	"unspecified": {},
}

// SegmentFinder locates the passage of a transcript that best supports a
// card.
type SegmentFinder struct {
	splitter textsplitter.TextSplitter
}

// NewSegmentFinder splits transcripts into chunks of at most chunkSize
// characters overlapping by chunkOverlap.
func NewSegmentFinder(chunkSize, chunkOverlap int) *SegmentFinder {
	return &SegmentFinder{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
	}
}

// Find returns the transcript chunk sharing the most distinct words with the
// card title and content, or "" when no chunk shares any.
func (f *SegmentFinder) Find(transcript string, card workspace.Card) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", nil
	}
	chunks, err := f.splitter.SplitText(transcript)
	if err != nil {
		return "", err
	}

	wanted := segmentWords(card.Title + " " + card.Content)
	if len(wanted) == 0 {
		return "", nil
	}

	best, bestScore := "", 0
	for _, chunk := range chunks {
		score := 0
		for w := range segmentWords(chunk) {
			if _, ok := wanted[w]; ok {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = chunk, score
		}
	}
	return strings.TrimSpace(best), nil
}

func segmentWords(text string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if len([]rune(w)) < 3 {
			continue
		}
		if _, stop := segmentStopWords[w]; stop {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}
