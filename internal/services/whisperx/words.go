package whisperx

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"reelcast/internal/captions"
)

// Word is one entry of the word_segments array in WhisperX JSON output.
// WhisperX omits timings for tokens it could not align, such as numerals.
type Word struct {
	Word  string           `json:"word"`
	Start *decimal.Decimal `json:"start"`
	End   *decimal.Decimal `json:"end"`
}

type whisperXPayload struct {
	WordSegments []Word `json:"word_segments"`
}

var millisPerSecond = decimal.NewFromInt(1000)

// LoadWords reads the word_segments array from a WhisperX JSON file.
func LoadWords(jsonPath string) ([]Word, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var payload whisperXPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}
	return payload.WordSegments, nil
}

// RawTokens converts WhisperX words into millisecond tokens. A word without a
// start inherits the previous token's end; a word without an end (or with an
// end before its start) ends where it starts.
func RawTokens(words []Word) []captions.RawToken {
	tokens := make([]captions.RawToken, 0, len(words))
	var previousEnd int64
	for _, word := range words {
		start := previousEnd
		if word.Start != nil {
			start = toMillis(*word.Start)
		}
		end := start
		if word.End != nil {
			end = max(toMillis(*word.End), start)
		}
		tokens = append(tokens, captions.RawToken{Text: word.Word, StartMs: start, EndMs: end})
		previousEnd = end
	}
	return tokens
}

func toMillis(seconds decimal.Decimal) int64 {
	return seconds.Mul(millisPerSecond).Round(0).IntPart()
}
