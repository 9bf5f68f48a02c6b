package extract

import (
	"strconv"
	"strings"
)

// Spoken-number vocabulary. Scale words multiply the value accumulated so
// far; lakh and crore cover the Indian large-number system the transcripts
// use alongside thousand.
var (
	unitWords = map[string]int64{
		"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
		"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
		"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
		"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18,
		"nineteen": 19,
	}
	tenWords = map[string]int64{
		"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
		"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
	}
	scaleWords = map[string]int64{
		"hundred":  100,
		"thousand": 1000,
		"lakh":     100000,
		"crore":    10000000,
	}
)

// wordNumber accumulates a spoken number token by token. Units and tens add
// into running; a scale word multiplies running (or 1 when nothing has
// accumulated) and carries it into total. The final value is total plus any
// trailing running value, so "two lakh" is 200000 and "one hundred and
// five" is 105.
type wordNumber struct {
	running int64
	total   int64
}

// feed consumes one lowercased token. It reports whether the token belonged
// to the number; the first non-number token ends the sequence.
func (n *wordNumber) feed(word string) bool {
	if v, ok := unitWords[word]; ok {
		n.running += v
		return true
	}
	if v, ok := tenWords[word]; ok {
		n.running += v
		return true
	}
	if scale, ok := scaleWords[word]; ok {
		if n.running == 0 {
			n.running = 1
		}
		n.total += n.running * scale
		n.running = 0
		return true
	}
	return false
}

func (n *wordNumber) value() int64 {
	return n.total + n.running
}

// numberWordStarts reports whether a token can begin a spoken number.
// "and" cannot: it is only a connector inside one.
func numberWordStarts(word string) bool {
	if _, ok := unitWords[word]; ok {
		return true
	}
	if _, ok := tenWords[word]; ok {
		return true
	}
	_, ok := scaleWords[word]
	return ok
}

// normalizeNumberWords replaces each run of spoken-number words with its
// digit form, leaving every other token untouched. Trailing punctuation on
// the last word of a run is kept after the digits.
func normalizeNumberWords(text string) string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for i := 0; i < len(fields); {
		word, trailer := splitTrailer(strings.ToLower(fields[i]))
		if !numberWordStarts(word) {
			out = append(out, fields[i])
			i++
			continue
		}

		var n wordNumber
		lastTrailer := ""
		for i < len(fields) {
			word, trailer = splitTrailer(strings.ToLower(fields[i]))
			if word == "and" && n.value() != 0 && trailer == "" {
				// Connector inside a number ("one hundred and five").
				// If the run ends here anyway the "and" is dropped.
				i++
				continue
			}
			if !n.feed(word) {
				break
			}
			lastTrailer = trailer
			i++
			if trailer != "" {
				// Punctuation terminates the number.
				break
			}
		}
		out = append(out, strconv.FormatInt(n.value(), 10)+lastTrailer)
	}
	return strings.Join(out, " ")
}

// splitTrailer separates a token's trailing punctuation ("five," -> "five"
// plus ",") so the word can be matched against the vocabulary.
func splitTrailer(tok string) (word, trailer string) {
	end := len(tok)
	for end > 0 {
		c := tok[end-1]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			break
		}
		end--
	}
	return tok[:end], tok[end:]
}
