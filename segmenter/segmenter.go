package segmenter

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Result is the outcome of a segmentation. Found reports whether any
// partition of the text into dictionary words exists. When Found is true,
// Words holds one such partition in order (non-nil, possibly empty for the
// empty text); when Found is false, Words is nil.
type Result struct {
	Words []string
	Found bool
}

// Rendered joins the segmentation with single spaces. It returns the empty
// string both for a not-found result and for the empty text; callers that
// need to tell those apart must check Found.
func (r Result) Rendered() string {
	return strings.Join(r.Words, " ")
}

// Segment partitions text into words of the index's dictionary, or reports
// that no partition exists. Candidates at each position are tried shortest
// first and the first solvable continuation wins, so the result is
// deterministic for a fixed dictionary and text.
func Segment(text string, index *PrefixIndex) Result {
	result, _ := segment(nil, text, index)
	return result
}

// SegmentContext is Segment with cancellation: ctx is polled once per
// position advance, which bounds the latency of a cancel on adversarial
// inputs. The partial memo is discarded on cancellation.
func SegmentContext(ctx context.Context, text string, index *PrefixIndex) (Result, error) {
	return segment(ctx, text, index)
}

// One memo cell per text position. A solvable cell records the first word of
// some segmentation of the suffix starting there and where the rest begins.
type memoCell struct {
	word     string
	next     int
	solvable bool
}

func segment(ctx context.Context, text string, index *PrefixIndex) (Result, error) {
	runes := []rune(text)
	n := len(runes)

	// Bottom-up fill keeps the stack flat regardless of text length. Filling
	// from the end means every suffix a candidate word could lead to is
	// already decided when its position is visited.
	memo := make([]memoCell, n+1)
	memo[n].solvable = true
	for pos := n - 1; pos >= 0; pos-- {
		if ctx != nil {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}
		it := index.PrefixesAt(runes, pos)
		for word, ok := it.Next(); ok; word, ok = it.Next() {
			next := pos + utf8.RuneCountInString(word)
			if memo[next].solvable {
				memo[pos] = memoCell{word: word, next: next, solvable: true}
				break
			}
		}
	}

	if !memo[0].solvable {
		return Result{}, nil
	}
	words := make([]string, 0)
	for pos := 0; pos < n; pos = memo[pos].next {
		words = append(words, memo[pos].word)
	}
	return Result{Words: words, Found: true}, nil
}
