package segmenter

import (
	"errors"
	"fmt"
)

// ErrInvalidWord is returned by Build when the dictionary contains an empty
// word. A zero-length word would match at every position without consuming
// input, so construction aborts instead.
var ErrInvalidWord = errors.New("invalid dictionary word")

type trieNode struct {
	children map[rune]*trieNode
	word     string
	terminal bool
}

// PrefixIndex answers "which dictionary words start at this position of the
// text" without rescanning the dictionary. It is immutable after Build and
// safe to share across concurrent segmentations.
type PrefixIndex struct {
	root *trieNode
}

// Build constructs a PrefixIndex from the given words. Duplicate words are
// allowed and inserted once. Any empty word fails the whole build with
// ErrInvalidWord; no partial index is returned.
func Build(words []string) (*PrefixIndex, error) {
	root := &trieNode{children: make(map[rune]*trieNode)}
	for _, word := range words {
		if len(word) == 0 {
			return nil, fmt.Errorf("%w: dictionary contains an empty string", ErrInvalidWord)
		}
		node := root
		for _, c := range word {
			child, ok := node.children[c]
			if !ok {
				child = &trieNode{children: make(map[rune]*trieNode)}
				node.children[c] = child
			}
			node = child
		}
		node.word = word
		node.terminal = true
	}
	return &PrefixIndex{root: root}, nil
}

// PrefixIterator walks dictionary words matching the text at a fixed start
// position, shortest match first. It is produced fresh per call and is not
// restartable.
type PrefixIterator struct {
	node *trieNode
	text []rune
	pos  int
}

// PrefixesAt returns an iterator over every dictionary word that matches text
// starting exactly at start. Positions are rune positions.
func (index *PrefixIndex) PrefixesAt(text []rune, start int) PrefixIterator {
	return PrefixIterator{
		node: index.root,
		text: text,
		pos:  start,
	}
}

// Next yields the next matching word, in increasing length order. It returns
// false once a text symbol has no matching trie edge or the text is consumed;
// after that every call returns false.
func (it *PrefixIterator) Next() (string, bool) {
	for it.node != nil && it.pos < len(it.text) {
		child, ok := it.node.children[it.text[it.pos]]
		if !ok {
			it.node = nil
			return "", false
		}
		it.node = child
		it.pos++
		if child.terminal {
			return child.word, true
		}
	}
	it.node = nil
	return "", false
}
