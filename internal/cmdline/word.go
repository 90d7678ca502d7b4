// Package cmdline splits command lines into shell-style words.
package cmdline

import (
	"strings"

	"github.com/pkg/errors"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

var parser = syntax.NewParser(
	syntax.Variant(syntax.LangBash),
)

// PopFirstWord pops the first word from the text and returns it along with the
// rest of the string, untouched apart from leading spaces. A line holding only
// blanks yields an empty first word.
func PopFirstWord(str string) (first, tail string, err error) {
	scanner := NewWordScanner(str)
	if !scanner.Scan() {
		return "", "", scanner.Err()
	}
	return scanner.Word(), scanner.Tail(), nil
}

// Split splits the whole text into words.
func Split(str string) ([]string, error) {
	var words []string
	scanner := NewWordScanner(str)
	for scanner.Scan() {
		words = append(words, scanner.Word())
	}
	return words, scanner.Err()
}

// WordScanner scans shell words one at a time. Quotes and escapes are
// resolved; variables and globs are left literal.
type WordScanner struct {
	text string
	word string
	err  error
}

// NewWordScanner creates a new WordScanner.
func NewWordScanner(text string) *WordScanner {
	return &WordScanner{
		text: strings.TrimSpace(text),
	}
}

// Word returns the current word.
func (s *WordScanner) Word() string {
	return s.word
}

// Scan scans the next word. It returns false once the text is exhausted or an
// error occurred.
func (s *WordScanner) Scan() bool {
	if s.err != nil || s.text == "" {
		return false
	}

	var firstWord *syntax.Word
	err := parser.Words(strings.NewReader(s.text), func(word *syntax.Word) bool {
		firstWord = word
		return false
	})
	if err != nil {
		s.err = errors.Wrap(err, "cannot parse for shell word")
		return false
	}
	if firstWord == nil {
		s.text = ""
		return false
	}

	lit, err := expand.Literal(nil, firstWord)
	if err != nil {
		s.err = errors.Wrap(err, "cannot render parsed shell word")
		return false
	}

	s.word = lit
	s.text = strings.TrimSpace(s.text[firstWord.End().Offset():])
	return true
}

// Err returns the error that occurred during scanning, if any.
func (s *WordScanner) Err() error {
	return s.err
}

// Tail returns the text not yet scanned.
func (s *WordScanner) Tail() string {
	return s.text
}
