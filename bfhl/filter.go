package bfhl

import "strings"

// Label is a human-readable filter name offered to the user.
type Label string

const (
	LabelNumbers         Label = "Numbers"
	LabelAlphabets       Label = "Alphabets"
	LabelHighestAlphabet Label = "Highest Alphabet"
)

// JSON names of the response fields each label selects.
const (
	FieldNumbers         = "numbers"
	FieldAlphabets       = "alphabets"
	FieldHighestAlphabet = "highest_alphabet"
)

// Labels lists every label in display order.
var Labels = []Label{
	LabelNumbers,
	LabelAlphabets,
	LabelHighestAlphabet,
}

// Valid returns true if l is one of [Labels].
func (l Label) Valid() bool {
	return l.bit() != 0
}

// Field returns the response field selected by l, or an empty string if l is
// not a known label.
func (l Label) Field() string {
	switch l {
	case LabelNumbers:
		return FieldNumbers
	case LabelAlphabets:
		return FieldAlphabets
	case LabelHighestAlphabet:
		return FieldHighestAlphabet
	default:
		return ""
	}
}

func (l Label) bit() Selection {
	for i, label := range Labels {
		if label == l {
			return 1 << i
		}
	}
	return 0
}

// ParseLabel looks up a label by name, ignoring case and surrounding spaces.
func ParseLabel(s string) (Label, bool) {
	s = strings.TrimSpace(s)
	for _, label := range Labels {
		if strings.EqualFold(string(label), s) {
			return label, true
		}
	}
	return "", false
}

// Selection is the set of labels currently ticked. The zero value is the empty
// selection. A Selection is a value; operations return a new one.
type Selection uint8

// NewSelection returns a selection holding the given labels. Unknown labels
// are ignored.
func NewSelection(labels ...Label) Selection {
	var s Selection
	for _, label := range labels {
		s |= label.bit()
	}
	return s
}

// Toggle removes l from the selection if present and adds it otherwise.
// Toggling an unknown label returns s unchanged.
func (s Selection) Toggle(l Label) Selection {
	return s ^ l.bit()
}

// Has returns true if l is in the selection.
func (s Selection) Has(l Label) bool {
	bit := l.bit()
	return bit != 0 && s&bit != 0
}

// Labels returns the selected labels in display order.
func (s Selection) Labels() []Label {
	labels := make([]Label, 0, len(Labels))
	for _, label := range Labels {
		if s.Has(label) {
			labels = append(labels, label)
		}
	}
	return labels
}

// Len returns the number of selected labels.
func (s Selection) Len() int {
	var n int
	for _, label := range Labels {
		if s.Has(label) {
			n++
		}
	}
	return n
}

func (s Selection) String() string {
	labels := s.Labels()
	strs := make([]string, len(labels))
	for i, label := range labels {
		strs[i] = string(label)
	}
	return "[" + strings.Join(strs, ", ") + "]"
}
