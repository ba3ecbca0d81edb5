package pretty

import (
	"fmt"
	"unicode/utf8"
)

// Abbrev returns a Stringer that shortens s when printed. With no ranges, s
// is cut to 12 bytes when longer than 12. With one value, it is used for both.
// With two, s is cut to ranges[1] bytes when longer than ranges[0].
func Abbrev(s string, ranges ...int) Abbreviated {
	MaxLen := 12
	CutTo := 12
	if len(ranges) >= 2 {
		MaxLen, CutTo = ranges[0], ranges[1]
	} else if len(ranges) == 1 {
		MaxLen, CutTo = ranges[0], ranges[0]
	}
	return Abbreviated{
		Original: s,
		MaxLen:   MaxLen,
		CutTo:    CutTo,
	}
}

// Abbreviated is a string that is truncated with an ellipsis and the number
// of omitted bytes when printed.
type Abbreviated struct {
	Original string
	MaxLen   int
	CutTo    int
}

func (s Abbreviated) String() string {
	if len(s.Original) <= s.MaxLen {
		return s.Original
	}
	cut := s.CutTo
	if cut > len(s.Original) {
		cut = len(s.Original)
	}
	// Don't split a multi-byte rune.
	for cut > 0 && cut < len(s.Original) && !utf8.RuneStart(s.Original[cut]) {
		cut--
	}
	return fmt.Sprintf("%s… (+%d bytes)", s.Original[:cut], len(s.Original)-cut)
}
