package segment

import (
	"errors"
	"fmt"
)

// ErrUnrecognizedCharacter is the errors.Is target for segmentation failures.
var ErrUnrecognizedCharacter = errors.New("unrecognized character")

// UnrecognizedCharacterError reports a character that could not be placed in
// any segment: an unknown symbol or a diacritic with nothing to bind to.
type UnrecognizedCharacterError struct {
	Word   string
	Char   string
	Reason string
}

func (e *UnrecognizedCharacterError) Error() string {
	if r := []rune(e.Char); len(r) == 1 {
		return fmt.Sprintf("segment %q: character %q (%U): %s", e.Word, e.Char, r[0], e.Reason)
	}
	return fmt.Sprintf("segment %q: character %q: %s", e.Word, e.Char, e.Reason)
}

// Is makes errors.Is(err, ErrUnrecognizedCharacter) match.
func (e *UnrecognizedCharacterError) Is(target error) bool {
	return target == ErrUnrecognizedCharacter
}

const (
	reasonUnknown      = "not a known base symbol, diacritic or ignorable character"
	reasonNoHost       = "diacritic has no preceding base to attach to"
	reasonDanglingPre  = "pre-diacritic is not followed by a base"
	reasonDanglingTie  = "tie bar is not followed by a base"
	reasonTieNoKernel  = "tie bar has no preceding base"
	reasonToneAfterPre = "tone letter cannot carry a pre-diacritic"
)
