package headers

import (
	"errors"
	"fmt"
)

// ErrCorrupt is matched by every error returned while decoding stored headers.
// A corrupt header block cannot be repaired; the record has to be rejected.
var ErrCorrupt = errors.New("corrupt CSV header")

// KeyError reports a header property whose name does not end in a valid index.
type KeyError struct {
	Key string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("invalid header property name %q", e.Key)
}

func (e *KeyError) Is(target error) bool { return target == ErrCorrupt }

// SequenceError reports header indices that are not exactly 0..N-1.
// Key and Index identify the first property found out of place.
type SequenceError struct {
	Key      string
	Index    uint64
	Expected int
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("CSV header out of sequence: %q has index %d, expected %d", e.Key, e.Index, e.Expected)
}

func (e *SequenceError) Is(target error) bool { return target == ErrCorrupt }

// TokenError reports a stored header value that is not a valid header token.
type TokenError struct {
	Key   string
	Token string
	Err   error
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("invalid CSV header specification %q (%s)", e.Token, e.Key)
}

func (e *TokenError) Unwrap() error { return e.Err }

func (e *TokenError) Is(target error) bool { return target == ErrCorrupt }
