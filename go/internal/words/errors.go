package words

import (
	"errors"
	"fmt"
)

// ErrNoWords is returned when a word source yields no usable words
var ErrNoWords = errors.New("no usable words")

// ConfigurationError reports a word source that could not be turned into a bank.
// The server still starts when loading fails; game creation is refused until fixed.
type ConfigurationError struct {
	Source string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("word source %q: %v", e.Source, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
