package ai

import (
	"errors"
	"fmt"
)

// ErrEmptyContent indicates the provider answered but the response carried no
// usable text.
var ErrEmptyContent = errors.New("provider returned empty content")

// ErrNoTags indicates no parse strategy yielded a usable tag array, or every
// parsed element was discarded during normalization. Distinct from upstream
// errors so prompt/model problems can be told apart from connectivity ones.
var ErrNoTags = errors.New("failed to parse tags from AI response")

// ConfigError reports a provider whose secret is not configured. It is
// returned before any network call is attempted.
type ConfigError struct {
	Provider string
	Var      string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %s is not configured: %s is not set", e.Provider, e.Var)
}
