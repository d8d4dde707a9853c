package translate

import (
	"errors"

	"github.com/slanglate/slanglate/internal/quota"
)

// MaxTextLength is the longest input accepted for translation, in bytes.
const MaxTextLength = 1000

// Translation errors.
var (
	// ErrEmptyText is returned when the input text is empty or whitespace.
	ErrEmptyText = errors.New("text is empty")

	// ErrTextTooLong is returned when the input exceeds MaxTextLength.
	ErrTextTooLong = errors.New("text exceeds maximum length")

	// ErrProviderFailure is returned when the upstream translation
	// provider could not produce a result.
	ErrProviderFailure = errors.New("translation provider failure")
)

// Request is a validated translation request.
type Request struct {
	// Text is the input to translate.
	Text string

	// Mode selects the translation direction.
	Mode quota.Mode
}

// Result is a completed translation.
type Result struct {
	// TranslatedText is the provider's output.
	TranslatedText string

	// OriginalText echoes the input.
	OriginalText string

	// Mode is the direction that was applied.
	Mode quota.Mode

	// Provider names the provider that produced the result.
	Provider string
}
