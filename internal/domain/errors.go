package domain

import (
	"context"
	"errors"
	"fmt"
)

// FallbackFetchMessage is shown when a fetch failure carries no message.
const FallbackFetchMessage = "Failed to process the link. Please check the URL and try again."

var (
	// ErrUnsupportedPlatform is returned when a URL does not belong to a known platform.
	ErrUnsupportedPlatform = errors.New("Unsupported platform")

	// ErrInvalidURL is returned when the input cannot be parsed as a URL.
	ErrInvalidURL = errors.New("Please enter a valid URL")

	// ErrPlatformNotSelectable is returned when a tab is requested for a platform
	// the selector does not offer.
	ErrPlatformNotSelectable = errors.New("platform is not selectable")

	// ErrSessionNotFound is returned by session stores for unknown or expired ids.
	ErrSessionNotFound = errors.New("session not found")
)

// FetchError is a metadata lookup failure with a user-displayable message.
type FetchError struct {
	Platform Platform
	Message  string
	Err      error
}

// NewFetchError builds a FetchError for a remote lookup failure on platform.
func NewFetchError(platform Platform, err error) *FetchError {
	return &FetchError{
		Platform: platform,
		Message:  fmt.Sprintf("Could not retrieve video details from %s", platform),
		Err:      err,
	}
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// UserMessage returns the text to show for a failed fetch.
// Bare cancellations and deadlines map to FallbackFetchMessage.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var fe *FetchError
	if errors.As(err, &fe) && fe.Message != "" {
		return fe.Message
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return FallbackFetchMessage
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return FallbackFetchMessage
}
