package ai

import (
	"errors"
	"fmt"
)

// Reason is the closed set of ways an AI tool call can fail.
type Reason string

const (
	ReasonNoAPIKey              Reason = "noApiKey"
	ReasonPaidAPIKeyRequired    Reason = "paidApiKeyRequired"
	ReasonNoTextContent         Reason = "noTextContent"
	ReasonNoImageData           Reason = "noImageData"
	ReasonProvideTextOrImage    Reason = "provideTextOrImage"
	ReasonInterpretationFailed  Reason = "dreamInterpretationFailed"
	ReasonStoryFailed           Reason = "storySparkFailed"
	ReasonImageGenerationFailed Reason = "imageGenerationFailed"
)

// MessageKey is the localization key for the reason.
func (r Reason) MessageKey() string {
	return "apiError_" + string(r)
}

type Error struct {
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ai: %s: %v", e.Reason, e.Err)
	}
	return "ai: " + string(e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ReasonOf returns the failure reason carried by err, or "" when err is not an AI failure.
func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}
