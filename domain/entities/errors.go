package entities

import (
	"context"
	"errors"
	"fmt"
)

// Stage identifies one step of the translation pipeline
type Stage string

const (
	StageTranscription Stage = "transcription"
	StageTranslation   Stage = "translation"
	StageSynthesis     Stage = "synthesis"
)

// Sentinels matched by errors.Is against any *StageError of the same stage.
var (
	ErrTranscriptionFailed = errors.New("transcription failed")
	ErrTranslationFailed   = errors.New("translation failed")
	ErrSynthesisFailed     = errors.New("synthesis failed")
)

// StageError is the single failure type adapters hand back to the pipeline.
// It carries the stage that failed, a message fit for display and the
// underlying cause.
type StageError struct {
	Stage   Stage
	Message string
	Err     error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Stage, e.Message)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrTranslationFailed) true for translation stage errors.
func (e *StageError) Is(target error) bool {
	return target == e.Stage.sentinel()
}

func (s Stage) sentinel() error {
	switch s {
	case StageTranscription:
		return ErrTranscriptionFailed
	case StageTranslation:
		return ErrTranslationFailed
	case StageSynthesis:
		return ErrSynthesisFailed
	default:
		return nil
	}
}

// TranscriptionFailed builds a transcription stage error.
func TranscriptionFailed(message string, err error) *StageError {
	return &StageError{Stage: StageTranscription, Message: message, Err: err}
}

// TranslationFailed builds a translation stage error.
func TranslationFailed(message string, err error) *StageError {
	return &StageError{Stage: StageTranslation, Message: message, Err: err}
}

// SynthesisFailed builds a synthesis stage error.
func SynthesisFailed(message string, err error) *StageError {
	return &StageError{Stage: StageSynthesis, Message: message, Err: err}
}

// AsStageError normalizes err into a *StageError for stage. A StageError of the
// same stage is returned as is; anything else is wrapped.
func AsStageError(stage Stage, err error) *StageError {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) && se.Stage == stage {
		return se
	}
	msg := "service error"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		msg = "request timed out"
	case errors.Is(err, context.Canceled):
		msg = "request cancelled"
	}
	return &StageError{Stage: stage, Message: msg, Err: err}
}
