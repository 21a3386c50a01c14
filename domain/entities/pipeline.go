package entities

import (
	"bytes"
	"io"
	"time"
)

// PipelineState is the position of a run in the
// Idle -> Transcribing -> Translating -> Synthesizing -> Done machine.
type PipelineState string

const (
	StateIdle         PipelineState = "idle"
	StateTranscribing PipelineState = "transcribing"
	StateTranslating  PipelineState = "translating"
	StateSynthesizing PipelineState = "synthesizing"
	StateDone         PipelineState = "done"
	StateFailed       PipelineState = "failed"
)

// State returns the in-progress state of the stage.
func (s Stage) State() PipelineState {
	switch s {
	case StageTranscription:
		return StateTranscribing
	case StageTranslation:
		return StateTranslating
	case StageSynthesis:
		return StateSynthesizing
	default:
		return StateIdle
	}
}

// TranscriptionResult holds either recognized text or a failure.
type TranscriptionResult struct {
	Text    string
	Failure *StageError
}

// OK reports whether transcription succeeded.
func (r *TranscriptionResult) OK() bool {
	return r != nil && r.Failure == nil
}

// TranslationResult holds either translated text or a failure.
type TranslationResult struct {
	Text    string
	Failure *StageError
}

// OK reports whether translation succeeded.
func (r *TranslationResult) OK() bool {
	return r != nil && r.Failure == nil
}

// SynthesisResult holds either a complete audio buffer or a failure.
type SynthesisResult struct {
	Audio        []byte
	Format       string
	LanguageCode string
	Failure      *StageError
}

// OK reports whether synthesis succeeded.
func (r *SynthesisResult) OK() bool {
	return r != nil && r.Failure == nil
}

// Reader returns a fresh reader positioned at the start of the audio buffer.
// Every call starts from byte zero; no read position is shared between callers.
func (r *SynthesisResult) Reader() io.Reader {
	if r == nil {
		return bytes.NewReader(nil)
	}
	return bytes.NewReader(r.Audio)
}

// PipelineOutcome aggregates the stage results of one run for presentation.
// Stages that never ran are nil.
type PipelineOutcome struct {
	State         PipelineState
	FailedStage   Stage
	Failure       *StageError
	Selection     LanguageSelection
	Transcription *TranscriptionResult
	Translation   *TranslationResult
	Synthesis     *SynthesisResult
	StartedAt     time.Time
	Duration      time.Duration
}

// Succeeded reports whether the run reached Done.
func (o *PipelineOutcome) Succeeded() bool {
	return o.State == StateDone
}

// Transcript returns the transcript when transcription succeeded, even if a
// later stage failed.
func (o *PipelineOutcome) Transcript() (string, bool) {
	if !o.Transcription.OK() {
		return "", false
	}
	return o.Transcription.Text, true
}

// TranslatedText returns the translation when translation succeeded.
func (o *PipelineOutcome) TranslatedText() (string, bool) {
	if !o.Translation.OK() {
		return "", false
	}
	return o.Translation.Text, true
}

// Audio returns the synthesized audio when synthesis succeeded.
func (o *PipelineOutcome) Audio() (*SynthesisResult, bool) {
	if !o.Synthesis.OK() {
		return nil, false
	}
	return o.Synthesis, true
}

// Fail moves the outcome into Failed at the failure's stage.
func (o *PipelineOutcome) Fail(err *StageError) {
	o.State = StateFailed
	o.FailedStage = err.Stage
	o.Failure = err
}
