package entities

import (
	"errors"
	"time"
)

// RunEntry names the entry point a run came through
type RunEntry string

const (
	RunEntryPipeline RunEntry = "pipeline"
	RunEntrySpeak    RunEntry = "speak"
)

// RunRecord is the audit trail of one invocation. It deliberately holds no
// transcript, translation or audio, only sizes, languages and timings.
type RunRecord struct {
	ID               string          `json:"id" bson:"_id"`
	Entry            RunEntry        `json:"entry" bson:"entry"`
	SourceLanguage   Language        `json:"source_language,omitempty" bson:"source_language,omitempty"`
	TargetLanguage   Language        `json:"target_language,omitempty" bson:"target_language,omitempty"`
	LanguageCode     string          `json:"language_code,omitempty" bson:"language_code,omitempty"`
	State            PipelineState   `json:"state" bson:"state"`
	FailedStage      Stage           `json:"failed_stage,omitempty" bson:"failed_stage,omitempty"`
	ErrorMessage     string          `json:"error_message,omitempty" bson:"error_message,omitempty"`
	AudioBytesIn     int             `json:"audio_bytes_in" bson:"audio_bytes_in"`
	AudioBytesOut    int             `json:"audio_bytes_out" bson:"audio_bytes_out"`
	StageDurationsMs map[Stage]int64 `json:"stage_durations_ms" bson:"stage_durations_ms"`
	StartedAt        time.Time       `json:"started_at" bson:"started_at"`
	DurationMs       int64           `json:"duration_ms" bson:"duration_ms"`
}

// NewRunRecord starts a record for the given entry point.
func NewRunRecord(entry RunEntry, startedAt time.Time) *RunRecord {
	return &RunRecord{
		Entry:            entry,
		State:            StateIdle,
		StageDurationsMs: make(map[Stage]int64),
		StartedAt:        startedAt,
	}
}

// RecordStage stores how long a stage took.
func (r *RunRecord) RecordStage(stage Stage, d time.Duration) {
	if r.StageDurationsMs == nil {
		r.StageDurationsMs = make(map[Stage]int64)
	}
	r.StageDurationsMs[stage] = d.Milliseconds()
}

// Finish copies the terminal state of a pipeline outcome into the record.
func (r *RunRecord) Finish(outcome *PipelineOutcome) {
	r.State = outcome.State
	r.SourceLanguage = outcome.Selection.Source
	r.TargetLanguage = outcome.Selection.Target
	r.DurationMs = outcome.Duration.Milliseconds()
	if outcome.Failure != nil {
		r.FailedStage = outcome.FailedStage
		r.ErrorMessage = outcome.Failure.Message
	}
	if audio, ok := outcome.Audio(); ok {
		r.AudioBytesOut = len(audio.Audio)
		r.LanguageCode = audio.LanguageCode
	}
}

// Validate validates the record before it is stored
func (r *RunRecord) Validate() error {
	if r.ID == "" {
		return errors.New("id is required")
	}
	if r.Entry != RunEntryPipeline && r.Entry != RunEntrySpeak {
		return errors.New("invalid run entry")
	}
	switch r.State {
	case StateDone, StateFailed:
	default:
		return errors.New("run record must be in a terminal state")
	}
	return nil
}
