package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shelenderrkumar/healthcare-translation/domain/entities"
	"github.com/shelenderrkumar/healthcare-translation/domain/repositories"
)

const (
	defaultStageTimeout = 60 * time.Second
	recordTimeout       = 5 * time.Second
	cancelledMessage    = "pipeline cancelled"
	noSpeechMessage     = "no speech detected"
)

// MetricsRecorder receives stage and run observations. *metrics.Collector
// satisfies it, including a nil one.
type MetricsRecorder interface {
	RecordStage(stage entities.Stage, d time.Duration, err error)
	RecordRun(outcome *entities.PipelineOutcome)
	RecordSpeech(err error)
}

// TranslationService orchestrates transcribe -> translate -> synthesize and
// the text-to-speech shortcut. It holds no per-run state, so one instance
// serves concurrent runs.
type TranslationService struct {
	speechToText repositories.SpeechToText
	translator   repositories.Translator
	textToSpeech repositories.TextToSpeech
	recorder     repositories.RunRecorder
	metrics      MetricsRecorder
	stageTimeout time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// NewTranslationService creates a new translation service. recorder and metrics
// may be nil; a zero stageTimeout selects 60s.
func NewTranslationService(
	stt repositories.SpeechToText,
	translator repositories.Translator,
	tts repositories.TextToSpeech,
	recorder repositories.RunRecorder,
	metrics MetricsRecorder,
	stageTimeout time.Duration,
	logger *zap.Logger,
) *TranslationService {
	if stageTimeout <= 0 {
		stageTimeout = defaultStageTimeout
		logger.Info("Using default stage timeout", zap.Duration("stageTimeout", stageTimeout))
	}
	return &TranslationService{
		speechToText: stt,
		translator:   translator,
		textToSpeech: tts,
		recorder:     recorder,
		metrics:      metrics,
		stageTimeout: stageTimeout,
		logger:       logger,
		now:          time.Now,
	}
}

// ProgressFunc observes a run after every state change. It is called on the
// run's goroutine and must not keep outcome past its return.
type ProgressFunc func(state entities.PipelineState, outcome *entities.PipelineOutcome)

// Run executes one pipeline run and always returns an outcome. A failure at any
// stage stops the run; outputs of the stages that succeeded stay on the outcome.
func (s *TranslationService) Run(ctx context.Context, clip entities.AudioClip, selection entities.LanguageSelection) *entities.PipelineOutcome {
	return s.RunWithProgress(ctx, clip, selection, nil)
}

// RunWithProgress is Run with a state observer; progress may be nil.
func (s *TranslationService) RunWithProgress(ctx context.Context, clip entities.AudioClip, selection entities.LanguageSelection, progress ProgressFunc) *entities.PipelineOutcome {
	outcome := &entities.PipelineOutcome{
		State:     entities.StateIdle,
		Selection: selection,
		StartedAt: s.now(),
	}
	record := entities.NewRunRecord(entities.RunEntryPipeline, outcome.StartedAt)
	record.ID = uuid.New().String()
	record.AudioBytesIn = clip.Size()

	logger := s.logger.With(zap.String("runID", record.ID))
	logger.Info("Pipeline run started",
		zap.String("source", string(selection.Source)),
		zap.String("target", string(selection.Target)),
		zap.Int("audioSize", clip.Size()))

	defer s.finishRun(ctx, outcome, record, logger)

	if err := selection.Validate(); err != nil {
		s.fail(outcome, entities.TranslationFailed(err.Error(), err), progress, logger)
		return outcome
	}
	if clip.LanguageHint == "" {
		clip = clip.WithLanguageHint(selection.Source)
	}

	// Transcribing
	if !s.advance(ctx, outcome, entities.StageTranscription, progress, logger) {
		return outcome
	}
	transcript, stageErr := runStage(ctx, s, entities.StageTranscription, record, func(ctx context.Context) (string, error) {
		return s.speechToText.Transcribe(ctx, clip)
	})
	if stageErr == nil && strings.TrimSpace(transcript) == "" {
		stageErr = entities.TranscriptionFailed(noSpeechMessage, nil)
	}
	if stageErr != nil {
		s.fail(outcome, stageErr, progress, logger)
		return outcome
	}
	outcome.Transcription = &entities.TranscriptionResult{Text: transcript}

	// Translating
	if !s.advance(ctx, outcome, entities.StageTranslation, progress, logger) {
		return outcome
	}
	translated, stageErr := runStage(ctx, s, entities.StageTranslation, record, func(ctx context.Context) (string, error) {
		return s.translator.Translate(ctx, transcript, selection.Target)
	})
	if stageErr != nil {
		s.fail(outcome, stageErr, progress, logger)
		return outcome
	}
	outcome.Translation = &entities.TranslationResult{Text: translated}

	// Synthesizing
	if !s.advance(ctx, outcome, entities.StageSynthesis, progress, logger) {
		return outcome
	}
	languageCode := entities.LanguageCodeOf(selection.Target)
	synthesis, stageErr := s.synthesize(ctx, translated, languageCode, record)
	if stageErr != nil {
		s.fail(outcome, stageErr, progress, logger)
		return outcome
	}
	outcome.Synthesis = synthesis

	s.transition(outcome, entities.StateDone, progress, logger)
	return outcome
}

// Speak is the text-to-speech shortcut: it calls only the speech adapter and
// always returns a result, carrying Failure when synthesis did not succeed.
func (s *TranslationService) Speak(ctx context.Context, text, languageCode string) *entities.SynthesisResult {
	if language, err := entities.LanguageForCode(languageCode); err == nil {
		languageCode = entities.LanguageCodeOf(language)
	}

	startedAt := s.now()
	record := entities.NewRunRecord(entities.RunEntrySpeak, startedAt)
	record.ID = uuid.New().String()
	record.LanguageCode = languageCode

	logger := s.logger.With(zap.String("runID", record.ID))
	logger.Info("Speech request started",
		zap.String("languageCode", languageCode),
		zap.Int("textLength", len(text)))

	result, stageErr := s.speak(ctx, text, languageCode, record)
	if stageErr != nil {
		result = &entities.SynthesisResult{LanguageCode: languageCode, Failure: stageErr}
		record.State = entities.StateFailed
		record.FailedStage = entities.StageSynthesis
		record.ErrorMessage = stageErr.Message
		logger.Warn("Speech request failed", zap.String("reason", stageErr.Message), zap.Error(stageErr.Err))
	} else {
		record.State = entities.StateDone
		record.AudioBytesOut = len(result.Audio)
		logger.Info("Speech request completed", zap.Int("audioSize", len(result.Audio)))
	}

	if s.metrics != nil {
		s.metrics.RecordSpeech(errorOrNil(stageErr))
	}
	record.DurationMs = s.now().Sub(startedAt).Milliseconds()
	s.store(ctx, record, logger)

	return result
}

// RecentRuns returns the newest run records, newest first
func (s *TranslationService) RecentRuns(ctx context.Context, limit int) ([]*entities.RunRecord, error) {
	if s.recorder == nil {
		return []*entities.RunRecord{}, nil
	}
	return s.recorder.Recent(ctx, limit)
}

func (s *TranslationService) speak(ctx context.Context, text, languageCode string, record *entities.RunRecord) (*entities.SynthesisResult, *entities.StageError) {
	if strings.TrimSpace(text) == "" {
		return nil, entities.SynthesisFailed("text cannot be empty", nil)
	}
	if !entities.IsSupportedCode(languageCode) {
		return nil, entities.SynthesisFailed("unsupported language code: "+languageCode, entities.ErrUnsupportedLanguage)
	}
	if err := ctx.Err(); err != nil {
		return nil, &entities.StageError{Stage: entities.StageSynthesis, Message: cancelledMessage, Err: err}
	}
	return s.synthesize(ctx, text, languageCode, record)
}

func (s *TranslationService) synthesize(ctx context.Context, text, languageCode string, record *entities.RunRecord) (*entities.SynthesisResult, *entities.StageError) {
	result, stageErr := runStage(ctx, s, entities.StageSynthesis, record, func(ctx context.Context) (*entities.SynthesisResult, error) {
		return s.textToSpeech.Synthesize(ctx, text, languageCode)
	})
	if stageErr != nil {
		return nil, stageErr
	}
	if result != nil && result.Failure != nil {
		return nil, entities.AsStageError(entities.StageSynthesis, result.Failure)
	}
	if result == nil || len(result.Audio) == 0 {
		return nil, entities.SynthesisFailed("service returned no audio", nil)
	}
	if result.LanguageCode == "" {
		result.LanguageCode = languageCode
	}
	if result.Format == "" {
		result.Format = entities.FormatMPEG
	}
	return result, nil
}

// runStage bounds one adapter call by the stage timeout and normalizes its error
func runStage[T any](ctx context.Context, s *TranslationService, stage entities.Stage, record *entities.RunRecord, call func(context.Context) (T, error)) (T, *entities.StageError) {
	stageCtx, cancel := context.WithTimeout(ctx, s.stageTimeout)
	defer cancel()

	started := s.now()
	value, err := guard(s, stage, func() (T, error) { return call(stageCtx) })
	elapsed := s.now().Sub(started)

	record.RecordStage(stage, elapsed)
	if s.metrics != nil {
		s.metrics.RecordStage(stage, elapsed, err)
	}

	if err != nil {
		var zero T
		return zero, entities.AsStageError(stage, err)
	}
	return value, nil
}

// guard turns an adapter panic into an error so the run still ends in Failed(stage)
func guard[T any](s *TranslationService, stage entities.Stage, call func() (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Adapter panicked",
				zap.String("stage", string(stage)),
				zap.Any("panic", r),
				zap.Stack("stack"))
			var zero T
			value, err = zero, fmt.Errorf("adapter panic: %v", r)
		}
	}()
	return call()
}

// advance checks for cancellation at a stage boundary and enters the stage
func (s *TranslationService) advance(ctx context.Context, outcome *entities.PipelineOutcome, stage entities.Stage, progress ProgressFunc, logger *zap.Logger) bool {
	if err := ctx.Err(); err != nil {
		s.fail(outcome, &entities.StageError{Stage: stage, Message: cancelledMessage, Err: err}, progress, logger)
		return false
	}
	s.transition(outcome, stage.State(), progress, logger)
	return true
}

func (s *TranslationService) transition(outcome *entities.PipelineOutcome, to entities.PipelineState, progress ProgressFunc, logger *zap.Logger) {
	logger.Info("Pipeline state changed",
		zap.String("from", string(outcome.State)),
		zap.String("to", string(to)))
	outcome.State = to
	if progress != nil {
		progress(to, outcome)
	}
}

// fail records err on the failed stage's result and moves the outcome to Failed
func (s *TranslationService) fail(outcome *entities.PipelineOutcome, err *entities.StageError, progress ProgressFunc, logger *zap.Logger) {
	switch err.Stage {
	case entities.StageTranscription:
		outcome.Transcription = &entities.TranscriptionResult{Failure: err}
	case entities.StageTranslation:
		outcome.Translation = &entities.TranslationResult{Failure: err}
	case entities.StageSynthesis:
		outcome.Synthesis = &entities.SynthesisResult{Failure: err}
	}

	logger.Warn("Pipeline stage failed",
		zap.String("from", string(outcome.State)),
		zap.String("stage", string(err.Stage)),
		zap.String("reason", err.Message),
		zap.Error(err.Err))
	outcome.Fail(err)
	if progress != nil {
		progress(outcome.State, outcome)
	}
}

func (s *TranslationService) finishRun(ctx context.Context, outcome *entities.PipelineOutcome, record *entities.RunRecord, logger *zap.Logger) {
	outcome.Duration = s.now().Sub(outcome.StartedAt)
	if s.metrics != nil {
		s.metrics.RecordRun(outcome)
	}

	logger.Info("Pipeline run finished",
		zap.String("state", string(outcome.State)),
		zap.String("failedStage", string(outcome.FailedStage)),
		zap.Duration("duration", outcome.Duration))

	record.Finish(outcome)
	s.store(ctx, record, logger)
}

// store writes the run record. It never affects the outcome.
func (s *TranslationService) store(ctx context.Context, record *entities.RunRecord, logger *zap.Logger) {
	if s.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if err := s.recorder.Record(ctx, record); err != nil {
		logger.Warn("Failed to store run record", zap.Error(err))
	}
}

// errorOrNil avoids handing a typed nil *StageError to an error parameter
func errorOrNil(err *entities.StageError) error {
	if err == nil {
		return nil
	}
	return err
}
