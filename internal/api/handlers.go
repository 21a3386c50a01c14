package api

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/shelenderrkumar/healthcare-translation/domain/entities"
)

const (
	defaultRunsLimit = 50
	maxRunsLimit     = 500
)

type handlers struct {
	pipeline      Pipeline
	maxAudioBytes int64
	logger        *zap.Logger
}

func (h *handlers) languages(c echo.Context) error {
	return c.JSON(http.StatusOK, supportedLanguageInfo())
}

// translate runs the full pipeline on an uploaded recording
func (h *handlers) translate(c echo.Context) error {
	selection, err := selectionFromForm(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "unsupported_language",
			Message: err.Error(),
		})
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_audio",
			Message: "multipart field 'audio' is required",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded audio", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_audio",
			Message: "Failed to read uploaded audio",
		})
	}
	defer file.Close()

	limit := h.maxAudioBytes
	if limit <= 0 {
		limit = 25 << 20
	}
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_audio",
			Message: "Failed to read uploaded audio",
		})
	}
	if int64(len(data)) > limit {
		return c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error:   "audio_too_large",
			Message: "Recording exceeds " + strconv.FormatInt(limit, 10) + " bytes",
		})
	}
	if len(data) == 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_audio",
			Message: "Recording is empty",
		})
	}

	sampleRate := 0
	if raw := c.FormValue("sample_rate"); raw != "" {
		sampleRate, err = strconv.Atoi(raw)
		if err != nil || sampleRate <= 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_sample_rate",
				Message: "sample_rate must be a positive integer",
			})
		}
	}

	encoding := strings.ToUpper(strings.TrimSpace(c.FormValue("encoding")))
	if encoding == "" {
		encoding = encodingFromFilename(fileHeader.Filename)
	}

	clip := entities.NewAudioClip(data, encoding, sampleRate, fileHeader.Filename)
	outcome := h.pipeline.Run(c.Request().Context(), clip, selection)

	status := http.StatusOK
	if !outcome.Succeeded() {
		status = http.StatusUnprocessableEntity
	}
	return c.JSON(status, newTranslationResponse(outcome))
}

// speak synthesizes text directly, bypassing transcription and translation
func (h *handlers) speak(c echo.Context) error {
	var req SpeechRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	if strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "text is required",
		})
	}

	code, err := resolveLanguageCode(req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "unsupported_language",
			Message: err.Error(),
		})
	}

	result := h.pipeline.Speak(c.Request().Context(), req.Text, code)
	if !result.OK() {
		message := "speech synthesis failed"
		if result.Failure != nil {
			message = result.Failure.Message
		}
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "synthesis_failed",
			Message: message,
		})
	}

	c.Response().Header().Set("X-Language-Code", result.LanguageCode)
	return c.Blob(http.StatusOK, result.Format, result.Audio)
}

func (h *handlers) runs(c echo.Context) error {
	limit := defaultRunsLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_limit",
				Message: "limit must be a positive integer",
			})
		}
		limit = min(n, maxRunsLimit)
	}

	records, err := h.pipeline.RecentRuns(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list runs", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list runs",
		})
	}
	if records == nil {
		records = []*entities.RunRecord{}
	}
	return c.JSON(http.StatusOK, RunsResponse{Runs: records})
}

// selectionFromForm reads source_language and target_language, falling back
// to the form defaults when a field is absent
func selectionFromForm(c echo.Context) (entities.LanguageSelection, error) {
	selection := entities.DefaultLanguageSelection()
	if raw := c.FormValue("source_language"); raw != "" {
		source, err := entities.ParseLanguage(raw)
		if err != nil {
			return selection, err
		}
		selection.Source = source
	}
	if raw := c.FormValue("target_language"); raw != "" {
		target, err := entities.ParseLanguage(raw)
		if err != nil {
			return selection, err
		}
		selection.Target = target
	}
	return selection, nil
}

func resolveLanguageCode(req SpeechRequest) (string, error) {
	if code := strings.TrimSpace(req.LanguageCode); code != "" {
		language, err := entities.LanguageForCode(code)
		if err != nil {
			return "", err
		}
		return entities.LanguageCodeOf(language), nil
	}
	if req.Language != "" {
		language, err := entities.ParseLanguage(req.Language)
		if err != nil {
			return "", err
		}
		return entities.LanguageCodeOf(language), nil
	}
	return "", errors.New("language_code or language is required")
}

func encodingFromFilename(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3":
		return entities.EncodingMP3
	case ".flac":
		return entities.EncodingFLAC
	case ".ogg", ".opus":
		return entities.EncodingOggOpus
	case ".webm":
		return entities.EncodingWebmOpus
	default:
		return entities.EncodingWAV
	}
}
