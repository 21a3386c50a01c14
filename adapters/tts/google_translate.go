package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/shelenderrkumar/healthcare-translation/domain/entities"
	"github.com/shelenderrkumar/healthcare-translation/domain/repositories"
)

const (
	defaultTranslateBaseURL  = "https://translate.google.com"
	defaultMaxChunkLength    = 100
	defaultRequestsPerSecond = 5
	defaultConcurrency       = 2
	translateUserAgent       = "Mozilla/5.0 (compatible; healthcare-translation)"
)

// GoogleTranslateConfig holds configuration for the Google Translate speech adapter.
// No credential is needed.
type GoogleTranslateConfig struct {
	BaseURL           string        // Optional: default "https://translate.google.com"
	Timeout           time.Duration // Optional: per request, default 60s
	MaxChunkLength    int           // Optional: characters per request, default 100
	RequestsPerSecond float64       // Optional: outbound pacing, default 5
	Concurrency       int           // Optional: parallel segment fetches, default 2
}

// GoogleTranslateTTS synthesizes speech with the Google Translate read-aloud
// endpoint. Long text is split into short segments whose MP3 frames are
// concatenated in text order.
type GoogleTranslateTTS struct {
	baseURL        string
	maxChunkLength int
	concurrency    int
	limiter        *rate.Limiter
	httpClient     *http.Client
	logger         *zap.Logger
}

var _ repositories.TextToSpeech = (*GoogleTranslateTTS)(nil)

// ValidateGoogleTranslateConfig validates the GoogleTranslateConfig
func ValidateGoogleTranslateConfig(config GoogleTranslateConfig) error {
	if config.MaxChunkLength < 0 {
		return fmt.Errorf("max chunk length must be positive, got %d", config.MaxChunkLength)
	}
	if config.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second must be positive, got %f", config.RequestsPerSecond)
	}
	if config.Concurrency < 0 {
		return fmt.Errorf("concurrency must be positive, got %d", config.Concurrency)
	}
	return nil
}

// NewGoogleTranslateConfigFromEnv reads GOOGLE_TTS_BASE_URL, GOOGLE_TTS_RPS and
// GOOGLE_TTS_CONCURRENCY
func NewGoogleTranslateConfigFromEnv() GoogleTranslateConfig {
	config := GoogleTranslateConfig{
		BaseURL: os.Getenv("GOOGLE_TTS_BASE_URL"),
	}
	if v := os.Getenv("GOOGLE_TTS_RPS"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil && rps > 0 {
			config.RequestsPerSecond = rps
		}
	}
	if v := os.Getenv("GOOGLE_TTS_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.Concurrency = n
		}
	}
	return config
}

// NewGoogleTranslateTTS creates the default speech adapter
func NewGoogleTranslateTTS(config GoogleTranslateConfig, logger *zap.Logger) (*GoogleTranslateTTS, error) {
	if err := ValidateGoogleTranslateConfig(config); err != nil {
		return nil, err
	}

	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultTranslateBaseURL
		logger.Info("Using default base URL", zap.String("baseURL", baseURL))
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultHTTPTimeout
	}

	maxChunkLength := config.MaxChunkLength
	if maxChunkLength == 0 {
		maxChunkLength = defaultMaxChunkLength
	}

	rps := config.RequestsPerSecond
	if rps == 0 {
		rps = defaultRequestsPerSecond
		logger.Info("Using default request rate", zap.Float64("requestsPerSecond", rps))
	}

	concurrency := config.Concurrency
	if concurrency == 0 {
		concurrency = defaultConcurrency
	}

	return &GoogleTranslateTTS{
		baseURL:        baseURL,
		maxChunkLength: maxChunkLength,
		concurrency:    concurrency,
		limiter:        rate.NewLimiter(rate.Limit(rps), concurrency),
		httpClient:     &http.Client{Timeout: timeout},
		logger:         logger,
	}, nil
}

// Synthesize implements repositories.TextToSpeech
func (g *GoogleTranslateTTS) Synthesize(ctx context.Context, text, languageCode string) (*entities.SynthesisResult, error) {
	language, stageErr := validateSynthesisInput(text, languageCode)
	if stageErr != nil {
		return nil, stageErr
	}
	// The endpoint expects the exact table code, e.g. zh-CN
	tl := language.Code()

	chunks := splitText(text, g.maxChunkLength)
	g.logger.Info("Converting text to speech",
		zap.String("provider", "google_translate"),
		zap.Int("textLength", len(text)),
		zap.String("languageCode", tl),
		zap.Int("segments", len(chunks)))

	segments := make([][]byte, len(chunks))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(g.concurrency)

	for i, chunk := range chunks {
		i, chunk := i, chunk
		group.Go(func() error {
			audio, err := g.fetchSegment(gctx, chunk, tl, i, len(chunks))
			if err != nil {
				return err
			}
			segments[i] = audio
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		g.logger.Error("Speech synthesis failed", zap.Error(err))
		return nil, entities.AsStageError(entities.StageSynthesis, err)
	}

	audio := bytes.Join(segments, nil)
	g.logger.Info("Speech synthesis completed",
		zap.String("provider", "google_translate"),
		zap.Int("audioSize", len(audio)))

	return mpegResult(audio, languageCode), nil
}

func (g *GoogleTranslateTTS) fetchSegment(ctx context.Context, chunk, tl string, idx, total int) ([]byte, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("ie", "UTF-8")
	query.Set("client", "tw-ob")
	query.Set("tl", tl)
	query.Set("q", chunk)
	query.Set("total", strconv.Itoa(total))
	query.Set("idx", strconv.Itoa(idx))
	query.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/translate_tts?"+query.Encode(), nil)
	if err != nil {
		return nil, entities.SynthesisFailed("failed to create request", err)
	}
	req.Header.Set("User-Agent", translateUserAgent)
	req.Header.Set("Accept", entities.FormatMPEG)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, entities.SynthesisFailed("speech service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		msg := fmt.Sprintf("speech service returned status %d", resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests {
			msg = "speech service rate limit exceeded"
		}
		return nil, entities.SynthesisFailed(msg, fmt.Errorf("segment %d of %d: status %d", idx+1, total, resp.StatusCode))
	}

	audio, err := readAudio(resp.Body)
	if err != nil {
		return nil, entities.SynthesisFailed("incomplete audio from speech service", err)
	}
	return audio, nil
}

// splitText packs whitespace separated words into chunks of at most maxLen runes.
// Words longer than maxLen are cut at their last punctuation mark inside the limit,
// or hard at the limit when there is none.
func splitText(text string, maxLen int) []string {
	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = current[:0]
			currentLen = 0
		}
	}

	for _, word := range strings.Fields(text) {
		for utf8.RuneCountInString(word) > maxLen {
			flush()
			head, tail := cutWord(word, maxLen)
			chunks = append(chunks, head)
			word = tail
		}

		wordLen := utf8.RuneCountInString(word)
		if currentLen > 0 && currentLen+1+wordLen > maxLen {
			flush()
		}
		if currentLen > 0 {
			currentLen++
		}
		current = append(current, word)
		currentLen += wordLen
	}
	flush()

	return chunks
}

func cutWord(word string, maxLen int) (string, string) {
	runes := []rune(word)
	cut := maxLen
	for i := maxLen - 1; i > 0; i-- {
		if unicode.IsPunct(runes[i]) {
			cut = i + 1
			break
		}
	}
	return string(runes[:cut]), string(runes[cut:])
}
