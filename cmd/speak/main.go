package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/shelenderrkumar/healthcare-translation/domain/entities"
	"github.com/shelenderrkumar/healthcare-translation/internal/config"
	"github.com/shelenderrkumar/healthcare-translation/internal/providers"
	"github.com/shelenderrkumar/healthcare-translation/usecase"
)

func main() {
	godotenv.Load()

	text := flag.String("text", "Take two tablets daily.", "text to speak")
	language := flag.String("lang", "English", "language label (e.g. Spanish) or code (e.g. es)")
	output := flag.String("out", "speech_output.mp3", "output file")
	provider := flag.String("provider", "", "speech provider, overrides TTS_PROVIDER")
	autoplay := flag.Bool("play", os.Getenv("NO_AUTOPLAY") != "true", "play the file when done")
	flag.Parse()

	// Create logger
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	code, err := resolveCode(*language)
	if err != nil {
		logger.Fatal("Unsupported language", zap.String("lang", *language), zap.Error(err))
	}

	cfg := config.Default()
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.ElevenLabsAPIKey = os.Getenv("ELEVEN_LABS_API_KEY")
	if v := os.Getenv("TTS_PROVIDER"); v != "" {
		cfg.TTSProvider = v
	}
	if *provider != "" {
		cfg.TTSProvider = *provider
	}

	speaker, err := providers.NewTextToSpeech(cfg, nil, logger)
	if err != nil {
		logger.Fatal("Failed to create TTS service", zap.Error(err))
	}

	service := usecase.NewTranslationService(nil, nil, speaker, nil, nil, 30*time.Second, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Converting text to speech",
		zap.String("text", *text),
		zap.String("languageCode", code),
		zap.String("provider", cfg.TTSProvider))

	result := service.Speak(ctx, *text, code)
	if !result.OK() {
		logger.Fatal("Failed to convert text to speech",
			zap.String("reason", result.Failure.Message),
			zap.Error(result.Failure.Err))
	}

	if err := os.WriteFile(*output, result.Audio, 0o644); err != nil {
		logger.Fatal("Failed to write output file", zap.Error(err))
	}

	fmt.Printf("Audio saved to %s (%d bytes, %s)\n", *output, len(result.Audio), result.Format)

	if *autoplay {
		if err := playAudioFile(*output, logger); err != nil {
			logger.Warn("Failed to play audio automatically", zap.Error(err))
		}
	}
}

func resolveCode(value string) (string, error) {
	if language, err := entities.ParseLanguage(value); err == nil {
		return entities.LanguageCodeOf(language), nil
	}
	language, err := entities.LanguageForCode(value)
	if err != nil {
		return "", err
	}
	return entities.LanguageCodeOf(language), nil
}

// audioPlayer represents an audio player command and its arguments
type audioPlayer struct {
	command string
	args    []string
}

var audioPlayers = []audioPlayer{
	{"mpg123", []string{"-q"}},
	{"ffplay", []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}},
	{"afplay", nil},
}

// playAudioFile tries each MP3 capable player found on PATH
func playAudioFile(filename string, logger *zap.Logger) error {
	for _, player := range audioPlayers {
		if _, err := exec.LookPath(player.command); err != nil {
			continue
		}
		args := append(append([]string{}, player.args...), filename)
		logger.Info("Attempting to play audio", zap.String("player", player.command))
		err := exec.Command(player.command, args...).Run()
		if err == nil {
			return nil
		}
		logger.Debug("Player failed", zap.String("player", player.command), zap.Error(err))
	}
	return errors.New("no suitable audio player found")
}
