package entities

import (
	"bytes"
	"io"
	"strings"
)

// Audio encodings understood by the speech-to-text adapters.
const (
	EncodingWAV      = "WAV"
	EncodingLinear16 = "LINEAR16"
	EncodingMP3      = "MP3"
	EncodingFLAC     = "FLAC"
	EncodingMulaw    = "MULAW"
	EncodingOggOpus  = "OGG_OPUS"
	EncodingWebmOpus = "WEBM_OPUS"
)

// Playback formats of synthesized audio.
const (
	FormatMPEG = "audio/mpeg"
	FormatWAV  = "audio/wav"
)

const defaultClipBase = "voice_message"

// FileExtension returns the file extension that names audio in the given
// encoding, or "" for an unknown encoding. Raw PCM encodings map to ".wav".
func FileExtension(encoding string) string {
	switch strings.ToUpper(encoding) {
	case EncodingWAV, EncodingLinear16, EncodingMulaw:
		return ".wav"
	case EncodingMP3:
		return ".mp3"
	case EncodingFLAC:
		return ".flac"
	case EncodingOggOpus:
		return ".ogg"
	case EncodingWebmOpus:
		return ".webm"
	default:
		return ""
	}
}

// AudioClip is one captured recording. Build it with NewAudioClip; the bytes are
// copied so later changes to the caller's buffer do not leak into the pipeline.
type AudioClip struct {
	Data       []byte
	Encoding   string
	SampleRate int
	Name       string
	// LanguageHint is the language the speaker is expected to use. Optional.
	LanguageHint Language
}

// NewAudioClip copies data into a new clip. An empty name becomes
// "voice_message" with the extension of the encoding.
func NewAudioClip(data []byte, encoding string, sampleRate int, name string) AudioClip {
	buf := make([]byte, len(data))
	copy(buf, data)
	if encoding == "" {
		encoding = EncodingWAV
	}
	if name == "" {
		ext := FileExtension(encoding)
		if ext == "" {
			ext = ".wav"
		}
		name = defaultClipBase + ext
	}
	return AudioClip{
		Data:       buf,
		Encoding:   encoding,
		SampleRate: sampleRate,
		Name:       name,
	}
}

// WithLanguageHint returns a copy of the clip carrying the expected spoken language.
func (c AudioClip) WithLanguageHint(l Language) AudioClip {
	c.LanguageHint = l
	return c
}

// IsEmpty reports whether the clip carries no audio.
func (c AudioClip) IsEmpty() bool {
	return len(c.Data) == 0
}

// Size returns the clip length in bytes.
func (c AudioClip) Size() int {
	return len(c.Data)
}

// Reader returns a reader over the clip positioned at its first byte.
func (c AudioClip) Reader() io.Reader {
	return bytes.NewReader(c.Data)
}
