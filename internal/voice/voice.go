// Package voice converts between caller audio and text using OpenAI's
// speech APIs.
package voice

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/glossglow/salon-ai-receptionist/pkg/logging"
)

// Transcriber turns caller audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Synthesizer turns reply text into audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type speechAPI interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
	CreateSpeech(ctx context.Context, request openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// OpenAIVoice implements both directions on the OpenAI audio endpoints.
type OpenAIVoice struct {
	api         speechAPI
	sttModel    string
	speechModel openai.SpeechModel
	speechVoice openai.SpeechVoice
	logger      *logging.Logger
}

// Config selects the models used for transcription and synthesis.
type Config struct {
	TranscriptionModel string
	SpeechModel        string
	SpeechVoice        string
}

// New creates an OpenAI-backed voice pipeline.
func New(api speechAPI, cfg Config, logger *logging.Logger) *OpenAIVoice {
	if api == nil {
		panic("voice: openai client cannot be nil")
	}
	if cfg.TranscriptionModel == "" {
		cfg.TranscriptionModel = openai.Whisper1
	}
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = string(openai.TTSModel1)
	}
	if cfg.SpeechVoice == "" {
		cfg.SpeechVoice = string(openai.VoiceNova)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &OpenAIVoice{
		api:         api,
		sttModel:    cfg.TranscriptionModel,
		speechModel: openai.SpeechModel(cfg.SpeechModel),
		speechVoice: openai.SpeechVoice(cfg.SpeechVoice),
		logger:      logger,
	}
}

// Transcribe converts one audio frame to text. Empty audio yields an
// empty transcript without calling the API.
func (v *OpenAIVoice) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", nil
	}

	resp, err := v.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    v.sttModel,
		FilePath: "turn.webm",
		Reader:   bytes.NewReader(audio),
	})
	if err != nil {
		return "", fmt.Errorf("voice: transcription failed: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// Synthesize renders reply text as audio. Failures degrade to empty
// audio so the text reply still reaches the caller.
func (v *OpenAIVoice) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	stream, err := v.api.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: v.speechModel,
		Voice: v.speechVoice,
		Input: text,
	})
	if err != nil {
		v.logger.Error("speech synthesis failed", "error", err)
		return nil, nil
	}
	defer stream.Close()

	audio, err := io.ReadAll(stream)
	if err != nil {
		v.logger.Error("speech stream read failed", "error", err)
		return nil, nil
	}
	return audio, nil
}

var (
	_ Transcriber = (*OpenAIVoice)(nil)
	_ Synthesizer = (*OpenAIVoice)(nil)
)
