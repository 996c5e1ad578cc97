package voice

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glossglow/salon-ai-receptionist/pkg/logging"
)

type fakeSpeechAPI struct {
	transcription    openai.AudioResponse
	transcriptionErr error
	speech           string
	speechErr        error

	transcribeCalls int
	speechCalls     int
	lastAudioReq    openai.AudioRequest
	lastSpeechReq   openai.CreateSpeechRequest
}

func (f *fakeSpeechAPI) CreateTranscription(_ context.Context, req openai.AudioRequest) (openai.AudioResponse, error) {
	f.transcribeCalls++
	f.lastAudioReq = req
	return f.transcription, f.transcriptionErr
}

func (f *fakeSpeechAPI) CreateSpeech(_ context.Context, req openai.CreateSpeechRequest) (openai.RawResponse, error) {
	f.speechCalls++
	f.lastSpeechReq = req
	if f.speechErr != nil {
		return openai.RawResponse{}, f.speechErr
	}
	return openai.RawResponse{ReadCloser: io.NopCloser(strings.NewReader(f.speech))}, nil
}

func TestTranscribe(t *testing.T) {
	api := &fakeSpeechAPI{transcription: openai.AudioResponse{Text: "  book me a haircut  "}}
	v := New(api, Config{}, logging.Default())

	text, err := v.Transcribe(context.Background(), []byte("audio-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "book me a haircut", text)
	assert.Equal(t, openai.Whisper1, api.lastAudioReq.Model)
	assert.NotNil(t, api.lastAudioReq.Reader)
}

func TestTranscribeEmptyAudioSkipsAPI(t *testing.T) {
	api := &fakeSpeechAPI{}
	v := New(api, Config{}, logging.Default())

	text, err := v.Transcribe(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Zero(t, api.transcribeCalls)
}

func TestTranscribeError(t *testing.T) {
	api := &fakeSpeechAPI{transcriptionErr: errors.New("rate limited")}
	v := New(api, Config{}, logging.Default())

	_, err := v.Transcribe(context.Background(), []byte("audio"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transcription failed")
}

func TestSynthesize(t *testing.T) {
	api := &fakeSpeechAPI{speech: "mp3-bytes"}
	v := New(api, Config{SpeechVoice: "nova"}, logging.Default())

	audio, err := v.Synthesize(context.Background(), "Hello!")
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3-bytes"), audio)
	assert.Equal(t, openai.TTSModel1, api.lastSpeechReq.Model)
	assert.Equal(t, openai.VoiceNova, api.lastSpeechReq.Voice)
	assert.Equal(t, "Hello!", api.lastSpeechReq.Input)
}

func TestSynthesizeEmptyTextSkipsAPI(t *testing.T) {
	api := &fakeSpeechAPI{}
	v := New(api, Config{}, logging.Default())

	audio, err := v.Synthesize(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, audio)
	assert.Zero(t, api.speechCalls)
}

func TestSynthesizeErrorDegradesToSilence(t *testing.T) {
	api := &fakeSpeechAPI{speechErr: errors.New("tts down")}
	v := New(api, Config{}, logging.Default())

	audio, err := v.Synthesize(context.Background(), "Hello!")
	require.NoError(t, err)
	assert.Nil(t, audio)
}
