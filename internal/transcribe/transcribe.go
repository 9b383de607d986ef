// Package transcribe turns recorded audio into text.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// MaxAudioBytes caps uploaded recordings.
const MaxAudioBytes = 25 << 20

const prompt = "Transcribe the speech in this audio recording verbatim. " +
	"Reply with the transcript only, without commentary or formatting."

// ErrEmptyAudio is returned when there is nothing to transcribe.
var ErrEmptyAudio = errors.New("no audio provided")

// Result is a finished transcription.
type Result struct {
	Text string `json:"text"`
}

// Transcriber converts audio of the given MIME type to text.
type Transcriber interface {
	Transcribe(ctx context.Context, mimeType string, audio []byte) (Result, error)
}

type generateFunc func(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)

// Gemini transcribes audio with a Gemini model.
type Gemini struct {
	client   *genai.Client
	generate generateFunc
}

// NewGemini connects to the Gemini API. It returns nil, nil when apiKey is
// empty so callers can treat transcription as unconfigured.
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)
	return &Gemini{client: client, generate: model.GenerateContent}, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	if g == nil || g.client == nil {
		return nil
	}
	return g.client.Close()
}

// Transcribe sends the recording to the model and returns its transcript.
func (g *Gemini) Transcribe(ctx context.Context, mimeType string, audio []byte) (Result, error) {
	if len(audio) == 0 {
		return Result{}, ErrEmptyAudio
	}
	if len(audio) > MaxAudioBytes {
		return Result{}, fmt.Errorf("audio is larger than %d bytes", MaxAudioBytes)
	}
	if mimeType == "" {
		mimeType = "audio/webm"
	}
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}

	resp, err := g.generate(ctx, genai.Blob{MIMEType: mimeType, Data: audio}, genai.Text(prompt))
	if err != nil {
		return Result{}, fmt.Errorf("transcribing audio: %w", err)
	}
	return Result{Text: responseText(resp)}, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		break
	}
	return strings.TrimSpace(b.String())
}
