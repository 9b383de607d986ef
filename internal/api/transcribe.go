package api

import (
	"io"
	"net/http"

	"github.com/erazemk/transferlog/internal/httpx"
	"github.com/erazemk/transferlog/internal/transcribe"
)

// TranscribeHandler turns uploaded audio into text.
type TranscribeHandler struct {
	Transcriber transcribe.Transcriber
}

// Transcribe handles POST /api/openai/transcribe.
func (h *TranscribeHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	if h.Transcriber == nil {
		httpx.Logger(r.Context()).Error("transcription API key is missing")
		jsonError(w, http.StatusInternalServerError, "transcription API key is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, transcribe.MaxAudioBytes+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "No audio file provided")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil || len(audio) == 0 {
		jsonError(w, http.StatusBadRequest, "No audio file provided")
		return
	}

	res, err := h.Transcriber.Transcribe(r.Context(), header.Header.Get("Content-Type"), audio)
	if err != nil {
		httpx.Logger(r.Context()).Error("error processing audio", "error", err)
		jsonError(w, http.StatusInternalServerError, "Error processing audio")
		return
	}
	jsonResponse(w, http.StatusOK, res)
}
