package api

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/canal5/stt-relay/internal/backend"
	"github.com/canal5/stt-relay/internal/pipeline"
)

// Runner is the pipeline entry point the handler depends on.
type Runner interface {
	Run(ctx context.Context, entregaID string, audio []byte, filename string) (*pipeline.Result, error)
}

// Transcriber is the debug-endpoint dependency: transcription only, no
// template or backend involvement.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// STTHandler serves the audio-survey upload endpoints.
type STTHandler struct {
	runner         Runner
	stt            Transcriber
	maxUploadBytes int64
	log            zerolog.Logger
}

// NewSTTHandler creates the upload handler.
func NewSTTHandler(runner Runner, stt Transcriber, maxUploadBytes int64, log zerolog.Logger) *STTHandler {
	return &STTHandler{
		runner:         runner,
		stt:            stt,
		maxUploadBytes: maxUploadBytes,
		log:            log.With().Str("handler", "stt").Logger(),
	}
}

// Upload handles POST /stt. The multipart "file" part must carry an
// audio/* content type and be named <entrega_id>.<ext> with a UUID stem.
func (h *STTHandler) Upload(w http.ResponseWriter, r *http.Request) {
	audio, filename, ok := h.readAudioUpload(w, r)
	if !ok {
		return
	}

	entregaID := strings.SplitN(filename, ".", 2)[0]
	if _, err := uuid.Parse(entregaID); err != nil {
		WriteError(w, http.StatusBadRequest, "el archivo debe llamarse <entrega_id>.wav/.mp3/etc")
		return
	}

	result, err := h.runner.Run(r.Context(), entregaID, audio, filename)
	if err != nil {
		h.writePipelineError(w, entregaID, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// WhisperTest handles POST /whisper-test: transcription only, any
// filename, for debugging the speech-to-text provider.
func (h *STTHandler) WhisperTest(w http.ResponseWriter, r *http.Request) {
	audio, filename, ok := h.readAudioUpload(w, r)
	if !ok {
		return
	}

	text, err := h.stt.Transcribe(r.Context(), audio, filename)
	if err != nil {
		h.log.Error().Err(err).Str("filename", filename).Msg("transcription failed")
		WriteErrorDetail(w, http.StatusInternalServerError, "error transcribiendo", err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"filename":      filename,
		"transcripcion": text,
	})
}

// readAudioUpload extracts the "file" multipart part, enforcing the
// audio/* content-type constraint. Writes the error response itself and
// returns ok=false when the upload is rejected.
func (h *STTHandler) readAudioUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return nil, "", false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "falta el campo «file»")
		return nil, "", false
	}
	defer file.Close()

	if !isAudioPart(header) {
		WriteError(w, http.StatusBadRequest, "sube un archivo de audio (wav/mp3/ogg/webm…)")
		return nil, "", false
	}

	audio, err := io.ReadAll(file)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "failed to read audio file")
		return nil, "", false
	}

	return audio, header.Filename, true
}

func (h *STTHandler) writePipelineError(w http.ResponseWriter, entregaID string, err error) {
	log := h.log.With().Str("entrega_id", entregaID).Logger()

	// Template-fetch failures propagate the backend's own status code.
	var se *backend.StatusError
	if errors.As(err, &se) {
		log.Warn().Int("status", se.StatusCode).Msg("backend rejected template fetch")
		WriteErrorDetail(w, se.StatusCode, "backend no devolvió plantilla", se.Body)
		return
	}

	switch {
	case errors.Is(err, pipeline.ErrTranscription):
		log.Error().Err(err).Msg("transcription failed")
		WriteErrorDetail(w, http.StatusInternalServerError, "error transcribiendo", err.Error())
	case errors.Is(err, pipeline.ErrExtraction):
		log.Error().Err(err).Msg("extraction returned malformed output")
		WriteErrorDetail(w, http.StatusInternalServerError, "el modelo no devolvió JSON válido", err.Error())
	default:
		log.Error().Err(err).Msg("upload processing failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

func isAudioPart(header *multipart.FileHeader) bool {
	return strings.HasPrefix(header.Header.Get("Content-Type"), "audio/")
}
