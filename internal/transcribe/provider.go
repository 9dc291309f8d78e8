package transcribe

import "context"

// Provider is the interface for speech-to-text backends. Audio arrives as
// in-memory upload bytes; the original filename is only used to derive a
// provider-acceptable extension.
type Provider interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
	Name() string
	Model() string
}
