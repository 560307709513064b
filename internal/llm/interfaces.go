package llm

import "context"

// VisionCompleter is the interface for vision-capable completion. The
// classifier sends one prompt plus one PNG image and gets back the raw
// model text; parsing is the caller's problem.
type VisionCompleter interface {
	Complete(ctx context.Context, prompt string, image []byte) (string, error)
	GetModel() string
}
