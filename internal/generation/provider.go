package generation

import (
	"context"
	"errors"
)

// ErrGenerationFailed covers every upstream failure mode: transport
// errors, non-2xx responses, malformed bodies and empty completions.
// Callers must not persist anything when they see it.
var ErrGenerationFailed = errors.New("ad copy generation failed")

type Request struct {
	Product     string
	Description string
	Platform    string
	Tone        string
	Language    string
	Prompt      string
}

type Result struct {
	Copy     string
	Model    string
	Provider string
}

type Provider interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}
