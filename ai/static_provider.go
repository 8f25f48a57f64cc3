package ai

import "context"

// StaticProvider answers every prompt with the same output. Used for local
// development without provider credentials.
type StaticProvider struct {
	Output string
	Err    error
}

func (p StaticProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if p.Err != nil {
		return "", p.Err
	}
	return p.Output, nil
}
