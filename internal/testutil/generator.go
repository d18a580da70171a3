package testutil

import (
	"context"
	"sync"
)

// FakeGenerator records prompts and returns a canned reply.
type FakeGenerator struct {
	Text string
	Err  error

	mu      sync.Mutex
	prompts []string
}

func (g *FakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	if g.Err != nil {
		return "", g.Err
	}
	return g.Text, nil
}

// Prompts returns every prompt received so far.
func (g *FakeGenerator) Prompts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.prompts...)
}
