package interview

import (
	"context"
	"errors"
	"sync"
)

type generatorCall struct {
	system  string
	message string
}

type stubResponse struct {
	text string
	err  error
}

type stubGenerator struct {
	mu        sync.Mutex
	responses []stubResponse
	calls     []generatorCall
}

func newStubGenerator(responses ...string) *stubGenerator {
	g := &stubGenerator{}
	for _, r := range responses {
		g.responses = append(g.responses, stubResponse{text: r})
	}
	return g
}

func (g *stubGenerator) failWith(err error) *stubGenerator {
	g.responses = append(g.responses, stubResponse{err: err})
	return g
}

func (g *stubGenerator) GenerateContent(_ context.Context, system, message string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, generatorCall{system: system, message: message})
	if len(g.responses) == 0 {
		return "", errors.New("unexpected generate call")
	}
	res := g.responses[0]
	g.responses = g.responses[1:]
	return res.text, res.err
}

type stubChunks struct {
	chunks map[string][]string
	err    error
	calls  int
}

func (s *stubChunks) FetchAllChunks(_ context.Context, collectionID string) ([]string, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.chunks[collectionID], nil
}

func turns(n int) []Turn {
	out := make([]Turn, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Turn{Question: "question", Response: "response"})
	}
	return out
}
