package llm

import "context"

// StubClient returns canned responses in order. It backs tests and the
// chat binary's dry-run mode, where no provider credentials exist.
type StubClient struct {
	Responses []string
	Err       error
	Calls     []CompletionRequest

	next int
}

// Complete implements Client by replaying the configured responses. The last
// response repeats once the list is exhausted.
func (s *StubClient) Complete(_ context.Context, req CompletionRequest) (CompletionResponse, error) {
	s.Calls = append(s.Calls, req)

	if s.Err != nil {
		return CompletionResponse{}, s.Err
	}

	if len(s.Responses) == 0 {
		return CompletionResponse{}, ErrEmptyOutput
	}

	idx := s.next
	if idx >= len(s.Responses) {
		idx = len(s.Responses) - 1
	}

	s.next++

	return CompletionResponse{Text: s.Responses[idx], Model: "stub"}, nil
}
