package runner

import "context"

//go:generate mockgen -source=caller.go -destination=mocks/caller_mock.go -package=mocks

// ModelCaller is the generating capability the orchestrator drives.
// On the first attempt feedback is empty; on re-asks it carries the
// corrective message synthesized from the prior failures. The engine
// assumes nothing about transport or provider.
type ModelCaller interface {
	Call(ctx context.Context, prompt string, feedback string) (string, error)
}

// StreamCaller is the streaming equivalent; the returned channel is
// closed by the producer when generation finishes.
type StreamCaller interface {
	CallStream(ctx context.Context, prompt string, feedback string) (<-chan string, error)
}
