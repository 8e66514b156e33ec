package policy

import (
	"context"
	"fmt"

	"github.com/shaiso/mgdt/internal/atari"
	"github.com/shaiso/mgdt/internal/domain"
)

// Policy выбирает по одному действию для каждого окружения батча.
type Policy interface {
	// SelectActions возвращает действия для батча историй.
	// Длина результата равна длине батча.
	SelectActions(ctx context.Context, histories []atari.History) ([]int, error)

	// Close освобождает ресурсы политики.
	Close() error
}

// New создаёт политику по спецификации.
func New(spec domain.PolicySpec) (Policy, error) {
	switch spec.Kind {
	case domain.PolicyKindRemote:
		return NewRemotePolicy(spec)
	case domain.PolicyKindRandom:
		return NewRandomPolicy(0), nil
	default:
		return nil, fmt.Errorf("unknown policy kind: %q", spec.Kind)
	}
}
