package ports

import (
	"context"

	"go.trai.ch/berth/internal/core/domain"
)

// Prompter asks the user yes/no questions.
//
//go:generate mockgen -source=prompter.go -destination=mocks/mock_prompter.go -package=mocks
type Prompter interface {
	// Confirm asks question and blocks until the user answers yes or no.
	Confirm(ctx context.Context, question string) (domain.Answer, error)
}
