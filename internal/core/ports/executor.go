// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.trai.ch/berth/internal/core/domain"
)

// Executor defines the interface for running shell commands.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the command and blocks until it exits.
	//
	// Non-interactive commands write their output to stdout and stderr.
	// Interactive commands inherit the parent's standard streams and ignore them.
	//
	// It returns an error if the command cannot be started or exits non-zero.
	Execute(ctx context.Context, cmd *domain.ShellCommand, stdout, stderr io.Writer) error
}
