package interpreter

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/berth/internal/adapters/fs"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/berth/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/berth/internal/adapters/prompt" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/berth/internal/adapters/shell"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/berth/internal/core/ports"
)

// NodeID is the unique identifier for the interpreter Graft node.
const NodeID graft.ID = "engine.interpreter"

func init() {
	graft.Register(graft.Node[*Interpreter]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			shell.NodeID,
			fs.NodeID,
			prompt.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Interpreter, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}

			fileSystem, err := graft.Dep[ports.FileSystem](ctx)
			if err != nil {
				return nil, err
			}

			prompter, err := graft.Dep[ports.Prompter](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(executor, fileSystem, prompter, log), nil
		},
	})
}
