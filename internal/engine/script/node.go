package script

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the script resolver Graft node.
const NodeID graft.ID = "engine.script"

func init() {
	graft.Register(graft.Node[*Resolver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{},
		Run: func(_ context.Context) (*Resolver, error) {
			return NewResolver(), nil
		},
	})
}
