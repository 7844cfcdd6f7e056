// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/berth/internal/adapters/config"
	_ "go.trai.ch/berth/internal/adapters/fs"
	_ "go.trai.ch/berth/internal/adapters/logger"
	_ "go.trai.ch/berth/internal/adapters/prompt"
	_ "go.trai.ch/berth/internal/adapters/shell"
	// Register app and engine nodes.
	_ "go.trai.ch/berth/internal/app"
	_ "go.trai.ch/berth/internal/engine/interpreter"
	_ "go.trai.ch/berth/internal/engine/script"
)
