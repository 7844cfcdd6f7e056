package ports

import "go.trai.ch/berth/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds the project file from cwd upwards and returns the resolved project.
	Load(cwd string) (*domain.Project, error)
}
