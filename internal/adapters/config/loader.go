// Package config provides the configuration loader for berth.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"dario.cat/mergo"
	"go.trai.ch/berth/internal/core/domain"
	"go.trai.ch/berth/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// SupportedVersion is the berth.yml schema version this loader understands.
const SupportedVersion = "1"

var validScriptNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_:.-]+$`)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger         ports.Logger
	userConfigPath func() string
}

// NewLoader creates a new Loader with the given logger.
// User defaults are read from domain.DefaultUserConfigPath.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, userConfigPath: domain.DefaultUserConfigPath}
}

// WithUserConfigPath overrides where user defaults are read from.
// An empty path disables user defaults.
func (l *Loader) WithUserConfigPath(path string) *Loader {
	l.userConfigPath = func() string { return path }
	return l
}

// Load finds berth.yml from cwd upwards, merges the user defaults underneath
// it and returns the resolved project.
func (l *Loader) Load(cwd string) (*domain.Project, error) {
	configPath, err := findConfiguration(cwd)
	if err != nil {
		return nil, err
	}

	var berthfile Berthfile
	if err := readAndUnmarshalYAML(configPath, &berthfile); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	if berthfile.Version != "" && berthfile.Version != SupportedVersion {
		l.Logger.Warn(fmt.Sprintf("%s declares version %q, expected %q", domain.ProjectFileName, berthfile.Version, SupportedVersion))
	}

	if err := l.mergeUserDefaults(&berthfile); err != nil {
		return nil, err
	}

	if err := validate(&berthfile); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	return buildProject(filepath.Dir(configPath), &berthfile), nil
}

func findConfiguration(cwd string) (string, error) {
	currentDir, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.Wrap(err, "failed to resolve working directory")
	}

	for {
		candidate := filepath.Join(currentDir, domain.ProjectFileName)
		if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(domain.ErrConfigNotFound, "cwd", cwd)
}

// mergeUserDefaults fills everything berth.yml leaves unset from the user
// defaults file. Keys present in both keep the project value.
func (l *Loader) mergeUserDefaults(berthfile *Berthfile) error {
	path := l.userConfigPath()
	if path == "" {
		return nil
	}

	var defaults Berthfile
	if err := readAndUnmarshalYAML(path, &defaults); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(err, "path", path)
	}

	// A project name wins over a default of the other kind with the same name.
	maps.DeleteFunc(defaults.Aliases, func(alias, _ string) bool {
		_, ok := berthfile.Scripts[alias]
		return ok
	})
	maps.DeleteFunc(defaults.Scripts, func(name string, _ ScriptDTO) bool {
		_, ok := berthfile.Aliases[name]
		return ok
	})

	// Scripts merge by name; a project script replaces a default one whole.
	scripts := mergeScripts(berthfile.Scripts, defaults.Scripts)
	berthfile.Scripts, defaults.Scripts = nil, nil

	if err := mergo.Merge(berthfile, defaults); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrConfigMergeFailed.Error()), "path", path)
	}
	berthfile.Scripts = scripts
	return nil
}

func mergeScripts(project, defaults map[string]ScriptDTO) map[string]ScriptDTO {
	merged := maps.Clone(defaults)
	if merged == nil {
		merged = make(map[string]ScriptDTO, len(project))
	}
	maps.Copy(merged, project)
	return merged
}

func validate(berthfile *Berthfile) error {
	for _, name := range slices.Sorted(maps.Keys(berthfile.Scripts)) {
		if err := validateScriptName(name); err != nil {
			return err
		}
	}

	for _, alias := range slices.Sorted(maps.Keys(berthfile.Aliases)) {
		if err := validateScriptName(alias); err != nil {
			return err
		}
		if _, ok := berthfile.Scripts[alias]; ok {
			return zerr.With(domain.ErrDuplicateAlias, "alias", alias)
		}
	}

	return nil
}

// validateScriptName checks that a script or alias name only uses allowed characters.
func validateScriptName(name string) error {
	if !validScriptNameRegex.MatchString(name) {
		return zerr.With(domain.ErrInvalidScriptName, "name", name)
	}
	return nil
}

func buildProject(root string, berthfile *Berthfile) *domain.Project {
	name := berthfile.Project
	if name == "" {
		name = filepath.Base(root)
	}

	scripts := make(map[string]domain.Script, len(berthfile.Scripts))
	for scriptName, dto := range berthfile.Scripts {
		scripts[scriptName] = domain.Script{
			Name:        scriptName,
			Description: dto.Description,
			Steps:       toSteps(dto.Steps),
		}
	}

	return &domain.Project{
		Name:  name,
		Root:  root,
		Shell: berthfile.Shell,
		Env:   berthfile.Env,
		Compose: domain.ComposeConfig{
			Binary: berthfile.Compose.Binary,
			File:   berthfile.Compose.File,
		},
		Scripts: scripts,
		Aliases: berthfile.Aliases,
	}
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is found by discovery or set by the user
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return nil
}
