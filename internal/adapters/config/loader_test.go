package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/berth/internal/adapters/config"
	"go.trai.ch/berth/internal/core/domain"
	"go.trai.ch/berth/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func createFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	//nolint:gosec // Test file permissions
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
	return path
}

func newLoader(t *testing.T) *config.Loader {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	return config.NewLoader(mockLogger).WithUserConfigPath("")
}

const fullBerthfile = `
version: "1"
project: shop
shell: bash
env:
  APP_ENV: dev
compose:
  binary: docker compose
  file: compose.yml
aliases:
  db: db-import
scripts:
  db-import:
    description: Import the database dump
    steps:
      - "echo importing"
      - sh: "mysql -uroot shop"
        env: { MYSQL_PWD: root }
        stdin: "select 1;"
      - dc: "up -d"
      - dc:
          run: php
          workdir: /var/www
          user: www-data
          env: ["A=1"]
          rm: true
          command: composer install
      - script: other
      - write: { path: .env, content: "A=1\n" }
      - exists: composer.json
      - differ: [a.txt, b.txt]
      - notify: done
      - error: something odd
      - if: { exists: vendor, differ: [[a, b]], ask: "Reinstall?" }
        label: reinstall vendor
        then: [ "composer install" ]
        else: [ { notify: skipped } ]
  other:
    - "echo other"
`

func TestLoader_Load_FullSchema(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.ProjectFileName, fullBerthfile)

	project, err := newLoader(t).Load(root)
	require.NoError(t, err)

	assert.Equal(t, "shop", project.Name)
	assert.Equal(t, root, project.Root)
	assert.Equal(t, "bash", project.ShellOrDefault())
	assert.Equal(t, map[string]string{"APP_ENV": "dev"}, project.Env)
	assert.Equal(t, domain.ComposeConfig{Binary: "docker compose", File: "compose.yml"}, project.Compose)
	assert.Equal(t, map[string]string{"db": "db-import"}, project.Aliases)
	assert.Equal(t, []string{"db", "db-import", "other"}, project.ScriptNames())

	script := project.Scripts["db-import"]
	assert.Equal(t, "db-import", script.Name)
	assert.Equal(t, "Import the database dump", script.Description)
	assert.Equal(t, []domain.Step{
		domain.ShellStep{Command: "echo importing"},
		domain.ShellStep{Command: "mysql -uroot shop", Env: map[string]string{"MYSQL_PWD": "root"}, Stdin: "select 1;"},
		domain.RawComposeStep{Args: "up -d"},
		domain.ComposeStep{
			Subcommand: domain.ComposeRun,
			Service:    "php",
			Workdir:    "/var/www",
			User:       "www-data",
			Env:        []string{"A=1"},
			Remove:     true,
			Commands:   []string{"composer install"},
		},
		domain.ScriptRef{Name: "other"},
		domain.WriteStep{Path: ".env", Content: "A=1\n"},
		domain.ExistsStep{Path: "composer.json"},
		domain.DifferStep{Left: "a.txt", Right: "b.txt"},
		domain.NotifyStep{Message: "done"},
		domain.NotifyStep{Message: "something odd", Error: true},
		domain.IfStep{
			Exists: []string{"vendor"},
			Differ: [][2]string{{"a", "b"}},
			Ask:    "Reinstall?",
			Label:  "reinstall vendor",
			Then:   []domain.Step{domain.ShellStep{Command: "composer install"}},
			Else:   []domain.Step{domain.NotifyStep{Message: "skipped"}},
		},
	}, script.Steps)

	assert.Equal(t, []domain.Step{domain.ShellStep{Command: "echo other"}}, project.Scripts["other"].Steps)
}

func TestLoader_Load_DiscoversUpwards(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.ProjectFileName, "scripts:\n  hi: [\"echo hi\"]\n")
	nested := filepath.Join(root, "src", "app")
	require.NoError(t, os.MkdirAll(nested, domain.DirPerm))

	project, err := newLoader(t).Load(nested)
	require.NoError(t, err)

	assert.Equal(t, root, project.Root)
	assert.Equal(t, filepath.Base(root), project.Name, "project name defaults to the root directory")
}

func TestLoader_Load_NotFound(t *testing.T) {
	_, err := newLoader(t).Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not find berth.yml")
}

func TestLoader_Load_ParseError(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.ProjectFileName, "scripts: [unclosed\n")

	_, err := newLoader(t).Load(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrConfigParseFailed.Error())
}

func TestLoader_Load_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "invalid script name",
			content: "scripts:\n  \"bad name\": [\"echo\"]\n",
			wantErr: domain.ErrInvalidScriptName.Error(),
		},
		{
			name:    "invalid alias name",
			content: "aliases:\n  \"a/b\": build\nscripts:\n  build: [\"make\"]\n",
			wantErr: domain.ErrInvalidScriptName.Error(),
		},
		{
			name:    "alias shadows script",
			content: "aliases:\n  build: test\nscripts:\n  build: [\"make\"]\n  test: [\"make test\"]\n",
			wantErr: domain.ErrDuplicateAlias.Error(),
		},
		{
			name:    "step with two kinds",
			content: "scripts:\n  x:\n    - { sh: ls, notify: hi }\n",
			wantErr: "step has more than one kind",
		},
		{
			name:    "step without kind",
			content: "scripts:\n  x:\n    - { env: { A: b } }\n",
			wantErr: "step has no kind",
		},
		{
			name:    "modifier on wrong kind",
			content: "scripts:\n  x:\n    - { notify: hi, stdin: data }\n",
			wantErr: `unexpected key "stdin" for notify step`,
		},
		{
			name:    "differ needs a pair",
			content: "scripts:\n  x:\n    - differ: [a]\n",
			wantErr: "differ needs exactly two paths",
		},
		{
			name:    "exists without path",
			content: "scripts:\n  x:\n    - exists:\n",
			wantErr: "exists step needs a path",
		},
		{
			name:    "exists with empty string",
			content: "scripts:\n  x:\n    - exists: \"\"\n",
			wantErr: "exists step needs a path",
		},
		{
			name:    "if exists without path",
			content: "scripts:\n  x:\n    - if: { exists: [vendor, \"\"] }\n      then: [ls]\n",
			wantErr: "exists condition needs a path",
		},
		{
			name:    "differ with empty path",
			content: "scripts:\n  x:\n    - differ: [a, \"\"]\n",
			wantErr: "differ needs exactly two paths",
		},
		{
			name:    "compose without service",
			content: "scripts:\n  x:\n    - dc: { command: ls }\n",
			wantErr: "run or exec is required",
		},
		{
			name:    "compose with run and exec",
			content: "scripts:\n  x:\n    - dc: { run: php, exec: php }\n",
			wantErr: "set either run or exec, not both",
		},
		{
			name:    "write without path",
			content: "scripts:\n  x:\n    - write: { content: hi }\n",
			wantErr: "write step needs a path",
		},
		{
			name:    "sequence step",
			content: "scripts:\n  x:\n    - [a, b]\n",
			wantErr: "step must be a string or a mapping",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			createFile(t, root, domain.ProjectFileName, tt.content)

			_, err := newLoader(t).Load(root)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoader_Load_UnknownVersionWarns(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.ProjectFileName, "version: \"2\"\n")

	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn(`berth.yml declares version "2", expected "1"`)

	_, err := config.NewLoader(mockLogger).WithUserConfigPath("").Load(root)
	require.NoError(t, err)
}

func TestLoader_Load_UserDefaults(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.ProjectFileName, `
shell: bash
env:
  APP_ENV: dev
scripts:
  build: ["make"]
`)
	defaults := createFile(t, t.TempDir(), "config.yml", `
shell: zsh
env:
  APP_ENV: prod
  EDITOR: vim
compose:
  binary: docker compose
aliases:
  b: build
scripts:
  build: ["echo never"]
  doctor: ["docker info"]
`)

	ctrl := gomock.NewController(t)
	loader := config.NewLoader(mocks.NewMockLogger(ctrl)).WithUserConfigPath(defaults)

	project, err := loader.Load(root)
	require.NoError(t, err)

	assert.Equal(t, "bash", project.Shell, "project value wins")
	assert.Equal(t, map[string]string{"APP_ENV": "dev", "EDITOR": "vim"}, project.Env)
	assert.Equal(t, "docker compose", project.ComposeBinary())
	assert.Equal(t, map[string]string{"b": "build"}, project.Aliases)
	assert.Equal(t, []domain.Step{domain.ShellStep{Command: "make"}}, project.Scripts["build"].Steps)
	assert.Contains(t, project.Scripts, "doctor")
}

func TestLoader_Load_MissingUserDefaultsIsIgnored(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.ProjectFileName, "scripts:\n  build: [\"make\"]\n")

	ctrl := gomock.NewController(t)
	loader := config.NewLoader(mocks.NewMockLogger(ctrl)).
		WithUserConfigPath(filepath.Join(t.TempDir(), "missing.yml"))

	project, err := loader.Load(root)
	require.NoError(t, err)
	assert.Contains(t, project.Scripts, "build")
}

func TestLoader_Load_BrokenUserDefaults(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.ProjectFileName, "scripts:\n  build: [\"make\"]\n")
	defaults := createFile(t, t.TempDir(), "config.yml", "env: [not, a, map]\n")

	ctrl := gomock.NewController(t)
	loader := config.NewLoader(mocks.NewMockLogger(ctrl)).WithUserConfigPath(defaults)

	_, err := loader.Load(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrConfigParseFailed.Error())
}

func TestLoader_Load_UserDefaultsFromEnvironment(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.ProjectFileName, "scripts:\n  build: [\"make\"]\n")
	defaults := createFile(t, t.TempDir(), "config.yml", "shell: fish\n")
	t.Setenv(domain.UserConfigEnv, defaults)

	ctrl := gomock.NewController(t)
	project, err := config.NewLoader(mocks.NewMockLogger(ctrl)).Load(root)
	require.NoError(t, err)
	assert.Equal(t, "fish", project.Shell)
}

func TestLoader_Load_ProjectNamesShadowUserDefaults(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.ProjectFileName, `
aliases:
  up: start
scripts:
  db: ["mysql shop"]
  start: ["docker-compose up -d"]
`)
	defaults := createFile(t, t.TempDir(), "config.yml", `
aliases:
  db: db-import
  st: start
scripts:
  db-import: ["mysql < dump.sql"]
  up: ["echo never"]
`)

	ctrl := gomock.NewController(t)
	loader := config.NewLoader(mocks.NewMockLogger(ctrl)).WithUserConfigPath(defaults)

	project, err := loader.Load(root)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"up": "start", "st": "start"}, project.Aliases)
	assert.Equal(t, []domain.Step{domain.ShellStep{Command: "mysql shop"}}, project.Scripts["db"].Steps)
	assert.Contains(t, project.Scripts, "db-import")
	assert.NotContains(t, project.Scripts, "up")
}

func TestLoader_Load_ProjectAliasStillShadowsOwnScript(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.ProjectFileName, "aliases:\n  db: other\nscripts:\n  db: [\"mysql\"]\n  other: [\"ls\"]\n")

	_, err := newLoader(t).Load(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrDuplicateAlias.Error())
}
