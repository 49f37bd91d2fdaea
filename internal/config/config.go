// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/watchmux/internal/procspec"
	"github.com/spf13/afero"
)

// RcFileName is the config file looked up in the current directory when no
// path is given.
const RcFileName = ".watchmuxrc.yaml"

// StdinPath is the path argument that selects reading the config from stdin.
const StdinPath = "-"

var (
	// ErrParse is returned when the YAML document cannot be parsed.
	ErrParse = errors.New("failed to parse config")
	// ErrRead is returned when the config source cannot be read.
	ErrRead = errors.New("failed to read config")
	// ErrEmpty is returned when the config source contains no data.
	ErrEmpty = errors.New("config is empty")
	// ErrNoRcFile is returned when no config path is given and no rc file exists in the current directory.
	ErrNoRcFile = fmt.Errorf("no %s file in current directory", RcFileName)
	// ErrNoProcesses is returned when the document declares no processes.
	ErrNoProcesses = errors.New("config declares no processes")
)

// FsFactory is a function that returns an afero filesystem.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// Stdin is the reader used when the config path is "-".
var Stdin io.Reader = os.Stdin

// Document is the YAML structure of a watchmux config file.
type Document struct {
	Processes []Process `yaml:"processes"`
}

// Process is one entry in the YAML process list.
type Process struct {
	Title   string            `yaml:"title"`
	Cmd     string            `yaml:"cmd"`
	Type    string            `yaml:"type,omitempty"`
	Log     *bool             `yaml:"log,omitempty"`
	WaitFor string            `yaml:"wait_for,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
}

// Load reads and parses the config from path. An empty path selects the rc
// file in the current directory; "-" selects stdin.
func Load(path string) ([]*procspec.Spec, error) {
	data, err := read(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse parses a YAML document into validated process specs. Validation
// failures across all entries are aggregated so the user sees every bad entry
// at once.
func Parse(data []byte) ([]*procspec.Spec, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	doc := new(Document)
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, errors.Join(ErrParse, err)
	}

	if len(doc.Processes) == 0 {
		return nil, ErrNoProcesses
	}

	specs := make([]*procspec.Spec, 0, len(doc.Processes))

	var errs *multierror.Error

	for i, p := range doc.Processes {
		spec, err := p.toSpec()
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("process %d (%q): %w", i, p.Title, err))
			continue
		}

		specs = append(specs, spec)
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err //nolint:wrapcheck
	}

	return specs, nil
}

func (p Process) toSpec() (*procspec.Spec, error) {
	kind, err := procspec.NewKind(p.Type)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	log := true
	if p.Log != nil {
		log = *p.Log
	}

	spec := &procspec.Spec{
		Title:   p.Title,
		Command: p.Cmd,
		Kind:    kind,
		Log:     log,
		WaitFor: p.WaitFor,
		Env:     p.Env,
	}

	if err := spec.Validate(); err != nil {
		return nil, err //nolint:wrapcheck
	}

	return spec, nil
}

func read(path string) ([]byte, error) {
	switch path {
	case StdinPath:
		data, err := io.ReadAll(Stdin)
		if err != nil {
			return nil, errors.Join(ErrRead, err)
		}

		return data, nil

	case "":
		fs := FsFactory()

		exists, err := afero.Exists(fs, RcFileName)
		if err != nil || !exists {
			return nil, ErrNoRcFile
		}

		data, err := afero.ReadFile(fs, RcFileName)
		if err != nil {
			return nil, errors.Join(ErrRead, err)
		}

		return data, nil

	default:
		data, err := afero.ReadFile(FsFactory(), path)
		if err != nil {
			return nil, errors.Join(ErrRead, err)
		}

		return data, nil
	}
}
