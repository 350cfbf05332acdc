// libraries.go: Installed library inventories
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package integrations

import (
	"os"
	"runtime/debug"
	"sort"

	"gopkg.in/yaml.v3"
)

// Libraries maps installed library names to their versions.
type Libraries map[string]string

// Version returns the installed version of name.
func (l Libraries) Version(name string) (string, bool) {
	v, ok := l[name]
	return v, ok
}

// Names returns the library names in sorted order.
func (l Libraries) Names() []string {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge returns a new inventory with other layered over l.
func (l Libraries) Merge(other Libraries) Libraries {
	out := make(Libraries, len(l)+len(other))
	for k, v := range l {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// LibrariesFromBuildInfo lists the modules linked into the running binary.
// Replaced modules report the replacement's version.
func LibrariesFromBuildInfo() Libraries {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Libraries{}
	}
	return librariesFromModules(info.Deps)
}

func librariesFromModules(deps []*debug.Module) Libraries {
	libs := make(Libraries, len(deps))
	for _, dep := range deps {
		if dep == nil {
			continue
		}
		mod := dep
		if dep.Replace != nil && dep.Replace.Version != "" {
			mod = &debug.Module{Path: dep.Path, Version: dep.Replace.Version}
		}
		libs[mod.Path] = mod.Version
	}
	return libs
}

// librariesManifest is the on-disk inventory format:
//
//	libraries:
//	  mailer: 5.2.0
//	  lograge: 0.12.0
type librariesManifest struct {
	Libraries map[string]string `yaml:"libraries"`
}

// LoadLibraries reads a YAML inventory file.
func LoadLibraries(path string) (Libraries, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the host configuration
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewSettingsNotFoundError(path)
		}
		return nil, NewSettingsFileError(path, err)
	}

	var manifest librariesManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, NewSettingsParseError(path, err)
	}
	if manifest.Libraries == nil {
		return Libraries{}, nil
	}
	return Libraries(manifest.Libraries), nil
}
