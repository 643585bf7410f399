// Copyright 2024 The University of Queensland
// Copyright 2025 Contriboss
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pubgrub

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// manifestPackage is the on-disk shape of a single package version entry
// in an InMemorySource manifest. Requires entries are "name constraint"
// strings parsed with ParseVersionRange, e.g. "bar >=1.0.0, <2.0.0".
type manifestPackage struct {
	Name     string   `yaml:"name"`
	Version  string   `yaml:"version"`
	Requires []string `yaml:"requires,omitempty"`
}

// manifestFile is the root document shape read and written by FromYAML/ToYAML.
type manifestFile struct {
	Packages []manifestPackage `yaml:"packages"`
}

// FromYAML reads a package manifest and returns a populated InMemorySource.
// This is the optional textual serialization for the map-of-maps offline
// provider store; the solver core never calls it directly.
func FromYAML(r io.Reader) (*InMemorySource, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var doc manifestFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}

	source := &InMemorySource{}
	for _, pkg := range doc.Packages {
		version, err := ParseSemanticVersion(pkg.Version)
		var ver Version = version
		if err != nil {
			ver = SimpleVersion(pkg.Version)
		}

		deps := make([]Term, 0, len(pkg.Requires))
		for _, req := range pkg.Requires {
			term, err := parseManifestRequirement(req)
			if err != nil {
				return nil, fmt.Errorf("package %s %s: %w", pkg.Name, pkg.Version, err)
			}
			deps = append(deps, term)
		}

		source.AddPackage(MakeName(pkg.Name), ver, deps)
	}

	return source, nil
}

// parseManifestRequirement parses a "name constraint" requirement string
// into a positive dependency Term.
func parseManifestRequirement(req string) (Term, error) {
	name, constraint, ok := strings.Cut(strings.TrimSpace(req), " ")
	if !ok || name == "" {
		return Term{}, fmt.Errorf("malformed requirement %q, expected \"name constraint\"", req)
	}

	set, err := ParseVersionRange(strings.TrimSpace(constraint))
	if err != nil {
		return Term{}, fmt.Errorf("malformed constraint in requirement %q: %w", req, err)
	}

	return NewTerm(MakeName(name), NewVersionSetCondition(set)), nil
}

// ToYAML writes the given InMemorySource as a package manifest.
func ToYAML(w io.Writer, source *InMemorySource) error {
	doc := manifestFile{Packages: make([]manifestPackage, 0, len(source.Packages))}

	for _, name := range source.PackageNames() {
		versions, err := source.GetVersions(name)
		if err != nil {
			return fmt.Errorf("listing versions for %s: %w", name.Value(), err)
		}

		for _, version := range versions {
			deps := source.Packages[name][version]
			pkg := manifestPackage{
				Name:     name.Value(),
				Version:  version.String(),
				Requires: make([]string, 0, len(deps)),
			}
			for _, dep := range deps {
				pkg.Requires = append(pkg.Requires, fmt.Sprintf("%s %s", dep.Name.Value(), dep.Condition.String()))
			}
			doc.Packages = append(doc.Packages, pkg)
		}
	}

	if err := yaml.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	return nil
}
