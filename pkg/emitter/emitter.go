// Copyright 2026 BWI GmbH and Mailforge contributors
// SPDX-License-Identifier: Apache-2.0

// Package emitter serializes a compiled resource graph into Kubernetes
// manifests. It is the external collaborator of the compiler core: the core
// only produces in-memory descriptors, everything that touches bytes lives
// here.
package emitter

import (
	"encoding/json"
	"fmt"
	"io"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"sigs.k8s.io/yaml"

	"go.opendefense.cloud/mailforge/pkg/apis/mail/v1alpha1"
	"go.opendefense.cloud/mailforge/pkg/compiler"
)

// objectHeader is the minimal shape needed to match a resource against an
// override target.
type objectHeader struct {
	Kind     string `json:"kind"`
	Metadata struct {
		Name string `json:"name"`
	} `json:"metadata"`
}

// Emit writes the graph as a multi-document YAML stream, one document per
// resource in the graph's emission order. Overrides are applied to their
// target resources before serialization; an override that matches no
// resource is an error, silently dropping a patch would be worse than
// failing the emission.
func Emit(w io.Writer, g *compiler.Graph, overrides []v1alpha1.Override) error {
	matched := make([]bool, len(overrides))

	for i, obj := range g.Resources() {
		data, err := json.Marshal(obj)
		if err != nil {
			return fmt.Errorf("failed to marshal resource: %w", err)
		}

		var header objectHeader
		if err := json.Unmarshal(data, &header); err != nil {
			return fmt.Errorf("failed to inspect resource: %w", err)
		}

		for j, override := range overrides {
			if override.Kind != header.Kind || override.Name != header.Metadata.Name {
				continue
			}
			data, err = applyOverride(data, override)
			if err != nil {
				return fmt.Errorf("failed to apply override for %s/%s: %w", override.Kind, override.Name, err)
			}
			matched[j] = true
		}

		doc, err := yaml.JSONToYAML(data)
		if err != nil {
			return fmt.Errorf("failed to render resource %s/%s: %w", header.Kind, header.Metadata.Name, err)
		}

		if i > 0 {
			if _, err := io.WriteString(w, "---\n"); err != nil {
				return err
			}
		}
		if _, err := w.Write(doc); err != nil {
			return err
		}
	}

	for j, override := range overrides {
		if !matched[j] {
			return fmt.Errorf("override targets unknown resource %s/%s", override.Kind, override.Name)
		}
	}

	return nil
}

func applyOverride(data []byte, override v1alpha1.Override) ([]byte, error) {
	rawPatch, err := json.Marshal(override.Patch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode patch: %w", err)
	}
	patch, err := jsonpatch.DecodePatch(rawPatch)
	if err != nil {
		return nil, fmt.Errorf("failed to decode patch: %w", err)
	}
	return patch.Apply(data)
}
