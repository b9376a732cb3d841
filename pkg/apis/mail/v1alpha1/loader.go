// Copyright 2026 BWI GmbH and Mailforge contributors
// SPDX-License-Identifier: Apache-2.0

package v1alpha1

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Decode parses a MailDeployment from YAML and applies the documented
// defaults to every field left unset.
func Decode(data []byte) (*MailDeployment, error) {
	d := &MailDeployment{}
	if err := yaml.Unmarshal(data, d); err != nil {
		return nil, fmt.Errorf("failed to parse deployment config: %w", err)
	}
	return d, nil
}

// Load reads and decodes a MailDeployment from a YAML file.
func Load(path string) (*MailDeployment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read deployment config: %w", err)
	}
	return Decode(data)
}
