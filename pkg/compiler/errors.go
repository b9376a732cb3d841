// Copyright 2026 BWI GmbH and Mailforge contributors
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"fmt"

	"k8s.io/apimachinery/pkg/util/validation/field"
)

// ConfigurationError reports a structurally invalid MailDeployment. It is
// raised before any resource is built; a compilation that fails with it
// yields no resources at all.
type ConfigurationError struct {
	Errs field.ErrorList
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid deployment configuration: %v", e.Errs.ToAggregate())
}

// Unwrap exposes the aggregated field errors.
func (e *ConfigurationError) Unwrap() error {
	return e.Errs.ToAggregate()
}

// DependencyError reports that a component requires a peer that was never
// built, usually because its toggle is off.
type DependencyError struct {
	// Component is the requesting component.
	Component string
	// Missing is the role of the absent peer.
	Missing Role
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("component %s requires the %s peer, which was not built", e.Component, e.Missing)
}

// PreconditionError reports that an optional subsystem was composed without
// its required inputs.
type PreconditionError struct {
	// Subsystem is the composition stage that failed, e.g. ingress.
	Subsystem string
	// Reason names the missing prerequisite.
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("cannot compose %s: %s", e.Subsystem, e.Reason)
}
