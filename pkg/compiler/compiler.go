// Copyright 2026 BWI GmbH and Mailforge contributors
// SPDX-License-Identifier: Apache-2.0

// Package compiler turns a validated MailDeployment into a graph of
// Kubernetes resource descriptors. The compilation is a synchronous,
// in-memory transform: validation, phase 1 environment construction, an
// ordered sequence of component builds, the discovery patch and optional
// ingress composition. Any failure aborts the whole compilation; a partial
// graph is never returned.
package compiler

import (
	"fmt"

	"github.com/go-logr/logr"

	"go.opendefense.cloud/mailforge/pkg/apis/mail/v1alpha1"
)

// buildEntry pairs a component descriptor with its toggle default: core
// components are on unless explicitly disabled, optional ones off unless
// explicitly enabled.
type buildEntry struct {
	desc      Descriptor
	defaultOn bool
}

// The build order is fixed at design time. The component set is closed and
// small, so the dependency graph is hard-declared instead of computed:
// every phase runs in declaration order, and the dependent phase runs last
// so that its entries can consume the handles of everything before them.
var (
	corePhase = []buildEntry{
		{adminDescriptor, true},
		{frontDescriptor, true},
		{dovecotDescriptor, true},
		{rspamdDescriptor, true},
	}
	optionalPhase = []buildEntry{
		{clamavDescriptor, false},
		{webmailDescriptor, false},
		{webdavDescriptor, false},
		{fetchmailDescriptor, false},
	}
	dependentPhase = []buildEntry{
		{postfixDescriptor, true},
		{submissionDescriptor, false},
	}
)

// Compiler drives a single compilation.
type Compiler struct {
	cfg *v1alpha1.MailDeployment
	log logr.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger attaches a logger to the compilation.
func WithLogger(log logr.Logger) Option {
	return func(c *Compiler) {
		c.log = log
	}
}

// New creates a Compiler for the given deployment configuration.
func New(cfg *v1alpha1.MailDeployment, opts ...Option) *Compiler {
	c := &Compiler{cfg: cfg, log: logr.Discard()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile runs the full pipeline and returns the finished resource graph.
func (c *Compiler) Compile() (*Graph, error) {
	if errs := v1alpha1.Validate(c.cfg); len(errs) > 0 {
		return nil, &ConfigurationError{Errs: errs}
	}

	env := NewEnvironment()
	buildEnvironment(c.cfg, env)

	graph := newGraph(c.cfg.Name, c.cfg.Namespace, env)
	handles := map[Role]Handle{}

	for _, phase := range [][]buildEntry{corePhase, optionalPhase, dependentPhase} {
		for _, entry := range phase {
			if !c.cfg.ComponentEnabled(entry.desc.Name, entry.defaultOn) {
				c.log.V(1).Info("Skipping disabled component", "component", entry.desc.Name)
				continue
			}
			set, handle, err := buildComponent(c.cfg, entry.desc, handles)
			if err != nil {
				return nil, err
			}
			graph.append(set.objects()...)
			handles[entry.desc.Role] = handle
			c.log.V(1).Info("Built component", "component", entry.desc.Name, "role", entry.desc.Role)
		}
	}

	if err := resolveDiscovery(env, handles); err != nil {
		return nil, fmt.Errorf("failed to resolve discovery bindings: %w", err)
	}

	if c.cfg.IngressEnabled() {
		objs, err := composeIngress(c.cfg, handles)
		if err != nil {
			return nil, err
		}
		graph.append(objs...)
		c.log.V(1).Info("Composed ingress", "hostname", c.cfg.Ingress.Hostname)
	}

	c.log.Info("Compilation finished", "components", len(handles), "environmentKeys", env.Len())
	return graph, nil
}
