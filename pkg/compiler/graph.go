// Copyright 2026 BWI GmbH and Mailforge contributors
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
)

// environmentConfigMapSuffix is the resource name suffix of the shared
// environment ConfigMap every workload consumes via envFrom.
const environmentConfigMapSuffix = "env"

// Graph is the terminal state of a successful compilation: the ordered
// resource descriptors of every built component plus the final shared
// environment. It is ready for emission; the compiler itself never
// serializes or performs I/O.
type Graph struct {
	// Namespace all resources live in.
	Namespace string
	// Environment is the final shared environment, phase 1 and phase 2
	// keys included.
	Environment *Environment

	name      string
	resources []runtime.Object
}

func newGraph(name, namespace string, env *Environment) *Graph {
	return &Graph{Namespace: namespace, Environment: env, name: name}
}

func (g *Graph) append(objs ...runtime.Object) {
	g.resources = append(g.resources, objs...)
}

// Resources returns every resource descriptor in emission order: the shared
// environment ConfigMap first, then per component claim, workload and
// endpoint in build order, routing resources last.
func (g *Graph) Resources() []runtime.Object {
	resources := make([]runtime.Object, 0, len(g.resources)+1)
	resources = append(resources, g.environmentConfigMap())
	resources = append(resources, g.resources...)
	return resources
}

// environmentConfigMap renders the shared environment. Workloads reference
// this ConfigMap by name, which is how late discovery bindings reach
// components that were built before the bindings existed.
func (g *Graph) environmentConfigMap() *corev1.ConfigMap {
	return &corev1.ConfigMap{
		TypeMeta: metav1.TypeMeta{APIVersion: corev1.SchemeGroupVersion.String(), Kind: "ConfigMap"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      g.name + "-" + environmentConfigMapSuffix,
			Namespace: g.Namespace,
			Labels: map[string]string{
				"app.kubernetes.io/instance":   g.name,
				"app.kubernetes.io/managed-by": "mailforge",
			},
		},
		Data: g.Environment.Data(),
	}
}
