// Copyright 2026 BWI GmbH and Mailforge contributors
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"

	"go.opendefense.cloud/mailforge/pkg/apis/mail/v1alpha1"
)

// Role is the logical role a component fulfills in the mail system. Peer
// dependencies and discovery bindings are declared in terms of roles, not
// component names.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleFront      Role = "front"
	RoleSMTP       Role = "smtp"
	RoleIMAP       Role = "imap"
	RoleSubmission Role = "submission"
	RoleAntispam   Role = "antispam"
	RoleAntivirus  Role = "antivirus"
	RoleWebmail    Role = "webmail"
	RoleFetchmail  Role = "fetchmail"
	RoleWebdav     Role = "webdav"
)

// Port is a single entry of a component's fixed port table.
type Port struct {
	Name string
	Port int32
}

// Descriptor declares everything the generic builder needs to know about one
// component: its fixed port table, image repository, sizing defaults, peer
// requirements and credential bindings. All ten components are instances of
// this one shape.
type Descriptor struct {
	// Name is the logical component name, also the resource name suffix.
	Name string
	// Role under which the component's handle is exposed to peers.
	Role Role
	// Repo is the image repository name under the configured registry base.
	Repo string
	// Ports is the fixed port table. It is part of the wiring contract:
	// discovery bindings and ingress rules depend on it. An empty table
	// means the component exposes no network endpoint.
	Ports []Port
	// DefaultCPURequest and DefaultMemoryRequest are the built-in sizing
	// fallbacks. Limits have no defaults, a limit is only emitted when the
	// configuration asks for one.
	DefaultCPURequest    string
	DefaultMemoryRequest string
	// DefaultStorageSize is the built-in volume size. Empty means the
	// component is stateless.
	DefaultStorageSize string
	// DataPath is the mount path of the persistent volume.
	DataPath string
	// ProbePort names the port health checks are performed against.
	// ProbePath switches the probe from TCP to HTTP.
	ProbePort string
	ProbePath string
	// Peers lists the roles whose handles must exist before this component
	// can be built.
	Peers []Role
	// NeedsSecretKey binds the shared mail-system key Secret.
	NeedsSecretKey bool
	// NeedsDatabase binds the database credentials Secret when the
	// postgresql flavor is selected.
	NeedsDatabase bool
	// ExtraEnv contributes component specific environment variables, with
	// access to the already built peer handles.
	ExtraEnv func(cfg *v1alpha1.MailDeployment, peers map[Role]Handle) []corev1.EnvVar
}

// Handle is the only thing one component exposes to another: a resolvable
// network address plus, where relevant, the name of its backing storage
// claim. It never exposes the component's resource definitions.
type Handle struct {
	// Component is the logical component name.
	Component string
	// Role the handle is consumed under.
	Role Role
	// Service and Namespace locate the network endpoint.
	Service   string
	Namespace string
	// Claim is the name of the backing PersistentVolumeClaim, if any.
	Claim string

	ports map[string]int32
}

// Address returns the fully qualified in-cluster address of the component.
func (h Handle) Address() string {
	return fmt.Sprintf("%s.%s.svc.cluster.local", h.Service, h.Namespace)
}

// AddressPort returns the fully qualified address including the named port.
func (h Handle) AddressPort(portName string) string {
	return fmt.Sprintf("%s:%d", h.Address(), h.ports[portName])
}

// Port returns the numeric port registered under the given name.
func (h Handle) Port(portName string) (int32, bool) {
	p, ok := h.ports[portName]
	return p, ok
}

// ResourceSet is everything a single component build produces. Created once
// and immutable afterwards; late-resolved addresses reach the workload
// through the shared environment ConfigMap, never by mutating the set.
type ResourceSet struct {
	Component  string
	Deployment *appsv1.Deployment
	Claim      *corev1.PersistentVolumeClaim
	Service    *corev1.Service
}

// objects returns the non-nil resources in emission order.
func (r *ResourceSet) objects() []runtime.Object {
	var objs []runtime.Object
	if r.Claim != nil {
		objs = append(objs, r.Claim)
	}
	objs = append(objs, r.Deployment)
	if r.Service != nil {
		objs = append(objs, r.Service)
	}
	return objs
}
