// Copyright 2026 BWI GmbH and Mailforge contributors
// SPDX-License-Identifier: Apache-2.0

// Package v1alpha1 contains the declarative input model of the mail
// deployment compiler. A MailDeployment describes a complete multi-service
// mail installation; the compiler turns it into Kubernetes resource
// descriptors without ever touching a cluster.
package v1alpha1

import (
	"github.com/creasty/defaults"
)

// MailDeployment is the root configuration tree consumed by the compiler.
type MailDeployment struct {
	// Name is the instance name used as prefix for all generated resources.
	Name string `json:"name" yaml:"name" default:"mailu"`
	// Namespace is the Kubernetes namespace all resources are placed in.
	Namespace string `json:"namespace" yaml:"namespace" default:"mail"`

	// Domain is the main mail domain of the installation.
	Domain string `json:"domain" yaml:"domain"`
	// Hostnames lists the public hostnames the installation is reachable under.
	// The first entry is the primary hostname.
	Hostnames []string `json:"hostnames" yaml:"hostnames"`
	// Subnet is the pod network CIDR trusted for relaying.
	Subnet string `json:"subnet" yaml:"subnet"`

	// Timezone is propagated to all components.
	Timezone string `json:"timezone" yaml:"timezone" default:"UTC"`
	// TLSFlavor selects how the front proxy obtains certificates
	// (cert, letsencrypt, notls).
	TLSFlavor string `json:"tlsFlavor" yaml:"tlsFlavor" default:"cert"`
	// MessageSizeLimitMB is the maximum accepted message size in megabytes.
	MessageSizeLimitMB int `json:"messageSizeLimitMB" yaml:"messageSizeLimitMB" default:"50"`

	// SecretKeyRef names the Secret holding the shared mail-system key under
	// the key "secret-key". Only the reference is emitted, never a value.
	SecretKeyRef string `json:"secretKeyRef" yaml:"secretKeyRef"`

	// InitialAccount optionally describes the admin account bootstrapped on
	// first start.
	InitialAccount *InitialAccount `json:"initialAccount,omitempty" yaml:"initialAccount,omitempty"`

	// Database selects and configures the database backend.
	Database DatabaseConfig `json:"database" yaml:"database"`
	// Cache configures the shared cache backend.
	Cache CacheConfig `json:"cache" yaml:"cache"`
	// Registry configures where component images are pulled from.
	Registry RegistryConfig `json:"registry" yaml:"registry"`
	// Storage holds installation-wide persistent storage settings.
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Components carries the per-component overrides and toggles.
	Components Components `json:"components" yaml:"components"`

	// Ingress optionally describes the ingress routing for the installation.
	Ingress *IngressConfig `json:"ingress,omitempty" yaml:"ingress,omitempty"`

	// Overrides are RFC 6902 patches applied to named resources at emission.
	Overrides []Override `json:"overrides,omitempty" yaml:"overrides,omitempty"`
}

// InitialAccount describes the account created on first start of the admin
// component. The password is referenced, never inlined.
type InitialAccount struct {
	// Name is the local part of the account.
	Name string `json:"name" yaml:"name"`
	// Domain is the mail domain of the account.
	Domain string `json:"domain" yaml:"domain"`
	// PasswordSecretRef names the Secret holding the password under the
	// key "password".
	PasswordSecretRef string `json:"passwordSecretRef" yaml:"passwordSecretRef"`
}

// Database flavors.
const (
	DatabaseFlavorPostgreSQL = "postgresql"
	DatabaseFlavorSQLite     = "sqlite"
)

// DatabaseConfig selects the database backend for the admin component.
type DatabaseConfig struct {
	// Flavor is the backend type, postgresql or sqlite.
	Flavor string `json:"flavor" yaml:"flavor" default:"sqlite"`
	// PostgreSQL configures the postgresql backend. Required when Flavor is
	// postgresql, ignored otherwise.
	PostgreSQL *PostgreSQLConfig `json:"postgresql,omitempty" yaml:"postgresql,omitempty"`
	// SQLite configures the sqlite backend.
	SQLite SQLiteConfig `json:"sqlite" yaml:"sqlite"`
}

// PostgreSQLConfig is the connection descriptor for an external PostgreSQL
// server. Credentials are carried as a Secret reference.
type PostgreSQLConfig struct {
	Host string `json:"host" yaml:"host"`
	Port int32  `json:"port" yaml:"port" default:"5432"`
	// Name is the database name.
	Name string `json:"name" yaml:"name" default:"mailu"`
	// CredentialsSecretRef names the Secret holding the database credentials.
	CredentialsSecretRef string `json:"credentialsSecretRef" yaml:"credentialsSecretRef"`
	// UsernameKey is the key of the username inside the credentials Secret.
	UsernameKey string `json:"usernameKey" yaml:"usernameKey" default:"username"`
	// PasswordKey is the key of the password inside the credentials Secret.
	PasswordKey string `json:"passwordKey" yaml:"passwordKey" default:"password"`
}

// SQLiteConfig is the file backed database descriptor.
type SQLiteConfig struct {
	// Path of the database file inside the admin data volume.
	Path string `json:"path" yaml:"path" default:"/data/main.db"`
}

// CacheConfig is the connection descriptor for the shared cache backend.
type CacheConfig struct {
	Host string `json:"host" yaml:"host"`
	Port int32  `json:"port" yaml:"port" default:"6379"`
}

// RegistryConfig configures image resolution for all components.
type RegistryConfig struct {
	// Base is the registry prefix component images are resolved under.
	Base string `json:"base" yaml:"base" default:"ghcr.io/mailu"`
	// Tag is the image tag shared by all components.
	Tag string `json:"tag" yaml:"tag" default:"2.0"`
}

// StorageConfig carries the installation wide storage defaults.
type StorageConfig struct {
	// ClassName is the default storage class for all persistent volumes.
	// Empty selects the cluster default class.
	ClassName string `json:"className,omitempty" yaml:"className,omitempty"`
}

// ResourceList maps a resource name to a quantity, e.g. cpu: 500m.
type ResourceList struct {
	CPU    string `json:"cpu,omitempty" yaml:"cpu,omitempty"`
	Memory string `json:"memory,omitempty" yaml:"memory,omitempty"`
}

// ResourceSpec overrides the compute sizing of a single component. A limit
// is only emitted when it is explicitly configured here.
type ResourceSpec struct {
	Requests ResourceList `json:"requests,omitempty" yaml:"requests,omitempty"`
	Limits   ResourceList `json:"limits,omitempty" yaml:"limits,omitempty"`
}

// StorageSpec overrides the persistent storage of a single component.
type StorageSpec struct {
	// Size of the volume, e.g. 10Gi. Empty falls back to the component default.
	Size string `json:"size,omitempty" yaml:"size,omitempty"`
	// ClassName overrides the installation wide storage class.
	ClassName string `json:"className,omitempty" yaml:"className,omitempty"`
}

// ComponentConfig carries the per-component toggle and overrides.
type ComponentConfig struct {
	// Enabled toggles the component. Core components default to true,
	// optional components to false.
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// Image replaces the registry derived image reference entirely.
	Image string `json:"image,omitempty" yaml:"image,omitempty"`
	// Resources overrides the compute sizing.
	Resources *ResourceSpec `json:"resources,omitempty" yaml:"resources,omitempty"`
	// Storage overrides the persistent storage sizing.
	Storage *StorageSpec `json:"storage,omitempty" yaml:"storage,omitempty"`
}

// Components holds one override block per logical service.
type Components struct {
	Admin             ComponentConfig `json:"admin,omitempty" yaml:"admin,omitempty"`
	Front             ComponentConfig `json:"front,omitempty" yaml:"front,omitempty"`
	Postfix           ComponentConfig `json:"postfix,omitempty" yaml:"postfix,omitempty"`
	Dovecot           ComponentConfig `json:"dovecot,omitempty" yaml:"dovecot,omitempty"`
	DovecotSubmission ComponentConfig `json:"dovecotSubmission,omitempty" yaml:"dovecotSubmission,omitempty"`
	Rspamd            ComponentConfig `json:"rspamd,omitempty" yaml:"rspamd,omitempty"`
	Webmail           ComponentConfig `json:"webmail,omitempty" yaml:"webmail,omitempty"`
	Clamav            ComponentConfig `json:"clamav,omitempty" yaml:"clamav,omitempty"`
	Fetchmail         ComponentConfig `json:"fetchmail,omitempty" yaml:"fetchmail,omitempty"`
	Webdav            ComponentConfig `json:"webdav,omitempty" yaml:"webdav,omitempty"`
}

// IngressConfig describes the optional ingress routing.
type IngressConfig struct {
	// Enabled toggles ingress composition.
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Hostname is the public hostname routed to the installation.
	Hostname string `json:"hostname" yaml:"hostname"`
	// Issuer is the certificate issuer identity, e.g. a cert-manager
	// ClusterIssuer name.
	Issuer string `json:"issuer,omitempty" yaml:"issuer,omitempty"`
	// TLSPassthrough routes the mail protocol ports straight to the front
	// proxy without terminating TLS at the ingress controller.
	TLSPassthrough bool `json:"tlsPassthrough,omitempty" yaml:"tlsPassthrough,omitempty"`
	// RateLimitConnections limits concurrent connections per client address.
	// Zero disables the limit.
	RateLimitConnections int `json:"rateLimitConnections,omitempty" yaml:"rateLimitConnections,omitempty"`
}

// Override targets a single emitted resource with an RFC 6902 patch.
type Override struct {
	// Kind of the target resource, e.g. Deployment.
	Kind string `json:"kind" yaml:"kind"`
	// Name of the target resource.
	Name string `json:"name" yaml:"name"`
	// Patch is the RFC 6902 operation list applied to the resource.
	Patch []map[string]any `json:"patch" yaml:"patch"`
}

// UnmarshalYAML implements the Unmarshaler interface and adds support for
// default values via tags, which is not supported otherwise.
func (d *MailDeployment) UnmarshalYAML(unmarshal func(any) error) error {
	type plain MailDeployment
	if err := unmarshal((*plain)(d)); err != nil {
		return err
	}

	return defaults.Set(d)
}
