// Copyright 2026 BWI GmbH and Mailforge contributors
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	corev1 "k8s.io/api/core/v1"

	"go.opendefense.cloud/mailforge/pkg/apis/mail/v1alpha1"
)

// The ten component descriptors. Port numbers are part of the wiring
// contract (discovery bindings and ingress rules depend on them); changing
// one is a breaking change towards the consuming images.

var adminDescriptor = Descriptor{
	Name:                 v1alpha1.ComponentAdmin,
	Role:                 RoleAdmin,
	Repo:                 "admin",
	Ports:                []Port{{Name: "http", Port: 80}},
	DefaultCPURequest:    "100m",
	DefaultMemoryRequest: "256Mi",
	DefaultStorageSize:   "2Gi",
	DataPath:             "/data",
	ProbePort:            "http",
	ProbePath:            "/sso/login",
	NeedsSecretKey:       true,
	NeedsDatabase:        true,
	ExtraEnv:             adminEnv,
}

var frontDescriptor = Descriptor{
	Name: v1alpha1.ComponentFront,
	Role: RoleFront,
	Repo: "nginx",
	Ports: []Port{
		{Name: "http", Port: 80},
		{Name: "https", Port: 443},
		{Name: "smtp", Port: 25},
		{Name: "smtps", Port: 465},
		{Name: "submission", Port: 587},
		{Name: "imap", Port: 143},
		{Name: "imaps", Port: 993},
		{Name: "pop3", Port: 110},
		{Name: "pop3s", Port: 995},
		{Name: "sieve", Port: 4190},
	},
	DefaultCPURequest:    "100m",
	DefaultMemoryRequest: "128Mi",
	ProbePort:            "http",
	ProbePath:            "/health",
	NeedsSecretKey:       true,
}

var postfixDescriptor = Descriptor{
	Name: v1alpha1.ComponentPostfix,
	Role: RoleSMTP,
	Repo: "postfix",
	Ports: []Port{
		{Name: "smtp", Port: 25},
		{Name: "smtp-auth", Port: 10025},
	},
	DefaultCPURequest:    "100m",
	DefaultMemoryRequest: "256Mi",
	DefaultStorageSize:   "1Gi",
	DataPath:             "/queue",
	ProbePort:            "smtp",
	Peers:                []Role{RoleIMAP},
	NeedsSecretKey:       true,
	ExtraEnv:             postfixEnv,
}

var dovecotDescriptor = Descriptor{
	Name: v1alpha1.ComponentDovecot,
	Role: RoleIMAP,
	Repo: "dovecot",
	Ports: []Port{
		{Name: "imap", Port: 143},
		{Name: "pop3", Port: 110},
		{Name: "lmtp", Port: 2525},
		{Name: "sieve", Port: 4190},
		{Name: "auth", Port: 12345},
	},
	DefaultCPURequest:    "100m",
	DefaultMemoryRequest: "512Mi",
	DefaultStorageSize:   "10Gi",
	DataPath:             "/mail",
	ProbePort:            "imap",
	NeedsSecretKey:       true,
}

var submissionDescriptor = Descriptor{
	Name:                 v1alpha1.ComponentDovecotSubmission,
	Role:                 RoleSubmission,
	Repo:                 "dovecot",
	Ports:                []Port{{Name: "submission", Port: 587}},
	DefaultCPURequest:    "100m",
	DefaultMemoryRequest: "256Mi",
	ProbePort:            "submission",
	Peers:                []Role{RoleSMTP},
	NeedsSecretKey:       true,
	ExtraEnv:             submissionEnv,
}

var rspamdDescriptor = Descriptor{
	Name: v1alpha1.ComponentRspamd,
	Role: RoleAntispam,
	Repo: "rspamd",
	Ports: []Port{
		{Name: "worker", Port: 11332},
		{Name: "controller", Port: 11334},
	},
	DefaultCPURequest:    "100m",
	DefaultMemoryRequest: "512Mi",
	DefaultStorageSize:   "1Gi",
	DataPath:             "/var/lib/rspamd",
	ProbePort:            "controller",
	ProbePath:            "/ping",
}

var webmailDescriptor = Descriptor{
	Name:                 v1alpha1.ComponentWebmail,
	Role:                 RoleWebmail,
	Repo:                 "roundcube",
	Ports:                []Port{{Name: "http", Port: 80}},
	DefaultCPURequest:    "100m",
	DefaultMemoryRequest: "256Mi",
	DefaultStorageSize:   "1Gi",
	DataPath:             "/data",
	ProbePort:            "http",
	ProbePath:            "/",
	NeedsSecretKey:       true,
}

var clamavDescriptor = Descriptor{
	Name:                 v1alpha1.ComponentClamav,
	Role:                 RoleAntivirus,
	Repo:                 "clamav",
	Ports:                []Port{{Name: "clamav", Port: 3310}},
	DefaultCPURequest:    "200m",
	DefaultMemoryRequest: "1Gi",
	DefaultStorageSize:   "2Gi",
	DataPath:             "/data",
	ProbePort:            "clamav",
}

var fetchmailDescriptor = Descriptor{
	Name:                 v1alpha1.ComponentFetchmail,
	Role:                 RoleFetchmail,
	Repo:                 "fetchmail",
	DefaultCPURequest:    "50m",
	DefaultMemoryRequest: "128Mi",
	DefaultStorageSize:   "1Gi",
	DataPath:             "/data",
	NeedsSecretKey:       true,
}

var webdavDescriptor = Descriptor{
	Name:                 v1alpha1.ComponentWebdav,
	Role:                 RoleWebdav,
	Repo:                 "radicale",
	Ports:                []Port{{Name: "dav", Port: 5232}},
	DefaultCPURequest:    "50m",
	DefaultMemoryRequest: "128Mi",
	DefaultStorageSize:   "1Gi",
	DataPath:             "/data",
	ProbePort:            "dav",
}

// adminEnv wires the sqlite database path and the optional initial account.
// The password is bound by reference, never by value.
func adminEnv(cfg *v1alpha1.MailDeployment, _ map[Role]Handle) []corev1.EnvVar {
	var env []corev1.EnvVar
	if cfg.Database.Flavor == v1alpha1.DatabaseFlavorSQLite {
		env = append(env, corev1.EnvVar{Name: "DB_PATH", Value: cfg.Database.SQLite.Path})
	}
	if account := cfg.InitialAccount; account != nil {
		env = append(env,
			corev1.EnvVar{Name: "INITIAL_ADMIN_ACCOUNT", Value: account.Name},
			corev1.EnvVar{Name: "INITIAL_ADMIN_DOMAIN", Value: account.Domain},
			corev1.EnvVar{
				Name: "INITIAL_ADMIN_PW",
				ValueFrom: &corev1.EnvVarSource{
					SecretKeyRef: &corev1.SecretKeySelector{
						LocalObjectReference: corev1.LocalObjectReference{Name: account.PasswordSecretRef},
						Key:                  v1alpha1.PasswordKeyKey,
					},
				},
			},
		)
	}
	return env
}

// postfixEnv embeds the LMTP delivery address of the dovecot peer. This is
// the reason postfix builds in the dependent phase: the address is only
// knowable once dovecot exists.
func postfixEnv(_ *v1alpha1.MailDeployment, peers map[Role]Handle) []corev1.EnvVar {
	return []corev1.EnvVar{
		{Name: "LMTP_ADDRESS", Value: peers[RoleIMAP].AddressPort("lmtp")},
	}
}

// submissionEnv embeds the upstream relay address of the postfix peer.
func submissionEnv(_ *v1alpha1.MailDeployment, peers map[Role]Handle) []corev1.EnvVar {
	return []corev1.EnvVar{
		{Name: "RELAY_ADDRESS", Value: peers[RoleSMTP].AddressPort("smtp")},
	}
}
