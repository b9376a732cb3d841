// Copyright 2026 BWI GmbH and Mailforge contributors
// SPDX-License-Identifier: Apache-2.0

package v1alpha1

import "fmt"

// Logical component names. These are part of the wiring contract: generated
// resource names and service addresses derive from them.
const (
	ComponentAdmin             = "admin"
	ComponentFront             = "front"
	ComponentPostfix           = "postfix"
	ComponentDovecot           = "dovecot"
	ComponentDovecotSubmission = "dovecot-submission"
	ComponentRspamd            = "rspamd"
	ComponentWebmail           = "webmail"
	ComponentClamav            = "clamav"
	ComponentFetchmail         = "fetchmail"
	ComponentWebdav            = "webdav"
)

// Well known keys inside referenced Secrets.
const (
	// SecretKeyKey is the key of the shared mail-system key.
	SecretKeyKey = "secret-key"
	// PasswordKeyKey is the key of the initial account password.
	PasswordKeyKey = "password"
)

// ByName returns the override block for the named component. Unknown names
// yield nil.
func (c *Components) ByName(name string) *ComponentConfig {
	switch name {
	case ComponentAdmin:
		return &c.Admin
	case ComponentFront:
		return &c.Front
	case ComponentPostfix:
		return &c.Postfix
	case ComponentDovecot:
		return &c.Dovecot
	case ComponentDovecotSubmission:
		return &c.DovecotSubmission
	case ComponentRspamd:
		return &c.Rspamd
	case ComponentWebmail:
		return &c.Webmail
	case ComponentClamav:
		return &c.Clamav
	case ComponentFetchmail:
		return &c.Fetchmail
	case ComponentWebdav:
		return &c.Webdav
	}
	return nil
}

// ComponentEnabled reports whether the named component should be built.
// defaultOn reflects the component class: core components are on unless
// explicitly disabled, optional components off unless explicitly enabled.
func (d *MailDeployment) ComponentEnabled(name string, defaultOn bool) bool {
	cc := d.Components.ByName(name)
	if cc == nil || cc.Enabled == nil {
		return defaultOn
	}
	return *cc.Enabled
}

// ImageFor resolves the image reference for the named component. repo is the
// image repository name under the registry base. A per-component override
// replaces the reference entirely.
func (d *MailDeployment) ImageFor(name, repo string) string {
	if cc := d.Components.ByName(name); cc != nil && cc.Image != "" {
		return cc.Image
	}
	return fmt.Sprintf("%s/%s:%s", d.Registry.Base, repo, d.Registry.Tag)
}

// IngressEnabled reports whether ingress composition was requested.
func (d *MailDeployment) IngressEnabled() bool {
	return d.Ingress != nil && d.Ingress.Enabled
}

// ResourceName returns the instance prefixed name of a generated resource.
func (d *MailDeployment) ResourceName(suffix string) string {
	return d.Name + "-" + suffix
}
