// Copyright 2026 BWI GmbH and Mailforge contributors
// SPDX-License-Identifier: Apache-2.0

package compiler

import "fmt"

// Well known shared environment keys. Phase 1 keys are derived from the
// configuration alone; phase 2 keys are appended by the discovery resolver
// once every component that will exist has been built. Consuming images
// depend on these names, changing them is a breaking change.
const (
	EnvDomain           = "DOMAIN"
	EnvHostnames        = "HOSTNAMES"
	EnvSubnet           = "SUBNET"
	EnvTimezone         = "TZ"
	EnvTLSFlavor        = "TLS_FLAVOR"
	EnvMessageSizeLimit = "MESSAGE_SIZE_LIMIT"
	EnvDBFlavor         = "DB_FLAVOR"
	EnvDBHost           = "DB_HOST"
	EnvDBPort           = "DB_PORT"
	EnvDBName           = "DB_NAME"
	EnvRedisAddress     = "REDIS_ADDRESS"

	EnvAdminAddress      = "ADMIN_ADDRESS"
	EnvFrontAddress      = "FRONT_ADDRESS"
	EnvSMTPAddress       = "SMTP_ADDRESS"
	EnvIMAPAddress       = "IMAP_ADDRESS"
	EnvAntispamAddress   = "ANTISPAM_ADDRESS"
	EnvAntivirusAddress  = "ANTIVIRUS_ADDRESS"
	EnvWebmailAddress    = "WEBMAIL_ADDRESS"
	EnvSubmissionAddress = "SUBMISSION_ADDRESS"
)

// Environment is the shared configuration bundle every component consumes.
// It keeps insertion order so that renderings of the same input are
// byte identical. It is mutated in exactly two phases: the phase 1 builder
// sets configuration derived values, the discovery resolver appends resolved
// peer addresses. Phase 2 keys are additive only, an append never replaces
// an existing key.
type Environment struct {
	keys   []string
	values map[string]string
}

// NewEnvironment returns an empty shared environment.
func NewEnvironment() *Environment {
	return &Environment{values: map[string]string{}}
}

// Phase1Writer is the view handed to the shared environment builder.
type Phase1Writer interface {
	Set(key, value string)
}

// DiscoveryAppender is the view handed to the discovery resolver. Appends
// are additive only.
type DiscoveryAppender interface {
	Append(key, value string) error
}

// Set stores a configuration derived value. Setting an existing key replaces
// its value in place.
func (e *Environment) Set(key, value string) {
	if _, ok := e.values[key]; !ok {
		e.keys = append(e.keys, key)
	}
	e.values[key] = value
}

// Append stores a discovery binding. Appending a key that already exists is
// an error: discovery never overwrites earlier state.
func (e *Environment) Append(key, value string) error {
	if _, ok := e.values[key]; ok {
		return fmt.Errorf("environment key %s already set, discovery bindings are additive only", key)
	}
	e.keys = append(e.keys, key)
	e.values[key] = value
	return nil
}

// Get returns the value of a key.
func (e *Environment) Get(key string) (string, bool) {
	v, ok := e.values[key]
	return v, ok
}

// Has reports whether a key is present.
func (e *Environment) Has(key string) bool {
	_, ok := e.values[key]
	return ok
}

// Keys returns the keys in insertion order.
func (e *Environment) Keys() []string {
	keys := make([]string, len(e.keys))
	copy(keys, e.keys)
	return keys
}

// Len returns the number of keys.
func (e *Environment) Len() int {
	return len(e.keys)
}

// Data returns a copy of the environment as a plain map, suitable for
// rendering into a ConfigMap.
func (e *Environment) Data() map[string]string {
	data := make(map[string]string, len(e.values))
	for k, v := range e.values {
		data[k] = v
	}
	return data
}
