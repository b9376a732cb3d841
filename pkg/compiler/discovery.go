// Copyright 2026 BWI GmbH and Mailforge contributors
// SPDX-License-Identifier: Apache-2.0

package compiler

// binding maps a shared environment key to the component roles involved in
// it. Producer gates the binding: the key is appended if and only if the
// producing component was built. Target names the component whose address
// the key resolves to; for all bindings but one the two are the same role.
type binding struct {
	key      string
	producer Role
	target   Role
	// portName optionally appends a port to the resolved address.
	portName string
}

// discoveryBindings is the fixed table of logical-role to address bindings.
//
// SMTP_ADDRESS is deliberately role-inverted: the key is named for the SMTP
// relay (postfix), but the consuming images expect it to resolve to the
// FRONT proxy, which accepts internal submissions on behalf of postfix and
// forwards them. This is a convention imposed by the images, not a choice
// made here. Do not "fix" it to point at postfix: internal mail delivery
// breaks if it does.
var discoveryBindings = []binding{
	{key: EnvAdminAddress, producer: RoleAdmin, target: RoleAdmin},
	{key: EnvFrontAddress, producer: RoleFront, target: RoleFront},
	{key: EnvSMTPAddress, producer: RoleSMTP, target: RoleFront}, // role-inverted, see above
	{key: EnvIMAPAddress, producer: RoleIMAP, target: RoleIMAP},
	{key: EnvAntispamAddress, producer: RoleAntispam, target: RoleAntispam, portName: "worker"},
	{key: EnvAntivirusAddress, producer: RoleAntivirus, target: RoleAntivirus, portName: "clamav"},
	{key: EnvWebmailAddress, producer: RoleWebmail, target: RoleWebmail},
	{key: EnvSubmissionAddress, producer: RoleSubmission, target: RoleSubmission},
}

// resolveDiscovery appends the resolved peer addresses to the shared
// environment. Components that were not built simply omit their key; no
// placeholder values are ever written.
func resolveDiscovery(env DiscoveryAppender, handles map[Role]Handle) error {
	for _, b := range discoveryBindings {
		if _, built := handles[b.producer]; !built {
			continue
		}
		target, ok := handles[b.target]
		if !ok {
			// The inverted binding can name a target other than its producer.
			continue
		}
		address := target.Address()
		if b.portName != "" {
			address = target.AddressPort(b.portName)
		}
		if err := env.Append(b.key, address); err != nil {
			return err
		}
	}
	return nil
}
