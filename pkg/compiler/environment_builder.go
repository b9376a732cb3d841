// Copyright 2026 BWI GmbH and Mailforge contributors
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"go.opendefense.cloud/mailforge/pkg/apis/mail/v1alpha1"
)

// hostnameDelimiter joins the hostname list into a single environment value.
const hostnameDelimiter = ","

// buildEnvironment populates the phase 1 keys of the shared environment.
// Every value is derived from the validated configuration alone, so the
// result is deterministic. Optional-field defaults are applied by the config
// layer, never here.
func buildEnvironment(cfg *v1alpha1.MailDeployment, env Phase1Writer) {
	env.Set(EnvDomain, cfg.Domain)
	env.Set(EnvHostnames, strings.Join(cfg.Hostnames, hostnameDelimiter))
	env.Set(EnvSubnet, cfg.Subnet)
	env.Set(EnvTimezone, cfg.Timezone)
	env.Set(EnvTLSFlavor, cfg.TLSFlavor)
	env.Set(EnvMessageSizeLimit, strconv.Itoa(cfg.MessageSizeLimitMB*1024*1024))

	env.Set(EnvDBFlavor, cfg.Database.Flavor)
	if cfg.Database.Flavor == v1alpha1.DatabaseFlavorPostgreSQL {
		pg := cfg.Database.PostgreSQL
		env.Set(EnvDBHost, pg.Host)
		env.Set(EnvDBPort, strconv.Itoa(int(pg.Port)))
		env.Set(EnvDBName, pg.Name)
	}

	env.Set(EnvRedisAddress, fmt.Sprintf("%s:%d", cfg.Cache.Host, cfg.Cache.Port))
}
