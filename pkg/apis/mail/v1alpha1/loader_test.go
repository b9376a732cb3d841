// Copyright 2026 BWI GmbH and Mailforge contributors
// SPDX-License-Identifier: Apache-2.0

package v1alpha1

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Decode", func() {
	It("applies the documented defaults to unset fields", func() {
		cfg, err := Decode([]byte(`
domain: example.com
hostnames:
  - mail.example.com
subnet: 10.42.0.0/16
secretKeyRef: mailu-secrets
cache:
  host: cache
`))
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.Name).To(Equal("mailu"))
		Expect(cfg.Namespace).To(Equal("mail"))
		Expect(cfg.Timezone).To(Equal("UTC"))
		Expect(cfg.TLSFlavor).To(Equal("cert"))
		Expect(cfg.MessageSizeLimitMB).To(Equal(50))
		Expect(cfg.Database.Flavor).To(Equal(DatabaseFlavorSQLite))
		Expect(cfg.Database.SQLite.Path).To(Equal("/data/main.db"))
		Expect(cfg.Cache.Port).To(Equal(int32(6379)))
		Expect(cfg.Registry.Base).To(Equal("ghcr.io/mailu"))
		Expect(cfg.Registry.Tag).To(Equal("2.0"))
	})

	It("fills nested defaults of configured blocks", func() {
		cfg, err := Decode([]byte(`
domain: example.com
hostnames: [mail.example.com]
subnet: 10.42.0.0/16
secretKeyRef: mailu-secrets
database:
  flavor: postgresql
  postgresql:
    host: pg
    credentialsSecretRef: pg-credentials
cache:
  host: cache
`))
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.Database.PostgreSQL).NotTo(BeNil())
		Expect(cfg.Database.PostgreSQL.Port).To(Equal(int32(5432)))
		Expect(cfg.Database.PostgreSQL.Name).To(Equal("mailu"))
		Expect(cfg.Database.PostgreSQL.UsernameKey).To(Equal("username"))
		Expect(cfg.Database.PostgreSQL.PasswordKey).To(Equal("password"))
	})

	It("lets explicit values win over defaults", func() {
		cfg, err := Decode([]byte(`
name: corpmail
namespace: messaging
domain: example.com
hostnames: [mail.example.com]
subnet: 10.42.0.0/16
secretKeyRef: mailu-secrets
timezone: Europe/Berlin
cache:
  host: cache
  port: 6380
`))
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.Name).To(Equal("corpmail"))
		Expect(cfg.Namespace).To(Equal("messaging"))
		Expect(cfg.Timezone).To(Equal("Europe/Berlin"))
		Expect(cfg.Cache.Port).To(Equal(int32(6380)))
	})

	It("rejects malformed YAML", func() {
		_, err := Decode([]byte("domain: [unclosed"))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Component helpers", func() {
	It("resolves images from the registry settings", func() {
		cfg := validDeployment()
		Expect(cfg.ImageFor(ComponentFront, "nginx")).To(Equal("ghcr.io/mailu/nginx:2.0"))
	})

	It("prefers a per-component image override", func() {
		cfg := validDeployment()
		cfg.Components.Front.Image = "registry.example.com/custom-front:v7"
		Expect(cfg.ImageFor(ComponentFront, "nginx")).To(Equal("registry.example.com/custom-front:v7"))
	})

	It("applies toggle defaults per component class", func() {
		cfg := validDeployment()
		Expect(cfg.ComponentEnabled(ComponentAdmin, true)).To(BeTrue())
		Expect(cfg.ComponentEnabled(ComponentWebmail, false)).To(BeFalse())

		enabled := true
		disabled := false
		cfg.Components.Webmail.Enabled = &enabled
		cfg.Components.Admin.Enabled = &disabled
		Expect(cfg.ComponentEnabled(ComponentWebmail, false)).To(BeTrue())
		Expect(cfg.ComponentEnabled(ComponentAdmin, true)).To(BeFalse())
	})
})
