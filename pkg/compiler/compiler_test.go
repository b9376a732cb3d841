// Copyright 2026 BWI GmbH and Mailforge contributors
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"go.opendefense.cloud/mailforge/pkg/apis/mail/v1alpha1"
)

func testConfig() *v1alpha1.MailDeployment {
	cfg, err := v1alpha1.Decode([]byte(`
domain: example.com
hostnames:
  - mail.example.com
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
	return cfg
}

func setEnabled(cfg *v1alpha1.MailDeployment, name string, enabled bool) {
	cc := cfg.Components.ByName(name)
	Expect(cc).NotTo(BeNil())
	cc.Enabled = &enabled
}

// deploymentIndex returns the position of the named workload in the graph's
// emission order, or -1 when it is absent.
func deploymentIndex(g *Graph, name string) int {
	for i, obj := range g.Resources() {
		if d, ok := obj.(*appsv1.Deployment); ok && d.Name == name {
			return i
		}
	}
	return -1
}

func environmentData(g *Graph) map[string]string {
	cm, ok := g.Resources()[0].(*corev1.ConfigMap)
	Expect(ok).To(BeTrue(), "the shared environment ConfigMap must be emitted first")
	return cm.Data
}

var discoveryKeys = []string{
	EnvAdminAddress,
	EnvFrontAddress,
	EnvSMTPAddress,
	EnvIMAPAddress,
	EnvAntispamAddress,
	EnvAntivirusAddress,
	EnvWebmailAddress,
	EnvSubmissionAddress,
}

var _ = Describe("Compiler", func() {
	It("accepts an injected logger", func() {
		log := zap.New(zap.WriteTo(GinkgoWriter), zap.UseDevMode(true))
		graph, err := New(testConfig(), WithLogger(log)).Compile()
		Expect(err).NotTo(HaveOccurred())
		Expect(graph).NotTo(BeNil())
	})

	It("compiles the minimal deployment end to end", func() {
		graph, err := New(testConfig()).Compile()
		Expect(err).NotTo(HaveOccurred())

		data := environmentData(graph)
		Expect(data).To(HaveKeyWithValue(EnvDomain, "example.com"))
		Expect(data).To(HaveKeyWithValue(EnvHostnames, "mail.example.com"))
		Expect(data).To(HaveKeyWithValue(EnvSubnet, "10.42.0.0/16"))
		Expect(data).To(HaveKeyWithValue(EnvTimezone, "UTC"))
		Expect(data).To(HaveKeyWithValue(EnvDBHost, "pg"))
		Expect(data).To(HaveKeyWithValue(EnvDBPort, "5432"))
		Expect(data).To(HaveKeyWithValue(EnvRedisAddress, "cache:6379"))
		Expect(data).To(HaveKeyWithValue(EnvMessageSizeLimit, "52428800"))

		// Exactly the discovery keys of the five always-on components.
		present := 0
		for _, key := range discoveryKeys {
			if _, ok := data[key]; ok {
				present++
			}
		}
		Expect(present).To(Equal(5))
		Expect(data).To(HaveKey(EnvAdminAddress))
		Expect(data).To(HaveKey(EnvFrontAddress))
		Expect(data).To(HaveKey(EnvSMTPAddress))
		Expect(data).To(HaveKey(EnvIMAPAddress))
		Expect(data).To(HaveKey(EnvAntispamAddress))
		Expect(data).NotTo(HaveKey(EnvWebmailAddress))
		Expect(data).NotTo(HaveKey(EnvSubmissionAddress))
		Expect(data).NotTo(HaveKey(EnvAntivirusAddress))
	})

	It("resolves fully qualified addresses", func() {
		graph, err := New(testConfig()).Compile()
		Expect(err).NotTo(HaveOccurred())

		data := environmentData(graph)
		Expect(data).To(HaveKeyWithValue(EnvAdminAddress, "mailu-admin.mail.svc.cluster.local"))
		Expect(data).To(HaveKeyWithValue(EnvIMAPAddress, "mailu-dovecot.mail.svc.cluster.local"))
		Expect(data).To(HaveKeyWithValue(EnvAntispamAddress, "mailu-rspamd.mail.svc.cluster.local:11332"))
	})

	It("keeps SMTP_ADDRESS pointed at the front proxy", func() {
		// Role-inverted by the consuming images: the key is named for the
		// relay but must resolve to front.
		graph, err := New(testConfig()).Compile()
		Expect(err).NotTo(HaveOccurred())

		data := environmentData(graph)
		Expect(data).To(HaveKeyWithValue(EnvSMTPAddress, "mailu-front.mail.svc.cluster.local"))
	})

	It("drops the SMTP binding together with the relay", func() {
		cfg := testConfig()
		setEnabled(cfg, v1alpha1.ComponentPostfix, false)

		graph, err := New(cfg).Compile()
		Expect(err).NotTo(HaveOccurred())
		Expect(environmentData(graph)).NotTo(HaveKey(EnvSMTPAddress))
	})

	It("is deterministic", func() {
		first, err := New(testConfig()).Compile()
		Expect(err).NotTo(HaveOccurred())
		second, err := New(testConfig()).Compile()
		Expect(err).NotTo(HaveOccurred())

		Expect(second.Resources()).To(Equal(first.Resources()))
		Expect(second.Environment.Keys()).To(Equal(first.Environment.Keys()))
	})

	It("fails with a configuration error before building anything", func() {
		cfg := testConfig()
		cfg.Subnet = "10.42.0.0"

		graph, err := New(cfg).Compile()
		Expect(graph).To(BeNil())

		var cfgErr *ConfigurationError
		Expect(errors.As(err, &cfgErr)).To(BeTrue())
		Expect(cfgErr.Errs[0].Field).To(Equal("subnet"))
	})

	It("fails loudly when a dependent's prerequisite is toggled off", func() {
		cfg := testConfig()
		setEnabled(cfg, v1alpha1.ComponentDovecot, false)

		graph, err := New(cfg).Compile()
		Expect(graph).To(BeNil())

		var depErr *DependencyError
		Expect(errors.As(err, &depErr)).To(BeTrue())
		Expect(depErr.Component).To(Equal(v1alpha1.ComponentPostfix))
		Expect(depErr.Missing).To(Equal(RoleIMAP))
	})

	It("fails the submission service without its relay", func() {
		cfg := testConfig()
		setEnabled(cfg, v1alpha1.ComponentDovecotSubmission, true)
		setEnabled(cfg, v1alpha1.ComponentPostfix, false)

		_, err := New(cfg).Compile()

		var depErr *DependencyError
		Expect(errors.As(err, &depErr)).To(BeTrue())
		Expect(depErr.Component).To(Equal(v1alpha1.ComponentDovecotSubmission))
		Expect(depErr.Missing).To(Equal(RoleSMTP))
	})

	It("embeds the dovecot LMTP address into the relay workload", func() {
		graph, err := New(testConfig()).Compile()
		Expect(err).NotTo(HaveOccurred())

		idx := deploymentIndex(graph, "mailu-postfix")
		Expect(idx).To(BeNumerically(">", 0))
		postfix := graph.Resources()[idx].(*appsv1.Deployment)
		Expect(postfix.Spec.Template.Spec.Containers[0].Env).To(ContainElement(
			corev1.EnvVar{Name: "LMTP_ADDRESS", Value: "mailu-dovecot.mail.svc.cluster.local:2525"},
		))
	})

	It("removes a disabled optional component and its discovery key entirely", func() {
		cfg := testConfig()
		setEnabled(cfg, v1alpha1.ComponentWebmail, true)
		withWebmail, err := New(cfg).Compile()
		Expect(err).NotTo(HaveOccurred())
		Expect(deploymentIndex(withWebmail, "mailu-webmail")).To(BeNumerically(">", 0))
		Expect(environmentData(withWebmail)).To(HaveKey(EnvWebmailAddress))

		withoutWebmail, err := New(testConfig()).Compile()
		Expect(err).NotTo(HaveOccurred())
		Expect(deploymentIndex(withoutWebmail, "mailu-webmail")).To(Equal(-1))
		Expect(environmentData(withoutWebmail)).NotTo(HaveKey(EnvWebmailAddress))
	})

	It("builds every prerequisite before its dependents for all toggle combinations", func() {
		optionals := []string{
			v1alpha1.ComponentClamav,
			v1alpha1.ComponentWebmail,
			v1alpha1.ComponentWebdav,
			v1alpha1.ComponentFetchmail,
			v1alpha1.ComponentDovecotSubmission,
		}

		for mask := 0; mask < 1<<len(optionals); mask++ {
			cfg := testConfig()
			for bit, name := range optionals {
				setEnabled(cfg, name, mask&(1<<bit) != 0)
			}

			graph, err := New(cfg).Compile()
			Expect(err).NotTo(HaveOccurred(), fmt.Sprintf("toggle combination %05b", mask))

			dovecot := deploymentIndex(graph, "mailu-dovecot")
			postfix := deploymentIndex(graph, "mailu-postfix")
			Expect(dovecot).To(BeNumerically(">", 0))
			Expect(postfix).To(BeNumerically(">", dovecot), "postfix must build after dovecot")

			if mask&(1<<4) != 0 {
				submission := deploymentIndex(graph, "mailu-dovecot-submission")
				Expect(submission).To(BeNumerically(">", postfix), "submission must build after postfix")
			}

			data := environmentData(graph)
			_, hasAntivirus := data[EnvAntivirusAddress]
			_, hasWebmail := data[EnvWebmailAddress]
			_, hasSubmission := data[EnvSubmissionAddress]
			Expect(hasAntivirus).To(Equal(mask&(1<<0) != 0))
			Expect(hasWebmail).To(Equal(mask&(1<<1) != 0))
			Expect(hasSubmission).To(Equal(mask&(1<<4) != 0))
		}
	})
})
