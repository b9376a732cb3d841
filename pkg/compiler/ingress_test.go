// Copyright 2026 BWI GmbH and Mailforge contributors
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"

	"go.opendefense.cloud/mailforge/pkg/apis/mail/v1alpha1"
)

func ingressConfig() *v1alpha1.MailDeployment {
	cfg := testConfig()
	cfg.Ingress = &v1alpha1.IngressConfig{
		Enabled:              true,
		Hostname:             "mail.example.com",
		Issuer:               "letsencrypt-prod",
		RateLimitConnections: 20,
	}
	return cfg
}

func findIngress(g *Graph, name string) *networkingv1.Ingress {
	for _, obj := range g.Resources() {
		if ing, ok := obj.(*networkingv1.Ingress); ok && ing.Name == name {
			return ing
		}
	}
	return nil
}

var _ = Describe("Ingress composition", func() {
	It("routes web traffic to the front proxy", func() {
		graph, err := New(ingressConfig()).Compile()
		Expect(err).NotTo(HaveOccurred())

		ing := findIngress(graph, "mailu-web")
		Expect(ing).NotTo(BeNil())
		Expect(ing.Spec.Rules[0].Host).To(Equal("mail.example.com"))
		backend := ing.Spec.Rules[0].HTTP.Paths[0].Backend.Service
		Expect(backend.Name).To(Equal("mailu-front"))
		Expect(ing.Annotations).To(HaveKeyWithValue("cert-manager.io/cluster-issuer", "letsencrypt-prod"))
		Expect(ing.Annotations).To(HaveKeyWithValue("nginx.ingress.kubernetes.io/limit-connections", "20"))
		Expect(ing.Spec.TLS[0].SecretName).To(Equal("mailu-ingress-tls"))
	})

	It("exposes the mail protocol ports on TCP passthrough", func() {
		cfg := ingressConfig()
		cfg.Ingress.TLSPassthrough = true

		graph, err := New(cfg).Compile()
		Expect(err).NotTo(HaveOccurred())

		var tcp *corev1.ConfigMap
		for _, obj := range graph.Resources() {
			if cm, ok := obj.(*corev1.ConfigMap); ok && cm.Name == "mailu-tcp-services" {
				tcp = cm
			}
		}
		Expect(tcp).NotTo(BeNil())
		Expect(tcp.Data).To(HaveKeyWithValue("25", "mail/mailu-front:25"))
		Expect(tcp.Data).To(HaveKeyWithValue("993", "mail/mailu-front:993"))
		Expect(tcp.Data).NotTo(HaveKey("80"))
	})

	It("fails without the front endpoint", func() {
		cfg := ingressConfig()
		setEnabled(cfg, v1alpha1.ComponentFront, false)

		_, err := New(cfg).Compile()

		var preErr *PreconditionError
		Expect(errors.As(err, &preErr)).To(BeTrue())
		Expect(preErr.Subsystem).To(Equal("ingress"))
		Expect(preErr.Reason).To(ContainSubstring("front"))
	})

	It("fails without the relay endpoint", func() {
		cfg := ingressConfig()
		setEnabled(cfg, v1alpha1.ComponentPostfix, false)

		_, err := New(cfg).Compile()

		var preErr *PreconditionError
		Expect(errors.As(err, &preErr)).To(BeTrue())
		Expect(preErr.Reason).To(ContainSubstring("relay"))
	})

	It("fails without a hostname", func() {
		cfg := ingressConfig()
		cfg.Ingress.Hostname = ""

		_, err := New(cfg).Compile()

		var preErr *PreconditionError
		Expect(errors.As(err, &preErr)).To(BeTrue())
		Expect(preErr.Reason).To(ContainSubstring("hostname"))
	})

	It("is skipped entirely when not enabled", func() {
		cfg := ingressConfig()
		cfg.Ingress.Enabled = false

		graph, err := New(cfg).Compile()
		Expect(err).NotTo(HaveOccurred())
		Expect(findIngress(graph, "mailu-web")).To(BeNil())
	})
})
