// Copyright 2026 BWI GmbH and Mailforge contributors
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"fmt"
	"strconv"

	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/utils/ptr"

	"go.opendefense.cloud/mailforge/pkg/apis/mail/v1alpha1"
)

// mailPassthroughPorts are the front proxy ports exposed through the ingress
// controller's TCP passthrough when requested. All mail protocol traffic
// enters through the front proxy, which needs the client connection intact
// for its own TLS and policy handling.
var mailPassthroughPorts = []string{"smtp", "smtps", "submission", "imap", "imaps", "pop3", "pop3s", "sieve"}

// composeIngress builds the routing resources for web and mail protocol
// traffic. It hard-fails when the front or relay endpoint is missing: an
// ingress in front of a mail system without its proxy or relay is a
// configuration mistake, never something to degrade silently over.
func composeIngress(cfg *v1alpha1.MailDeployment, handles map[Role]Handle) ([]runtime.Object, error) {
	front, ok := handles[RoleFront]
	if !ok {
		return nil, &PreconditionError{Subsystem: "ingress", Reason: "the front endpoint was not built"}
	}
	// Routed traffic terminates at front, but accepting mail without the
	// relay behind it would blackhole every message.
	if _, ok := handles[RoleSMTP]; !ok {
		return nil, &PreconditionError{Subsystem: "ingress", Reason: "the postfix relay endpoint was not built"}
	}
	if cfg.Ingress.Hostname == "" {
		return nil, &PreconditionError{Subsystem: "ingress", Reason: "a hostname is required"}
	}

	annotations := map[string]string{}
	if cfg.Ingress.Issuer != "" {
		annotations["cert-manager.io/cluster-issuer"] = cfg.Ingress.Issuer
	}
	if cfg.Ingress.RateLimitConnections > 0 {
		annotations["nginx.ingress.kubernetes.io/limit-connections"] = strconv.Itoa(cfg.Ingress.RateLimitConnections)
	}

	webIngress := &networkingv1.Ingress{
		TypeMeta: metav1.TypeMeta{APIVersion: networkingv1.SchemeGroupVersion.String(), Kind: "Ingress"},
		ObjectMeta: metav1.ObjectMeta{
			Name:        cfg.ResourceName("web"),
			Namespace:   cfg.Namespace,
			Labels:      map[string]string{"app.kubernetes.io/instance": cfg.Name, "app.kubernetes.io/managed-by": "mailforge"},
			Annotations: annotations,
		},
		Spec: networkingv1.IngressSpec{
			Rules: []networkingv1.IngressRule{
				{
					Host: cfg.Ingress.Hostname,
					IngressRuleValue: networkingv1.IngressRuleValue{
						HTTP: &networkingv1.HTTPIngressRuleValue{
							Paths: []networkingv1.HTTPIngressPath{
								{
									Path:     "/",
									PathType: ptr.To(networkingv1.PathTypePrefix),
									Backend: networkingv1.IngressBackend{
										Service: &networkingv1.IngressServiceBackend{
											Name: front.Service,
											Port: networkingv1.ServiceBackendPort{Name: "http"},
										},
									},
								},
							},
						},
					},
				},
			},
		},
	}
	if cfg.Ingress.Issuer != "" {
		webIngress.Spec.TLS = []networkingv1.IngressTLS{
			{
				Hosts:      []string{cfg.Ingress.Hostname},
				SecretName: cfg.ResourceName("ingress-tls"),
			},
		}
	}

	objs := []runtime.Object{webIngress}

	if cfg.Ingress.TLSPassthrough {
		data := map[string]string{}
		for _, portName := range mailPassthroughPorts {
			port, ok := front.Port(portName)
			if !ok {
				continue
			}
			data[strconv.Itoa(int(port))] = fmt.Sprintf("%s/%s:%d", front.Namespace, front.Service, port)
		}
		objs = append(objs, &corev1.ConfigMap{
			TypeMeta: metav1.TypeMeta{APIVersion: corev1.SchemeGroupVersion.String(), Kind: "ConfigMap"},
			ObjectMeta: metav1.ObjectMeta{
				Name:      cfg.ResourceName("tcp-services"),
				Namespace: cfg.Namespace,
				Labels:    map[string]string{"app.kubernetes.io/instance": cfg.Name, "app.kubernetes.io/managed-by": "mailforge"},
			},
			Data: data,
		})
	}

	return objs, nil
}
