// Copyright 2026 BWI GmbH and Mailforge contributors
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/utils/ptr"

	"go.opendefense.cloud/mailforge/pkg/apis/mail/v1alpha1"
)

const dataVolumeName = "data"

// buildComponent applies the generic component contract to one descriptor:
// it derives sizing and storage from the configuration, constructs the
// workload, claim and endpoint descriptors, binds credentials by reference
// and returns the component's handle. The shared environment is consumed by
// reference through the <instance>-env ConfigMap, so values appended after
// this build still reach the workload at render time.
func buildComponent(cfg *v1alpha1.MailDeployment, desc Descriptor, peers map[Role]Handle) (*ResourceSet, Handle, error) {
	for _, role := range desc.Peers {
		if _, ok := peers[role]; !ok {
			return nil, Handle{}, &DependencyError{Component: desc.Name, Missing: role}
		}
	}

	override := cfg.Components.ByName(desc.Name)

	requirements, err := computeResources(desc, override)
	if err != nil {
		return nil, Handle{}, fmt.Errorf("failed to size component %s: %w", desc.Name, err)
	}

	name := cfg.ResourceName(desc.Name)
	labels := map[string]string{
		"app.kubernetes.io/name":       desc.Name,
		"app.kubernetes.io/instance":   cfg.Name,
		"app.kubernetes.io/managed-by": "mailforge",
	}
	selector := map[string]string{
		"app.kubernetes.io/name":     desc.Name,
		"app.kubernetes.io/instance": cfg.Name,
	}

	set := &ResourceSet{Component: desc.Name}

	if desc.DefaultStorageSize != "" {
		claim, err := buildClaim(cfg, desc, override, name, labels)
		if err != nil {
			return nil, Handle{}, err
		}
		set.Claim = claim
	}

	container := corev1.Container{
		Name:  desc.Name,
		Image: cfg.ImageFor(desc.Name, desc.Repo),
		EnvFrom: []corev1.EnvFromSource{
			{
				ConfigMapRef: &corev1.ConfigMapEnvSource{
					LocalObjectReference: corev1.LocalObjectReference{
						Name: cfg.ResourceName(environmentConfigMapSuffix),
					},
				},
			},
		},
		Env:       credentialEnv(cfg, desc),
		Resources: requirements,
	}
	if desc.ExtraEnv != nil {
		container.Env = append(container.Env, desc.ExtraEnv(cfg, peers)...)
	}
	for _, p := range desc.Ports {
		container.Ports = append(container.Ports, corev1.ContainerPort{
			Name:          p.Name,
			ContainerPort: p.Port,
			Protocol:      corev1.ProtocolTCP,
		})
	}
	if probe := buildProbe(desc); probe != nil {
		container.LivenessProbe = probe
		container.ReadinessProbe = probe.DeepCopy()
	}
	if set.Claim != nil {
		container.VolumeMounts = []corev1.VolumeMount{
			{Name: dataVolumeName, MountPath: desc.DataPath},
		}
	}

	deployment := &appsv1.Deployment{
		TypeMeta: metav1.TypeMeta{APIVersion: appsv1.SchemeGroupVersion.String(), Kind: "Deployment"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: cfg.Namespace,
			Labels:    labels,
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: ptr.To(int32(1)),
			Selector: &metav1.LabelSelector{MatchLabels: selector},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{container},
				},
			},
		},
	}
	if set.Claim != nil {
		// Persistent components must not run two pods against one volume
		// during a rollout.
		deployment.Spec.Strategy = appsv1.DeploymentStrategy{Type: appsv1.RecreateDeploymentStrategyType}
		deployment.Spec.Template.Spec.Volumes = []corev1.Volume{
			{
				Name: dataVolumeName,
				VolumeSource: corev1.VolumeSource{
					PersistentVolumeClaim: &corev1.PersistentVolumeClaimVolumeSource{
						ClaimName: set.Claim.Name,
					},
				},
			},
		}
	}
	set.Deployment = deployment

	handle := Handle{
		Component: desc.Name,
		Role:      desc.Role,
		Service:   name,
		Namespace: cfg.Namespace,
		ports:     map[string]int32{},
	}
	if set.Claim != nil {
		handle.Claim = set.Claim.Name
	}

	if len(desc.Ports) > 0 {
		service := &corev1.Service{
			TypeMeta: metav1.TypeMeta{APIVersion: corev1.SchemeGroupVersion.String(), Kind: "Service"},
			ObjectMeta: metav1.ObjectMeta{
				Name:      name,
				Namespace: cfg.Namespace,
				Labels:    labels,
			},
			Spec: corev1.ServiceSpec{
				Type:     corev1.ServiceTypeClusterIP,
				Selector: selector,
			},
		}
		for _, p := range desc.Ports {
			service.Spec.Ports = append(service.Spec.Ports, corev1.ServicePort{
				Name:       p.Name,
				Port:       p.Port,
				TargetPort: intstr.FromString(p.Name),
				Protocol:   corev1.ProtocolTCP,
			})
			handle.ports[p.Name] = p.Port
		}
		set.Service = service
	}

	return set, handle, nil
}

// computeResources derives the compute sizing: requests fall back to the
// component's built-in defaults, limits are only emitted when explicitly
// configured. No limit is ever synthesized from a request.
func computeResources(desc Descriptor, override *v1alpha1.ComponentConfig) (corev1.ResourceRequirements, error) {
	cpuRequest := desc.DefaultCPURequest
	memoryRequest := desc.DefaultMemoryRequest
	var limits v1alpha1.ResourceList
	if override != nil && override.Resources != nil {
		if override.Resources.Requests.CPU != "" {
			cpuRequest = override.Resources.Requests.CPU
		}
		if override.Resources.Requests.Memory != "" {
			memoryRequest = override.Resources.Requests.Memory
		}
		limits = override.Resources.Limits
	}

	requirements := corev1.ResourceRequirements{Requests: corev1.ResourceList{}}
	for _, entry := range []struct {
		name  corev1.ResourceName
		value string
	}{
		{corev1.ResourceCPU, cpuRequest},
		{corev1.ResourceMemory, memoryRequest},
	} {
		quantity, err := resource.ParseQuantity(entry.value)
		if err != nil {
			return corev1.ResourceRequirements{}, fmt.Errorf("invalid %s request %q: %w", entry.name, entry.value, err)
		}
		requirements.Requests[entry.name] = quantity
	}

	for _, entry := range []struct {
		name  corev1.ResourceName
		value string
	}{
		{corev1.ResourceCPU, limits.CPU},
		{corev1.ResourceMemory, limits.Memory},
	} {
		if entry.value == "" {
			continue
		}
		quantity, err := resource.ParseQuantity(entry.value)
		if err != nil {
			return corev1.ResourceRequirements{}, fmt.Errorf("invalid %s limit %q: %w", entry.name, entry.value, err)
		}
		if requirements.Limits == nil {
			requirements.Limits = corev1.ResourceList{}
		}
		requirements.Limits[entry.name] = quantity
	}

	return requirements, nil
}

// buildClaim derives the persistent storage descriptor: the size falls back
// from the component override to the component default, the class from the
// component override to the installation wide default.
func buildClaim(cfg *v1alpha1.MailDeployment, desc Descriptor, override *v1alpha1.ComponentConfig, name string, labels map[string]string) (*corev1.PersistentVolumeClaim, error) {
	size := desc.DefaultStorageSize
	className := cfg.Storage.ClassName
	if override != nil && override.Storage != nil {
		if override.Storage.Size != "" {
			size = override.Storage.Size
		}
		if override.Storage.ClassName != "" {
			className = override.Storage.ClassName
		}
	}

	quantity, err := resource.ParseQuantity(size)
	if err != nil {
		return nil, fmt.Errorf("invalid storage size %q for component %s: %w", size, desc.Name, err)
	}

	claim := &corev1.PersistentVolumeClaim{
		TypeMeta: metav1.TypeMeta{APIVersion: corev1.SchemeGroupVersion.String(), Kind: "PersistentVolumeClaim"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: cfg.Namespace,
			Labels:    labels,
		},
		Spec: corev1.PersistentVolumeClaimSpec{
			AccessModes: []corev1.PersistentVolumeAccessMode{corev1.ReadWriteOnce},
			Resources: corev1.VolumeResourceRequirements{
				Requests: corev1.ResourceList{corev1.ResourceStorage: quantity},
			},
		},
	}
	if className != "" {
		claim.Spec.StorageClassName = ptr.To(className)
	}
	return claim, nil
}

// credentialEnv binds the component's credentials by reference. Secret
// values are never materialized into the descriptor.
func credentialEnv(cfg *v1alpha1.MailDeployment, desc Descriptor) []corev1.EnvVar {
	var env []corev1.EnvVar
	if desc.NeedsSecretKey {
		env = append(env, corev1.EnvVar{
			Name: "SECRET_KEY",
			ValueFrom: &corev1.EnvVarSource{
				SecretKeyRef: &corev1.SecretKeySelector{
					LocalObjectReference: corev1.LocalObjectReference{Name: cfg.SecretKeyRef},
					Key:                  v1alpha1.SecretKeyKey,
				},
			},
		})
	}
	if desc.NeedsDatabase && cfg.Database.Flavor == v1alpha1.DatabaseFlavorPostgreSQL {
		pg := cfg.Database.PostgreSQL
		env = append(env,
			corev1.EnvVar{
				Name: "DB_USER",
				ValueFrom: &corev1.EnvVarSource{
					SecretKeyRef: &corev1.SecretKeySelector{
						LocalObjectReference: corev1.LocalObjectReference{Name: pg.CredentialsSecretRef},
						Key:                  pg.UsernameKey,
					},
				},
			},
			corev1.EnvVar{
				Name: "DB_PW",
				ValueFrom: &corev1.EnvVarSource{
					SecretKeyRef: &corev1.SecretKeySelector{
						LocalObjectReference: corev1.LocalObjectReference{Name: pg.CredentialsSecretRef},
						Key:                  pg.PasswordKey,
					},
				},
			},
		)
	}
	return env
}

// buildProbe derives the fixed health check of a component.
func buildProbe(desc Descriptor) *corev1.Probe {
	if desc.ProbePort == "" {
		return nil
	}
	probe := &corev1.Probe{
		InitialDelaySeconds: 10,
		PeriodSeconds:       10,
		TimeoutSeconds:      5,
		FailureThreshold:    3,
	}
	if desc.ProbePath != "" {
		probe.ProbeHandler = corev1.ProbeHandler{
			HTTPGet: &corev1.HTTPGetAction{
				Path: desc.ProbePath,
				Port: intstr.FromString(desc.ProbePort),
			},
		}
		return probe
	}
	probe.ProbeHandler = corev1.ProbeHandler{
		TCPSocket: &corev1.TCPSocketAction{Port: intstr.FromString(desc.ProbePort)},
	}
	return probe
}
