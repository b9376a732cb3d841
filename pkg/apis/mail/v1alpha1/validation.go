// Copyright 2026 BWI GmbH and Mailforge contributors
// SPDX-License-Identifier: Apache-2.0

package v1alpha1

import (
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/util/validation"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// databaseFlavors are the supported database backends.
var databaseFlavors = []string{DatabaseFlavorPostgreSQL, DatabaseFlavorSQLite}

// componentNames lists every component override block, used for sizing
// validation.
var componentNames = []string{
	ComponentAdmin,
	ComponentFront,
	ComponentPostfix,
	ComponentDovecot,
	ComponentDovecotSubmission,
	ComponentRspamd,
	ComponentWebmail,
	ComponentClamav,
	ComponentFetchmail,
	ComponentWebdav,
}

// Validate checks a MailDeployment for structural validity. It fails fast:
// the first violation found is returned and no further fields are inspected,
// so callers always see exactly one offending field path.
func Validate(d *MailDeployment) field.ErrorList {
	if errs := validation.IsFullyQualifiedDomainName(field.NewPath("domain"), d.Domain); len(errs) > 0 {
		return errs
	}

	hostnamesPath := field.NewPath("hostnames")
	if len(d.Hostnames) == 0 {
		return field.ErrorList{field.Required(hostnamesPath, "at least one hostname is required")}
	}
	for i, hostname := range d.Hostnames {
		if errs := validation.IsFullyQualifiedDomainName(hostnamesPath.Index(i), hostname); len(errs) > 0 {
			return errs
		}
	}

	if errs := validation.IsValidCIDR(field.NewPath("subnet"), d.Subnet); len(errs) > 0 {
		return errs
	}

	if d.SecretKeyRef == "" {
		return field.ErrorList{field.Required(field.NewPath("secretKeyRef"), "the mail-system key Secret must be referenced")}
	}

	if d.MessageSizeLimitMB <= 0 {
		return field.ErrorList{field.Invalid(field.NewPath("messageSizeLimitMB"), d.MessageSizeLimitMB, "must be positive")}
	}

	if d.InitialAccount != nil {
		if errs := validation.IsFullyQualifiedDomainName(field.NewPath("initialAccount", "domain"), d.InitialAccount.Domain); len(errs) > 0 {
			return errs
		}
	}

	if errs := validateDatabase(field.NewPath("database"), &d.Database); len(errs) > 0 {
		return errs
	}

	if d.Cache.Host == "" {
		return field.ErrorList{field.Required(field.NewPath("cache", "host"), "the cache backend host is required")}
	}

	for _, name := range componentNames {
		if errs := validateComponent(field.NewPath("components", name), d.Components.ByName(name)); len(errs) > 0 {
			return errs
		}
	}

	if d.Ingress != nil && d.Ingress.Hostname != "" {
		if errs := validation.IsFullyQualifiedDomainName(field.NewPath("ingress", "hostname"), d.Ingress.Hostname); len(errs) > 0 {
			return errs
		}
	}

	return nil
}

func validateDatabase(fldPath *field.Path, db *DatabaseConfig) field.ErrorList {
	switch db.Flavor {
	case DatabaseFlavorPostgreSQL:
		pgPath := fldPath.Child("postgresql")
		if db.PostgreSQL == nil {
			return field.ErrorList{field.Required(pgPath, "postgresql connection settings are required for the postgresql flavor")}
		}
		if db.PostgreSQL.Host == "" {
			return field.ErrorList{field.Required(pgPath.Child("host"), "the database host is required")}
		}
		if db.PostgreSQL.CredentialsSecretRef == "" {
			return field.ErrorList{field.Required(pgPath.Child("credentialsSecretRef"), "the database credentials Secret must be referenced")}
		}
	case DatabaseFlavorSQLite:
	default:
		return field.ErrorList{field.NotSupported(fldPath.Child("flavor"), db.Flavor, databaseFlavors)}
	}
	return nil
}

func validateComponent(fldPath *field.Path, cc *ComponentConfig) field.ErrorList {
	if cc == nil {
		return nil
	}
	if cc.Resources != nil {
		if errs := validateResourceList(fldPath.Child("resources", "requests"), cc.Resources.Requests); len(errs) > 0 {
			return errs
		}
		if errs := validateResourceList(fldPath.Child("resources", "limits"), cc.Resources.Limits); len(errs) > 0 {
			return errs
		}
	}
	if cc.Storage != nil && cc.Storage.Size != "" {
		if _, err := resource.ParseQuantity(cc.Storage.Size); err != nil {
			return field.ErrorList{field.Invalid(fldPath.Child("storage", "size"), cc.Storage.Size, err.Error())}
		}
	}
	return nil
}

func validateResourceList(fldPath *field.Path, rl ResourceList) field.ErrorList {
	if rl.CPU != "" {
		if _, err := resource.ParseQuantity(rl.CPU); err != nil {
			return field.ErrorList{field.Invalid(fldPath.Child("cpu"), rl.CPU, err.Error())}
		}
	}
	if rl.Memory != "" {
		if _, err := resource.ParseQuantity(rl.Memory); err != nil {
			return field.ErrorList{field.Invalid(fldPath.Child("memory"), rl.Memory, err.Error())}
		}
	}
	return nil
}
