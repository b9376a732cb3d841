// Copyright 2026 BWI GmbH and Mailforge contributors
// SPDX-License-Identifier: Apache-2.0

// Package observability provides structured logging for Mailforge.
//
// The package wraps zap behind the logr interface:
//
//	log, err := observability.NewLogger(observability.LoggerConfig{
//	    Level:    "info",
//	    Encoding: "json",
//	})
//	if err != nil {
//	    os.Exit(1)
//	}
//	log.Info("Starting compilation", "config", path)
package observability
