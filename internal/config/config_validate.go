// Wasp Bot - Wasp CLI Telemetry Analytics
// Copyright 2026 Wasp team (wasp-lang)
// SPDX-License-Identifier: MIT
// https://github.com/wasp-lang/wasp-bot-sub000

package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// singleton validator instance; caches struct metadata across calls.
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the configuration for correctness. It applies the struct
// validation tags first, then cross-field rules that tags cannot express.
func (c *Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		return translateValidationError(err)
	}

	validators := []func() error{
		c.validateReconcile,
		c.validateDiscord,
	}

	for _, fn := range validators {
		if err := fn(); err != nil {
			return err
		}
	}

	return nil
}

// validateReconcile checks reconciliation timing invariants.
func (c *Config) validateReconcile() error {
	if c.Reconcile.ForwardWindow < time.Minute {
		return fmt.Errorf("reconcile.forward_window must be at least 1m, got %s", c.Reconcile.ForwardWindow)
	}
	if c.Reconcile.RetryInitialDelay <= 0 {
		return fmt.Errorf("reconcile.retry_initial_delay must be positive, got %s", c.Reconcile.RetryInitialDelay)
	}
	if c.Reconcile.RetryMaxDelay < c.Reconcile.RetryInitialDelay {
		return fmt.Errorf("reconcile.retry_max_delay (%s) must not be below reconcile.retry_initial_delay (%s)",
			c.Reconcile.RetryMaxDelay, c.Reconcile.RetryInitialDelay)
	}
	return nil
}

// validateDiscord requires a webhook URL when Discord delivery is enabled.
func (c *Config) validateDiscord() error {
	if c.Discord.Enabled && c.Discord.WebhookURL == "" {
		return errors.New("discord.webhook_url is required when discord.enabled is true")
	}
	if c.Discord.WebhookURL != "" && !strings.HasPrefix(c.Discord.WebhookURL, "https://") {
		return fmt.Errorf("discord.webhook_url must be an https URL, got %q", c.Discord.WebhookURL)
	}
	return nil
}

// translateValidationError flattens validator.ValidationErrors into a single
// readable error naming every failing field.
func translateValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Namespace()))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid URL", fe.Namespace()))
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s fails %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s] (got %v)", fe.Namespace(), fe.Param(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s fails validation %q", fe.Namespace(), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}
