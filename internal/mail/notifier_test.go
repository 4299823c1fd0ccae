// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Simple Quiz Contributors

package mail

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simple-quiz-org/simple-quiz-api/internal/auth"
	"github.com/simple-quiz-org/simple-quiz-api/internal/config"
	"github.com/simple-quiz-org/simple-quiz-api/pkg/errutil"
)

const confirmToken = "0123456789abcdef0123456789abcdef"

func smtpConfig() config.SMTPConfig {
	return config.SMTPConfig{
		Host: "smtp.example.com",
		Port: 587,
		From: "noreply@example.com",
	}
}

func TestSMTPNotifier_SendConfirmation(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers the confirmation link", func(t *testing.T) {
		var (
			gotAddr string
			gotFrom string
			gotTo   []string
			gotMsg  []byte
		)
		n := NewSMTPNotifier(smtpConfig(), "https://quiz.example.com/")
		n.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
			return nil
		}

		err := n.SendConfirmation(ctx, "alice@example.com", confirmToken)
		require.NoError(t, err)

		assert.Equal(t, "smtp.example.com:587", gotAddr)
		assert.Equal(t, "noreply@example.com", gotFrom)
		assert.Equal(t, []string{"alice@example.com"}, gotTo)
		assert.Contains(t, string(gotMsg), "https://quiz.example.com/register?token="+confirmToken)
		assert.Contains(t, string(gotMsg), "valid for one hour")
		assert.Contains(t, string(gotMsg), "To: alice@example.com")
	})

	t.Run("authenticates when a username is configured", func(t *testing.T) {
		cfg := smtpConfig()
		cfg.Username = "relay-user"
		cfg.Password = "relay-pass"

		var gotAuth smtp.Auth
		n := NewSMTPNotifier(cfg, "https://quiz.example.com")
		n.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			gotAuth = a
			return nil
		}

		require.NoError(t, n.SendConfirmation(ctx, "alice@example.com", confirmToken))
		assert.NotNil(t, gotAuth)
	})

	t.Run("relay failure maps to the delivery code", func(t *testing.T) {
		n := NewSMTPNotifier(smtpConfig(), "https://quiz.example.com")
		n.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			return errors.New("connection refused")
		}

		err := n.SendConfirmation(ctx, "alice@example.com", confirmToken)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, auth.CodeMailDelivery)
	})

	t.Run("cancelled context skips delivery", func(t *testing.T) {
		n := NewSMTPNotifier(smtpConfig(), "https://quiz.example.com")
		n.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			t.Fatal("send must not run on a cancelled context")
			return nil
		}

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := n.SendConfirmation(cancelled, "alice@example.com", confirmToken)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, auth.CodeMailDelivery)
	})
}
