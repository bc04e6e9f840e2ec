package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicer/internal/auth"
)

func TestTokenCommand_IssuesParsableToken(t *testing.T) {
	t.Setenv("INVOICER_AUTH_SECRET", "cli-test-secret")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"token", "--subject", "cron"})
	require.NoError(t, rootCmd.Execute())

	claims, err := auth.NewTokenManager(&current.cfg.Auth).Parse(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "cron", claims.Subject)
}

func TestRenderPDFCommand_RejectsBadID(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"render-pdf", "not-a-uuid"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid invoice id")
}
