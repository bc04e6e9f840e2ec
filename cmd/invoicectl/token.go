package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"invoicer/internal/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !current.cfg.Auth.Enabled() {
			return errors.New("INVOICER_AUTH_SECRET is not set; the API is unauthenticated")
		}
		subject, _ := cmd.Flags().GetString("subject")
		token, err := auth.NewTokenManager(&current.cfg.Auth).Issue(subject)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("subject", "operator", "Token subject")
	rootCmd.AddCommand(tokenCmd)
}
