package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

func runProfileCreate(ctx context.Context, api, userID, name, email string, out io.Writer) error {
	if userID == "" {
		return fmt.Errorf("--user required")
	}
	payload := map[string]string{"userId": userID, "displayName": name, "email": email}
	return do(ctx, newClient(api), http.MethodPost, "/api/profiles", payload, out)
}

func runProfileGet(ctx context.Context, api, userID string, out io.Writer) error {
	return do(ctx, newClient(api), http.MethodGet, "/api/profiles/"+url.PathEscape(userID), nil, out)
}

func runAudit(ctx context.Context, api, userID string, out io.Writer) error {
	return do(ctx, newClient(api), http.MethodGet, "/api/profiles/"+url.PathEscape(userID)+"/audit", nil, out)
}

func runAddPoints(ctx context.Context, api, userID string, amount int, out io.Writer) error {
	if amount <= 0 {
		return fmt.Errorf("--amount must be positive")
	}
	return do(ctx, newClient(api), http.MethodPost, "/api/profiles/"+url.PathEscape(userID)+"/points",
		map[string]int{"amount": amount}, out)
}

func runContribute(ctx context.Context, api, userID, kind, date string, out io.Writer) error {
	payload := map[string]string{"kind": kind}
	if date != "" {
		payload["date"] = date
	}
	return do(ctx, newClient(api), http.MethodPost, "/api/profiles/"+url.PathEscape(userID)+"/contributions", payload, out)
}

func init() {
	profilesCmd := &cobra.Command{Use: "profiles", Short: "Profile ledger operations"}

	var userID, name, email string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfileCreate(cmd.Context(), apiFlag, userID, name, email, os.Stdout)
		},
	}
	createCmd.Flags().StringVarP(&userID, "user", "u", "", "User ID (required)")
	createCmd.Flags().StringVarP(&name, "name", "n", "", "Display name")
	createCmd.Flags().StringVarP(&email, "email", "e", "", "Email")
	_ = createCmd.MarkFlagRequired("user")
	profilesCmd.AddCommand(createCmd)

	profilesCmd.AddCommand(&cobra.Command{
		Use:   "get USER_ID",
		Short: "Show a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfileGet(cmd.Context(), apiFlag, args[0], os.Stdout)
		},
	})

	profilesCmd.AddCommand(&cobra.Command{
		Use:   "audit USER_ID",
		Short: "Compare stored points with the ledger event sum",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd.Context(), apiFlag, args[0], os.Stdout)
		},
	})

	var amount int
	pointsCmd := &cobra.Command{
		Use:   "add-points USER_ID",
		Short: "Credit points to a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAddPoints(cmd.Context(), apiFlag, args[0], amount, os.Stdout)
		},
	}
	pointsCmd.Flags().IntVar(&amount, "amount", 0, "Points to add (required)")
	_ = pointsCmd.MarkFlagRequired("amount")
	profilesCmd.AddCommand(pointsCmd)

	var kind, date string
	contributeCmd := &cobra.Command{
		Use:   "contribute USER_ID",
		Short: "Record a contribution (word, audio, vote, label)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContribute(cmd.Context(), apiFlag, args[0], kind, date, os.Stdout)
		},
	}
	contributeCmd.Flags().StringVarP(&kind, "kind", "k", "word", "Contribution kind")
	contributeCmd.Flags().StringVarP(&date, "date", "d", "", "Contribution date YYYY-MM-DD (default today)")
	profilesCmd.AddCommand(contributeCmd)

	rootCmd.AddCommand(profilesCmd)
}
