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

func runVote(ctx context.Context, api, userID, linkID, voteType string, out io.Writer) error {
	if userID == "" || linkID == "" {
		return fmt.Errorf("--user and --link required")
	}
	payload := map[string]string{"userId": userID, "voteType": voteType}
	return do(ctx, newClient(api), http.MethodPost, "/api/variant-links/"+url.PathEscape(linkID)+"/votes", payload, out)
}

func runVariants(ctx context.Context, api, entryID string, out io.Writer) error {
	return do(ctx, newClient(api), http.MethodGet, "/api/entries/"+url.PathEscape(entryID)+"/variants", nil, out)
}

func init() {
	var userID, linkID, voteType string
	voteCmd := &cobra.Command{
		Use:   "vote",
		Short: "Vote on a variant link",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVote(cmd.Context(), apiFlag, userID, linkID, voteType, os.Stdout)
		},
	}
	voteCmd.Flags().StringVarP(&userID, "user", "u", "", "Voter user ID (required)")
	voteCmd.Flags().StringVarP(&linkID, "link", "l", "", "Variant link ID (required)")
	voteCmd.Flags().StringVarP(&voteType, "type", "t", "correct", "correct or incorrect")
	rootCmd.AddCommand(voteCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "variants ENTRY_ID",
		Short: "List dialect variants of an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVariants(cmd.Context(), apiFlag, args[0], os.Stdout)
		},
	})
}
