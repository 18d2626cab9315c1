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

func runBadgeList(ctx context.Context, api string, out io.Writer) error {
	return do(ctx, newClient(api), http.MethodGet, "/api/badges", nil, out)
}

func runBadgeCreate(ctx context.Context, api, name, reqType string, value, reward int, category string, out io.Writer) error {
	if name == "" || reqType == "" {
		return fmt.Errorf("--name and --type required")
	}
	payload := map[string]interface{}{
		"name":             name,
		"requirementType":  reqType,
		"requirementValue": value,
		"pointsReward":     reward,
		"category":         category,
	}
	return do(ctx, newClient(api), http.MethodPost, "/api/badges", payload, out)
}

func runEvaluate(ctx context.Context, api, userID string, out io.Writer) error {
	return do(ctx, newClient(api), http.MethodPost, "/api/profiles/"+url.PathEscape(userID)+"/badges/evaluate", nil, out)
}

func init() {
	badgesCmd := &cobra.Command{Use: "badges", Short: "Badge catalog and evaluation"}

	badgesCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the badge catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBadgeList(cmd.Context(), apiFlag, os.Stdout)
		},
	})

	var name, reqType, category string
	var value, reward int
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Add a badge to the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBadgeCreate(cmd.Context(), apiFlag, name, reqType, value, reward, category, os.Stdout)
		},
	}
	createCmd.Flags().StringVarP(&name, "name", "n", "", "Badge name (required)")
	createCmd.Flags().StringVarP(&reqType, "type", "t", "", "Requirement type, e.g. words_added (required)")
	createCmd.Flags().IntVar(&value, "value", 0, "Requirement threshold")
	createCmd.Flags().IntVar(&reward, "reward", 0, "Points awarded with the badge")
	createCmd.Flags().StringVar(&category, "category", "", "contribution, engagement or streak")
	badgesCmd.AddCommand(createCmd)

	badgesCmd.AddCommand(&cobra.Command{
		Use:   "evaluate USER_ID",
		Short: "Award every badge the user qualifies for",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd.Context(), apiFlag, args[0], os.Stdout)
		},
	})

	rootCmd.AddCommand(badgesCmd)
}
