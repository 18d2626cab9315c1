package main

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func runLeaderboard(ctx context.Context, api string, limit int, out io.Writer) error {
	path := "/api/leaderboard"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	return do(ctx, newClient(api), http.MethodGet, path, nil, out)
}

func runWeekly(ctx context.Context, api, weekStart string, out io.Writer) error {
	path := "/api/competition/weekly"
	if weekStart != "" {
		path += "?weekStart=" + url.QueryEscape(weekStart)
	}
	return do(ctx, newClient(api), http.MethodGet, path, nil, out)
}

func init() {
	var limit int
	boardCmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the points leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLeaderboard(cmd.Context(), apiFlag, limit, os.Stdout)
		},
	}
	boardCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of rows (default 50, max 100)")
	rootCmd.AddCommand(boardCmd)

	var week string
	weeklyCmd := &cobra.Command{
		Use:   "weekly",
		Short: "Show the weekly dialect competition",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWeekly(cmd.Context(), apiFlag, week, os.Stdout)
		},
	}
	weeklyCmd.Flags().StringVarP(&week, "week", "w", "", "Any date in the week, YYYY-MM-DD (default this week)")
	rootCmd.AddCommand(weeklyCmd)
}
