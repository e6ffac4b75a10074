// Command taskctl is a terminal client for the task API.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tasknotes-backend/internal/auth"
	"tasknotes-backend/internal/client"
	"tasknotes-backend/internal/view"
)

var (
	serverURL  string
	authToken  string
	searchFlag string
	sortFlag   string
	titleFlag  string
	bodyFlag   string
	secretFlag string
	subject    string
	tokenTTL   time.Duration

	rootCmd = &cobra.Command{
		Use:           "taskctl",
		Short:         "Create, list and delete tasks on a tasknotes server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List tasks, optionally filtered and sorted",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
	getCmd = &cobra.Command{
		Use:   "get <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE:  runGet,
	}
	addCmd = &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE:  runAdd,
	}
	deleteCmd = &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE:    runDelete,
	}
	tuiCmd = &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive task board",
		Args:  cobra.NoArgs,
		RunE:  runTUI,
	}
	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a server started with AUTH_SECRET",
		Args:  cobra.NoArgs,
		RunE:  runToken,
	}
)

func init() {
	defaultServer := os.Getenv("TASKS_SERVER")
	if defaultServer == "" {
		defaultServer = "http://127.0.0.1:5000"
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer, "API base URL (env TASKS_SERVER)")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", os.Getenv("TASKS_TOKEN"), "bearer token (env TASKS_TOKEN)")

	listCmd.Flags().StringVar(&searchFlag, "search", "", "case-insensitive substring of title or content")
	listCmd.Flags().StringVar(&sortFlag, "sort", "", "newest | oldest | az | za")

	addCmd.Flags().StringVar(&titleFlag, "title", "", "task title")
	addCmd.Flags().StringVar(&bodyFlag, "content", "", "task content")

	tokenCmd.Flags().StringVar(&secretFlag, "secret", os.Getenv("AUTH_SECRET"), "signing secret (env AUTH_SECRET)")
	tokenCmd.Flags().StringVar(&subject, "subject", "taskctl", "token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")

	rootCmd.AddCommand(listCmd, getCmd, addCmd, deleteCmd, tuiCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, view.RenderStatus(view.Error(err.Error())))
		os.Exit(1)
	}
}

func newClient(platform string) *client.Client {
	return client.New(serverURL, client.WithToken(authToken), client.WithPlatform(platform))
}

func runList(cmd *cobra.Command, _ []string) error {
	mode, err := view.ParseSortMode(sortFlag)
	if err != nil {
		return err
	}

	board := client.NewBoard(newClient("cli"))
	if err := board.Refresh(cmd.Context()); err != nil {
		return err
	}
	board.SetSearch(searchFlag)
	board.SetSort(mode)

	fmt.Fprint(cmd.OutOrStdout(), view.RenderText(board.View(), board.Status(), view.TextOptions{Selected: -1, Location: time.Local}))
	return nil
}

func runGet(cmd *cobra.Command, args []string) error {
	task, err := newClient("cli").Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\nCreated %s\n\n%s\n",
		view.StripTerminal(task.ID), view.StripTerminal(task.Title),
		view.FormatDate(task.Date, time.Local), view.StripTerminal(task.Content))
	return nil
}

func runAdd(cmd *cobra.Command, _ []string) error {
	board := client.NewBoard(newClient("cli"))
	task, err := board.Create(cmd.Context(), titleFlag, bodyFlag)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), view.RenderStatus(board.Status()))
	fmt.Fprintln(cmd.OutOrStdout(), view.StripTerminal(task.ID))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	board := client.NewBoard(newClient("cli"))
	if err := board.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), view.RenderStatus(board.Status()))
	return nil
}

func runToken(cmd *cobra.Command, _ []string) error {
	if secretFlag == "" {
		return fmt.Errorf("--secret or AUTH_SECRET is required")
	}
	tok, err := auth.GenerateToken([]byte(secretFlag), subject, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), tok)
	return nil
}

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c := newClient("tui")
	// Best effort; the board works without it.
	_ = c.AppOpened(ctx, true, "shell")
	return runBoard(ctx, client.NewBoard(c))
}
