package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cmsadmin/pkg/api"
	"cmsadmin/pkg/auth"
	"cmsadmin/pkg/errors"
	"cmsadmin/pkg/export"
	"cmsadmin/pkg/models"
	"cmsadmin/pkg/render"
	"cmsadmin/pkg/services"
)

var (
	token      string
	timeout    time.Duration
	jsonOutput bool

	username string
	password string

	listPage   int
	listType   string
	listSite   string
	listActive string
	listSearch string

	exportDir string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and print a backend token",
	Long: `Exchanges credentials for a backend token and prints it. Export it as
CMS_TOKEN for the other commands. The password is read from CMS_PASSWORD or
prompted for when not given.`,
	RunE: runLogin,
}

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Work with content records",
}

var contentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List content records",
	RunE:  runContentList,
}

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Work with notes",
}

var notesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes",
	RunE:  runNotesList,
}

var contentTypesCmd = &cobra.Command{
	Use:   "content-types",
	Short: "List the content types offered by the backend",
	RunE:  runContentTypes,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all content and notes into a zip archive",
	RunE:  runExport,
}

func init() {
	for _, cmd := range []*cobra.Command{contentCmd, notesCmd, contentTypesCmd, exportCmd} {
		cmd.PersistentFlags().StringVar(&token, "token", os.Getenv("CMS_TOKEN"), "Backend token (default: CMS_TOKEN)")
	}
	for _, cmd := range []*cobra.Command{loginCmd, contentCmd, notesCmd, contentTypesCmd, exportCmd} {
		cmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Operation timeout")
	}
	for _, cmd := range []*cobra.Command{contentListCmd, notesListCmd, contentTypesCmd} {
		cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of a table")
	}

	loginCmd.Flags().StringVarP(&username, "username", "u", "", "Username (required)")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "Password (default: CMS_PASSWORD or prompt)")
	loginCmd.MarkFlagRequired("username")

	contentListCmd.Flags().IntVar(&listPage, "page", 1, "Page number")
	contentListCmd.Flags().StringVar(&listType, "type", "", "Filter by content type")
	contentListCmd.Flags().StringVar(&listSite, "site-page", "", "Filter by site page (home, about, contact)")
	contentListCmd.Flags().StringVar(&listActive, "active", "", "Filter by status (true or false)")
	contentCmd.AddCommand(contentListCmd)

	notesListCmd.Flags().IntVar(&listPage, "page", 1, "Page number")
	notesListCmd.Flags().StringVar(&listType, "type", "", "Filter by note type")
	notesListCmd.Flags().StringVar(&listActive, "active", "", "Filter by status (true or false)")
	notesListCmd.Flags().StringVar(&listSearch, "search", "", "Search text")
	notesCmd.AddCommand(notesListCmd)

	exportCmd.Flags().StringVarP(&exportDir, "dir", "d", ".", "Directory for the archive")
}

// backend returns a caller authenticated with the --token value
func backend() (api.Caller, error) {
	if token == "" {
		return nil, errors.ErrNoSession.WithUserMessage("No active session: run \"cmsadmin login\" and set CMS_TOKEN")
	}
	tokens := api.NewStaticToken(token, func(reason string) {
		logger.Warn("backend rejected the token", zap.String("reason", reason))
	})
	return newAPIClient(cfg, logger).Bind(tokens), nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runLogin(cmd *cobra.Command, args []string) error {
	if password == "" {
		password = os.Getenv("CMS_PASSWORD")
	}
	if password == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	client := auth.NewClient(newAPIClient(cfg, logger), cfg.LoginMode)
	resp, err := client.Login(ctx, models.Credentials{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("login failed: %s", errors.UserMessage(err))
	}
	fmt.Println(resp.AccessToken)
	return nil
}

func runContentList(cmd *cobra.Command, args []string) error {
	caller, err := backend()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	filter := models.ContentFilter{
		Type:     listType,
		Page:     listSite,
		IsActive: models.ParseActive(listActive),
	}.WithPage(listPage, cfg.PageSize)
	env, err := services.NewContentService(caller, logger).List(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to load content: %s", errors.UserMessage(err))
	}
	if jsonOutput {
		return printJSON(env)
	}
	fmt.Print(render.ContentTable(env))
	return nil
}

func runNotesList(cmd *cobra.Command, args []string) error {
	caller, err := backend()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	filter := models.NoteFilter{
		Type:     listType,
		IsActive: models.ParseActive(listActive),
		Search:   listSearch,
	}.WithPage(listPage, cfg.PageSize)
	env, err := services.NewNoteService(caller, logger).List(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to load notes: %s", errors.UserMessage(err))
	}
	if jsonOutput {
		return printJSON(env)
	}
	fmt.Print(render.NoteTable(env))
	return nil
}

func runContentTypes(cmd *cobra.Command, args []string) error {
	caller, err := backend()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	opts, err := services.NewContentService(caller, logger).Types(ctx)
	if err != nil {
		return fmt.Errorf("failed to load content types: %s", errors.UserMessage(err))
	}
	if jsonOutput {
		return printJSON(opts)
	}
	fmt.Print(render.OptionTable("Content types", opts))
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	caller, err := backend()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	summary, err := export.Backup(ctx, exportDir,
		services.NewContentService(caller, logger),
		services.NewNoteService(caller, logger),
		cfg.PageSize, logger)
	if err != nil {
		return fmt.Errorf("export failed: %s", errors.UserMessage(err))
	}
	fmt.Printf("Exported %s and %s to %s\n",
		render.CountLabel(summary.Content, "content record", "content records"),
		render.CountLabel(summary.Notes, "note", "notes"),
		summary.Path)
	return nil
}
