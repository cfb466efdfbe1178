package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tendant/media-catalog/pkg/catalog"
	"github.com/tendant/media-catalog/pkg/catalog/api"
	"github.com/tendant/media-catalog/pkg/catalog/config"
)

// NewMigrateCommand creates the migrate command
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.DatabaseType == config.DatabaseMemory {
				fmt.Fprintln(cmd.OutOrStdout(), "Memory database needs no migration")
				return nil
			}

			if cfg.DatabaseType == config.DatabasePostgres {
				if err := config.PingPostgres(cmd.Context(), cfg.DatabaseURL, cfg.DBSchema); err != nil {
					return err
				}
			}

			cfg.AutoMigrate = true
			_, cleanup, err := buildService(cmd.Context(), cmd, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %s database\n", cfg.DatabaseType)
			return nil
		},
	}
}

// NewCreateUserCommand creates the create-user command
func NewCreateUserCommand() *cobra.Command {
	var id, name, email, role string
	var tokenTTL time.Duration

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Register a user",
		Long:  `Register a user the watchlist endpoints can act for. Pass --token-ttl to also print a bearer token.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := catalog.CreateUserRequest{
				Name:  name,
				Email: email,
				Role:  catalog.UserRole(role),
			}
			if id != "" {
				parsed, err := uuid.Parse(id)
				if err != nil {
					return fmt.Errorf("invalid --id: %w", err)
				}
				req.ID = parsed
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			svc, cleanup, err := buildService(cmd.Context(), cmd, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			user, err := svc.CreateUser(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (%s)\n", user.Role, user.ID, user.Name)

			if tokenTTL > 0 {
				token, err := api.NewAuth(cfg.JWTSecret).IssueToken(user.ID, user.Role, tokenTTL)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "user ID (generated when empty)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&role, "role", string(catalog.RoleUser), "user or admin")
	cmd.Flags().DurationVar(&tokenTTL, "token-ttl", 0, "also print a token valid for this long")

	return cmd
}

// NewTokenCommand creates the token command
func NewTokenCommand() *cobra.Command {
	var userID, role string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(userID)
			if err != nil {
				return fmt.Errorf("invalid --user-id: %w", err)
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			token, err := api.NewAuth(cfg.JWTSecret).IssueToken(id, catalog.UserRole(role), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "subject of the token")
	cmd.Flags().StringVar(&role, "role", string(catalog.RoleUser), "user or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime, 0 for no expiry")
	_ = cmd.MarkFlagRequired("user-id")

	return cmd
}

// NewListContentCommand creates the list-content command
func NewListContentCommand() *cobra.Command {
	var useJSON bool

	cmd := &cobra.Command{
		Use:   "list-content",
		Short: "List catalog content, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			svc, cleanup, err := buildService(cmd.Context(), cmd, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			contents, err := svc.ListContent(cmd.Context())
			if err != nil {
				return err
			}
			if useJSON {
				return writeJSON(cmd.OutOrStdout(), contents)
			}
			printContentTable(cmd.OutOrStdout(), contents)
			return nil
		},
	}

	cmd.Flags().BoolVar(&useJSON, "json", false, "output as JSON")
	return cmd
}

// NewStatsCommand creates the stats command
func NewStatsCommand() *cobra.Command {
	var useJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarise the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			svc, cleanup, err := buildService(cmd.Context(), cmd, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			contents, err := svc.ListContent(cmd.Context())
			if err != nil {
				return err
			}
			stats := summarize(contents)
			if useJSON {
				return writeJSON(cmd.OutOrStdout(), stats)
			}
			printStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}

	cmd.Flags().BoolVar(&useJSON, "json", false, "output as JSON")
	return cmd
}

// catalogStats is the JSON shape of the stats command
type catalogStats struct {
	TotalCount   int                           `json:"totalCount"`
	TotalViews   int64                         `json:"totalViews"`
	ByStatus     map[catalog.ContentStatus]int `json:"byStatus"`
	ByVisibility map[catalog.Visibility]int    `json:"byVisibility"`
	ByCategory   map[string]int                `json:"byCategory"`
	ComputedAt   time.Time                     `json:"computedAt"`
}

func summarize(contents []*catalog.Content) catalogStats {
	stats := catalogStats{
		TotalCount:   len(contents),
		ByStatus:     map[catalog.ContentStatus]int{},
		ByVisibility: map[catalog.Visibility]int{},
		ByCategory:   map[string]int{},
		ComputedAt:   time.Now().UTC(),
	}
	for _, c := range contents {
		stats.TotalViews += c.Views
		stats.ByStatus[c.Status]++
		stats.ByVisibility[c.Visibility]++
		stats.ByCategory[orDash(c.Category)]++
	}
	return stats
}

func printContentTable(out io.Writer, contents []*catalog.Content) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tTITLE\tCATEGORY\tSTATUS\tVISIBILITY\tVIEWS\tPUBLISHED\n")
	for _, c := range contents {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			c.ID.String()[:8]+"...",
			truncate(c.Title, 30),
			truncate(orDash(c.Category), 15),
			c.Status,
			c.Visibility,
			c.Views,
			c.PublishDate.Format("2006-01-02"),
		)
	}
	w.Flush()
	fmt.Fprintf(out, "\nTotal: %d\n", len(contents))
}

func printStats(out io.Writer, stats catalogStats) {
	fmt.Fprintln(out, "=== Catalog Statistics ===")
	fmt.Fprintf(out, "\nTotal Count: %d\n", stats.TotalCount)
	fmt.Fprintf(out, "Total Views: %d\n", stats.TotalViews)

	if len(stats.ByStatus) > 0 {
		fmt.Fprintln(out, "\nBy Status:")
		for status, count := range stats.ByStatus {
			fmt.Fprintf(out, "  %-15s: %d\n", status, count)
		}
	}
	if len(stats.ByVisibility) > 0 {
		fmt.Fprintln(out, "\nBy Visibility:")
		for visibility, count := range stats.ByVisibility {
			fmt.Fprintf(out, "  %-15s: %d\n", visibility, count)
		}
	}
	if len(stats.ByCategory) > 0 {
		fmt.Fprintln(out, "\nBy Category:")
		for category, count := range stats.ByCategory {
			fmt.Fprintf(out, "  %-30s: %d\n", truncate(category, 30), count)
		}
	}

	fmt.Fprintf(out, "\nComputed at: %s\n", stats.ComputedAt.Format(time.RFC3339))
}

func writeJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncate shortens s to maxLen runes, ending in "..." when cut
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
