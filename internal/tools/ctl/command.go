// Package ctl implements the gatewayctl maintenance CLI: offline access
// classification, payload normalization dry-runs, test token issuance, and
// audit-trail upkeep.
package ctl

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/registrack/backoffice-gateway/internal/access"
	"github.com/registrack/backoffice-gateway/internal/config"
	"github.com/registrack/backoffice-gateway/internal/database"
	"github.com/registrack/backoffice-gateway/internal/domain"
	"github.com/registrack/backoffice-gateway/internal/normalize"
	"github.com/registrack/backoffice-gateway/internal/repository"
	"github.com/registrack/backoffice-gateway/internal/security"
	"github.com/registrack/backoffice-gateway/internal/tools/common"
	"github.com/registrack/backoffice-gateway/internal/tools/ui"
)

type options struct {
	envFile string
	timeout time.Duration
	ci      bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "gatewayctl",
		Short: "Backoffice gateway maintenance tooling",
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "operation timeout")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")

	cmd.AddCommand(
		newClassifyCommand(opts),
		newNormalizeCommand(opts),
		newTokenCommand(opts),
		newAuditCommand(opts),
		newMigrateCommand(opts),
	)
	return cmd
}

func newClassifyCommand(opts *options) *cobra.Command {
	var module, action string
	cmd := &cobra.Command{
		Use:   "classify <identity.json>",
		Short: "Classify an identity payload and optionally check one permission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "classify", func(ctx context.Context) ([]string, error) {
				raw, err := os.ReadFile(args[0])
				if err != nil {
					return nil, err
				}
				var identity map[string]any
				if err := json.Unmarshal(raw, &identity); err != nil {
					return nil, fmt.Errorf("decode identity: %w", err)
				}

				ref := access.ParseIdentity(identity)
				role := ref.Model()
				flags := access.ClassifyRole(role)

				details := []string{
					fmt.Sprintf("role name: %q", role.Name),
					fmt.Sprintf("administrative: %v", flags.Administrative),
					fmt.Sprintf("client: %v", flags.Client),
					fmt.Sprintf("admin: %v", flags.Admin),
					fmt.Sprintf("employee: %v", flags.Employee),
				}
				if role.ID != nil {
					details = append(details, fmt.Sprintf("role id: %d", *role.ID))
				}
				if module != "" {
					allowed := access.HasPermission(role, module, action)
					details = append(details, fmt.Sprintf("permission %s:%s -> %v", module, action, allowed))
				}
				return details, nil
			})
			if opts.ci {
				common.PrintCIReport("classify", details, err)
			}
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&module, "module", "", "module key to check (frontend naming accepted)")
	cmd.Flags().StringVar(&action, "action", "leer", "action to check")
	return cmd
}

func newNormalizeCommand(opts *options) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "normalize <payload.json>",
		Short: "Normalize a raw business-API payload into canonical records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "normalize", func(ctx context.Context) ([]string, error) {
				recordKind := domain.RecordKind(kind)
				if !domain.ValidRecordKind(recordKind) {
					return nil, fmt.Errorf("unknown record kind %q", kind)
				}
				raw, err := os.ReadFile(args[0])
				if err != nil {
					return nil, err
				}
				var payload any
				if err := json.Unmarshal(raw, &payload); err != nil {
					return nil, fmt.Errorf("decode payload: %w", err)
				}

				set := normalize.NewBuilder().Build(recordKind, payload)
				details := []string{
					fmt.Sprintf("kind: %s", set.Kind),
					fmt.Sprintf("records: %d", len(set.Records)),
					fmt.Sprintf("no data: %v", set.NoData),
				}
				for i, record := range set.Records {
					line, err := json.Marshal(record)
					if err != nil {
						return nil, err
					}
					details = append(details, fmt.Sprintf("[%d] %s", i, line))
				}
				return details, nil
			})
			if opts.ci {
				common.PrintCIReport("normalize", details, err)
			}
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", string(domain.KindServiceSummary), "record kind to build")
	return cmd
}

func newTokenCommand(opts *options) *cobra.Command {
	var subject string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <identity.json>",
		Short: "Issue a test access token carrying the given identity fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "token", func(ctx context.Context) ([]string, error) {
				cfg, err := loadConfig(opts.envFile)
				if err != nil {
					return nil, err
				}
				raw, err := os.ReadFile(args[0])
				if err != nil {
					return nil, err
				}
				var identity map[string]any
				if err := json.Unmarshal(raw, &identity); err != nil {
					return nil, fmt.Errorf("decode identity: %w", err)
				}

				jwt := security.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTAccessSecret)
				token, err := jwt.IssueAccessToken(subject, uuid.NewString(), identity, ttl)
				if err != nil {
					return nil, err
				}
				return []string{
					fmt.Sprintf("subject: %s", subject),
					fmt.Sprintf("ttl: %s", ttl),
					"token: " + token,
				}, nil
			})
			if opts.ci {
				common.PrintCIReport("token", details, err)
			}
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "dev", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}

func newAuditCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Access-decision trail upkeep",
	}
	cmd.AddCommand(newAuditListCommand(opts), newAuditPurgeCommand(opts))
	return cmd
}

func newAuditListCommand(opts *options) *cobra.Command {
	var subject, module string
	var page, pageSize int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent access decisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "audit list", func(ctx context.Context) ([]string, error) {
				_, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				sqlDB, _ := db.DB()
				defer func() { _ = sqlDB.Close() }()

				repo := repository.NewAuditRepository(db)
				result, err := repo.List(
					repository.AuditFilter{Subject: subject, Module: module},
					repository.PageRequest{Page: page, PageSize: pageSize},
				)
				if err != nil {
					return nil, err
				}
				details := []string{fmt.Sprintf("total: %d (page %d/%d)", result.Total, result.Page, result.TotalPages)}
				for _, d := range result.Items {
					verdict := "deny"
					if d.Allowed {
						verdict = "allow"
					}
					details = append(details, fmt.Sprintf("%s %s %s:%s %s subject=%s",
						d.CreatedAt.Format(time.RFC3339), verdict, d.Module, d.Action, d.Route, d.Subject))
				}
				return details, nil
			})
			if opts.ci {
				common.PrintCIReport("audit list", details, err)
			}
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "filter by subject")
	cmd.Flags().StringVar(&module, "module", "", "filter by module")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "page size")
	return cmd
}

func newAuditPurgeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete audit rows older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "audit purge", func(ctx context.Context) ([]string, error) {
				cfg, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				sqlDB, _ := db.DB()
				defer func() { _ = sqlDB.Close() }()

				purged, err := database.PurgeExpiredDecisions(db, cfg.AuditRetention)
				if err != nil {
					return nil, err
				}
				return []string{
					fmt.Sprintf("retention: %s", cfg.AuditRetention),
					fmt.Sprintf("purged rows: %d", purged),
				}, nil
			})
			if opts.ci {
				common.PrintCIReport("audit purge", details, err)
			}
			if err != nil {
				os.Exit(3)
			}
			return nil
		},
	}
}

func newMigrateCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tooling",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply schema migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				details, err := run(opts, "migrate up", func(ctx context.Context) ([]string, error) {
					cfg, db, err := loadConfigDB(opts.envFile)
					if err != nil {
						return nil, err
					}
					sqlDB, _ := db.DB()
					defer func() { _ = sqlDB.Close() }()

					if err := database.Migrate(db); err != nil {
						return nil, err
					}
					return []string{"schema migration applied", "service: " + cfg.OTELServiceName}, nil
				})
				if opts.ci {
					common.PrintCIReport("migrate up", details, err)
				}
				if err != nil {
					os.Exit(3)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Check migration prerequisites",
			RunE: func(cmd *cobra.Command, args []string) error {
				details, err := run(opts, "migrate status", func(ctx context.Context) ([]string, error) {
					cfg, db, err := loadConfigDB(opts.envFile)
					if err != nil {
						return nil, err
					}
					sqlDB, _ := db.DB()
					defer func() { _ = sqlDB.Close() }()
					if err := sqlDB.PingContext(ctx); err != nil {
						return nil, fmt.Errorf("db ping: %w", err)
					}
					return []string{"database reachable", "service: " + cfg.OTELServiceName, "migrations: ready"}, nil
				})
				if opts.ci {
					common.PrintCIReport("migrate status", details, err)
				}
				if err != nil {
					os.Exit(3)
				}
				return nil
			},
		},
	)
	return cmd
}

func run(opts *options, title string, fn func(context.Context) ([]string, error)) ([]string, error) {
	if opts.ci {
		ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
		defer cancel()
		return fn(ctx)
	}
	return ui.Run(title, fn)
}

func loadConfig(envFile string) (*config.Config, error) {
	if err := common.LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	return config.Load()
}

func loadConfigDB(envFile string) (*config.Config, *gorm.DB, error) {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
