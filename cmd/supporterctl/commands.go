package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"supporterboard/internal/domain"
	"supporterboard/internal/middleware"
	"supporterboard/internal/settings"
)

const commandTimeout = 10 * time.Second

type supporterStore interface {
	domain.SupporterRepository
	Totals(ctx context.Context) (int, float64, error)
}

type backend struct {
	store   supporterStore
	migrate func(ctx context.Context) error
	close   func()
}

type cli struct {
	connect   func(ctx context.Context) (*backend, error)
	jwtSecret func() string
}

func (c *cli) withBackend(cmd *cobra.Command, fn func(ctx context.Context, b *backend) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()
	b, err := c.connect(ctx)
	if err != nil {
		return err
	}
	if b.close != nil {
		defer b.close()
	}
	return fn(ctx, b)
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "supporterctl",
		Short:         "Manage the supporters shown on the stream overlay",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		c.listCmd(),
		c.addCmd(),
		c.updateCmd(),
		c.deleteCmd(),
		c.tokenCmd(),
		c.migrateCmd(),
	)
	return root
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List supporters, highest amount first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withBackend(cmd, func(ctx context.Context, b *backend) error {
				items, err := b.store.List(ctx)
				if err != nil {
					return err
				}
				count, total, err := b.store.Totals(ctx)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "#\tID\tNAME\tAMOUNT\tMESSAGE")
				for i, s := range items {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, s.ID, s.Name, settings.FormatCurrency(s.Amount), s.MessageText())
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d supporters, %s total\n", count, settings.FormatCurrency(total))
				return nil
			})
		},
	}
}

type supporterFlags struct {
	name    string
	amount  string
	message string
}

func (f *supporterFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "supporter name (required)")
	cmd.Flags().StringVar(&f.amount, "amount", "", "pledged amount in USD (required)")
	cmd.Flags().StringVar(&f.message, "message", "", "optional message")
}

func (f *supporterFlags) input() (domain.SupporterInput, error) {
	amount, err := domain.ParseAmount(f.amount)
	if err != nil {
		return domain.SupporterInput{}, err
	}
	in := domain.NewSupporterInput(f.name, amount, f.message)
	return in, in.Validate()
}

func (c *cli) addCmd() *cobra.Command {
	var flags supporterFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a supporter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := flags.input()
			if err != nil {
				return err
			}
			return c.withBackend(cmd, func(ctx context.Context, b *backend) error {
				created, err := b.store.Insert(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s, %s)\n", created.ID, created.Name, settings.FormatCurrency(created.Amount))
				return nil
			})
		},
	}
	flags.bind(cmd)
	return cmd
}

func (c *cli) updateCmd() *cobra.Command {
	var flags supporterFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a supporter's name, amount and message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := flags.input()
			if err != nil {
				return err
			}
			return c.withBackend(cmd, func(ctx context.Context, b *backend) error {
				updated, err := b.store.Update(ctx, args[0], in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "updated %s (%s, %s)\n", updated.ID, updated.Name, settings.FormatCurrency(updated.Amount))
				return nil
			})
		},
	}
	flags.bind(cmd)
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a supporter permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("%w: pass --yes to delete %s", domain.ErrConfirmationRequired, args[0])
			}
			return c.withBackend(cmd, func(ctx context.Context, b *backend) error {
				if err := b.store.Delete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}

func (c *cli) tokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin token for the dashboard and API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret := strings.TrimSpace(c.jwtSecret())
			if secret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			token, err := middleware.IssueAdminToken(secret, subject, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "admin", "name recorded in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "token lifetime, 0 for no expiry")
	return cmd
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the supporters table and its change trigger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withBackend(cmd, func(ctx context.Context, b *backend) error {
				if b.migrate == nil {
					return errors.New("migrations are not supported by this store")
				}
				if err := b.migrate(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema ready")
				return nil
			})
		},
	}
}
