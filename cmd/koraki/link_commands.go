package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kolapsis/koraki/internal/auth"
	"github.com/kolapsis/koraki/internal/link"
)

func newLinkCommand(ctx *commandContext) *cobra.Command {
	var clientID, clientSecret string

	cmd := &cobra.Command{
		Use:   "link",
		Short: "Validate Koraki credentials and store them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			result, err := a.manager.Validate(cmd.Context(), clientID, clientSecret)
			if err != nil {
				return fmt.Errorf("%s: %w", result.Message(), err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Message())
			fmt.Fprintf(cmd.OutOrStdout(), "Customize your widget: %s\n", result.CustomizeURL())
			return nil
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "", "Koraki client id")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "Koraki client secret")
	_ = cmd.MarkFlagRequired("client-id")
	_ = cmd.MarkFlagRequired("client-secret")

	return cmd
}

func newUnlinkCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "unlink",
		Short: "Remove the Koraki integration and clear stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if err := a.manager.UnlinkStored(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "credentials cleared")
			return nil
		},
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the Koraki link state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			st, err := a.manager.Status(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStatus(st, a.manager.DashboardURL(st.ApplicationID), cfg.Store.Driver, cfg.AdminURL()))
			return nil
		},
	}
}

func renderStatus(st link.Status, dashboardURL, driver, adminURL string) string {
	rows := [][]string{
		{"Linked", yesNo(st.Linked)},
		{"Store", driver},
		{"Admin page", adminURL},
	}
	if st.Linked {
		rows = append(rows,
			[]string{"Client id", st.ClientID},
			[]string{"Application", st.ApplicationID},
			[]string{"Plan", st.Plan.Label()},
			[]string{"Dashboard", dashboardURL},
		)
	}
	return renderTable([]string{"Field", "Value"}, rows)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func newTokenCommand(ctx *commandContext) *cobra.Command {
	var rotate bool

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print the API token guarding /api, /mcp and /admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Auth.APIToken != "" {
				if rotate {
					return fmt.Errorf("auth.api_token is set in configuration; change it there")
				}
				fmt.Fprintln(cmd.OutOrStdout(), cfg.Auth.APIToken)
				return nil
			}

			var token string
			if rotate {
				token, err = auth.RotateToken(cfg.Auth.TokenDir)
			} else {
				token, err = auth.LoadOrCreateToken(cfg.Auth.TokenDir)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "stored in %s\n", auth.TokenPath(cfg.Auth.TokenDir))
			return nil
		},
	}

	cmd.Flags().BoolVar(&rotate, "rotate", false, "Replace the stored token with a new one")
	return cmd
}
