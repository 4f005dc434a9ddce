package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lanternworks/scopeline/internal/auth"
	"github.com/lanternworks/scopeline/internal/config"
	"github.com/lanternworks/scopeline/internal/db"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
	}

	cmd.AddCommand(newUserCreateCmd())
	return cmd
}

func newUserCreateCmd() *cobra.Command {
	var (
		configPath string
		email      string
		name       string
		orgName    string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user and their organization",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserCreate(cmd, configPath, email, name, orgName)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "scopeline.yaml", "path to Scopeline config file")
	cmd.Flags().StringVarP(&email, "email", "e", "", "user email (required)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "user display name (required)")
	cmd.Flags().StringVarP(&orgName, "org", "o", "", "organization name (defaults to user name)")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("name")
	return cmd
}

func runUserCreate(cmd *cobra.Command, configPath, email, name, orgName string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}

	password, err := readPassword(out)
	if err != nil {
		return err
	}

	svc, err := auth.NewService(auth.ServiceOpts{
		DB:         gormDB,
		SessionTTL: time.Duration(cfg.Limits.SessionTTLHours) * time.Hour,
	})
	if err != nil {
		return err
	}

	user, org, err := svc.Signup(auth.SignupOpts{
		Email:    email,
		Name:     name,
		Password: password,
		OrgName:  orgName,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Created user %s (%s)\n", user.Name, user.Email)
	fmt.Fprintf(out, "Created organization %q (id %s)\n", org.Name, org.ID)
	return nil
}

// readPassword prompts twice without echoing and requires both entries to
// match.
func readPassword(out io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())

	fmt.Fprint(out, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	fmt.Fprint(out, "Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(first), nil
}
