package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/session"
	sessionrepo "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/session/repo"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/user/repo"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage admin accounts",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// passwordFlag returns --password, or reads one line from stdin.
func passwordFlag(cmd *cobra.Command) (string, error) {
	pw, _ := cmd.Flags().GetString("password")
	if pw != "" {
		return pw, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", errors.New("no password given")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// withUsers opens the database and runs fn with the user service. Disabling
// an account or changing its password signs it out everywhere.
func withUsers(fn func(cmd *cobra.Command, args []string, svc *user.UserService) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()
		sessions, err := session.NewService(sessionrepo.NewSessionRepo(e.db), session.ConfigFromEnv())
		if err != nil {
			return err
		}
		svc := user.NewUserService(userrepo.NewUserRepo(e.db), nil, e.sugar)
		svc.Sessions = sessions
		return fn(cmd, args, svc)
	}
}

var userCreateCmd = &cobra.Command{
	Use:   "create <email>",
	Short: "Create an admin account",
	Args:  cobra.ExactArgs(1),
	RunE: withUsers(func(cmd *cobra.Command, args []string, svc *user.UserService) error {
		pw, err := passwordFlag(cmd)
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("name")
		u, err := svc.CreateUser(cmd.Context(), args[0], pw, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", u.Email, u.ID)
		return nil
	}),
}

func setActiveCmd(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <email>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withUsers(func(cmd *cobra.Command, args []string, svc *user.UserService) error {
			u, err := svc.SetActive(cmd.Context(), args[0], active)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %sd\n", u.Email, use)
			return nil
		}),
	}
}

var userPasswordCmd = &cobra.Command{
	Use:   "password <email>",
	Short: "Set a new password and sign out every session",
	Args:  cobra.ExactArgs(1),
	RunE: withUsers(func(cmd *cobra.Command, args []string, svc *user.UserService) error {
		pw, err := passwordFlag(cmd)
		if err != nil {
			return err
		}
		u, err := svc.ChangePassword(cmd.Context(), args[0], pw)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "password changed for %s\n", u.Email)
		return nil
	}),
}

func init() {
	userCreateCmd.Flags().String("name", "", "display name")
	userCreateCmd.Flags().String("password", "", "password (prompted when empty)")
	userPasswordCmd.Flags().String("password", "", "new password (prompted when empty)")
	userCmd.AddCommand(
		userCreateCmd,
		setActiveCmd("disable", "Disable an account and sign out its sessions", false),
		setActiveCmd("enable", "Enable an account", true),
		userPasswordCmd,
	)
	rootCmd.AddCommand(userCmd)
}
