package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/band-manager/internal/config"
	"github.com/iliyamo/band-manager/internal/middleware"
	"github.com/iliyamo/band-manager/internal/model"
	"github.com/iliyamo/band-manager/internal/repository"
	"github.com/iliyamo/band-manager/internal/utils"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Create users and change their capabilities",
}

var createOpts struct {
	displayName string
	role        string
	addShows    bool
	viewAmounts bool
	editName    bool
}

var userCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a user; the password is read from stdin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkRole(createOpts.role); err != nil {
			return err
		}
		password, err := readSecret(cmd.InOrStdin())
		if err != nil {
			return err
		}
		if err := utils.CheckPassword(password); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		cfg, db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		id, err := repository.NewUserRepo(db).Create(ctx, repository.NewUser{
			Username:       args[0],
			DisplayName:    createOpts.displayName,
			Password:       password,
			Role:           createOpts.role,
			CanAddShows:    createOpts.addShows,
			CanViewAmounts: createOpts.viewAmounts,
			CanEditName:    createOpts.editName,
		}, cfg.BcryptCost)
		if err != nil {
			return err
		}
		logger.Info("user created", zap.Uint64("user_id", id), zap.String("role", createOpts.role))
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s)\n", id, repository.NormalizeUsername(args[0]))
		return err
	},
}

var capsOpts struct {
	addShows    bool
	viewAmounts bool
	editName    bool
}

var userCapsCmd = &cobra.Command{
	Use:   "caps <username>",
	Short: "Change a member's capabilities",
	Long: `Only the flags given are changed, for example:

  bandctl user caps drums --view-amounts=false --add-shows`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		_, db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		users := repository.NewUserRepo(db)
		u, err := users.GetByUsername(ctx, repository.NormalizeUsername(args[0]))
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		next := mergeCaps(u, cmd.Flags().Changed)
		if err := users.SetCapabilities(ctx, u.ID, next.CanAddShows, next.CanViewAmounts, next.CanEditName); err != nil {
			return err
		}
		invalidateCache(ctx)

		logger.Info("capabilities updated", zap.Uint64("user_id", u.ID))
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: canAddShows=%t canViewAmounts=%t canEditName=%t\n",
			u.Username, next.CanAddShows, next.CanViewAmounts, next.CanEditName)
		return err
	},
}

// mergeCaps applies the capability flags that were set on the command line
// to u.
func mergeCaps(u model.User, changed func(string) bool) model.User {
	if changed("add-shows") {
		u.CanAddShows = capsOpts.addShows
	}
	if changed("view-amounts") {
		u.CanViewAmounts = capsOpts.viewAmounts
	}
	if changed("edit-name") {
		u.CanEditName = capsOpts.editName
	}
	return u
}

// invalidateCache drops cached responses so capability changes show up
// immediately.  Redis being down is not an error: entries expire anyway.
func invalidateCache(ctx context.Context) {
	rdb, err := config.NewRedisClient(config.LoadRedisConfig())
	if err != nil {
		logger.Debug("cache not invalidated", zap.Error(err))
		return
	}
	defer rdb.Close()
	middleware.NewResponseCache(config.LoadCacheConfig(), rdb, logger).Invalidate(ctx)
}

func checkRole(role string) error {
	switch role {
	case model.RoleAdmin, model.RoleMember:
		return nil
	}
	return fmt.Errorf("role must be %q or %q", model.RoleAdmin, model.RoleMember)
}

func init() {
	f := userCreateCmd.Flags()
	f.StringVar(&createOpts.displayName, "display-name", "", "name shown in the app (defaults to the username)")
	f.StringVar(&createOpts.role, "role", model.RoleMember, "admin or member")
	f.BoolVar(&createOpts.addShows, "add-shows", false, "member may create and edit shows")
	f.BoolVar(&createOpts.viewAmounts, "view-amounts", false, "member may see money")
	f.BoolVar(&createOpts.editName, "edit-name", false, "member may change their display name")

	c := userCapsCmd.Flags()
	c.BoolVar(&capsOpts.addShows, "add-shows", false, "member may create and edit shows")
	c.BoolVar(&capsOpts.viewAmounts, "view-amounts", false, "member may see money")
	c.BoolVar(&capsOpts.editName, "edit-name", false, "member may change their display name")

	userCmd.AddCommand(userCreateCmd, userCapsCmd)
}
