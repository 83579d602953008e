package main

import (
	"errors"
	"fmt"

	"github.com/flixsy/backend/internal/models"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func findUser(username string) (*models.User, error) {
	var user models.User
	err := db.Where("LOWER(username) = LOWER(?)", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("no user named %q", username)
	} else if err != nil {
		return nil, err
	}
	return &user, nil
}

var promoteAdminCmd = &cobra.Command{
	Use:   "promote-admin <username>",
	Short: "Grant admin privileges to a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := findUser(args[0])
		if err != nil {
			return err
		}
		if user.IsAdmin {
			fmt.Printf("%s is already an admin\n", user.Username)
			return nil
		}
		if err := db.Model(user).Update("is_admin", true).Error; err != nil {
			return err
		}
		fmt.Printf("%s is now an admin\n", user.Username)
		return nil
	},
}

var banCmd = &cobra.Command{
	Use:   "ban <username>",
	Short: "Ban a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := findUser(args[0])
		if err != nil {
			return err
		}
		if user.IsAdmin {
			return fmt.Errorf("%s is an admin; demote first", user.Username)
		}
		if err := db.Model(user).Update("is_banned", true).Error; err != nil {
			return err
		}
		fmt.Printf("%s is banned\n", user.Username)
		return nil
	},
}

var unbanCmd = &cobra.Command{
	Use:   "unban <username>",
	Short: "Lift a user's ban",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := findUser(args[0])
		if err != nil {
			return err
		}
		if err := db.Model(user).Update("is_banned", false).Error; err != nil {
			return err
		}
		fmt.Printf("%s is unbanned\n", user.Username)
		return nil
	},
}
