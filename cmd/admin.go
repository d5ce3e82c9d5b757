package cmd

import (
	"context"
	"fmt"
	"strings"

	"groovy/core/apperr"
	"groovy/core/auth"
	"groovy/db"
	"groovy/dto"
	"groovy/model"
	"groovy/repository"

	"github.com/spf13/cobra"
)

var (
	adminName     string
	adminEmail    string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "创建管理员账号",
	Long:  `创建一个 ADMIN 角色的账号，用于初始化系统。邮箱已存在时报错。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		gdb, err := db.Connect(cfg)
		if err != nil {
			return err
		}
		defer db.Close(gdb)
		if err := db.AutoMigrate(gdb); err != nil {
			return err
		}

		user, err := createAdmin(cmd.Context(), repository.NewStore(gdb), dto.UserDto{
			Name:     adminName,
			Email:    adminEmail,
			Password: adminPassword,
			Role:     model.RoleAdmin,
		})
		if err != nil {
			return err
		}
		fmt.Printf("管理员已创建: id=%d email=%s\n", user.ID, user.Email)
		return nil
	},
}

// createAdmin validates and stores an ADMIN account.
func createAdmin(ctx context.Context, store *repository.Store, in dto.UserDto) (*model.User, error) {
	if err := dto.Validate(&in); err != nil {
		return nil, err
	}
	if len(in.Password) < auth.MinPasswordLength {
		return nil, apperr.Validation(apperr.FieldError{Field: "password", Message: fmt.Sprintf("size must be at least %d", auth.MinPasswordLength)})
	}
	email := strings.TrimSpace(in.Email)
	exists, err := store.Users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("Email is already in use")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{Name: strings.TrimSpace(in.Name), Email: email, PasswordHash: hash, Role: model.RoleAdmin}
	if err := store.Users.Create(ctx, user); err != nil {
		if db.IsDuplicateKey(err) {
			return nil, apperr.Conflict("Email is already in use")
		}
		return nil, err
	}
	return user, nil
}

func init() {
	rootCmd.AddCommand(createAdminCmd)

	createAdminCmd.Flags().StringVar(&adminName, "name", "Administrator", "管理员名称")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "管理员邮箱")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "管理员密码 (至少6位)")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}
