package cmd

import (
	"fmt"

	"groovy/db"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "执行数据库迁移",
	Long:  `连接数据库并执行 GORM 自动迁移，不启动服务器。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		gdb, err := db.Connect(cfg)
		if err != nil {
			return err
		}
		defer db.Close(gdb)

		if err := db.AutoMigrate(gdb); err != nil {
			return err
		}
		fmt.Println("数据库迁移完成。")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
