package cmd

import (
	"groovy/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动Groovy服务器",
	Long:  `启动Groovy音乐目录的HTTP服务器，提供REST API、文件服务和事件推送`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func runServer() error {
	return server.Start(cfg)
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
