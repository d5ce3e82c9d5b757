package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"groovy/storage"

	"github.com/spf13/cobra"
)

var storagePrefix string

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "上传文件存储管理",
}

var storageLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "列出存储中的文件",
	Long:  `列出当前存储后端 (fs 或 minio) 中的文件及其大小，支持按前缀过滤。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := storage.New(cfg)
		if err != nil {
			return err
		}
		if err := files.Init(cmd.Context()); err != nil {
			return fmt.Errorf("无法连接到存储后端 %s: %w", cfg.StorageBackend, err)
		}

		list, err := files.List(cmd.Context(), storagePrefix)
		if err != nil {
			return fmt.Errorf("列出文件失败: %w", err)
		}

		var total int64
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tSIZE\tMODIFIED\tTYPE")
		for _, f := range list {
			total += f.Size
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.Name, storage.FormatSize(f.Size), f.ModTime.Format("2006-01-02 15:04:05"), f.ContentType)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Printf("\n共 %d 个文件, 总大小 %s\n", len(list), storage.FormatSize(total))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(storageCmd)
	storageCmd.AddCommand(storageLsCmd)

	storageLsCmd.Flags().StringVarP(&storagePrefix, "prefix", "p", "", "按前缀过滤文件")
	storageLsCmd.Example = `  # 列出所有文件
  groovy storage ls

  # 按前缀过滤文件
  groovy storage ls -p "album"`
}
