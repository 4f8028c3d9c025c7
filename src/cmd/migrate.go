package cmd

import (
	"github.com/poidh/indexer/src/utils/logger"
	"github.com/poidh/indexer/src/utils/model"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		return model.Migrate(applicationCtx, conf)
	},
	PostRunE: func(cmd *cobra.Command, args []string) (err error) {
		log := logger.NewSublogger("root-cmd")
		log.Debug("Finished migrate command")
		return
	},
}
