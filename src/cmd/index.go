package cmd

import (
	"fmt"

	"github.com/poidh/indexer/src/bounty_sync"
	"github.com/poidh/indexer/src/utils/logger"

	"github.com/spf13/cobra"
)

var inputPath string

func init() {
	indexCmd.Flags().StringVar(&inputPath, "input", "", "newline delimited JSON file with contract logs")
	_ = indexCmd.MarkFlagRequired("input")

	RootCmd.AddCommand(indexCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Replay contract logs and materialize bounties, claims, votes and the leaderboard",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		controller, err := bounty_sync.NewController(conf, inputPath)
		if err != nil {
			return
		}

		err = controller.Start()
		if err != nil {
			return
		}

		select {
		case <-controller.Pipeline.CtxRunning.Done():
		case <-controller.CtxRunning.Done():
		case <-applicationCtx.Done():
		}

		controller.StopWait()

		if errs := controller.Pipeline.Err(); len(errs) > 0 {
			return fmt.Errorf("%d chain(s) halted: %v", len(errs), errs)
		}

		return
	},
	PostRunE: func(cmd *cobra.Command, args []string) (err error) {
		log := logger.NewSublogger("root-cmd")
		log.Debug("Finished index command")
		return
	},
}
