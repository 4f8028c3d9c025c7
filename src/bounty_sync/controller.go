package bounty_sync

import (
	"os"

	"github.com/poidh/indexer/src/utils/config"
	"github.com/poidh/indexer/src/utils/model"
	"github.com/poidh/indexer/src/utils/monitoring"
	monitor_indexer "github.com/poidh/indexer/src/utils/monitoring/indexer"
	"github.com/poidh/indexer/src/utils/task"
)

type Controller struct {
	*task.Task

	Pipeline *Pipeline
}

// Main class that orchestrates main indexer functionalities
func NewController(config *config.Config, inputPath string) (self *Controller, err error) {
	self = new(Controller)
	self.Task = task.NewTask(config, "controller")

	/* #nosec */
	input, err := os.Open(inputPath)
	if err != nil {
		return
	}

	db, err := model.NewConnection(self.Ctx, config, "indexer")
	if err != nil {
		input.Close()
		return
	}

	monitor := monitor_indexer.NewMonitor()

	server := monitoring.NewServer(config).
		WithMonitor(monitor)

	self.Pipeline, err = NewPipeline(config, db, monitor, input)
	if err != nil {
		input.Close()
		model.Close(db)
		return
	}

	self.Task = self.Task.
		WithSubtask(monitor.Task).
		WithSubtask(server.Task).
		WithSubtask(self.Pipeline.Task).
		WithOnAfterStop(func() {
			err := input.Close()
			if err != nil {
				self.Log.WithError(err).Error("Failed to close input")
			}

			model.Close(db)
		})

	return
}
