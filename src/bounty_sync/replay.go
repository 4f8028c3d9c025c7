package bounty_sync

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"

	"github.com/poidh/indexer/src/utils/config"
	"github.com/poidh/indexer/src/utils/monitoring"
	"github.com/poidh/indexer/src/utils/task"

	"github.com/ethereum/go-ethereum/core/types"
)

// ReplayRecord is one line of the replayed file
type ReplayRecord struct {
	ChainId        uint64      `json:"chainId"`
	BlockTimestamp uint64      `json:"blockTimestamp"`
	Log            types.Log   `json:"log"`
	Extra          *Enrichment `json:"extra,omitempty"`
}

// Replay reads newline delimited logs, decodes them and emits events in the order they appear
type Replay struct {
	*task.Task

	monitor monitoring.Monitor
	decoder *Decoder
	input   io.Reader

	Output chan *Event
}

func NewReplay(config *config.Config) (self *Replay) {
	self = new(Replay)

	self.Output = make(chan *Event, config.Indexer.ChainQueueSize)

	self.Task = task.NewTask(config, "replay").
		WithSubtaskFunc(self.run).
		WithOnAfterStop(func() {
			close(self.Output)
		})

	return
}

func (self *Replay) WithMonitor(monitor monitoring.Monitor) *Replay {
	self.monitor = monitor
	return self
}

func (self *Replay) WithDecoder(decoder *Decoder) *Replay {
	self.decoder = decoder
	return self
}

func (self *Replay) WithInput(input io.Reader) *Replay {
	self.input = input
	return self
}

func (self *Replay) run() (err error) {
	scanner := bufio.NewScanner(self.input)
	scanner.Buffer(make([]byte, 0, 64*1024), self.Config.Indexer.ReplayMaxLineSize)

	line := 0
	for scanner.Scan() {
		line++

		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		self.monitor.GetReport().Indexer.State.EventsRead.Inc()

		var record ReplayRecord
		err = json.Unmarshal(raw, &record)
		if err != nil {
			self.Log.WithError(err).WithField("line", line).Error("Failed to parse record, skipping")
			self.monitor.GetReport().Indexer.Errors.ReplayReadFailures.Inc()
			continue
		}

		var event *Event
		event, err = self.decoder.Decode(record.ChainId, record.BlockTimestamp, &record.Log, record.Extra)
		if errors.Is(err, ErrUnknownChain) {
			self.Log.WithError(err).WithField("line", line).Warn("Log of a chain that isn't indexed, skipping")
			self.monitor.GetReport().Indexer.Errors.UnknownChainEvents.Inc()
			continue
		}
		if errors.Is(err, ErrUnknownEvent) {
			self.Log.WithError(err).WithField("line", line).Warn("Not an indexed event, skipping")
			self.monitor.GetReport().Indexer.State.EventsSkipped.Inc()
			continue
		}
		if err != nil {
			self.Log.WithError(err).WithField("line", line).Error("Failed to decode log, skipping")
			self.monitor.GetReport().Indexer.Errors.DecoderFailures.Inc()
			continue
		}

		self.monitor.GetReport().Indexer.State.EventsDecoded.Inc()

		select {
		case <-self.Ctx.Done():
			return nil
		case self.Output <- event:
		}
	}

	err = scanner.Err()
	if err != nil {
		self.Log.WithError(err).WithField("line", line).Error("Failed to read input")
		self.monitor.GetReport().Indexer.Errors.ReplayReadFailures.Inc()
		return
	}

	self.Log.WithField("lines", line).Info("Input replayed")
	return nil
}
