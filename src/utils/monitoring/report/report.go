package report

type Report struct {
	Run            *RunReport            `json:"run,omitempty"`
	Indexer        *IndexerReport        `json:"indexer,omitempty"`
	RedisPublisher *RedisPublisherReport `json:"redis_publisher,omitempty"`
}
