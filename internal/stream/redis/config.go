package redis

type StreamConfig struct {
	Addr         string
	Password     string
	Stream       string
	Group        string
	ConsumerName string
}

func NewStreamConfig(addr, password, stream, group, consumerName string) *StreamConfig {
	return &StreamConfig{
		Addr:         addr,
		Password:     password,
		Stream:       stream,
		Group:        group,
		ConsumerName: consumerName,
	}
}
