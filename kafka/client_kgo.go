package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hugolhafner/kreader/logger"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/kmsg"
)

var (
	_ Consumer        = (*KgoClient)(nil)
	_ OffsetLookup    = (*KgoClient)(nil)
	_ ConsumerFactory = (*KgoFactory)(nil)
)

// ResetPolicy decides where an assigned partition without an explicit seek starts.
type ResetPolicy int

const (
	ResetEarliest ResetPolicy = iota
	ResetLatest
)

func (p ResetPolicy) String() string {
	switch p {
	case ResetEarliest:
		return "earliest"
	case ResetLatest:
		return "latest"
	default:
		return "unknown"
	}
}

// ParseResetPolicy parses "earliest" or "latest".
func ParseResetPolicy(s string) (ResetPolicy, error) {
	switch s {
	case "earliest", "oldest", "":
		return ResetEarliest, nil
	case "latest", "newest":
		return ResetLatest, nil
	default:
		return ResetEarliest, fmt.Errorf("unknown reset policy %q", s)
	}
}

type KgoClientConfig struct {
	BootstrapServers []string
	ClientID         string
	MaxPollRecords   int
	ResetPolicy      ResetPolicy

	// ExtraOpts are appended to the options the client builds itself.
	ExtraOpts []kgo.Opt

	Logger logger.Logger
}

func defaultConfig() KgoClientConfig {
	return KgoClientConfig{
		BootstrapServers: []string{"localhost:9092"},
		ClientID:         "kreader",
		MaxPollRecords:   500,
		ResetPolicy:      ResetEarliest,
		Logger:           logger.NewNoopLogger(),
	}
}

type KgoOption func(*KgoClientConfig)

func WithBootstrapServers(servers []string) KgoOption {
	return func(cfg *KgoClientConfig) {
		cfg.BootstrapServers = servers
	}
}

func WithClientID(id string) KgoOption {
	return func(cfg *KgoClientConfig) {
		cfg.ClientID = id
	}
}

func WithMaxPollRecords(n int) KgoOption {
	return func(cfg *KgoClientConfig) {
		if n > 0 {
			cfg.MaxPollRecords = n
		}
	}
}

func WithResetPolicy(p ResetPolicy) KgoOption {
	return func(cfg *KgoClientConfig) {
		cfg.ResetPolicy = p
	}
}

func WithKgoOpts(opts ...kgo.Opt) KgoOption {
	return func(cfg *KgoClientConfig) {
		cfg.ExtraOpts = append(cfg.ExtraOpts, opts...)
	}
}

func WithLogger(l logger.Logger) KgoOption {
	return func(cfg *KgoClientConfig) {
		cfg.Logger = l.
			With("client", "kgo")
	}
}

// KgoClient consumes explicitly assigned partitions with franz-go. It never joins
// a consumer group and never commits offsets to the broker.
type KgoClient struct {
	client *kgo.Client
	config KgoClientConfig

	assigned []TopicPartition
	starts   map[TopicPartition]kgo.Offset
	started  bool

	logger logger.Logger
}

func NewKgoClient(opts ...KgoOption) (*KgoClient, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	kc := &KgoClient{
		config: cfg,
		starts: make(map[TopicPartition]kgo.Offset),
		logger: cfg.Logger,
	}

	kgoOpts := []kgo.Opt{
		kgo.SeedBrokers(cfg.BootstrapServers...),
		kgo.ClientID(cfg.ClientID),
		kgo.ConsumeResetOffset(cfg.ResetPolicy.kgoOffset()),
		kgo.WithLogger(newKgoLogger(kc.logger)),
	}
	kgoOpts = append(kgoOpts, cfg.ExtraOpts...)

	client, err := kgo.NewClient(kgoOpts...)
	if err != nil {
		return nil, fmt.Errorf("create kgo client: %w", err)
	}

	kc.client = client

	return kc, nil
}

func (p ResetPolicy) kgoOffset() kgo.Offset {
	if p == ResetLatest {
		return kgo.NewOffset().AtEnd()
	}
	return kgo.NewOffset().AtStart()
}

func (k *KgoClient) Assign(partitions []TopicPartition) error {
	if k.started {
		return errors.New("assign: partitions already being consumed")
	}

	k.assigned = append(k.assigned[:0], partitions...)
	clear(k.starts)
	for _, tp := range partitions {
		k.starts[tp] = k.config.ResetPolicy.kgoOffset()
	}

	k.logger.Debug("Assigned partitions", "partitions", partitions)
	return nil
}

func (k *KgoClient) Seek(tp TopicPartition, offset int64) error {
	if _, ok := k.starts[tp]; !ok {
		return fmt.Errorf("seek %s: partition not assigned", tp)
	}

	if !k.started {
		k.starts[tp] = kgo.NewOffset().At(offset)
		return nil
	}

	k.client.SetOffsets(
		map[string]map[int32]kgo.EpochOffset{
			tp.Topic: {tp.Partition: {Epoch: -1, Offset: offset}},
		},
	)
	return nil
}

func (k *KgoClient) Poll(ctx context.Context, timeout time.Duration) ([]ConsumerRecord, error) {
	if !k.started {
		k.client.AddConsumePartitions(k.consumeMap())
		k.started = true
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fetches := k.client.PollRecords(ctx, k.config.MaxPollRecords)
	if fetches.IsClientClosed() {
		return nil, errors.New("poll: client closed")
	}

	if errs := fetches.Errors(); len(errs) > 0 {
		for _, err := range errs {
			if !errors.Is(err.Err, context.DeadlineExceeded) && !errors.Is(err.Err, context.Canceled) {
				return nil, fmt.Errorf("poll %s-%d: %w", err.Topic, err.Partition, err.Err)
			}
		}
	}

	var records []ConsumerRecord
	fetches.EachPartition(
		func(p kgo.FetchTopicPartition) {
			records = append(records, convertRecords(p.Records)...)
		},
	)

	return records, nil
}

func (k *KgoClient) PartitionsFor(ctx context.Context, topic string) ([]int32, error) {
	req := kmsg.NewPtrMetadataRequest()
	reqTopic := kmsg.NewMetadataRequestTopic()
	reqTopic.Topic = kmsg.StringPtr(topic)
	req.Topics = append(req.Topics, reqTopic)

	resp, err := req.RequestWith(ctx, k.client)
	if err != nil {
		return nil, fmt.Errorf("request metadata for %s: %w", topic, err)
	}

	for _, t := range resp.Topics {
		if t.Topic == nil || *t.Topic != topic {
			continue
		}
		if err := kerr.ErrorForCode(t.ErrorCode); err != nil {
			return nil, fmt.Errorf("metadata for %s: %w", topic, err)
		}

		partitions := make([]int32, 0, len(t.Partitions))
		for _, p := range t.Partitions {
			partitions = append(partitions, p.Partition)
		}
		return partitions, nil
	}

	return nil, nil
}

func (k *KgoClient) ListOffsets(ctx context.Context, partitions []TopicPartition, timestamp int64) (
	map[TopicPartition]int64, error,
) {
	req := kmsg.NewPtrListOffsetsRequest()
	req.ReplicaID = -1

	for topic, ps := range topicPartitionsToMap(partitions) {
		reqTopic := kmsg.NewListOffsetsRequestTopic()
		reqTopic.Topic = topic
		for _, p := range ps {
			reqPartition := kmsg.NewListOffsetsRequestTopicPartition()
			reqPartition.Partition = p
			reqPartition.Timestamp = timestamp
			reqTopic.Partitions = append(reqTopic.Partitions, reqPartition)
		}
		req.Topics = append(req.Topics, reqTopic)
	}

	resp, err := req.RequestWith(ctx, k.client)
	if err != nil {
		return nil, fmt.Errorf("list offsets: %w", err)
	}

	offsets := make(map[TopicPartition]int64, len(partitions))
	for _, t := range resp.Topics {
		for _, p := range t.Partitions {
			tp := TopicPartition{Topic: t.Topic, Partition: p.Partition}
			if err := kerr.ErrorForCode(p.ErrorCode); err != nil {
				return nil, fmt.Errorf("list offsets %s: %w", tp, err)
			}
			offsets[tp] = p.Offset
		}
	}

	return offsets, nil
}

func (k *KgoClient) Close() error {
	k.client.Close()
	return nil
}

func (k *KgoClient) consumeMap() map[string]map[int32]kgo.Offset {
	m := make(map[string]map[int32]kgo.Offset)
	for _, tp := range k.assigned {
		if _, ok := m[tp.Topic]; !ok {
			m[tp.Topic] = make(map[int32]kgo.Offset)
		}
		m[tp.Topic][tp.Partition] = k.starts[tp]
	}
	return m
}

// KgoFactory creates a fresh KgoClient per call with the same options.
type KgoFactory struct {
	opts []KgoOption
}

func NewKgoFactory(opts ...KgoOption) *KgoFactory {
	return &KgoFactory{opts: opts}
}

func (f *KgoFactory) NewConsumer() (Consumer, error) {
	return NewKgoClient(f.opts...)
}

func convertRecords(records []*kgo.Record) []ConsumerRecord {
	converted := make([]ConsumerRecord, len(records))
	for i, r := range records {
		converted[i] = ConsumerRecord{
			Topic:       r.Topic,
			Partition:   r.Partition,
			Offset:      r.Offset,
			Key:         r.Key,
			Value:       r.Value,
			Headers:     convertFromKgoHeaders(r.Headers),
			Timestamp:   r.Timestamp,
			LeaderEpoch: r.LeaderEpoch,
		}
	}

	return converted
}

func convertFromKgoHeaders(headers []kgo.RecordHeader) []Header {
	converted := make([]Header, len(headers))
	for i, h := range headers {
		converted[i] = Header{Key: h.Key, Value: h.Value}
	}
	return converted
}

func topicPartitionsToMap(tps []TopicPartition) map[string][]int32 {
	m := make(map[string][]int32)
	for _, tp := range tps {
		m[tp.Topic] = append(m[tp.Topic], tp.Partition)
	}
	return m
}
