package kafka

import (
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(); err == nil {
		t.Fatal("expected error without brokers")
	}
}

func TestConfigOptions(t *testing.T) {
	cfg := Config{Brokers: []string{"localhost:9092"}, Compression: "zstd", RequiredAcks: 1}
	p, err := NewProducer(cfg.Options()...)
	if err != nil {
		t.Fatalf("new producer: %v", err)
	}
	defer p.Close()

	if p.writer.Compression != kafka.Zstd {
		t.Fatalf("compression = %v, want zstd", p.writer.Compression)
	}
	if _, ok := p.writer.Balancer.(*kafka.Hash); !ok {
		t.Fatalf("balancer = %T, want *kafka.Hash", p.writer.Balancer)
	}
	if p.writer.RequiredAcks != kafka.RequireOne {
		t.Fatalf("acks = %v, want RequireOne", p.writer.RequiredAcks)
	}
}

func TestEncodeValue(t *testing.T) {
	b, err := encodeValue(map[string]int{"magnitude": -3})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"magnitude":-3}` {
		t.Fatalf("unexpected json %s", b)
	}
	if b, _ := encodeValue("raw"); string(b) != "raw" {
		t.Fatalf("unexpected string encoding %s", b)
	}
}
