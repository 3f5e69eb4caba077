// Package serialization encodes saved dialogue records for the persistent stores.
// A Serializer pairs a codec with an optional compression step.
package serialization

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec turns values into bytes and back.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
	Name() string
}

// CompressionType represents compression algorithms.
type CompressionType string

const (
	CompressionNone CompressionType = "none"
	CompressionZstd CompressionType = "zstd"
)

// Config holds serialization settings.
type Config struct {
	Codec       Codec
	Compression CompressionType
}

// Serializer encodes and compresses values.
type Serializer struct {
	config Config
}

// New creates a serializer. A nil codec falls back to JSON.
func New(config Config) *Serializer {
	if config.Codec == nil {
		config.Codec = JSONCodec{}
	}
	if config.Compression == "" {
		config.Compression = CompressionNone
	}
	return &Serializer{config: config}
}

// Default is the compact binary form: MessagePack compressed with zstd.
func Default() *Serializer {
	return New(Config{Codec: MsgPackCodec{}, Compression: CompressionZstd})
}

// JSON is the human-readable form, uncompressed.
func JSON() *Serializer {
	return New(Config{Codec: JSONCodec{}, Compression: CompressionNone})
}

// Parse returns the serializer named by format: "json", "msgpack" or "msgpack+zstd".
func Parse(format string) (*Serializer, error) {
	switch format {
	case "", "json":
		return JSON(), nil
	case "msgpack":
		return New(Config{Codec: MsgPackCodec{}}), nil
	case "msgpack+zstd", "binary":
		return Default(), nil
	case "json+zstd":
		return New(Config{Codec: JSONCodec{}, Compression: CompressionZstd}), nil
	}
	return nil, fmt.Errorf("unknown serialization format %q", format)
}

// Extension is the file suffix matching the output, e.g. ".json" or ".msgpack.zst".
func (s *Serializer) Extension() string {
	ext := "." + s.config.Codec.Name()
	if s.config.Compression == CompressionZstd {
		ext += ".zst"
	}
	return ext
}

// Serialize encodes and compresses v.
func (s *Serializer) Serialize(v any) ([]byte, error) {
	data, err := s.config.Codec.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("codec encoding failed: %w", err)
	}
	if s.config.Compression != CompressionZstd {
		return data, nil
	}
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("compression failed: %w", err)
	}
	defer encoder.Close()
	return encoder.EncodeAll(data, nil), nil
}

// Deserialize decompresses data and decodes it into v.
func (s *Serializer) Deserialize(data []byte, v any) error {
	if s.config.Compression == CompressionZstd {
		decoder, err := zstd.NewReader(nil)
		if err != nil {
			return fmt.Errorf("decompression failed: %w", err)
		}
		defer decoder.Close()
		if data, err = decoder.DecodeAll(data, nil); err != nil {
			return fmt.Errorf("decompression failed: %w", err)
		}
	}
	if err := s.config.Codec.Decode(data, v); err != nil {
		return fmt.Errorf("codec decoding failed: %w", err)
	}
	return nil
}

// JSONCodec implements JSON serialization.
type JSONCodec struct{}

func (JSONCodec) Encode(v any) ([]byte, error) { return json.Marshal(v) }

func (JSONCodec) Decode(data []byte, v any) error { return json.Unmarshal(data, v) }

func (JSONCodec) Name() string { return "json" }

// MsgPackCodec implements MessagePack serialization.
type MsgPackCodec struct{}

func (MsgPackCodec) Encode(v any) ([]byte, error) { return msgpack.Marshal(v) }

func (MsgPackCodec) Decode(data []byte, v any) error { return msgpack.Unmarshal(data, v) }

func (MsgPackCodec) Name() string { return "msgpack" }
