package serialization

import (
	"testing"

	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records() domain.Histories {
	return domain.Histories{
		"tavern": {Speakers: map[string]*domain.SpeakerHistory{
			"innkeeper": {Visited: domain.NodeSet{"greet": true, "rumours": true}, ResumeNodeID: "rumours"},
		}},
	}
}

func TestSerializers_PreserveRecords(t *testing.T) {
	for _, format := range []string{"json", "msgpack", "msgpack+zstd", "json+zstd"} {
		t.Run(format, func(t *testing.T) {
			s, err := Parse(format)
			require.NoError(t, err)

			data, err := s.Serialize(records())
			require.NoError(t, err)

			var out domain.Histories
			require.NoError(t, s.Deserialize(data, &out))
			assert.Equal(t, records(), out)
		})
	}
}

func TestSerializer_Extension(t *testing.T) {
	assert.Equal(t, ".json", JSON().Extension())
	assert.Equal(t, ".msgpack.zst", Default().Extension())
}

func TestSerializer_JSONIsReadable(t *testing.T) {
	data, err := JSON().Serialize(records())
	require.NoError(t, err)
	assert.JSONEq(t, `{"tavern":{"speakers":{"innkeeper":{"visited":["greet","rumours"],"resume_node_id":"rumours"}}}}`, string(data))
}

func TestSerializer_CorruptInput(t *testing.T) {
	var out domain.Histories
	assert.Error(t, Default().Deserialize([]byte("not zstd"), &out))
	assert.Error(t, JSON().Deserialize([]byte("{"), &out))
}

func TestParse_Unknown(t *testing.T) {
	_, err := Parse("xml")
	assert.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	s := New(Config{})
	assert.Equal(t, ".json", s.Extension())
}
