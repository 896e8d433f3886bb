package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogMailer_Send(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(zerolog.New(&buf))

	require.NoError(t, m.Send(context.Background(), "ana@uni.edu", "Hello", "code 123456"))

	var entry map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ana@uni.edu", entry["to"])
	assert.Equal(t, "Hello", entry["subject"])
	assert.Equal(t, "code 123456", entry["body"])
	assert.Equal(t, "info", entry["level"])
}
