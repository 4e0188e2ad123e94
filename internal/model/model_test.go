package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telhawk-systems/telhawk-csv/internal/csv/field"
	"github.com/telhawk-systems/telhawk-csv/internal/csv/headers"
	"github.com/telhawk-systems/telhawk-csv/internal/event"
)

func TestNewHeaderEnvelope(t *testing.T) {
	env := NewHeaderEnvelope("firewall", 1, "timestamp,host")
	_, err := uuid.Parse(env.ID)
	assert.NoError(t, err)
	assert.Equal(t, "firewall", env.Source)
	assert.Equal(t, int64(1), env.LineNumber)
	assert.False(t, env.ReceivedAt.IsZero())

	other := NewHeaderEnvelope("firewall", 1, "timestamp,host")
	assert.NotEqual(t, env.ID, other.ID)
}

func TestNewHeaderBlock(t *testing.T) {
	h := headers.FromFields(5, []field.Field{
		field.Timestamp("2006-01-02"),
		field.MustNew("bytes", field.Long, ""),
	})

	block, err := NewHeaderBlock(h)
	require.NoError(t, err)
	require.NotNil(t, block.LineNumber)
	assert.Equal(t, int64(5), *block.LineNumber)
	assert.Equal(t, []Column{
		{Index: 0, Key: "csv_header_0", Name: "timestamp", Type: "time", Format: "2006-01-02", Token: "timestamp(time:2006-01-02)"},
		{Index: 1, Key: "csv_header_1", Name: "bytes", Type: "long", Token: "bytes(long)"},
	}, block.Columns)
}

func TestNewHeaderBlock_NoLineNumber(t *testing.T) {
	bag := event.New()
	bag.SetString(headers.Key(0), "host(string)")

	block, err := NewHeaderBlock(headers.Over(bag))
	require.NoError(t, err)
	assert.Nil(t, block.LineNumber)
	assert.Len(t, block.Columns, 1)
}

func TestNewHeaderBlock_Corrupt(t *testing.T) {
	bag := event.New()
	bag.SetString(headers.Key(0), "host(nope)")

	_, err := NewHeaderBlock(headers.Over(bag))
	assert.ErrorIs(t, err, headers.ErrCorrupt)
}

func TestProperties(t *testing.T) {
	h := headers.FromFields(9, []field.Field{field.MustNew("host", field.String, "")})
	assert.Equal(t, []PropertyView{
		{Name: event.LineNumberProperty, Kind: "long", Value: int64(9)},
		{Name: "csv_header_0", Kind: "string", Value: "host(string)"},
	}, Properties(h.Properties()))
}
