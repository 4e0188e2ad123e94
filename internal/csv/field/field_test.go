package field_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telhawk-systems/telhawk-csv/internal/csv/field"
	"github.com/telhawk-systems/telhawk-csv/internal/event"
)

func TestNew(t *testing.T) {
	t.Run("generic field drops format", func(t *testing.T) {
		f, err := field.New("some int", field.Int, "ignored")
		require.NoError(t, err)

		assert.Equal(t, "some int", f.Name())
		assert.Equal(t, field.Int, f.Type())
		assert.Empty(t, f.Format())
		assert.False(t, f.IsTimestamp())
	})

	t.Run("time field becomes the timestamp column", func(t *testing.T) {
		f, err := field.New("when", field.Time, "2006-01-02")
		require.NoError(t, err)

		assert.Equal(t, event.TimestampProperty, f.Name())
		assert.Equal(t, "2006-01-02", f.Format())
		assert.True(t, f.IsTimestamp())
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := field.New("  ", field.String, "")
		assert.ErrorIs(t, err, field.ErrEmptyName)
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, err := field.New("x", field.Type(99), "")
		assert.Error(t, err)
	})

	t.Run("parentheses in name", func(t *testing.T) {
		_, err := field.New("max(latency)", field.Long, "")
		var fe *field.FormatError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "max(latency)", fe.Token)
	})

	t.Run("time layout is trimmed", func(t *testing.T) {
		f, err := field.New("when", field.Time, " 15:04 ")
		require.NoError(t, err)
		assert.Equal(t, "15:04", f.Format())
	})
}

func TestTimestamp(t *testing.T) {
	f := field.Timestamp("")

	assert.Equal(t, event.TimestampProperty, f.Name())
	assert.Equal(t, field.Time, f.Type())
	assert.Empty(t, f.Format())
	assert.True(t, f.IsTimestamp())
}

func TestEncode(t *testing.T) {
	testCases := []struct {
		name     string
		field    field.Field
		expected string
	}{
		{"timestamp", field.Timestamp(""), "timestamp(time)"},
		{"timestamp with layout", field.Timestamp("01/02/06 15:04:05"), "timestamp(time:01/02/06 15:04:05)"},
		{"string", field.MustNew("some string", field.String, ""), "some string(string)"},
		{"int", field.MustNew("some int", field.Int, ""), "some int(int)"},
		{"long", field.MustNew("some long", field.Long, ""), "some long(long)"},
		{"float", field.MustNew("some float", field.Float, ""), "some float(float)"},
		{"double", field.MustNew("some double", field.Double, ""), "some double(double)"},
		{"boolean", field.MustNew("flag", field.Boolean, ""), "flag(boolean)"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.field.Encode())
		})
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		token    string
		name     string
		typ      field.Type
		format   string
		isTstamp bool
	}{
		{"timestamp(time)", "timestamp", field.Time, "", true},
		{"timestamp(time:2006-01-02 15:04:05)", "timestamp", field.Time, "2006-01-02 15:04:05", true},
		{"timestamp(time:2006-01-02 (MST))", "timestamp", field.Time, "2006-01-02 (MST)", true},
		{"timestamp(time: 15:04 )", "timestamp", field.Time, "15:04", true},
		{"some string(string)", "some string", field.String, "", false},
		{"some int(int)", "some int", field.Int, "", false},
		{"some long(long)", "some long", field.Long, "", false},
		{"some float(float)", "some float", field.Float, "", false},
		{"some double(double)", "some double", field.Double, "", false},
		{"flag(boolean)", "flag", field.Boolean, "", false},
		{"  padded ( INT ) ", "padded", field.Int, "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.token, func(t *testing.T) {
			f, err := field.Parse(tc.token)
			require.NoError(t, err)

			assert.Equal(t, tc.name, f.Name())
			assert.Equal(t, tc.typ, f.Type())
			assert.Equal(t, tc.format, f.Format())
			assert.Equal(t, tc.isTstamp, f.IsTimestamp())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		token  string
		reason string
	}{
		{"missing parens", "something", "expected name(type)"},
		{"unbalanced", "something(int", "expected name(type)"},
		{"nested", "a(b)(int)", `unknown type "b)(int"`},
		{"parenthesized name", "max(latency)(long)", `unknown type "latency)(long"`},
		{"empty name", "(int)", "empty name"},
		{"empty tag", "something()", "empty type"},
		{"unknown tag", "something(no-such-type)", `unknown type "no-such-type"`},
		{"format on non time tag", "something(int:xyz)", "format is only supported"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := field.Parse(tc.token)
			require.Error(t, err)

			var fe *field.FormatError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tc.token, fe.Token)
			assert.Contains(t, fe.Reason, tc.reason)
			assert.Contains(t, err.Error(), tc.token)
		})
	}
}

func TestParseHeader(t *testing.T) {
	t.Run("bare timestamp", func(t *testing.T) {
		f, err := field.ParseHeader("TimeStamp")
		require.NoError(t, err)
		assert.True(t, f.IsTimestamp())
		assert.Equal(t, event.TimestampProperty, f.Name())
	})

	t.Run("bare name is a string column", func(t *testing.T) {
		f, err := field.ParseHeader("some string")
		require.NoError(t, err)
		assert.Equal(t, "some string", f.Name())
		assert.Equal(t, field.String, f.Type())
	})

	t.Run("tagged token", func(t *testing.T) {
		f, err := field.ParseHeader("some int(int)")
		require.NoError(t, err)
		assert.Equal(t, field.Int, f.Type())
	})

	t.Run("bad tagged token", func(t *testing.T) {
		_, err := field.ParseHeader("x(nope)")
		var fe *field.FormatError
		assert.True(t, errors.As(err, &fe))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := field.ParseHeader(" ")
		var fe *field.FormatError
		assert.True(t, errors.As(err, &fe))
	})
}

func TestRoundTrip(t *testing.T) {
	for _, typ := range field.Types() {
		t.Run(typ.Tag(), func(t *testing.T) {
			f := field.MustNew("column", typ, "")
			parsed, err := field.Parse(f.Encode())
			require.NoError(t, err)
			assert.Equal(t, f, parsed)
		})
	}

	for _, layout := range []string{"2006-01-02 (MST)", "()", ")(", "\t15:04:05\n"} {
		t.Run("layout "+layout, func(t *testing.T) {
			f := field.Timestamp(layout)
			parsed, err := field.Parse(f.Encode())
			require.NoError(t, err)
			assert.Equal(t, f, parsed)
		})
	}
}

func TestTypeForTag(t *testing.T) {
	typ, ok := field.TypeForTag("LONG")
	assert.True(t, ok)
	assert.Equal(t, field.Long, typ)

	_, ok = field.TypeForTag("decimal")
	assert.False(t, ok)

	assert.Equal(t, "type(42)", field.Type(42).Tag())
}

func TestParseSpec(t *testing.T) {
	tests := []struct {
		spec     string
		expected field.Field
	}{
		{"host", field.MustNew("host", field.String, "")},
		{"bytes:long", field.MustNew("bytes", field.Long, "")},
		{" ok : BOOLEAN ", field.MustNew("ok", field.Boolean, "")},
		{"timestamp:time", field.Timestamp("")},
		{"timestamp:time:2006-01-02 15:04:05", field.Timestamp("2006-01-02 15:04:05")},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			f, err := field.ParseSpec(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f)
		})
	}
}

func TestParseSpec_Errors(t *testing.T) {
	for _, spec := range []string{"", ":long", "x:decimal", "bytes:long:0.00", "max(x):long"} {
		t.Run(spec, func(t *testing.T) {
			_, err := field.ParseSpec(spec)
			assert.Error(t, err)
		})
	}
}
