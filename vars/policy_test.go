package vars

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"", LevelError, false},
		{"error", LevelError, false},
		{"warn", LevelWarn, false},
		{"silent", LevelSilent, false},
		{"foo", DefaultLevel, true},
		{"WARN", DefaultLevel, true},
		{" warn", DefaultLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidLogLevel)
				assert.Equal(t, "Invalid logLevel: "+tt.input, err.Error())

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevel_Text(t *testing.T) {
	assert.Equal(t, []string{"error", "warn", "silent"}, slices.Collect(Levels()))

	for name := range Levels() {
		var l Level
		require.NoError(t, l.UnmarshalText([]byte(name)))

		text, err := l.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, name, string(text))
	}

	var l Level
	assert.ErrorIs(t, l.UnmarshalText([]byte("loud")), ErrInvalidLogLevel)
	assert.Equal(t, "unknown", Level(42).String())
}
