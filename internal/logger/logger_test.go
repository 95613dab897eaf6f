package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Levels(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error", "bogus"} {
		l, err := New(lvl, "json")
		require.NoError(t, err)
		assert.NotNil(t, l)
	}
}

func TestWrapper_FieldsAndError(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	var l Logger = &zapWrapper{l: zap.New(core)}

	l.WithFields(map[string]interface{}{"property_id": "villa-1"}).
		WithError(errors.New("boom")).
		Warn("refresh failed", map[string]interface{}{"attempt": 2})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "refresh failed", entry.Message)
	ctx := entry.ContextMap()
	assert.Equal(t, "villa-1", ctx["property_id"])
	assert.Equal(t, "boom", ctx["error"])
	assert.EqualValues(t, 2, ctx["attempt"])
}

func TestNoOpLogger(t *testing.T) {
	l := NewNoOpLogger()
	l.Info("ignored", nil)
	assert.NoError(t, l.Sync())
}
