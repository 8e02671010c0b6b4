package main

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type syncCountingCore struct {
	zapcore.Core
	syncs *int
}

func (c syncCountingCore) With(fields []zapcore.Field) zapcore.Core {
	return syncCountingCore{Core: c.Core.With(fields), syncs: c.syncs}
}

func (c syncCountingCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(e.Level) {
		return ce.AddCore(e, c)
	}
	return ce
}

func (c syncCountingCore) Sync() error {
	*c.syncs++
	return c.Core.Sync()
}

func TestExitCodeFlushesLogger(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantLogs int
	}{
		{"clean shutdown", nil, 0, 0},
		{"failed run", errors.New("listen tcp :8080: address already in use"), 1, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			obs, logs := observer.New(zap.ErrorLevel)
			syncs := 0
			log := zap.New(syncCountingCore{Core: obs, syncs: &syncs})

			if got := exitCode(log, tc.err); got != tc.wantCode {
				t.Fatalf("exit code = %d, want %d", got, tc.wantCode)
			}
			if logs.Len() != tc.wantLogs {
				t.Fatalf("logged %d entries, want %d", logs.Len(), tc.wantLogs)
			}
			if syncs != 1 {
				t.Fatalf("logger synced %d times, want 1", syncs)
			}
		})
	}
}
