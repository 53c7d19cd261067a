package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductionHandlerWritesJSONAtInfo(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, "production"))

	log.Debug("hidden")
	log.Info("product created", "product_id", "p1")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "product created", line["msg"])
	assert.Equal(t, "p1", line["product_id"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestLocalHandlerWritesTextAtDebug(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewHandler(&buf, "local")).Debug("cache miss", "key", "categories:all")
	assert.Contains(t, buf.String(), `msg="cache miss"`)
	assert.Contains(t, buf.String(), "key=categories:all")
}

func TestExtraHandlersReceiveEveryRecord(t *testing.T) {
	var main, extra bytes.Buffer
	sink := slog.NewJSONHandler(&extra, &slog.HandlerOptions{Level: slog.LevelDebug})
	log := slog.New(NewHandler(&main, "production", sink)).With("request_id", "r1")

	log.Debug("debug only reaches the sink")
	log.Warn("slow query")

	assert.NotContains(t, main.String(), "debug only")
	assert.Contains(t, main.String(), "slow query")
	assert.Contains(t, extra.String(), "debug only reaches the sink")
	assert.Contains(t, extra.String(), `"request_id":"r1"`)
}

func TestWithCtx(t *testing.T) {
	assert.Same(t, L, WithCtx(context.Background()))

	reqLog := L.With("request_id", "abc")
	ctx := InjectLogger(context.Background(), reqLog)
	assert.Same(t, reqLog, WithCtx(ctx))
}
