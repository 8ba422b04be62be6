package http_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	httpAdapter "github.com/aretw0/skilltree/pkg/adapters/http"
)

func TestStreamManager_BroadcastDropsForSlowClient(t *testing.T) {
	var logs bytes.Buffer
	sm := httpAdapter.NewStreamManager(slog.New(slog.NewTextHandler(&logs, nil)))

	ch, cancel := sm.Subscribe("main")
	defer cancel()

	for i := 0; i < 11; i++ {
		sm.Broadcast("main", "msg")
	}
	sm.Broadcast("other", "msg")

	assert.Len(t, ch, 10)
	assert.Equal(t, 1, bytes.Count(logs.Bytes(), []byte("dropping message")))
	assert.Contains(t, logs.String(), "tree_id=main")
}

func TestStreamManager_UnsubscribeForgetsTree(t *testing.T) {
	sm := httpAdapter.NewStreamManager(slog.Default())

	_, cancelA := sm.Subscribe("main")
	_, cancelB := sm.Subscribe("main")
	assert.Equal(t, 2, sm.Subscribers("main"))

	cancelA()
	assert.Equal(t, 1, sm.Subscribers("main"))
	cancelB()
	assert.Zero(t, sm.Subscribers("main"))
}
