package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notehub/internal/model"
	"notehub/internal/repository/memory"
	notesStore "notehub/internal/service/notes"
)

func TestEventHandler_StreamsChangeEvents(t *testing.T) {
	events := notesStore.NewEventService()
	store := notesStore.NewNoteStore(memory.NewRepository(), model.DefaultCatalog(), events)

	mux := http.NewServeMux()
	NewHandler(store).Register(mux)
	NewEventHandler(events).Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Даем хэндлеру время подписаться на события после handshake
	time.Sleep(200 * time.Millisecond)

	created, err := store.Create(context.Background(), "Trip Plan", "Visit Kyoto and Osaka next spring", "Travel", "")
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var event eventDTO
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, string(notesStore.EventNoteCreated), event.Type)
	require.NotNil(t, event.Note)
	assert.Equal(t, created.ID, event.Note.ID)
	assert.Equal(t, "Trip Plan", event.Note.Title)

	// Смена фильтра тоже транслируется подписчику
	require.NoError(t, store.SelectCategory(context.Background(), "Work"))
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, string(notesStore.EventFilterChanged), event.Type)
	assert.Equal(t, "Work", event.Category)
}
