package bot

import (
	"errors"
	"testing"
	"time"

	"github.com/strawberrylab/masterbot/internal/backend"
	"github.com/strawberrylab/masterbot/internal/domain"
	"github.com/strawberrylab/masterbot/internal/infrastructure/logging"
	"github.com/strawberrylab/masterbot/internal/relay/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
)

type nopLogger struct{}

func (nopLogger) Init()                                                                         {}
func (nopLogger) Debug(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Debugf(string, ...any)                                                         {}
func (nopLogger) Info(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any)  {}
func (nopLogger) Infof(string, ...any)                                                          {}
func (nopLogger) Warn(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any)  {}
func (nopLogger) Warnf(string, ...any)                                                          {}
func (nopLogger) Error(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Errorf(string, ...any)                                                         {}
func (nopLogger) Fatal(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Fatalf(string, ...any)                                                         {}

// fakeContext captures what a handler sends to the chat. Only the methods the
// handlers touch are overridden; anything else panics on the embedded nil.
type fakeContext struct {
	tele.Context
	chat *tele.Chat
	sent []string
}

func (c *fakeContext) Chat() *tele.Chat { return c.chat }

func (c *fakeContext) Send(what interface{}, _ ...interface{}) error {
	if s, ok := what.(string); ok {
		c.sent = append(c.sent, s)
	}
	return nil
}

func newTestHandlers(store domain.IdentityStore) *Handlers {
	return NewHandlers(backend.NewClient("http://127.0.0.1:0", time.Second), store, nopLogger{})
}

func TestAuthorizedNotLoggedIn(t *testing.T) {
	store := new(mocks.IdentityStore)
	store.On("ByChatSession", mock.Anything, int64(555)).Return(nil, domain.ErrIdentityNotFound)

	h := newTestHandlers(store)
	c := &fakeContext{chat: &tele.Chat{ID: 555}}

	rec, ok, err := h.authorized(c)
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, rec)
	require.Equal(t, []string{notAuthorized}, c.sent)
}

// A failing identity store must not be reported as "not authorized"; the user
// may well be logged in.
func TestAuthorizedStoreFailure(t *testing.T) {
	store := new(mocks.IdentityStore)
	store.On("ByChatSession", mock.Anything, int64(555)).Return(nil, errors.New("disk I/O error"))

	h := newTestHandlers(store)
	c := &fakeContext{chat: &tele.Chat{ID: 555}}

	rec, ok, err := h.authorized(c)
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, rec)

	require.Len(t, c.sent, 1)
	require.NotEqual(t, notAuthorized, c.sent[0])
	require.Contains(t, c.sent[0], "Попробуйте позже")
}

func TestAuthorizedLoggedIn(t *testing.T) {
	store := new(mocks.IdentityStore)
	store.On("ByChatSession", mock.Anything, int64(555)).
		Return(&domain.IdentityRecord{MasterID: 7, ChatID: 555, Token: "tok"}, nil)

	h := newTestHandlers(store)
	c := &fakeContext{chat: &tele.Chat{ID: 555}}

	rec, ok, err := h.authorized(c)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(7), rec.MasterID)
	require.Empty(t, c.sent)
}
