package auth

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestCreateAndResolve(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	m := NewManager(rdb, time.Hour, zap.NewNop().Sugar())

	mock.Regexp().ExpectSet(`session:.+`, `.+`, time.Hour).SetVal("OK")
	s, err := m.Create(context.Background())
	assert.NoError(t, err)
	assert.NotEmpty(t, s.Token)
	assert.NotEmpty(t, s.UserID)
	assert.NotEqual(t, s.Token, s.UserID)

	mock.ExpectGet("session:tok-1").SetVal("user-1")
	uid, err := m.Identity(context.Background(), "tok-1")
	assert.NoError(t, err)
	assert.Equal(t, "user-1", uid)
}

func TestIdentity_Unknown(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	m := NewManager(rdb, time.Hour, zap.NewNop().Sugar())

	mock.ExpectGet("session:ghost").RedisNil()
	_, err := m.Identity(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = m.Identity(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRevoke(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	m := NewManager(rdb, time.Hour, zap.NewNop().Sugar())

	mock.ExpectDel("session:tok-1").SetVal(1)
	assert.NoError(t, m.Revoke(context.Background(), "tok-1"))

	mock.ExpectDel("session:ghost").SetVal(0)
	assert.NoError(t, m.Revoke(context.Background(), "ghost"))
}
