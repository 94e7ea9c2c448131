package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/gatehouse-auth/gatehouse/internal/gatehouse/service"
	"github.com/gatehouse-auth/gatehouse/pkg/httpx"
	"github.com/gatehouse-auth/gatehouse/pkg/tokenx"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T) (*service.SessionResolver, *service.AuthService) {
	t.Helper()
	svc, st, _ := newTestAuth(t)
	return &service.SessionResolver{Store: st, Codec: svc.Codec}, svc
}

func rejectionCode(t *testing.T, err error) httpx.RejectCode {
	t.Helper()
	require.Error(t, err)
	var rej *httpx.Rejection
	require.ErrorAs(t, err, &rej)
	return rej.Code
}

func TestResolveHeaderToken(t *testing.T) {
	rs, svc := newTestResolver(t)
	ctx := context.Background()

	id := registerUser(t, svc, "alice", "hunter22")
	pair, _, err := svc.Login(ctx, "alice", "hunter22")
	require.NoError(t, err)

	ident, refreshed, err := rs.Resolve(ctx, pair.AccessToken, httpx.SourceHeader)
	require.NoError(t, err)
	require.Equal(t, id, ident.UserID)
	require.Empty(t, refreshed, "header tokens get no sliding refresh")
}

func TestResolveCookieTokenRefreshes(t *testing.T) {
	rs, svc := newTestResolver(t)
	ctx := context.Background()

	registerUser(t, svc, "alice", "hunter22")
	pair, _, err := svc.Login(ctx, "alice", "hunter22")
	require.NoError(t, err)

	_, refreshed, err := rs.Resolve(ctx, pair.AccessToken, httpx.SourceCookie)
	require.NoError(t, err)
	require.NotEmpty(t, refreshed)

	claims, err := svc.Codec.Decode(refreshed)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
	require.Equal(t, tokenx.ClassAccess, claims.Class)
}

func TestResolveRejectsGarbage(t *testing.T) {
	rs, _ := newTestResolver(t)

	_, _, err := rs.Resolve(context.Background(), "not-a-token", httpx.SourceHeader)
	require.Equal(t, httpx.RejectFailValidate, rejectionCode(t, err))
}

func TestResolveRejectsExpired(t *testing.T) {
	svc, st, _ := newTestAuth(t)
	ctx := context.Background()

	shortCodec, err := tokenx.NewCodec(tokenx.Config{
		Secret:     []byte("test-secret"),
		AccessTTL:  50 * time.Millisecond,
		RefreshTTL: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	svc.Codec = shortCodec

	registerUser(t, svc, "alice", "hunter22")
	pair, _, err := svc.Login(ctx, "alice", "hunter22")
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	rs := &service.SessionResolver{Store: st, Codec: shortCodec}
	_, _, rerr := rs.Resolve(ctx, pair.AccessToken, httpx.SourceHeader)
	require.Equal(t, httpx.RejectFailValidate, rejectionCode(t, rerr))
}

func TestResolveRejectsRefreshClass(t *testing.T) {
	rs, svc := newTestResolver(t)
	ctx := context.Background()

	registerUser(t, svc, "alice", "hunter22")
	pair, _, err := svc.Login(ctx, "alice", "hunter22")
	require.NoError(t, err)

	_, _, rerr := rs.Resolve(ctx, pair.RefreshToken, httpx.SourceHeader)
	require.Equal(t, httpx.RejectFailValidate, rejectionCode(t, rerr))
}

func TestResolveRejectsUnknownSubject(t *testing.T) {
	rs, svc := newTestResolver(t)
	ctx := context.Background()

	// Token for a user that was never created: signature-valid, but
	// the principal lookup fails.
	token, err := svc.Codec.MintAccess("phantom", "some-salt")
	require.NoError(t, err)

	_, _, rerr := rs.Resolve(ctx, token, httpx.SourceHeader)
	require.Equal(t, httpx.RejectUserNotFound, rejectionCode(t, rerr))
}

func TestResolveRejectsRotatedSalt(t *testing.T) {
	rs, svc := newTestResolver(t)
	ctx := context.Background()

	id := registerUser(t, svc, "alice", "hunter22")
	pair, _, err := svc.Login(ctx, "alice", "hunter22")
	require.NoError(t, err)

	require.NoError(t, svc.LogoutEverywhere(ctx, id))

	// Revoked tokens are indistinguishable from invalid ones.
	_, _, rerr := rs.Resolve(ctx, pair.AccessToken, httpx.SourceHeader)
	require.Equal(t, httpx.RejectFailValidate, rejectionCode(t, rerr))
}
