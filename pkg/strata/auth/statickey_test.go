package auth_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strata-cms/strata/pkg/strata"
	"github.com/strata-cms/strata/pkg/strata/auth"
)

func reqWithHeaders(h map[string]string) *strata.Request {
	header := make(http.Header)
	for k, v := range h {
		header.Set(k, v)
	}
	return &strata.Request{Method: "GET", Path: "/api/product", Header: header}
}

func TestStaticKeyAuthenticate(t *testing.T) {
	a := auth.NewStaticKey(map[string]strata.Identity{
		"k-admin":  {Subject: "ops", Role: strata.RoleAdmin},
		"k-viewer": {Subject: "reporting", Role: strata.RoleViewer},
	})
	ctx := context.Background()

	t.Run("api key header", func(t *testing.T) {
		identity, err := a.Authenticate(ctx, reqWithHeaders(map[string]string{"X-API-Key": "k-admin"}))
		require.NoError(t, err)
		assert.Equal(t, "ops", identity.Subject)
		assert.Equal(t, strata.RoleAdmin, identity.Role)
	})

	t.Run("bearer token", func(t *testing.T) {
		identity, err := a.Authenticate(ctx, reqWithHeaders(map[string]string{"Authorization": "Bearer k-viewer"}))
		require.NoError(t, err)
		assert.Equal(t, strata.RoleViewer, identity.Role)
	})

	t.Run("bearer scheme is case insensitive", func(t *testing.T) {
		_, err := a.Authenticate(ctx, reqWithHeaders(map[string]string{"Authorization": "bearer k-viewer"}))
		require.NoError(t, err)
	})

	t.Run("no credentials", func(t *testing.T) {
		_, err := a.Authenticate(ctx, reqWithHeaders(nil))
		assert.ErrorIs(t, err, strata.ErrNoCredentials)
	})

	t.Run("basic scheme counts as no credentials", func(t *testing.T) {
		_, err := a.Authenticate(ctx, reqWithHeaders(map[string]string{"Authorization": "Basic dXNlcjpwYXNz"}))
		assert.ErrorIs(t, err, strata.ErrNoCredentials)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := a.Authenticate(ctx, reqWithHeaders(map[string]string{"X-API-Key": "k-unknown"}))
		assert.ErrorIs(t, err, strata.ErrInvalidCredentials)
	})

	t.Run("api key header wins over bearer", func(t *testing.T) {
		_, err := a.Authenticate(ctx, reqWithHeaders(map[string]string{
			"X-API-Key":     "k-unknown",
			"Authorization": "Bearer k-admin",
		}))
		assert.ErrorIs(t, err, strata.ErrInvalidCredentials)
	})

	t.Run("returned identity is a copy", func(t *testing.T) {
		identity, err := a.Authenticate(ctx, reqWithHeaders(map[string]string{"X-API-Key": "k-admin"}))
		require.NoError(t, err)
		identity.Role = strata.RoleViewer

		again, err := a.Authenticate(ctx, reqWithHeaders(map[string]string{"X-API-Key": "k-admin"}))
		require.NoError(t, err)
		assert.Equal(t, strata.RoleAdmin, again.Role)
	})
}

func TestNewStaticKeyCopiesTheAllowList(t *testing.T) {
	keys := map[string]strata.Identity{"k1": {Subject: "s", Role: strata.RoleEditor}}
	a := auth.NewStaticKey(keys)
	delete(keys, "k1")

	_, err := a.Authenticate(context.Background(), reqWithHeaders(map[string]string{"X-API-Key": "k1"}))
	assert.NoError(t, err)
}

func TestParseKeySpecs(t *testing.T) {
	t.Run("valid specs", func(t *testing.T) {
		keys, err := auth.ParseKeySpecs([]string{
			"k1:admin",
			"k2:editor:service-a",
			"k3:Viewer",
			"  ", // blanks are skipped
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]strata.Identity{
			"k1": {Subject: "api-key", Role: strata.RoleAdmin},
			"k2": {Subject: "service-a", Role: strata.RoleEditor},
			"k3": {Subject: "api-key", Role: strata.RoleViewer},
		}, keys)
	})

	t.Run("empty input", func(t *testing.T) {
		keys, err := auth.ParseKeySpecs(nil)
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	tests := []struct {
		name    string
		specs   []string
		wantErr string
	}{
		{name: "missing role", specs: []string{"justakey"}, wantErr: "expected key:role"},
		{name: "empty key", specs: []string{":admin"}, wantErr: "expected key:role"},
		{name: "unknown role", specs: []string{"k1:superuser"}, wantErr: "unknown role"},
		{name: "duplicate key", specs: []string{"k1:admin", "k1:viewer"}, wantErr: "duplicate API key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.ParseKeySpecs(tt.specs)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
