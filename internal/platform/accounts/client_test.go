package accounts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openexch/tradelogd/internal/domain"
)

func TestWalletByClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/wallets/C-1", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"W-1","clientId":"owner-1","type":"Trading"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	wallet, err := c.WalletByClient(context.Background(), "C-1")
	require.NoError(t, err)
	require.NotNil(t, wallet)
	assert.Equal(t, "W-1", wallet.ID)
	assert.Equal(t, "owner-1", wallet.ClientID)
	assert.Equal(t, domain.WalletTypeTrading, wallet.Type)
}

func TestWalletByClientNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	wallet, err := c.WalletByClient(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, wallet)
}

func TestWalletByClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.WalletByClient(context.Background(), "C-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestWalletsByType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/clients/C-1/wallets", r.URL.Path)
		assert.Equal(t, "Trading", r.URL.Query().Get("type"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"W-1","clientId":"C-1","type":"Trading"},{"id":"W-2","clientId":"C-1","type":"Trading"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	wallets, err := c.WalletsByType(context.Background(), "C-1", domain.WalletTypeTrading)
	require.NoError(t, err)
	require.Len(t, wallets, 2)
	assert.Equal(t, "W-1", wallets[0].ID)
}

func TestWalletsByTypeEmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	wallets, err := c.WalletsByType(context.Background(), "C-1", domain.WalletTypeTrading)
	require.NoError(t, err)
	assert.Empty(t, wallets)
}

func TestCallHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, "")
	_, err := c.WalletByClient(ctx, "C-1")
	assert.Error(t, err)
}
