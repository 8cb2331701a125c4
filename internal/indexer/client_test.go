package indexer

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResolutionResolved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"condition":{
			"id":"cond-1","resolved":true,
			"payoutNumerators":["1","0"],
			"resolutionHash":"0xabc",
			"tokens":[{"id":"tok-yes"},{"id":"tok-no"}]
		}}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", zap.NewNop())

	res, err := client.Resolution(context.Background(), "cond-1")
	require.NoError(t, err)

	assert.True(t, res.Resolved)
	assert.Equal(t, "0xabc", res.Ref)
	assert.Equal(t, 1.0, res.TerminalPrices["tok-yes"])
	assert.Equal(t, 0.0, res.TerminalPrices["tok-no"])
}

func TestResolutionUnresolved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"condition":{"id":"cond-1","resolved":false,"payoutNumerators":[],"tokens":[]}}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", zap.NewNop())

	res, err := client.Resolution(context.Background(), "cond-1")
	require.NoError(t, err)

	assert.False(t, res.Resolved)
	assert.Nil(t, res.TerminalPrices)
}

func TestResolutionGraphQLError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"message":"rate limited"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", zap.NewNop())

	_, err := client.Resolution(context.Background(), "cond-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestRecentFillsSideDerivation(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotQuery = string(body)
		w.Write([]byte(`{"data":{
			"makerLeg":[
				{"makerAssetId":"tok-1","takerAssetId":"usdc","makerAmountFilled":"20000000","takerAmountFilled":"9000000000","taker":"0xwhale","timestamp":"1767000000"}
			],
			"takerLeg":[
				{"makerAssetId":"usdc","takerAssetId":"tok-1","makerAmountFilled":"6000000000","takerAmountFilled":"15000000","taker":"0xseller","timestamp":"1767000100"}
			]
		}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", zap.NewNop())

	fills, err := client.RecentFills(context.Background(), "tok-1", time.Unix(1766990000, 0), 10)
	require.NoError(t, err)
	require.Len(t, fills, 2)

	// Fills where the token sits on the taker leg must be fetched too.
	assert.Contains(t, gotQuery, "makerAssetId: $token")
	assert.Contains(t, gotQuery, "takerAssetId: $token")

	// Merged newest first: the taker-leg sell is the most recent.
	assert.Equal(t, "sell", fills[0].Side)
	assert.InDelta(t, 6000.0, fills[0].SizeUSD, 1e-9)
	assert.Equal(t, "0xseller", fills[0].Taker)

	// Maker leg carried the token: the taker bought it for 9000 USDC.
	assert.Equal(t, "buy", fills[1].Side)
	assert.InDelta(t, 9000.0, fills[1].SizeUSD, 1e-9)
	assert.Equal(t, "0xwhale", fills[1].Taker)

	t.Run("limit caps the merged set", func(t *testing.T) {
		fills, err := client.RecentFills(context.Background(), "tok-1", time.Unix(1766990000, 0), 1)
		require.NoError(t, err)
		require.Len(t, fills, 1)
		assert.Equal(t, "sell", fills[0].Side)
	})
}
