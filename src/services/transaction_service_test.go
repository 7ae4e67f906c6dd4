package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/opentx/backend/src/pagination"
)

// pagedUpstream serves pageSize rows for pages below fullPages, then an
// empty page.
func pagedUpstream(t *testing.T, fullPages int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Page int `json:"page"`
			Row  int `json:"row"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		var rows []map[string]interface{}
		if req.Page < fullPages {
			for i := 0; i < req.Row; i++ {
				rows = append(rows, map[string]interface{}{
					"from": "sender", "to": "addr1", "amount": "10000000000",
					"fee": "1600000000", "success": true, "hash": "0xh",
					"block_num": 1000, "block_timestamp": 1709294709,
					"module": "balances",
				})
			}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code": 0, "message": "Success",
			"data": map[string]interface{}{"count": len(rows), "transfers": rows},
		})
	}))
}

func newTransactionService(pageSize int) TransactionService {
	return NewTransactionService(pagination.NewEngine(fastSubscanClient()), pageSize)
}

func TestFetchPageReturnsNextCursorOnFullPage(t *testing.T) {
	server := pagedUpstream(t, 1)
	defer server.Close()

	svc := newTransactionService(5)
	result, err := svc.FetchPage(context.Background(), testChain(server.URL), "addr1", "")
	require.NoError(t, err)
	assert.Len(t, result.Events, 5)
	require.NotNil(t, result.NextCursor)
	assert.Equal(t, "transfers:1", *result.NextCursor)
}

func TestFetchPageNullCursorWhenExhausted(t *testing.T) {
	server := pagedUpstream(t, 1)
	defer server.Close()

	svc := newTransactionService(5)
	result, err := svc.FetchPage(context.Background(), testChain(server.URL), "addr1", "transfers:1")
	require.NoError(t, err)
	assert.Empty(t, result.Events)
	assert.NotNil(t, result.Events, "events must encode as [] rather than null")
	assert.Nil(t, result.NextCursor)
}

func TestFetchPageRejectsBadCursor(t *testing.T) {
	server := pagedUpstream(t, 0)
	defer server.Close()

	svc := newTransactionService(5)

	_, err := svc.FetchPage(context.Background(), testChain(server.URL), "addr1", "bogus")
	assert.ErrorIs(t, err, pagination.ErrBadCursor)

	// The interactive endpoint is transfers-only; an extrinsics cursor is
	// not resumable here.
	_, err = svc.FetchPage(context.Background(), testChain(server.URL), "addr1", "extrinsics:0")
	assert.ErrorIs(t, err, pagination.ErrBadCursor)
}
