package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/opentx/backend/src/models"
	"github.com/username/opentx/backend/src/pagination"
	"github.com/username/opentx/backend/src/processors"
)

// exportUpstream serves one short transfers page and one short extrinsics
// page. The transfer at 0xshared also appears as an extrinsic, so the
// composite view exercises the transfer-over-fee dedup rule, and the
// timestamps arrive out of order to exercise sorting.
func exportUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var data map[string]interface{}
		switch r.URL.Path {
		case "/api/v2/scan/transfers":
			data = map[string]interface{}{
				"count": 2,
				"transfers": []map[string]interface{}{
					{
						"from": "sender", "to": "addr1", "amount": "10000000000",
						"fee": "1600000000", "success": true, "hash": "0xshared",
						"block_num": 1000, "block_timestamp": 1704067200, // 01/01/2024
						"module": "balances",
					},
					{
						"from": "addr1", "to": "receiver", "amount": "20000000000",
						"fee": "1600000000", "success": true, "hash": "0xnewer",
						"block_num": 1001, "block_timestamp": 1709251200, // 03/01/2024
						"module": "balances",
					},
					{
						"from": "sender", "to": "addr1", "amount": "30000000000",
						"fee": "1600000000", "success": false, "hash": "0xfailed",
						"block_num": 1002, "block_timestamp": 1706745600, // 02/01/2024
						"module": "balances",
					},
				},
			}
		case "/api/v2/scan/extrinsics":
			data = map[string]interface{}{
				"count": 1,
				"extrinsics": []map[string]interface{}{
					{
						"call_module": "balances", "call_module_function": "transfer",
						"fee": "1600000000", "success": true,
						"extrinsic_hash": "0xshared", "block_num": 1000,
						"block_timestamp": 1704067200,
					},
					{
						"call_module": "staking", "call_module_function": "bond",
						"fee": "1600000000", "success": true,
						"extrinsic_hash": "0xfeeonly", "block_num": 1003,
						"block_timestamp": 1706745600,
					},
				},
			}
		default:
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"code": 0, "message": "Success", "data": data})
	}))
}

func newExportService(t *testing.T) ExportService {
	t.Helper()
	engine := pagination.NewEngine(fastSubscanClient())
	return NewExportService(engine, processors.NewDedupProcessor(), 100, 5)
}

func TestBuildExportTransfersOnly(t *testing.T) {
	server := exportUpstream(t)
	defer server.Close()

	svc := newExportService(t)
	result, err := svc.BuildExport(context.Background(), testChain(server.URL), "addr1", false)
	require.NoError(t, err)

	// The failed transfer is filtered before normalization; the extrinsics
	// phase is never fetched on the primary path.
	require.Len(t, result.Events, 2)
	assert.Equal(t, "0xnewer", result.Events[0].TxHash, "newest first")
	assert.Equal(t, "0xshared", result.Events[1].TxHash)

	assert.Equal(t, 2, result.Meta.Count)
	assert.Equal(t, "polkadot", result.Meta.Chain)
	assert.Equal(t, "addr1", result.Meta.Address)
	assert.NotEmpty(t, result.Meta.Timestamp)
}

func TestBuildExportComposite(t *testing.T) {
	server := exportUpstream(t)
	defer server.Close()

	svc := newExportService(t)
	result, err := svc.BuildExport(context.Background(), testChain(server.URL), "addr1", true)
	require.NoError(t, err)

	// Composite view: 3 transfers (failed included) + the fee-only
	// extrinsic; the 0xshared extrinsic collapses into its transfer.
	require.Len(t, result.Events, 4)

	byHash := map[string]models.TaxEvent{}
	for _, e := range result.Events {
		byHash[e.TxHash] = e
	}
	assert.Equal(t, models.TxTypeTransfer, byHash["0xshared"].TxType)
	assert.NotEmpty(t, byHash["0xshared"].ReceivedQty, "transfer record wins over the fee record")
	assert.Equal(t, models.TxTypeFee, byHash["0xfeeonly"].TxType)
}

func TestBuildExportPropagatesUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"code": 10001, "message": "invalid address", "data": nil})
	}))
	defer server.Close()

	svc := newExportService(t)
	_, err := svc.BuildExport(context.Background(), testChain(server.URL), "addr1", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid address")
}
