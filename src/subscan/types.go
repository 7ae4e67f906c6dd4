// backend/src/subscan/types.go
package subscan

import "encoding/json"

// envelope is the application-level wrapper on every Subscan response.
// A non-zero Code means failure even when the HTTP transport succeeded.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// pageRequest is the shared body shape of the paginated scan endpoints.
// Page is zero-based; Row is the requested page size.
type pageRequest struct {
	Address string `json:"address"`
	Page    int    `json:"page"`
	Row     int    `json:"row"`
}

type accountRequest struct {
	Address string `json:"address"`
}

// Transfer is one row of /api/v2/scan/transfers. Amount and Fee are
// unsigned integer strings in the chain's minor units (plancks).
type Transfer struct {
	From           string `json:"from"`
	To             string `json:"to"`
	Amount         string `json:"amount"`
	Fee            string `json:"fee"`
	Success        bool   `json:"success"`
	Hash           string `json:"hash"`
	BlockNum       int64  `json:"block_num"`
	BlockTimestamp int64  `json:"block_timestamp"` // epoch seconds
	Module         string `json:"module"`
	EventID        string `json:"event_id"`
	ExtrinsicIndex string `json:"extrinsic_index"` // "14490804-2"
	AssetSymbol    string `json:"asset_symbol"`
}

// Extrinsic is one row of /api/v2/scan/extrinsics.
type Extrinsic struct {
	ExtrinsicIndex string `json:"extrinsic_index"`
	CallModule     string `json:"call_module"`
	CallFunction   string `json:"call_module_function"`
	Fee            string `json:"fee"`
	Success        bool   `json:"success"`
	BlockNum       int64  `json:"block_num"`
	BlockTimestamp int64  `json:"block_timestamp"`
	ExtrinsicHash  string `json:"extrinsic_hash"`
	Params         string `json:"params"`
}

// Account is the balance portion of /api/v2/scan/account. Subscan has
// shipped the locked balance under both "lock" and "locked".
type Account struct {
	Balance  string `json:"balance"`
	Reserved string `json:"reserved"`
	Lock     string `json:"lock"`
	Locked   string `json:"locked"`
}

// LockedBalance returns whichever locked field the API populated.
func (a Account) LockedBalance() string {
	if a.Lock != "" {
		return a.Lock
	}
	return a.Locked
}

// transfersData and extrinsicsData mirror the "data" payloads. The record
// arrays are documented nullable; callers normalize nil to empty.
type transfersData struct {
	Count     int        `json:"count"`
	Transfers []Transfer `json:"transfers"`
}

type extrinsicsData struct {
	Count      int         `json:"count"`
	Extrinsics []Extrinsic `json:"extrinsics"`
}
