package datafetcher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stakewatch/stakewatch/internal/types"
)

func TestParseChainTime(t *testing.T) {
	got, err := parseChainTime("2024-03-01T12:30:00")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC), got)

	got, err = parseChainTime("")
	require.NoError(t, err)
	require.True(t, got.IsZero())

	got, err = parseChainTime("1970-01-01T00:00:00")
	require.NoError(t, err)
	require.True(t, got.IsZero())

	_, err = parseChainTime("not-a-time")
	require.Error(t, err)
}

func TestChainFloatAcceptsNumberAndString(t *testing.T) {
	var payload struct {
		A chainFloat `json:"a"`
		B chainFloat `json:"b"`
	}
	err := json.Unmarshal([]byte(`{"a": 1.5, "b": "2.25"}`), &payload)
	require.NoError(t, err)
	require.Equal(t, 1.5, float64(payload.A))
	require.Equal(t, 2.25, float64(payload.B))

	err = json.Unmarshal([]byte(`{"a": "bogus"}`), &payload)
	require.Error(t, err)
}

func TestMapPoolRow(t *testing.T) {
	row := poolRow{
		PoolID:                7,
		TotalStakedQuantity:   "10000.0000 TOKEN",
		TotalStakedWeight:     "12500.0",
		RewardPool:            "500.0000 TOKEN",
		EmissionUnitSeconds:   3600,
		EmissionRate:          100,
		LastEmissionUpdatedAt: "2024-03-01T00:00:00",
		IsActive:              1,
	}

	pool, err := mapPoolRow(row)
	require.NoError(t, err)
	require.Equal(t, types.PoolID(7), pool.PoolID)
	require.Equal(t, 10000.0, pool.TotalStakedQuantity.Amount)
	require.Equal(t, "TOKEN", pool.TotalStakedQuantity.SymbolCode)
	require.Equal(t, 4, pool.TotalStakedQuantity.Decimals)
	require.Equal(t, 12500.0, pool.TotalStakedWeight)
	require.Equal(t, 500.0, pool.RewardPool.Amount)
	require.True(t, pool.IsActive)

	row.TotalStakedWeight = "not-a-number"
	_, err = mapPoolRow(row)
	require.Error(t, err)

	row.TotalStakedWeight = "-5.0"
	_, err = mapPoolRow(row)
	require.Error(t, err)
}

func TestMapStakeRow(t *testing.T) {
	row := stakeRow{
		PoolID:         1,
		Owner:          "alice",
		StakedQuantity: "300.0000 TOKEN",
		TierID:         "silver",
		LastClaimedAt:  "2024-03-01T00:00:00",
		CooldownEndAt:  "",
	}

	position, err := mapStakeRow(row)
	require.NoError(t, err)
	require.Equal(t, "alice", position.Owner)
	require.Equal(t, 300.0, position.StakedQuantity.Amount)
	require.Equal(t, "silver", position.TierID)
	require.True(t, position.CooldownEndAt.IsZero())

	row.Owner = ""
	_, err = mapStakeRow(row)
	require.Error(t, err)
}

// Malformed quantity strings degrade to the zero amount rather than failing
// the fetch; the engine treats them as empty positions.
func TestMapStakeRowMalformedQuantity(t *testing.T) {
	row := stakeRow{
		PoolID:         1,
		Owner:          "bob",
		StakedQuantity: "garbage",
		TierID:         "bronze",
	}

	position, err := mapStakeRow(row)
	require.NoError(t, err)
	require.True(t, position.StakedQuantity.IsZero())
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, "staking.acct", 5*time.Second)
	require.NoError(t, err)
	return client, server
}

func TestGetTableRowsPagination(t *testing.T) {
	pageCalls := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chain/get_table_rows", r.URL.Path)

		var req tableRowsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "staking.acct", req.Code)
		require.Equal(t, "tiers", req.Table)

		pageCalls++
		var resp tableRowsResponse
		if req.LowerBound == "" {
			resp = tableRowsResponse{
				Rows:    []json.RawMessage{json.RawMessage(`{"tier_id":"bronze","display_name":"Bronze","weight":1.0,"staked_up_to_percent":1.0}`)},
				More:    true,
				NextKey: "bronze",
			}
		} else {
			resp = tableRowsResponse{
				Rows: []json.RawMessage{json.RawMessage(`{"tier_id":"silver","display_name":"Silver","weight":1.5,"staked_up_to_percent":100.0}`)},
			}
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	tiers, err := client.GetTiers(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, pageCalls)
	require.Len(t, tiers, 2)
	require.Equal(t, "bronze", tiers[0].TierID)
	require.Equal(t, "silver", tiers[1].TierID)
}

func TestGetTableRowsStuckCursor(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		resp := tableRowsResponse{
			Rows:    []json.RawMessage{json.RawMessage(`{}`)},
			More:    true,
			NextKey: "",
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	_, err := client.getTableRows(context.Background(), "pools")
	require.ErrorIs(t, err, ErrBadTableResponse)
}

func TestGetTableRowsServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	})

	_, err := client.getTableRows(context.Background(), "pools")
	require.ErrorIs(t, err, ErrChainUnavailable)
}

func TestGetGlobalConfig(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		resp := tableRowsResponse{
			Rows: []json.RawMessage{json.RawMessage(`{"cooldown_duration_seconds": 86400, "maintenance": 1}`)},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	config, err := client.GetGlobalConfig(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(86400), config.CooldownDurationSeconds)
	require.True(t, config.MaintenanceMode)
}

func TestGetGlobalConfigEmptySingleton(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(tableRowsResponse{}))
	})

	_, err := client.GetGlobalConfig(context.Background())
	require.ErrorIs(t, err, ErrInvalidTableRow)
}

func TestGetTiersRejectsBrokenLadder(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		resp := tableRowsResponse{
			Rows: []json.RawMessage{
				json.RawMessage(`{"tier_id":"a","display_name":"A","weight":2.0,"staked_up_to_percent":50.0}`),
				json.RawMessage(`{"tier_id":"b","display_name":"B","weight":1.0,"staked_up_to_percent":100.0}`),
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	_, err := client.GetTiers(context.Background())
	require.ErrorIs(t, err, ErrInvalidTableRow)
}
