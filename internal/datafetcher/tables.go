/*

This file maps the staking contract's raw table rows onto the internal
snapshot types. Each Get* function performs strict validation: rows that
would poison the derivation math (negative totals, bad timestamps) fail
the whole fetch rather than producing partial results.

*/

package datafetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/stakewatch/stakewatch/internal/engine"
	"github.com/stakewatch/stakewatch/internal/logger"
	"github.com/stakewatch/stakewatch/internal/types"
)

var tableLogger = logger.GetForComponent("table_mapper")

var ErrInvalidTableRow = errors.New("invalid table row")

// chainTimeLayout is the contract's timestamp format. Chain timestamps
// carry no zone suffix and are always UTC.
const chainTimeLayout = "2006-01-02T15:04:05"

// parseChainTime parses a contract timestamp. Empty strings and the
// contract's zero sentinel map to the zero time.
func parseChainTime(value string) (time.Time, error) {
	if value == "" || value == "1970-01-01T00:00:00" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(chainTimeLayout, value, time.UTC)
	if err != nil {
		// Some chain API versions append fractional seconds.
		t, err = time.ParseInLocation(chainTimeLayout+".000", value, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("unparseable chain timestamp %q: %w", value, err)
		}
	}
	return t, nil
}

// chainFloat accepts JSON numbers that the chain API serializes either as
// numbers or as decimal strings.
type chainFloat float64

func (f *chainFloat) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid numeric string %q: %w", s, err)
		}
		*f = chainFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = chainFloat(v)
	return nil
}

// poolRow mirrors the contract's pools table.
type poolRow struct {
	PoolID                uint64     `json:"pool_id"`
	TotalStakedQuantity   string     `json:"total_staked_quantity"`
	TotalStakedWeight     string     `json:"total_staked_weight"`
	RewardPool            string     `json:"reward_pool"`
	EmissionUnitSeconds   int64      `json:"emission_unit_seconds"`
	EmissionRate          chainFloat `json:"emission_rate"`
	LastEmissionUpdatedAt string     `json:"last_emission_updated_at"`
	IsActive              uint8      `json:"is_active"`
}

// tierRow mirrors the contract's tiers table.
type tierRow struct {
	TierID            string     `json:"tier_id"`
	DisplayName       string     `json:"display_name"`
	Weight            chainFloat `json:"weight"`
	StakedUpToPercent chainFloat `json:"staked_up_to_percent"`
}

// stakeRow mirrors the contract's stakes table.
type stakeRow struct {
	PoolID         uint64 `json:"pool_id"`
	Owner          string `json:"owner"`
	StakedQuantity string `json:"staked_quantity"`
	TierID         string `json:"tier"`
	LastClaimedAt  string `json:"last_claimed_at"`
	CooldownEndAt  string `json:"cooldown_end_at"`
}

// configRow mirrors the contract's singleton config table.
type configRow struct {
	CooldownDurationSeconds int64 `json:"cooldown_duration_seconds"`
	MaintenanceMode         uint8 `json:"maintenance"`
}

// GetPools fetches and validates all pool rows.
func (c *Client) GetPools(ctx context.Context) ([]types.PoolSnapshot, error) {
	rawRows, err := c.getTableRows(ctx, "pools")
	if err != nil {
		return nil, err
	}

	pools := make([]types.PoolSnapshot, 0, len(rawRows))
	for i, raw := range rawRows {
		var row poolRow
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("%w: pools row %d: %v", ErrInvalidTableRow, i, err)
		}

		pool, err := mapPoolRow(row)
		if err != nil {
			return nil, fmt.Errorf("%w: pools row %d: %v", ErrInvalidTableRow, i, err)
		}
		pools = append(pools, pool)
	}

	tableLogger.Debug().Int("poolCount", len(pools)).Msg("Mapped pool rows")
	return pools, nil
}

func mapPoolRow(row poolRow) (types.PoolSnapshot, error) {
	lastUpdated, err := parseChainTime(row.LastEmissionUpdatedAt)
	if err != nil {
		return types.PoolSnapshot{}, err
	}

	totalWeight, err := strconv.ParseFloat(row.TotalStakedWeight, 64)
	if err != nil {
		return types.PoolSnapshot{}, fmt.Errorf("invalid total_staked_weight %q: %w", row.TotalStakedWeight, err)
	}
	if totalWeight < 0 {
		return types.PoolSnapshot{}, fmt.Errorf("negative total_staked_weight %f", totalWeight)
	}

	staked := engine.ParseTokenAmount(row.TotalStakedQuantity)
	reward := engine.ParseTokenAmount(row.RewardPool)
	if staked.Amount < 0 || reward.Amount < 0 {
		return types.PoolSnapshot{}, fmt.Errorf("negative pool balances: staked=%f reward=%f", staked.Amount, reward.Amount)
	}
	if float64(row.EmissionRate) < 0 {
		return types.PoolSnapshot{}, fmt.Errorf("negative emission_rate %f", float64(row.EmissionRate))
	}

	return types.PoolSnapshot{
		PoolID:                types.PoolID(row.PoolID),
		TotalStakedQuantity:   staked,
		TotalStakedWeight:     totalWeight,
		RewardPool:            reward,
		EmissionUnitSeconds:   row.EmissionUnitSeconds,
		EmissionRate:          float64(row.EmissionRate),
		LastEmissionUpdatedAt: lastUpdated,
		IsActive:              row.IsActive != 0,
	}, nil
}

// GetTiers fetches all tier definitions and validates the ladder as a whole.
func (c *Client) GetTiers(ctx context.Context) ([]types.TierDefinition, error) {
	rawRows, err := c.getTableRows(ctx, "tiers")
	if err != nil {
		return nil, err
	}

	tiers := make([]types.TierDefinition, 0, len(rawRows))
	for i, raw := range rawRows {
		var row tierRow
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("%w: tiers row %d: %v", ErrInvalidTableRow, i, err)
		}
		if row.TierID == "" {
			return nil, fmt.Errorf("%w: tiers row %d: empty tier_id", ErrInvalidTableRow, i)
		}
		tiers = append(tiers, types.TierDefinition{
			TierID:            row.TierID,
			DisplayName:       row.DisplayName,
			Weight:            float64(row.Weight),
			StakedUpToPercent: float64(row.StakedUpToPercent),
		})
	}

	if err := engine.ValidateTierDefinitions(tiers); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTableRow, err)
	}

	tableLogger.Debug().Int("tierCount", len(tiers)).Msg("Mapped tier rows")
	return tiers, nil
}

// GetStakedPositions fetches all staked positions across every pool.
func (c *Client) GetStakedPositions(ctx context.Context) ([]types.StakedPosition, error) {
	rawRows, err := c.getTableRows(ctx, "stakes")
	if err != nil {
		return nil, err
	}

	positions := make([]types.StakedPosition, 0, len(rawRows))
	for i, raw := range rawRows {
		var row stakeRow
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("%w: stakes row %d: %v", ErrInvalidTableRow, i, err)
		}

		position, err := mapStakeRow(row)
		if err != nil {
			return nil, fmt.Errorf("%w: stakes row %d: %v", ErrInvalidTableRow, i, err)
		}
		positions = append(positions, position)
	}

	tableLogger.Debug().Int("positionCount", len(positions)).Msg("Mapped stake rows")
	return positions, nil
}

func mapStakeRow(row stakeRow) (types.StakedPosition, error) {
	if row.Owner == "" {
		return types.StakedPosition{}, errors.New("empty owner account")
	}

	lastClaimed, err := parseChainTime(row.LastClaimedAt)
	if err != nil {
		return types.StakedPosition{}, err
	}
	cooldownEnd, err := parseChainTime(row.CooldownEndAt)
	if err != nil {
		return types.StakedPosition{}, err
	}

	staked := engine.ParseTokenAmount(row.StakedQuantity)
	if staked.Amount < 0 {
		return types.StakedPosition{}, fmt.Errorf("negative staked quantity %f", staked.Amount)
	}

	return types.StakedPosition{
		PoolID:         types.PoolID(row.PoolID),
		Owner:          row.Owner,
		StakedQuantity: staked,
		TierID:         row.TierID,
		LastClaimedAt:  lastClaimed,
		CooldownEndAt:  cooldownEnd,
	}, nil
}

// GetGlobalConfig fetches the contract's singleton config row. A missing
// row is an error: the cooldown duration has no safe default.
func (c *Client) GetGlobalConfig(ctx context.Context) (types.GlobalConfig, error) {
	rawRows, err := c.getTableRows(ctx, "config")
	if err != nil {
		return types.GlobalConfig{}, err
	}
	if len(rawRows) == 0 {
		return types.GlobalConfig{}, fmt.Errorf("%w: config singleton is empty", ErrInvalidTableRow)
	}

	var row configRow
	if err := json.Unmarshal(rawRows[0], &row); err != nil {
		return types.GlobalConfig{}, fmt.Errorf("%w: config row: %v", ErrInvalidTableRow, err)
	}
	if row.CooldownDurationSeconds < 0 {
		return types.GlobalConfig{}, fmt.Errorf("%w: negative cooldown duration %d", ErrInvalidTableRow, row.CooldownDurationSeconds)
	}

	return types.GlobalConfig{
		CooldownDurationSeconds: row.CooldownDurationSeconds,
		MaintenanceMode:         row.MaintenanceMode != 0,
	}, nil
}
