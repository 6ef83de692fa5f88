/*

This file contains the cooldown state machine. The three states (Idle,
Cooling, Ready) advance purely as a function of wall-clock time passing
cooldownEndAt; there are no externally triggered transitions, the state is
re-evaluated on every tick.

*/

package engine

import (
	"math"
	"time"

	"github.com/stakewatch/stakewatch/internal/types"
	"github.com/stakewatch/stakewatch/internal/utils"
)

// EvaluateCooldown derives the cooldown view for one position at instant now.
//
// A zero cooldownEndAt or non-positive duration means no cooldown window was
// ever set: the Idle state, always ready. Otherwise the position is Cooling
// until now reaches cooldownEndAt and Ready from then on. Progress runs 0 ->
// 100 across the configured duration and is clamped, so a cooldownEndAt
// further away than one full duration (a contract config change mid-window)
// still renders sanely.
func EvaluateCooldown(cooldownEndAt time.Time, cooldownDurationSeconds int64, now time.Time) types.CooldownState {
	if cooldownEndAt.IsZero() || cooldownDurationSeconds <= 0 {
		return types.CooldownState{
			Phase:            types.CooldownIdle,
			IsReady:          true,
			ProgressPercent:  100,
			SecondsRemaining: 0,
		}
	}

	remaining := cooldownEndAt.Sub(now).Seconds()
	if remaining <= 0 {
		return types.CooldownState{
			Phase:            types.CooldownReady,
			IsReady:          true,
			ProgressPercent:  100,
			SecondsRemaining: 0,
		}
	}

	duration := float64(cooldownDurationSeconds)
	return types.CooldownState{
		Phase:            types.CooldownCooling,
		IsReady:          false,
		ProgressPercent:  utils.ClampPercent((duration - remaining) / duration * 100),
		SecondsRemaining: int64(math.Ceil(remaining)),
	}
}

// RestartCooldown returns the cooldownEndAt a stake/unstake/claim action at
// instant now establishes. Guarding against acting while still Cooling is the
// caller's job; this only computes the new window.
func RestartCooldown(now time.Time, cooldownDurationSeconds int64) time.Time {
	if cooldownDurationSeconds <= 0 {
		return time.Time{}
	}
	return now.Add(time.Duration(cooldownDurationSeconds) * time.Second)
}
