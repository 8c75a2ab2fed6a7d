package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

type SlotState string

const (
	SlotEmpty   SlotState = "empty"
	SlotValid   SlotState = "valid"
	SlotCorrupt SlotState = "corrupt"
)

// Inspection is the raw view of the cache slot, used by the maintenance tooling.
type Inspection struct {
	State  SlotState `json:"state"`
	Raw    string    `json:"raw,omitempty"`
	Record *Record   `json:"record,omitempty"`
}

type flushChecker interface {
	HasFlush(ctx context.Context, flushID string) (bool, error)
}

type RepairReport struct {
	RemovedCorrupt bool   `json:"removedCorrupt"`
	SettledFlushID string `json:"settledFlushId,omitempty"`
	PendingFlushID string `json:"pendingFlushId,omitempty"`
}

func (c *Cache) Inspect(ctx context.Context) (Inspection, error) {
	data, err := c.backend.Load(ctx)
	if err != nil {
		return Inspection{}, fmt.Errorf("load cache slot: %w", err)
	}
	if data == nil {
		return Inspection{State: SlotEmpty}, nil
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Inspection{State: SlotCorrupt, Raw: string(data)}, nil
	}
	return Inspection{State: SlotValid, Raw: string(data), Record: &rec}, nil
}

// Repair removes a corrupt slot, and settles a pending flush that the remote
// store already applied. A pending flush the remote store has not seen is kept,
// the next sync retries it.
func (c *Cache) Repair(ctx context.Context, store flushChecker) (RepairReport, error) {
	var report RepairReport

	err := c.backend.Update(ctx, func(data []byte) ([]byte, error) {
		if data == nil || json.Unmarshal(data, &Record{}) == nil {
			return nil, errKeepSlotAsIs
		}
		report.RemovedCorrupt = true
		return nil, nil
	})
	if err != nil && !errors.Is(err, errKeepSlotAsIs) {
		return report, fmt.Errorf("remove corrupt slot: %w", err)
	}

	rec, err := c.Read(ctx)
	if err != nil {
		return report, err
	}
	if rec.Pending == nil {
		return report, nil
	}

	applied, err := store.HasFlush(ctx, rec.Pending.ID)
	if err != nil {
		return report, fmt.Errorf("check flush %s: %w", rec.Pending.ID, err)
	}
	if !applied {
		report.PendingFlushID = rec.Pending.ID
		return report, nil
	}

	if err := c.Settle(ctx, *rec.Pending); err != nil {
		return report, err
	}
	report.SettledFlushID = rec.Pending.ID
	return report, nil
}
