package booking

import (
	"context"
	"time"
)

// checkCapacity verifies that admitting partySize covers into slot would not
// exceed the window's ceilings. The aggregate ceiling is checked first; the
// online ceiling only for the online channel and only once the aggregate
// check passes. A non-positive party size is a no-op. The check is read-only;
// it is not atomic with the subsequent write, so two concurrent requests can
// both pass and overshoot the ceiling unless the caller serializes admission
// per (date, window, slot).
func (e *Engine) checkCapacity(ctx context.Context, date time.Time, w ServiceWindow, slot Slot, partySize int, channel Channel, excludeBookingID string) error {
	if partySize <= 0 {
		return nil
	}
	checkOnline := channel == ChannelOnline && w.MaxOnlineCovers != nil
	if w.MaxCoversPerSlot == nil && !checkOnline {
		return nil
	}

	sum, err := e.covers.SumCovers(ctx, w.ID, date, slot.Start, slot.End, excludeBookingID)
	if err != nil {
		return err
	}

	if w.MaxCoversPerSlot != nil && sum+partySize > *w.MaxCoversPerSlot {
		return reject(RejectSlotFull, "%s %s slot %s-%s: %d booked of %d",
			date.Format("2006-01-02"), w.Name, Clock(slot.Start), Clock(slot.End), sum, *w.MaxCoversPerSlot)
	}
	if checkOnline && sum+partySize > *w.MaxOnlineCovers {
		return reject(RejectOnlineAllocationFull, "%s %s slot %s-%s: online allocation %d full",
			date.Format("2006-01-02"), w.Name, Clock(slot.Start), Clock(slot.End), *w.MaxOnlineCovers)
	}
	return nil
}
