package table

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/ports"
)

var (
	// ErrDeleteInFlight is returned while a previous delete has not finished.
	ErrDeleteInFlight = errors.New("delete already in progress")
	ErrUnknownTicket  = errors.New("unknown delete ticket")
)

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

type NoticeLevel string

// Notice is a user visible message such as a toast.
type Notice struct {
	Level   NoticeLevel
	Message string
}

type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

type NopNotifier struct{}

func (NopNotifier) Notify(Notice) {}

// Ticket identifies a pending optimistic delete.
type Ticket struct {
	seq uint64
	IDs []string
}

// Pending reports whether a delete is waiting for FinishDelete.
func (v *View) Pending() bool { return v.pending != nil }

// StartDelete hides ids immediately and prunes them from the selection. The
// returned ticket must be passed to FinishDelete once the mutation completes.
// An empty id list is a no-op and yields a nil ticket.
func (v *View) StartDelete(ids []string) (*Ticket, error) {
	if v.pending != nil {
		return nil, ErrDeleteInFlight
	}
	if len(ids) == 0 {
		return nil, nil
	}

	v.tickets++
	t := &Ticket{seq: v.tickets, IDs: append([]string(nil), ids...)}
	for _, id := range t.IDs {
		v.removed[id] = struct{}{}
		delete(v.selected, id)
	}
	v.selectAll = false
	v.pending = t
	v.clampPage()
	return t, nil
}

// FinishDelete settles a pending delete. On failure the rows reappear and an
// error notice is sent; on success the removal stands until the next Load.
func (v *View) FinishDelete(t *Ticket, deleteErr error) error {
	if t == nil || v.pending == nil || v.pending.seq != t.seq {
		return ErrUnknownTicket
	}
	v.pending = nil

	if deleteErr != nil {
		for _, id := range t.IDs {
			delete(v.removed, id)
		}
		v.notifier.Notify(Notice{Level: NoticeError, Message: "Failed to delete transactions"})
		return nil
	}

	v.notifier.Notify(Notice{
		Level:   NoticeSuccess,
		Message: fmt.Sprintf("Deleted %d transaction(s)", len(t.IDs)),
	})
	return nil
}

// Delete runs a full optimistic delete round-trip against d. The deleter's
// error is returned after the view has been rolled back.
func (v *View) Delete(ctx context.Context, d ports.TransactionDeleter, ids []string) error {
	t, err := v.StartDelete(ids)
	if err != nil || t == nil {
		return err
	}

	deleteErr := d.DeleteTransactions(ctx, t.IDs)
	if err := v.FinishDelete(t, deleteErr); err != nil {
		return err
	}
	if deleteErr != nil {
		return fmt.Errorf("delete transactions: %w", deleteErr)
	}
	return nil
}
