package tracker

import (
	"context"
	"time"

	"github.com/dmitrijs2005/spendkeeper/internal/filex"
	"github.com/dmitrijs2005/spendkeeper/internal/models"
	"github.com/shopspring/decimal"
)

// Intent is the write-ahead record of an expense in flight.
type Intent struct {
	ID            string              `json:"id"`
	Entry         models.JournalEntry `json:"entry"`
	JournalLen    int                 `json:"journal_len"`
	BalanceBefore decimal.Decimal     `json:"balance_before"`
	Delta         decimal.Decimal     `json:"delta"`
	CreatedAt     time.Time           `json:"created_at"`
}

// RecoveryOutcome says what Recover did with a pending intent.
type RecoveryOutcome int

const (
	RecoveryNone RecoveryOutcome = iota
	RecoveryRolledBack
	RecoveryCompleted
	RecoveryConflict
)

func (o RecoveryOutcome) String() string {
	switch o {
	case RecoveryNone:
		return "none"
	case RecoveryRolledBack:
		return "rolled back"
	case RecoveryCompleted:
		return "completed"
	case RecoveryConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

func (t *Tracker) intentPath(username string) string {
	return t.registry.Path(models.PendingFileName(username))
}

func (t *Tracker) writeIntent(ctx context.Context, username string, in Intent) error {
	return t.store.WriteJSON(ctx, t.intentPath(username), in)
}

func (t *Tracker) discardIntent(ctx context.Context, username string) {
	if err := t.store.Remove(ctx, t.intentPath(username)); err != nil {
		t.logger.Warn(ctx, "intent not removed", "username", username, "err", err)
	}
}

// Recover settles an expense interrupted between its journal and balance
// writes. The journal decides: if the entry landed the balance is brought in
// line, otherwise the intent is dropped.
func (t *Tracker) Recover(ctx context.Context, username string) (RecoveryOutcome, error) {
	mu := t.accountLock(username)
	mu.Lock()
	defer mu.Unlock()

	return t.recover(ctx, username)
}

func (t *Tracker) recover(ctx context.Context, username string) (RecoveryOutcome, error) {
	var in Intent
	res := t.store.ReadJSON(ctx, t.intentPath(username), &in)
	switch res.Status {
	case filex.StatusMissing:
		return RecoveryNone, nil
	case filex.StatusCorrupt:
		t.logger.Warn(ctx, "unreadable intent discarded", "username", username, "err", res.Err)
		t.discardIntent(ctx, username)
		return RecoveryConflict, nil
	}

	log := t.logger.With("username", username, "intent", in.ID)

	entries, jres := t.journal.Load(ctx, username)
	if jres.Status == filex.StatusCorrupt {
		log.Warn(ctx, "intent kept, journal unreadable", "err", jres.Err)
		return RecoveryNone, jres.Err
	}

	switch {
	case len(entries) == in.JournalLen:
		t.discardIntent(ctx, username)
		log.Info(ctx, "interrupted expense rolled back")
		return RecoveryRolledBack, nil

	case len(entries) == in.JournalLen+1 && entries[len(entries)-1].Equal(in.Entry):
		balance, _ := t.ledger.Get(ctx, username)
		switch {
		case balance.Equal(in.BalanceBefore):
			if _, err := t.ledger.ApplyDelta(ctx, username, in.Delta); err != nil {
				return RecoveryNone, err
			}
			log.Info(ctx, "interrupted expense completed")
		case balance.Equal(in.BalanceBefore.Add(in.Delta)):
			log.Info(ctx, "interrupted expense already applied")
		default:
			log.Warn(ctx, "intent discarded, balance changed since", "balance", balance.String())
			t.discardIntent(ctx, username)
			return RecoveryConflict, nil
		}
		t.discardIntent(ctx, username)
		return RecoveryCompleted, nil
	}

	log.Warn(ctx, "intent discarded, journal does not match", "journal_len", len(entries), "expected", in.JournalLen)
	t.discardIntent(ctx, username)
	return RecoveryConflict, nil
}
