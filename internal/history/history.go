// Package history provides the append-only in-memory ledger backing
// pattern detection. Records are keyed by participant identity, never
// mutated after insertion, and scanned only backward in time.
package history

import (
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"github.com/opencompliance/kestrel/internal/domain"
)

// MinRetention is the floor for the retention window. Pruning must never
// shorten the 30-day structuring window.
const MinRetention = 30 * 24 * time.Hour

// Number of identity lock stripes.
const lockStripes = 64

// Store is the shared transaction/communication ledger. Map access is
// guarded by mu; scan+append sequences for the same identity serialize
// through striped identity locks acquired via Acquire.
type Store struct {
	mu        sync.RWMutex
	txs       map[string][]*domain.TransactionRecord
	comms     map[string][]*domain.CommunicationRecord
	clock     func() time.Time
	retention time.Duration

	stripes [lockStripes]sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithClock injects a clock for deterministic time-window tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

// WithRetention bounds the ledger. Values below MinRetention are raised
// to MinRetention.
func WithRetention(d time.Duration) Option {
	return func(s *Store) {
		if d < MinRetention {
			d = MinRetention
		}
		s.retention = d
	}
}

// NewStore creates an empty ledger. Default retention is 90 days.
func NewStore(opts ...Option) *Store {
	s := &Store{
		txs:       make(map[string][]*domain.TransactionRecord),
		comms:     make(map[string][]*domain.CommunicationRecord),
		clock:     time.Now,
		retention: 90 * 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store's current time.
func (s *Store) Now() time.Time {
	return s.clock()
}

// Acquire locks the given identities and returns the release func.
// Stripes are locked in ascending order so overlapping identity sets
// cannot deadlock. Callers wrap a scan+append sequence in Acquire so two
// concurrent evaluations for the same identity always see each other.
func (s *Store) Acquire(identities ...string) func() {
	seen := make(map[uint32]bool, len(identities))
	var indices []uint32
	for _, id := range identities {
		if id == "" {
			continue
		}
		idx := stripeFor(id)
		if !seen[idx] {
			seen[idx] = true
			indices = append(indices, idx)
		}
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	for _, idx := range indices {
		s.stripes[idx].Lock()
	}
	return func() {
		for i := len(indices) - 1; i >= 0; i-- {
			s.stripes[indices[i]].Unlock()
		}
	}
}

func stripeFor(identity string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(identity))
	return h.Sum32() % lockStripes
}

// AppendTransaction records a transaction under both participant
// identities. Entries older than the retention window are pruned from the
// touched identities on the way in.
func (s *Store) AppendTransaction(rec *domain.TransactionRecord) {
	cutoff := s.clock().Add(-s.retention)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range participantKeys(rec.SenderID, rec.RecipientID) {
		s.txs[id] = appendPruned(s.txs[id], rec, cutoff)
	}
}

// TransactionsFor returns the transactions involving the identity that
// occurred in [since, now], newest last. The incoming transaction under
// evaluation is excluded by ID.
func (s *Store) TransactionsFor(identity, excludeID string, since time.Time) []*domain.TransactionRecord {
	now := s.clock()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.TransactionRecord
	for _, rec := range s.txs[identity] {
		if rec.ID != "" && rec.ID == excludeID {
			continue
		}
		if rec.OccurredAt.Before(since) || rec.OccurredAt.After(now) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// RelatedTransactions returns the union of transactions involving either
// participant of the incoming record within [since, now], deduplicated.
func (s *Store) RelatedTransactions(rec *domain.TransactionRecord, since time.Time) []*domain.TransactionRecord {
	bySender := s.TransactionsFor(rec.SenderID, rec.ID, since)
	byRecipient := s.TransactionsFor(rec.RecipientID, rec.ID, since)

	seen := make(map[*domain.TransactionRecord]bool, len(bySender))
	out := make([]*domain.TransactionRecord, 0, len(bySender)+len(byRecipient))
	for _, r := range bySender {
		seen[r] = true
		out = append(out, r)
	}
	for _, r := range byRecipient {
		if !seen[r] {
			out = append(out, r)
		}
	}
	return out
}

// AppendCommunication records a communication under its channel/participant
// pair key.
func (s *Store) AppendCommunication(rec *domain.CommunicationRecord) {
	cutoff := s.clock().Add(-s.retention)
	key := CommKey(rec.Channel, rec.SenderID, rec.RecipientID)

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.comms[key][:0]
	for _, r := range s.comms[key] {
		if !r.OccurredAt.Before(cutoff) {
			kept = append(kept, r)
		}
	}
	s.comms[key] = append(kept, rec)
}

// CommunicationsFor returns the communications for a channel/participant
// pair since the given time.
func (s *Store) CommunicationsFor(channel, senderID, recipientID string, since time.Time) []*domain.CommunicationRecord {
	key := CommKey(channel, senderID, recipientID)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.CommunicationRecord
	for _, rec := range s.comms[key] {
		if !rec.OccurredAt.Before(since) {
			out = append(out, rec)
		}
	}
	return out
}

// CommKey builds the ledger key for a channel/participant pair. The pair
// is order-independent so both directions of a conversation share history.
func CommKey(channel, a, b string) string {
	if b < a {
		a, b = b, a
	}
	return channel + "|" + a + "|" + b
}

func participantKeys(sender, recipient string) []string {
	if sender == recipient || recipient == "" {
		return []string{sender}
	}
	if sender == "" {
		return []string{recipient}
	}
	return []string{sender, recipient}
}

func appendPruned(records []*domain.TransactionRecord, rec *domain.TransactionRecord, cutoff time.Time) []*domain.TransactionRecord {
	kept := records[:0]
	for _, r := range records {
		if !r.OccurredAt.Before(cutoff) {
			kept = append(kept, r)
		}
	}
	return append(kept, rec)
}
