package command

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/eaglebank/ledger/internal/dbx"
	"github.com/eaglebank/ledger/internal/ledgererr"
	"github.com/eaglebank/ledger/internal/models"
	"github.com/shopspring/decimal"
)

// memLedger is an in-memory AccountStore and UserStore. Its handle arguments
// are ignored; memRunner provides the unit-of-work semantics.
type memLedger struct {
	mu       sync.Mutex
	users    map[int64]models.User
	accounts map[int64]models.Account
	nextID   int64

	// adjustOverride, when set and returning ok, replaces AdjustBalance.
	adjustOverride func(owner int64, delta decimal.Decimal) (rows int64, ok bool)
	accountInsertErr error
	findByEmailErr   error
	adjustCalls      []int64
}

func newMemLedger() *memLedger {
	return &memLedger{
		users:    make(map[int64]models.User),
		accounts: make(map[int64]models.Account),
	}
}

func (m *memLedger) seed(owner int64, number string, balance int64, pinHash string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[owner] = models.User{ID: owner, Email: number + "@example.com", PhoneNumber: number}
	m.accounts[owner] = models.Account{
		Owner: owner, AccountNumber: number, Balance: decimal.NewFromInt(balance), PinHash: pinHash,
	}
	if owner > m.nextID {
		m.nextID = owner
	}
}

func (m *memLedger) balance(owner int64) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[owner].Balance
}

func (m *memLedger) total() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := decimal.Zero
	for _, a := range m.accounts {
		sum = sum.Add(a.Balance)
	}
	return sum
}

func (m *memLedger) counts() (users, accounts int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), len(m.accounts)
}

type memSnapshot struct {
	users    map[int64]models.User
	accounts map[int64]models.Account
	nextID   int64
}

func (m *memLedger) snapshot() memSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := memSnapshot{
		users:    make(map[int64]models.User, len(m.users)),
		accounts: make(map[int64]models.Account, len(m.accounts)),
		nextID:   m.nextID,
	}
	for k, v := range m.users {
		s.users[k] = v
	}
	for k, v := range m.accounts {
		s.accounts[k] = v
	}
	return s
}

func (m *memLedger) restore(s memSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users, m.accounts, m.nextID = s.users, s.accounts, s.nextID
}

func (m *memLedger) FindByOwner(_ context.Context, _ dbx.DBTX, owner int64) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[owner]
	if !ok {
		return nil, ledgererr.ErrAccountNotFound
	}
	return &a, nil
}

func (m *memLedger) FindByNumber(_ context.Context, _ dbx.DBTX, number string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.AccountNumber == number {
			a := a
			return &a, nil
		}
	}
	return nil, ledgererr.ErrAccountNotFound
}

func (m *memLedger) NumberTaken(_ context.Context, _ dbx.DBTX, number string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.AccountNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (m *memLedger) AdjustBalance(_ context.Context, _ dbx.DBTX, owner int64, delta decimal.Decimal) (int64, error) {
	m.mu.Lock()
	m.adjustCalls = append(m.adjustCalls, owner)
	override := m.adjustOverride
	m.mu.Unlock()

	if override != nil {
		if rows, ok := override(owner, delta); ok {
			return rows, nil
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[owner]
	if !ok {
		return 0, nil
	}
	next := a.Balance.Add(delta)
	if next.IsNegative() {
		return 0, nil
	}
	a.Balance = next
	m.accounts[owner] = a
	return 1, nil
}

func (m *memLedger) Insert(_ context.Context, _ dbx.DBTX, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.accountInsertErr != nil {
		return m.accountInsertErr
	}
	for _, a := range m.accounts {
		if a.AccountNumber == account.AccountNumber {
			return ledgererr.ErrAccountNumberTaken
		}
	}
	m.accounts[account.Owner] = *account
	return nil
}

func (m *memLedger) FindByEmail(_ context.Context, _ dbx.DBTX, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	for _, u := range m.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, ledgererr.ErrUserNotFound
}

func (m *memLedger) FindByEmailOrPhone(_ context.Context, _ dbx.DBTX, email, phone string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if u := m.users[id]; u.Email == email || u.PhoneNumber == phone {
			return &u, nil
		}
	}
	return nil, ledgererr.ErrUserNotFound
}

// memUsers adapts memLedger's user methods to UserStore; Insert clashes with
// the AccountStore method of the same name.
type memUsers struct{ *memLedger }

func (u memUsers) Insert(_ context.Context, _ dbx.DBTX, user *models.User) error {
	m := u.memLedger
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email || existing.PhoneNumber == user.PhoneNumber {
			return ledgererr.ErrDuplicateUser
		}
	}
	m.nextID++
	stored := *user
	stored.ID = m.nextID
	m.users[stored.ID] = stored
	return nil
}

// memRunner serializes units of work and restores the ledger when one fails.
type memRunner struct {
	txMu   sync.Mutex
	ledger *memLedger
}

func (r *memRunner) Conn() dbx.DBTX { return nil }

func (r *memRunner) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	snap := r.ledger.snapshot()
	if err := fn(ctx, nil); err != nil {
		r.ledger.restore(snap)
		return err
	}
	return nil
}

// plainPins stores pins as "pin:<pin>".
type plainPins struct{ hashErr error }

func (p plainPins) Hash(pin string) (string, error) {
	if p.hashErr != nil {
		return "", p.hashErr
	}
	return "pin:" + pin, nil
}

func (plainPins) Verify(hash, pin string) bool { return hash == "pin:"+pin }

type publishedEvent struct {
	stream, eventType string
	data              any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, stream, eventType string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{stream, eventType, data})
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.eventType
	}
	return out
}

type recordingProfiles struct {
	mu          sync.Mutex
	invalidated []int64
}

func (p *recordingProfiles) InvalidateProfile(_ context.Context, userID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.invalidated = append(p.invalidated, userID)
}

var errStoreDown = errors.New("store unavailable")
