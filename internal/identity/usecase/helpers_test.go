package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	cryptoService "github.com/allisson/identity/internal/crypto/service"
	identityDomain "github.com/allisson/identity/internal/identity/domain"
	identityService "github.com/allisson/identity/internal/identity/service"
	"github.com/allisson/identity/internal/notification"
	"github.com/allisson/identity/internal/ticketstore"
)

const (
	testPassword = "correct horse"
	testCode     = "4821"
)

// plainHasher keeps tests fast; argon2id is covered in the service package.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Verify(password, hash string) bool { return hash == "hashed:"+password }

type fixedCodeGenerator struct{ code string }

func (g fixedCodeGenerator) Generate(int) (string, error) { return g.code, nil }

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memoryAccounts is an AccountRepository backed by maps. Reads return copies the way a
// database would.
type memoryAccounts struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]identityDomain.Account
	orders   map[uuid.UUID]int64
}

func newMemoryAccounts() *memoryAccounts {
	return &memoryAccounts{
		accounts: make(map[uuid.UUID]identityDomain.Account),
		orders:   make(map[uuid.UUID]int64),
	}
}

func (r *memoryAccounts) Create(_ context.Context, account *identityDomain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Email == account.Email {
			return identityDomain.ErrAccountAlreadyRegistered
		}
	}
	r.accounts[account.ID] = *account
	return nil
}

func (r *memoryAccounts) Update(_ context.Context, account *identityDomain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[account.ID]; !ok {
		return identityDomain.ErrAccountNotFound
	}
	r.accounts[account.ID] = *account
	return nil
}

func (r *memoryAccounts) GetByID(_ context.Context, id uuid.UUID) (*identityDomain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return nil, identityDomain.ErrAccountNotFound
	}
	return &account, nil
}

func (r *memoryAccounts) GetByEmail(_ context.Context, email string) (*identityDomain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.Email == email {
			return &account, nil
		}
	}
	return nil, identityDomain.ErrAccountNotFound
}

func (r *memoryAccounts) CountOrders(_ context.Context, accountID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orders[accountID], nil
}

func (r *memoryAccounts) addGuest(email string, orders int64) *identityDomain.Account {
	now := time.Now().UTC()
	account := identityDomain.Account{
		ID:        uuid.Must(uuid.NewV7()),
		Email:     email,
		Status:    identityDomain.StatusActive,
		Role:      identityDomain.RoleCustomer,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[account.ID] = account
	r.orders[account.ID] = orders
	return &account
}

// get returns a copy of the stored account.
func (r *memoryAccounts) get(id uuid.UUID) *identityDomain.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	account := r.accounts[id]
	return &account
}

type recordingSender struct {
	mu       sync.Mutex
	messages []notification.Message
	err      error
}

func (s *recordingSender) Send(_ context.Context, msg notification.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, msg)
	return nil
}

func (s *recordingSender) byTemplate(template string) []notification.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []notification.Message
	for _, msg := range s.messages {
		if msg.Template == template {
			out = append(out, msg)
		}
	}
	return out
}

type recordingAuditSink struct {
	mu     sync.Mutex
	events []*identityDomain.AuditEvent
	err    error
}

func (s *recordingAuditSink) Record(_ context.Context, event *identityDomain.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func (s *recordingAuditSink) byType(eventType identityDomain.EventType) []*identityDomain.AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*identityDomain.AuditEvent
	for _, event := range s.events {
		if event.EventType == eventType {
			out = append(out, event)
		}
	}
	return out
}

// failingStore wraps a Store and fails every Put.
type failingStore struct {
	ticketstore.Store
}

func (failingStore) Put(context.Context, string, string, time.Duration) error {
	return errors.New("ticket store unavailable")
}

type harness struct {
	uc       *identityUseCase
	accounts *memoryAccounts
	store    *ticketstore.MemoryStore
	sender   *recordingSender
	audit    *recordingAuditSink
	clock    *fakeClock
	tokens   identityService.TokenIssuer
	cipher   cryptoService.SecretCipher
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	cipher, err := cryptoService.NewSecretCipher(key)
	require.NoError(t, err)

	tokens, err := identityService.NewTokenIssuer(identityService.TokenIssuerConfig{
		SigningSecret:   []byte(strings.Repeat("s", 32)),
		Issuer:          "identity-test",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	require.NoError(t, err)

	h := &harness{
		accounts: newMemoryAccounts(),
		store:    ticketstore.NewMemoryStore(),
		sender:   &recordingSender{},
		audit:    &recordingAuditSink{},
		clock:    &fakeClock{now: time.Now()},
		tokens:   tokens,
		cipher:   cipher,
	}

	uc := NewIdentityUseCase(
		Config{},
		h.accounts,
		h.store,
		tokens,
		plainHasher{},
		fixedCodeGenerator{code: testCode},
		cipher,
		h.sender,
		h.audit,
		nil,
	)
	h.uc = uc.(*identityUseCase)
	h.uc.now = h.clock.Now
	return h
}

func (h *harness) register(t *testing.T, email string) *identityDomain.AuthResult {
	t.Helper()
	result, err := h.uc.Register(context.Background(), &identityDomain.RegisterInput{
		Email:    email,
		Password: testPassword,
	})
	require.NoError(t, err)
	return result
}

// resetToken returns the secret from the latest password_reset notification.
func (h *harness) resetToken(t *testing.T) string {
	t.Helper()
	messages := h.sender.byTemplate(identityDomain.TemplatePasswordReset)
	require.NotEmpty(t, messages)
	return messages[len(messages)-1].Data["token"]
}
