package impl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"fidelity/internal/domain/entity"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeCache is a plain map-backed IdentityCache recording its mutations.
type fakeCache struct {
	mu      sync.Mutex
	records map[string]*entity.IdentityRecord
	added   []string
	removed []string
	upserts []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{records: make(map[string]*entity.IdentityRecord)}
}

func (c *fakeCache) Exists(email string) bool {
	return c.Get(email) != nil
}

func (c *fakeCache) Get(email string) *entity.IdentityRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.records[entity.NormalizeEmail(email)]
}

func (c *fakeCache) Add(email, store string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := entity.NormalizeEmail(email)
	c.added = append(c.added, key)
	if _, ok := c.records[key]; ok {
		return
	}
	if store == "" {
		store = entity.DefaultStore
	}
	c.records[key] = &entity.IdentityRecord{Email: key, Store: store, AddedAt: time.Now()}
}

func (c *fakeCache) UpdateWithIdentityCode(email, identityCode string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := entity.NormalizeEmail(email)
	record, ok := c.records[key]
	if !ok {
		record = &entity.IdentityRecord{Email: key, Store: entity.DefaultStore}
		c.records[key] = record
	}
	record.IdentityCode = identityCode
	record.Complete = true
}

func (c *fakeCache) UpdateWithFullRecord(email string, record *entity.IdentityRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := entity.NormalizeEmail(email)
	c.upserts = append(c.upserts, key)

	next := *record
	next.Email = key
	if current, ok := c.records[key]; ok {
		if next.IdentityCode == "" {
			next.IdentityCode = current.IdentityCode
		}
		if next.Store == "" {
			next.Store = current.Store
		}
	}
	if next.Store == "" {
		next.Store = entity.DefaultStore
	}
	next.Complete = next.IdentityCode != ""
	c.records[key] = &next
}

func (c *fakeCache) Remove(email string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := entity.NormalizeEmail(email)
	c.removed = append(c.removed, key)
	delete(c.records, key)
}

func (c *fakeCache) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.records)
}

// fakeRemote is a canned RemoteIdentityLookup.
type fakeRemote struct {
	byEmail map[string]*entity.RemoteIdentity
	byCode  map[string]*entity.RemoteIdentity
	list    []*entity.RemoteIdentity

	createCode string
	createErr  error

	emailCalls int
	codeCalls  int
	created    []*entity.IdentityRecord
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		byEmail: make(map[string]*entity.RemoteIdentity),
		byCode:  make(map[string]*entity.RemoteIdentity),
	}
}

func (r *fakeRemote) FindByEmail(_ context.Context, email string) *entity.RemoteIdentity {
	r.emailCalls++

	return r.byEmail[entity.NormalizeEmail(email)]
}

func (r *fakeRemote) FindByCode(_ context.Context, identityCode string) *entity.RemoteIdentity {
	r.codeCalls++

	return r.byCode[identityCode]
}

func (r *fakeRemote) ListAll(context.Context) []*entity.RemoteIdentity {
	return r.list
}

func (r *fakeRemote) CreateIdentity(_ context.Context, record *entity.IdentityRecord) (string, error) {
	r.created = append(r.created, record)
	if r.createErr != nil {
		return "", r.createErr
	}

	return r.createCode, nil
}

// fakeTokens issues deterministic tokens and serves stored payloads.
type fakeTokens struct {
	issueErr error
	payloads map[string]string
	counter  int
	last     string
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{payloads: make(map[string]string)}
}

func (s *fakeTokens) Issue(store, email string) (string, error) {
	return s.persist(store + "\r\n" + email)
}

func (s *fakeTokens) IssueProfile(store, email, identityCode string) (string, error) {
	return s.persist(store + "\r\n" + email + "\r\n" + identityCode)
}

func (s *fakeTokens) persist(payload string) (string, error) {
	if s.issueErr != nil {
		return "", s.issueErr
	}

	s.counter++
	s.last = fmt.Sprintf("token-%d", s.counter)
	s.payloads[s.last] = payload

	return s.last, nil
}

func (s *fakeTokens) Read(token string) string {
	return s.payloads[token]
}

func (s *fakeTokens) SweepExpired(time.Duration) {}

type sentMail struct {
	email string
	name  string
	link  string
	code  string
	card  []byte
}

// fakeMailer records every send.
type fakeMailer struct {
	sendErr       error
	verifications []sentMail
	profileAccess []sentMail
	welcomes      []sentMail
}

func (m *fakeMailer) SendVerification(_ context.Context, email, name, link string) error {
	m.verifications = append(m.verifications, sentMail{email: email, name: name, link: link})

	return m.sendErr
}

func (m *fakeMailer) SendProfileAccess(_ context.Context, email, name, link string) error {
	m.profileAccess = append(m.profileAccess, sentMail{email: email, name: name, link: link})

	return m.sendErr
}

func (m *fakeMailer) SendWelcome(_ context.Context, email, name, identityCode string, card []byte) error {
	m.welcomes = append(m.welcomes, sentMail{email: email, name: name, code: identityCode, card: card})

	return m.sendErr
}

// fakeCards returns a canned card image.
type fakeCards struct {
	card []byte
	err  error
}

func (g *fakeCards) GenerateCard(*entity.IdentityRecord) ([]byte, error) {
	return g.card, g.err
}
