package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gestion-comercial/backoffice/internal/core/domain"
)

type stubStore struct {
	employees map[string]*domain.Employee
	clients   map[string]*domain.Client

	employeeErr error
	clientErr   error
	// failEmployeeFrom makes every employee lookup from that call number
	// onwards fail. Zero disables it.
	failEmployeeFrom int

	employeeCalls int
	clientCalls   int
}

func newStubStore() *stubStore {
	return &stubStore{
		employees: make(map[string]*domain.Employee),
		clients:   make(map[string]*domain.Client),
	}
}

func (s *stubStore) calls() int { return s.employeeCalls + s.clientCalls }

func (s *stubStore) FindEmployeeByLoginID(_ context.Context, loginID string) (*domain.Employee, error) {
	s.employeeCalls++
	if s.employeeErr != nil {
		return nil, s.employeeErr
	}
	if s.failEmployeeFrom > 0 && s.employeeCalls >= s.failEmployeeFrom {
		return nil, errStoreDown
	}
	e, ok := s.employees[loginID]
	if !ok {
		return nil, domain.ErrPrincipalNotFound
	}
	clone := *e
	return &clone, nil
}

func (s *stubStore) FindClientByLoginID(_ context.Context, loginID string) (*domain.Client, error) {
	s.clientCalls++
	if s.clientErr != nil {
		return nil, s.clientErr
	}
	c, ok := s.clients[loginID]
	if !ok {
		return nil, domain.ErrPrincipalNotFound
	}
	clone := *c
	return &clone, nil
}

var errStoreDown = storeError("store unavailable")

type storeError string

func (e storeError) Error() string { return string(e) }

// stubVerifier treats "hash:<password>" as the stored form of password.
type stubVerifier struct {
	verifies int
	decoys   int
}

func hashOf(password string) string { return "hash:" + password }

func (v *stubVerifier) Verify(hash, password string) bool {
	v.verifies++
	return strings.TrimPrefix(hash, "hash:") == password && strings.HasPrefix(hash, "hash:")
}

func (v *stubVerifier) Decoy(string) { v.decoys++ }

type stubCodec struct {
	exp time.Time
	err error
}

func (c *stubCodec) Issue(p domain.Principal) (string, time.Time, error) {
	if c.err != nil {
		return "", time.Time{}, c.err
	}
	return "token-for-" + p.LoginID() + "-" + string(p.Role()), c.exp, nil
}

func (c *stubCodec) Validate(string) (domain.Identity, error) {
	return domain.Identity{}, domain.ErrInvalidToken
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.LoginEvent
}

func (p *recordingPublisher) Publish(e domain.LoginEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) outcomes() []domain.LoginOutcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.LoginOutcome, len(p.events))
	for i, e := range p.events {
		out[i] = e.Outcome
	}
	return out
}
