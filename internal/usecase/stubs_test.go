package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/ThanhLong2006/personal-expense-tracker/internal/core/domain"
	"github.com/ThanhLong2006/personal-expense-tracker/internal/repository"
)

type stubAccountStore struct {
	mu      sync.Mutex
	users   map[string]domain.User
	saveErr error
	findErr error
}

func newStubAccountStore() *stubAccountStore {
	return &stubAccountStore{users: make(map[string]domain.User)}
}

func (s *stubAccountStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findErr != nil {
		return nil, s.findErr
	}

	user, ok := s.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := user
	return &copied, nil
}

func (s *stubAccountStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.users[email]
	return ok, nil
}

func (s *stubAccountStore) Save(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveErr != nil {
		return s.saveErr
	}

	s.users[user.Email] = user
	return nil
}

func (s *stubAccountStore) CountByStatus(_ context.Context, status domain.UserStatus) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, user := range s.users {
		if user.Status == status {
			count++
		}
	}
	return count, nil
}

func (s *stubAccountStore) get(email string) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[email]
	return user, ok
}

func (s *stubAccountStore) put(user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[user.Email] = user
}

type stubOtpLedger struct {
	mu     sync.Mutex
	codes  map[string]string
	putErr error
}

func newStubOtpLedger() *stubOtpLedger {
	return &stubOtpLedger{codes: make(map[string]string)}
}

func (s *stubOtpLedger) Put(_ context.Context, identity, code string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.putErr != nil {
		return s.putErr
	}

	s.codes[identity] = code
	return nil
}

func (s *stubOtpLedger) Consume(_ context.Context, identity, candidate string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.codes[identity]
	if !ok || stored != candidate {
		return false, nil
	}
	delete(s.codes, identity)
	return true, nil
}

func (s *stubOtpLedger) Exists(_ context.Context, identity string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.codes[identity]
	return ok, nil
}

func (s *stubOtpLedger) stored(identity string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code, ok := s.codes[identity]
	return code, ok
}

type stubAttemptStore struct {
	mu     sync.Mutex
	counts map[string]int
	incErr error
}

func newStubAttemptStore() *stubAttemptStore {
	return &stubAttemptStore{counts: make(map[string]int)}
}

func (s *stubAttemptStore) Increment(_ context.Context, identity string, _ time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.incErr != nil {
		return 0, s.incErr
	}

	s.counts[identity]++
	return s.counts[identity], nil
}

func (s *stubAttemptStore) Count(_ context.Context, identity string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.counts[identity], nil
}

func (s *stubAttemptStore) Reset(_ context.Context, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.counts, identity)
	return nil
}

type stubTokenSlot struct {
	mu     sync.Mutex
	slots  map[string]string
	setErr error
}

func newStubTokenSlot() *stubTokenSlot {
	return &stubTokenSlot{slots: make(map[string]string)}
}

func (s *stubTokenSlot) Store(_ context.Context, identity, token string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.setErr != nil {
		return s.setErr
	}

	s.slots[identity] = token
	return nil
}

func (s *stubTokenSlot) ValidateCurrent(_ context.Context, identity, candidate string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.slots[identity]
	return ok && stored == candidate, nil
}

func (s *stubTokenSlot) Swap(_ context.Context, identity, expected, next string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.slots[identity]
	if !ok || stored != expected {
		return false, nil
	}
	s.slots[identity] = next
	return true, nil
}

func (s *stubTokenSlot) ConsumeCurrent(_ context.Context, identity, candidate string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.slots[identity]
	if !ok || stored != candidate {
		return false, nil
	}
	delete(s.slots, identity)
	return true, nil
}

func (s *stubTokenSlot) Revoke(_ context.Context, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.slots, identity)
	return nil
}

func (s *stubTokenSlot) current(identity string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.slots[identity]
	return token, ok
}

type stubEventPublisher struct {
	mu         sync.Mutex
	registered []domain.UserRegisteredEvent
	activated  []domain.UserActivatedEvent
	locked     []domain.AccountLockedEvent
	loggedIn   []domain.UserLoggedInEvent
	resets     []domain.PasswordResetEvent
}

func newStubEventPublisher() *stubEventPublisher {
	return &stubEventPublisher{}
}

func (s *stubEventPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registered = append(s.registered, event)
	return nil
}

func (s *stubEventPublisher) PublishUserActivated(_ context.Context, event domain.UserActivatedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activated = append(s.activated, event)
	return nil
}

func (s *stubEventPublisher) PublishAccountLocked(_ context.Context, event domain.AccountLockedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locked = append(s.locked, event)
	return nil
}

func (s *stubEventPublisher) PublishUserLoggedIn(_ context.Context, event domain.UserLoggedInEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggedIn = append(s.loggedIn, event)
	return nil
}

func (s *stubEventPublisher) PublishPasswordReset(_ context.Context, event domain.PasswordResetEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets = append(s.resets, event)
	return nil
}

type mailRecord struct {
	email string
	value string
}

type stubMailDispatcher struct {
	mu      sync.Mutex
	otps    []mailRecord
	resets  []mailRecord
	sendErr error
}

func newStubMailDispatcher() *stubMailDispatcher {
	return &stubMailDispatcher{}
}

func (s *stubMailDispatcher) SendOTP(_ context.Context, email, code string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sendErr != nil {
		return s.sendErr
	}
	s.otps = append(s.otps, mailRecord{email: email, value: code})
	return nil
}

func (s *stubMailDispatcher) SendPasswordReset(_ context.Context, email, token string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sendErr != nil {
		return s.sendErr
	}
	s.resets = append(s.resets, mailRecord{email: email, value: token})
	return nil
}
