package bot

import (
	"sync"

	"github.com/nalyk/shopbot/internal/navigation"
	"github.com/nalyk/shopbot/internal/wallet"
)

// ConversationState marks what free-form input the bot expects next from an
// admin. Exactly one state is held per admin at a time; any inline navigation
// clears it.
type ConversationState interface {
	conversationState()
}

type AwaitingCategoryName struct {
	ParentID int64
}

type AwaitingProductName struct {
	ParentID int64
}

type AwaitingProductPrice struct {
	ParentID int64
	Name     string
}

type AwaitingProductDescription struct {
	ParentID int64
	Name     string
	Price    float64
}

type AwaitingNewPrice struct {
	CategoryID int64
}

type AwaitingNewDescription struct {
	CategoryID int64
}

type AwaitingNewImage struct {
	CategoryID int64
}

type AwaitingItemsFile struct {
	CategoryID int64
	AddType    navigation.AddType
}

type AwaitingUserEntity struct {
	Operation navigation.UserMgmtOperation
}

type AwaitingBalanceAmount struct {
	Operation  navigation.UserMgmtOperation
	UserEntity string
}

type AwaitingWalletAddress struct {
	Currency wallet.Currency
}

// WalletAddressCollected bridges the address message and the inline
// confirmation that follows it.
type WalletAddressCollected struct {
	Currency  wallet.Currency
	ToAddress string
}

type AwaitingBroadcastMessage struct{}

func (AwaitingCategoryName) conversationState()       {}
func (AwaitingProductName) conversationState()        {}
func (AwaitingProductPrice) conversationState()       {}
func (AwaitingProductDescription) conversationState() {}
func (AwaitingNewPrice) conversationState()           {}
func (AwaitingNewDescription) conversationState()     {}
func (AwaitingNewImage) conversationState()           {}
func (AwaitingItemsFile) conversationState()          {}
func (AwaitingUserEntity) conversationState()         {}
func (AwaitingBalanceAmount) conversationState()      {}
func (AwaitingWalletAddress) conversationState()      {}
func (WalletAddressCollected) conversationState()     {}
func (AwaitingBroadcastMessage) conversationState()   {}

// SessionStore keeps per-admin conversation state in memory.
type SessionStore struct {
	mu     sync.Mutex
	states map[int64]ConversationState
}

func NewSessionStore() *SessionStore {
	return &SessionStore{states: make(map[int64]ConversationState)}
}

func (s *SessionStore) Get(adminID int64) (ConversationState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[adminID]
	return st, ok
}

func (s *SessionStore) Set(adminID int64, state ConversationState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[adminID] = state
}

// Clear is idempotent, clearing an absent state is a no-op.
func (s *SessionStore) Clear(adminID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, adminID)
}
