package service

import (
	"context"
	"mime/multipart"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/twinside/backend/internal/domain"
	"github.com/twinside/backend/internal/repository"
)

// fakeAccountRepo is an in-memory AccountRepository for service tests.
type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]*domain.Account)}
}

func (f *fakeAccountRepo) add(account *domain.Account) *domain.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	f.accounts[account.ID] = account
	return account
}

func (f *fakeAccountRepo) Create(_ context.Context, account *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.accounts {
		if existing.Email == account.Email {
			return repository.ErrDuplicateEmail
		}
		if existing.Nick == account.Nick {
			return repository.ErrDuplicateNick
		}
	}
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.Status == "" {
		account.Status = domain.StatusDraft
	}
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	f.accounts[account.ID] = account
	return nil
}

func (f *fakeAccountRepo) CreateWithToken(ctx context.Context, account *domain.Account, token *domain.VerificationToken) error {
	if err := f.Create(ctx, account); err != nil {
		return err
	}
	token.AccountID = account.ID
	return nil
}

func (f *fakeAccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if account, ok := f.accounts[id]; ok {
		return account, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.Email == email {
			return account, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAccountRepo) AdvanceStatus(_ context.Context, id string, from, to domain.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	if account.Status != from {
		return repository.ErrWrongStatus
	}
	account.Status = to
	return nil
}

func (f *fakeAccountRepo) SubmitProfile(_ context.Context, sub repository.ProfileSubmission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[sub.AccountID]
	if !ok {
		return repository.ErrWrongStatus
	}
	if account.Status != domain.StatusEmailConfirmed && account.Status != domain.StatusRejected {
		return repository.ErrWrongStatus
	}
	account.About = &sub.About
	account.LookingFor = &sub.LookingFor
	account.Interests = &sub.Interests
	account.AvatarPath = &sub.AvatarPath
	account.VerifyPath = &sub.VerifyPath
	account.Status = domain.StatusProfilePending
	return nil
}

func (f *fakeAccountRepo) UpdateInfo(_ context.Context, id, about, interests, city string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.About = &about
	account.Interests = &interests
	account.City = city
	return nil
}

func (f *fakeAccountRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.PasswordHash = passwordHash
	return nil
}

func (f *fakeAccountRepo) Moderate(_ context.Context, id string, status domain.Status, rejectReason *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.Status = status
	account.RejectReason = rejectReason
	return nil
}

func (f *fakeAccountRepo) ListPending(_ context.Context, _, _ int) ([]*domain.Account, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var pending []*domain.Account
	for _, account := range f.accounts {
		if account.Status == domain.StatusProfilePending {
			pending = append(pending, account)
		}
	}
	return pending, int64(len(pending)), nil
}

func (f *fakeAccountRepo) List(_ context.Context, filter repository.AccountFilter) ([]*domain.Account, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var accounts []*domain.Account
	for _, account := range f.accounts {
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(account.Nick), strings.ToLower(filter.Search)) &&
			!strings.Contains(strings.ToLower(account.Email), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Type == "fake" && !account.IsFake {
			continue
		}
		if filter.Type == "real" && account.IsFake {
			continue
		}
		accounts = append(accounts, account)
	}
	return accounts, int64(len(accounts)), nil
}

func (f *fakeAccountRepo) SetFlags(_ context.Context, id string, flags repository.AccountFlags) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	if flags.Banned != nil {
		account.Banned = *flags.Banned
	}
	if flags.Premium != nil {
		account.Premium = *flags.Premium
	}
	if flags.Balance != nil {
		account.Balance = *flags.Balance
	}
	return nil
}

func (f *fakeAccountRepo) DeleteFake(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok || !account.IsFake {
		return repository.ErrNotFound
	}
	delete(f.accounts, id)
	return nil
}

// fakeTokenRepo is an in-memory TokenRepository for service tests.
type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*domain.VerificationToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*domain.VerificationToken)}
}

func (f *fakeTokenRepo) Create(_ context.Context, token *domain.VerificationToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.tokens[token.Token]; exists {
		return repository.ErrDuplicateToken
	}
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	token.CreatedAt = time.Now()
	f.tokens[token.Token] = token
	return nil
}

func (f *fakeTokenRepo) Consume(_ context.Context, token string, purpose domain.TokenPurpose) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.tokens[token]
	if !ok || stored.Purpose != purpose {
		return "", repository.ErrNotFound
	}
	if stored.UsedAt != nil {
		return "", repository.ErrTokenUsed
	}
	if time.Now().After(stored.ExpiresAt) {
		return "", repository.ErrTokenExpired
	}
	now := time.Now()
	stored.UsedAt = &now
	return stored.AccountID, nil
}

// fakeFinanceRepo is an in-memory FinanceRepository for service tests.
type fakeFinanceRepo struct {
	mu           sync.Mutex
	accounts     *fakeAccountRepo
	nextID       int64
	withdraws    map[int64]*domain.Withdraw
	transactions []*domain.Transaction
}

func newFakeFinanceRepo(accounts *fakeAccountRepo) *fakeFinanceRepo {
	return &fakeFinanceRepo{
		accounts:  accounts,
		withdraws: make(map[int64]*domain.Withdraw),
	}
}

func (f *fakeFinanceRepo) record(accountID, txType string, amount int64, description string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.transactions = append(f.transactions, &domain.Transaction{
		ID:          f.nextID,
		AccountID:   accountID,
		Type:        txType,
		Amount:      amount,
		Description: description,
		CreatedAt:   time.Now(),
	})
}

func (f *fakeFinanceRepo) ListTransactions(_ context.Context, _ repository.TransactionFilter) ([]*domain.Transaction, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transactions, int64(len(f.transactions)), nil
}

func (f *fakeFinanceRepo) CreateWithdraw(_ context.Context, accountID string, amount int64, wallet string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.withdraws[f.nextID] = &domain.Withdraw{
		ID:        f.nextID,
		AccountID: accountID,
		Amount:    amount,
		Wallet:    wallet,
		Status:    domain.WithdrawPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	return f.nextID, nil
}

func (f *fakeFinanceRepo) withdraw(id int64) *domain.Withdraw {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.withdraws[id]
}

func (f *fakeFinanceRepo) ListWithdraws(_ context.Context) ([]*domain.Withdraw, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var withdraws []*domain.Withdraw
	for _, w := range f.withdraws {
		withdraws = append(withdraws, w)
	}
	return withdraws, nil
}

func (f *fakeFinanceRepo) SettleWithdraw(_ context.Context, id int64, txHash string) error {
	f.mu.Lock()
	w, ok := f.withdraws[id]
	if !ok || w.Status != domain.WithdrawPending {
		f.mu.Unlock()
		return repository.ErrNotFound
	}
	w.Status = domain.WithdrawDone
	w.TxHash = &txHash
	accountID, amount := w.AccountID, w.Amount
	f.mu.Unlock()

	f.accounts.mu.Lock()
	if account, ok := f.accounts.accounts[accountID]; ok {
		account.Balance -= amount
	}
	f.accounts.mu.Unlock()

	f.record(accountID, domain.TxTypeWithdraw, -amount, "settled")
	return nil
}

func (f *fakeFinanceRepo) RejectWithdraw(_ context.Context, id int64, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.withdraws[id]
	if !ok || w.Status != domain.WithdrawPending {
		return repository.ErrNotFound
	}
	w.Status = domain.WithdrawRejected
	w.Reason = &reason
	return nil
}

func (f *fakeFinanceRepo) ManualCredit(_ context.Context, accountID string, amount int64, description string) error {
	f.accounts.mu.Lock()
	account, ok := f.accounts.accounts[accountID]
	if !ok {
		f.accounts.mu.Unlock()
		return repository.ErrNotFound
	}
	account.Balance += amount
	f.accounts.mu.Unlock()

	f.record(accountID, domain.TxTypeManual, amount, description)
	return nil
}

func (f *fakeFinanceRepo) GrantPremium(_ context.Context, accountID string, until time.Time, description string) error {
	f.accounts.mu.Lock()
	account, ok := f.accounts.accounts[accountID]
	if !ok {
		f.accounts.mu.Unlock()
		return repository.ErrNotFound
	}
	account.Premium = true
	account.PremiumUntil = &until
	f.accounts.mu.Unlock()

	f.record(accountID, domain.TxTypePremium, 0, description)
	return nil
}

func (f *fakeFinanceRepo) Stats(_ context.Context) (*domain.FinanceStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &domain.FinanceStats{TxCount: int64(len(f.transactions))}, nil
}

// fakeImageStore records saves without touching disk.
type fakeImageStore struct {
	mu      sync.Mutex
	saved   []string
	removed []string
	saveErr error
}

func (f *fakeImageStore) Save(header *multipart.FileHeader, category string) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	path := "/uploads/" + category + "/" + header.Filename
	f.saved = append(f.saved, path)
	return path, nil
}

func (f *fakeImageStore) Remove(urlPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, urlPath)
	return nil
}

func (f *fakeImageStore) Resolve(urlPath string) (string, error) {
	return "/tmp" + urlPath, nil
}
