package database

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"fintrack/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MemoryStore хранилище в памяти с той же семантикой, что и Database.
// Используется при DB_DRIVER=memory и в тестах.
type MemoryStore struct {
	mu           sync.RWMutex
	seq          int64
	users        map[uuid.UUID]models.User
	budgets      map[uuid.UUID]models.Budget
	budgetSeq    map[uuid.UUID]int64
	categories   map[uuid.UUID]models.Category
	transactions map[uuid.UUID]models.Transaction
	now          func() time.Time
}

// NewMemoryStore создает пустое хранилище в памяти
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[uuid.UUID]models.User),
		budgets:      make(map[uuid.UUID]models.Budget),
		budgetSeq:    make(map[uuid.UUID]int64),
		categories:   make(map[uuid.UUID]models.Category),
		transactions: make(map[uuid.UUID]models.Transaction),
		now:          time.Now,
	}
}

func (s *MemoryStore) stamp() time.Time {
	s.seq++
	return s.now()
}

// Пользователи

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if sameEmail(u.Email, user.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := s.stamp()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(func(u models.User) bool { return sameEmail(u.Email, email) })
}

func (s *MemoryStore) GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	return s.findUser(func(u models.User) bool { return token != "" && u.VerificationToken == token })
}

func (s *MemoryStore) findUser(match func(models.User) bool) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if match(u) {
			user := u
			return &user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *MemoryStore) UpdateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	for id, u := range s.users {
		if id != user.ID && sameEmail(u.Email, user.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	user.UpdatedAt = s.stamp()
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) ListVerifiedUsers(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0)
	for _, u := range s.users {
		if u.IsVerified {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (s *MemoryStore) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cleared int64
	for id, u := range s.users {
		if u.ResetTokenExpiry != nil && u.ResetTokenExpiry.Before(now) {
			u.ResetToken = nil
			u.ResetTokenExpiry = nil
			s.users[id] = u
			cleared++
		}
	}
	return cleared, nil
}

// Бюджеты

func (s *MemoryStore) CreateBudget(ctx context.Context, budget *models.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[budget.UserID]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	if budget.ID == uuid.Nil {
		budget.ID = uuid.New()
	}
	now := s.stamp()
	budget.CreatedAt = now
	budget.UpdatedAt = now
	stored := *budget
	stored.User = nil
	s.budgets[budget.ID] = stored
	s.budgetSeq[budget.ID] = s.seq
	return nil
}

func (s *MemoryStore) FindBudget(ctx context.Context, budgetID, userID uuid.UUID) (*models.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	budget, ok := s.budgets[budgetID]
	if !ok || budget.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return &budget, nil
}

func (s *MemoryStore) ListBudgets(ctx context.Context, userID uuid.UUID) ([]models.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	budgets := make([]models.Budget, 0)
	for _, b := range s.budgets {
		if b.UserID == userID {
			budgets = append(budgets, b)
		}
	}
	sort.Slice(budgets, func(i, j int) bool {
		if !budgets[i].CreatedAt.Equal(budgets[j].CreatedAt) {
			return budgets[i].CreatedAt.After(budgets[j].CreatedAt)
		}
		return s.budgetSeq[budgets[i].ID] > s.budgetSeq[budgets[j].ID]
	})
	return budgets, nil
}

func (s *MemoryStore) UpdateBudget(ctx context.Context, budget *models.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.budgets[budget.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	budget.UpdatedAt = s.stamp()
	stored := *budget
	stored.User = nil
	s.budgets[budget.ID] = stored
	return nil
}

func (s *MemoryStore) DeleteBudget(ctx context.Context, budgetID uuid.UUID, cascade bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.budgets[budgetID]; !ok {
		return gorm.ErrRecordNotFound
	}

	var linked []uuid.UUID
	for id, t := range s.transactions {
		if t.BudgetID == budgetID {
			linked = append(linked, id)
		}
	}
	if len(linked) > 0 && !cascade {
		return gorm.ErrForeignKeyViolated
	}
	for _, id := range linked {
		delete(s.transactions, id)
	}
	delete(s.budgets, budgetID)
	delete(s.budgetSeq, budgetID)
	return nil
}

func (s *MemoryStore) CountTransactionsForBudget(ctx context.Context, budgetID uuid.UUID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, t := range s.transactions {
		if t.BudgetID == budgetID {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) ListTransactionsForBudget(ctx context.Context, budgetID uuid.UUID) ([]models.BalanceEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]models.BalanceEntry, 0)
	for _, t := range s.transactions {
		if t.BudgetID == budgetID {
			entries = append(entries, models.BalanceEntry{Amount: t.Amount, TransactionType: t.TransactionType})
		}
	}
	return entries, nil
}

// Категории и транзакции

func (s *MemoryStore) FindOrCreateCategory(ctx context.Context, userID uuid.UUID, name string) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.categories {
		if c.UserID == userID && c.Name == name {
			category := c
			return &category, nil
		}
	}

	category := models.Category{ID: uuid.New(), UserID: userID, Name: name, CreatedAt: s.stamp()}
	s.categories[category.ID] = category
	return &category, nil
}

func (s *MemoryStore) CreateTransaction(ctx context.Context, transaction *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkTransactionRefs(transaction); err != nil {
		return err
	}
	if transaction.ID == uuid.Nil {
		transaction.ID = uuid.New()
	}
	now := s.stamp()
	transaction.CreatedAt = now
	transaction.UpdatedAt = now
	s.transactions[transaction.ID] = stripTransaction(*transaction)
	return nil
}

func (s *MemoryStore) checkTransactionRefs(t *models.Transaction) error {
	if _, ok := s.budgets[t.BudgetID]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	if _, ok := s.categories[t.CategoryID]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	if _, ok := s.users[t.UserID]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	return nil
}

func (s *MemoryStore) FindTransaction(ctx context.Context, transactionID, userID uuid.UUID) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transactions[transactionID]
	if !ok || t.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	loaded := s.withAssociations(t)
	return &loaded, nil
}

func (s *MemoryStore) withAssociations(t models.Transaction) models.Transaction {
	if c, ok := s.categories[t.CategoryID]; ok {
		category := c
		t.Category = &category
	}
	if b, ok := s.budgets[t.BudgetID]; ok {
		budget := b
		t.Budget = &budget
	}
	return t
}

func (s *MemoryStore) ListTransactions(ctx context.Context, userID uuid.UUID, query models.TransactionQuery) ([]models.Transaction, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(query.Search)
	matched := make([]models.Transaction, 0)
	for _, t := range s.transactions {
		if t.UserID != userID {
			continue
		}
		loaded := s.withAssociations(t)
		if search != "" {
			inDescription := strings.Contains(strings.ToLower(loaded.Description), search)
			inCategory := loaded.Category != nil && strings.Contains(strings.ToLower(loaded.Category.Name), search)
			if !inDescription && !inCategory {
				continue
			}
		}
		matched = append(matched, loaded)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if query.OrderDesc {
			a, b = b, a
		}
		if query.OrderBy == "amount" {
			return a.Amount.LessThan(b.Amount)
		}
		return a.TransactionDate.Before(b.TransactionDate)
	})

	total := int64(len(matched))
	start := (query.Page - 1) * query.PerPage
	if start < 0 || start >= len(matched) {
		return []models.Transaction{}, total, nil
	}
	end := start + query.PerPage
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *MemoryStore) UpdateTransaction(ctx context.Context, transaction *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[transaction.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	if err := s.checkTransactionRefs(transaction); err != nil {
		return err
	}
	transaction.UpdatedAt = s.stamp()
	s.transactions[transaction.ID] = stripTransaction(*transaction)
	return nil
}

func (s *MemoryStore) DeleteTransaction(ctx context.Context, transactionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[transactionID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.transactions, transactionID)
	return nil
}

// Отчеты

func (s *MemoryStore) FindTransactionsForUserInRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.ReportEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]models.ReportEntry, 0)
	for _, t := range s.transactions {
		if t.UserID != userID {
			continue
		}
		if t.TransactionDate.Before(start) || !t.TransactionDate.Before(end) {
			continue
		}
		entries = append(entries, models.ReportEntry{
			Amount:          t.Amount,
			TransactionType: t.TransactionType,
			TransactionDate: t.TransactionDate,
			CategoryName:    s.categories[t.CategoryID].Name,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].TransactionDate.Before(entries[j].TransactionDate) })
	return entries, nil
}

func stripTransaction(t models.Transaction) models.Transaction {
	t.Category = nil
	t.Budget = nil
	return t
}

func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
