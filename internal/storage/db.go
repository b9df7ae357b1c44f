package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"expense-ledger/internal/models"

	"github.com/google/uuid"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection.
type DB struct {
	conn *sql.DB
}

// NewDB opens a database connection and runs migrations.
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		return nil, err
	}

	return db, nil
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			username TEXT UNIQUE NOT NULL,
			email TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS expenses (
			id TEXT PRIMARY KEY,
			amount REAL NOT NULL,
			date TEXT NOT NULL,
			category TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			user_id TEXT NOT NULL,
			transaction_type TEXT NOT NULL CHECK (transaction_type IN ('credit', 'debit'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_user ON expenses(user_id)`,
		`CREATE TABLE IF NOT EXISTS password_reset_otps (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			otp_hash TEXT NOT NULL,
			expires_at DATETIME NOT NULL,
			used INTEGER NOT NULL DEFAULT 0,
			attempts INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_otps_email ON password_reset_otps(email, used)`,
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return err
		}
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// CreateUser creates a new user with the given details and password hash.
func (db *DB) CreateUser(name, username, email, passwordHash string) (*models.User, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec(
		"INSERT INTO users (id, name, username, email, password_hash) VALUES (?, ?, ?, ?, ?)",
		id, name, username, email, passwordHash,
	)
	if err != nil {
		return nil, err
	}
	return db.GetUserByID(id)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(id string) (*models.User, error) {
	return scanUser(db.conn.QueryRow(
		"SELECT id, name, username, email, password_hash, created_at FROM users WHERE id = ?", id,
	))
}

// GetUserByUsername retrieves a user by username.
func (db *DB) GetUserByUsername(username string) (*models.User, error) {
	return scanUser(db.conn.QueryRow(
		"SELECT id, name, username, email, password_hash, created_at FROM users WHERE username = ?", username,
	))
}

// GetUserByEmail retrieves a user by email. If several accounts share an
// email the earliest registration wins.
func (db *DB) GetUserByEmail(email string) (*models.User, error) {
	return scanUser(db.conn.QueryRow(
		"SELECT id, name, username, email, password_hash, created_at FROM users WHERE email = ? ORDER BY created_at LIMIT 1", email,
	))
}

// UpdateUserPassword replaces the password hash for every account with the
// given email. Returns false when no account matched.
func (db *DB) UpdateUserPassword(email, passwordHash string) (bool, error) {
	res, err := db.conn.Exec(
		"UPDATE users SET password_hash = ? WHERE email = ?", passwordHash, email,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateExpense inserts a new expense and returns it with its generated ID.
func (db *DB) CreateExpense(e *models.Expense) (*models.Expense, error) {
	e.ID = uuid.NewString()
	_, err := db.conn.Exec(
		"INSERT INTO expenses (id, amount, date, category, description, user_id, transaction_type) VALUES (?, ?, ?, ?, ?, ?, ?)",
		e.ID, e.Amount, e.Date, e.Category, e.Description, e.UserID, e.TransactionType,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetExpense retrieves a single expense by ID.
func (db *DB) GetExpense(id string) (*models.Expense, error) {
	row := db.conn.QueryRow(
		"SELECT id, amount, date, category, description, user_id, transaction_type FROM expenses WHERE id = ?",
		id,
	)

	var e models.Expense
	if err := row.Scan(&e.ID, &e.Amount, &e.Date, &e.Category, &e.Description, &e.UserID, &e.TransactionType); err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateExpense updates an existing expense.
func (db *DB) UpdateExpense(e *models.Expense) error {
	_, err := db.conn.Exec(
		"UPDATE expenses SET amount = ?, date = ?, category = ?, description = ?, transaction_type = ? WHERE id = ?",
		e.Amount, e.Date, e.Category, e.Description, e.TransactionType, e.ID,
	)
	return err
}

// DeleteExpense removes an expense by ID.
func (db *DB) DeleteExpense(id string) error {
	_, err := db.conn.Exec("DELETE FROM expenses WHERE id = ?", id)
	return err
}

// DeleteExpenses removes every expense whose ID appears in ids.
func (db *DB) DeleteExpenses(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := db.conn.Exec(
		fmt.Sprintf("DELETE FROM expenses WHERE id IN (%s)", placeholders), args...,
	)
	return err
}

func (db *DB) queryExpenses(query string, args ...any) ([]models.Expense, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.Amount, &e.Date, &e.Category, &e.Description, &e.UserID, &e.TransactionType); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// ListExpenses retrieves all expenses, ordered by date descending.
func (db *DB) ListExpenses() ([]models.Expense, error) {
	return db.queryExpenses(
		"SELECT id, amount, date, category, description, user_id, transaction_type FROM expenses ORDER BY date DESC",
	)
}

// ListExpensesByUser retrieves one user's expenses, ordered by date descending.
func (db *DB) ListExpensesByUser(userID string) ([]models.Expense, error) {
	return db.queryExpenses(
		"SELECT id, amount, date, category, description, user_id, transaction_type FROM expenses WHERE user_id = ? ORDER BY date DESC",
		userID,
	)
}

// TransactionTotals sums a user's amounts grouped by transaction type.
func (db *DB) TransactionTotals(userID string) (credit, debit float64, err error) {
	rows, err := db.conn.Query(
		"SELECT transaction_type, SUM(amount) FROM expenses WHERE user_id = ? GROUP BY transaction_type",
		userID,
	)
	if err != nil {
		return 0, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		var txType string
		var total float64
		if err := rows.Scan(&txType, &total); err != nil {
			return 0, 0, err
		}
		switch txType {
		case models.TransactionCredit:
			credit = total
		case models.TransactionDebit:
			debit = total
		}
	}
	return credit, debit, rows.Err()
}

// CategoryTotals sums a user's amounts grouped by category, sorted by
// total descending.
func (db *DB) CategoryTotals(userID string) ([]models.CategoryTotal, error) {
	rows, err := db.conn.Query(
		"SELECT category, SUM(amount) AS total FROM expenses WHERE user_id = ? GROUP BY category ORDER BY total DESC",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []models.CategoryTotal
	for rows.Next() {
		var ct models.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.TotalSpent); err != nil {
			return nil, err
		}
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}

// CreateOtp persists a freshly issued reset code.
func (db *DB) CreateOtp(email, otpHash string, expiresAt time.Time) (*models.PasswordResetOtp, error) {
	otp := &models.PasswordResetOtp{
		ID:        uuid.NewString(),
		Email:     email,
		OtpHash:   otpHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	_, err := db.conn.Exec(
		"INSERT INTO password_reset_otps (id, email, otp_hash, expires_at, used, attempts, created_at) VALUES (?, ?, ?, ?, 0, 0, ?)",
		otp.ID, otp.Email, otp.OtpHash, otp.ExpiresAt, otp.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return otp, nil
}

// SupersedeOtps marks every unused OTP for the email as used, so only a
// subsequently issued code remains verifiable.
func (db *DB) SupersedeOtps(email string) error {
	_, err := db.conn.Exec(
		"UPDATE password_reset_otps SET used = 1 WHERE email = ? AND used = 0", email,
	)
	return err
}

// RetireOtps marks every OTP for the email as used, expired or not.
func (db *DB) RetireOtps(email string) error {
	_, err := db.conn.Exec(
		"UPDATE password_reset_otps SET used = 1 WHERE email = ?", email,
	)
	return err
}

// LatestUnusedOtp returns the most recently created unused OTP for the
// email, or sql.ErrNoRows when none exists.
func (db *DB) LatestUnusedOtp(email string) (*models.PasswordResetOtp, error) {
	row := db.conn.QueryRow(
		`SELECT id, email, otp_hash, expires_at, used, attempts, created_at
		 FROM password_reset_otps
		 WHERE email = ? AND used = 0
		 ORDER BY created_at DESC LIMIT 1`,
		email,
	)

	var o models.PasswordResetOtp
	if err := row.Scan(&o.ID, &o.Email, &o.OtpHash, &o.ExpiresAt, &o.Used, &o.Attempts, &o.CreatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

// MarkOtpUsed retires a single OTP record.
func (db *DB) MarkOtpUsed(id string) error {
	_, err := db.conn.Exec(
		"UPDATE password_reset_otps SET used = 1 WHERE id = ? AND used = 0", id,
	)
	return err
}

// IncrementOtpAttempts advances the attempt counter as one conditional
// update, so concurrent failed verifications cannot lose increments or
// push the counter past maxAttempts. Returns false when the record was
// already used or at the cap.
func (db *DB) IncrementOtpAttempts(id string, maxAttempts int) (bool, error) {
	res, err := db.conn.Exec(
		"UPDATE password_reset_otps SET attempts = attempts + 1 WHERE id = ? AND used = 0 AND attempts < ?",
		id, maxAttempts,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
