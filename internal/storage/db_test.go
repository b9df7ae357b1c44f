package storage

import (
	"database/sql"
	"testing"
	"time"

	"expense-ledger/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// DBTestSuite provides a test suite for database operations
type DBTestSuite struct {
	suite.Suite
	db *DB
}

// SetupTest runs before each test
func (suite *DBTestSuite) SetupTest() {
	db, err := NewDB(":memory:")
	require.NoError(suite.T(), err, "failed to create test database")
	suite.db = db
}

// TearDownTest runs after each test
func (suite *DBTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *DBTestSuite) createExpense(amount float64, date, category, userID, txType string) *models.Expense {
	e, err := suite.db.CreateExpense(&models.Expense{
		Amount:          amount,
		Date:            date,
		Category:        category,
		UserID:          userID,
		TransactionType: txType,
	})
	require.NoError(suite.T(), err)
	return e
}

func (suite *DBTestSuite) TestCreateAndGetExpense() {
	created := suite.createExpense(10.50, "2024-05-01", "food", "u1", models.TransactionDebit)
	require.NotEmpty(suite.T(), created.ID)

	got, err := suite.db.GetExpense(created.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 10.50, got.Amount)
	assert.Equal(suite.T(), "food", got.Category)
	assert.Equal(suite.T(), "u1", got.UserID)
	assert.Equal(suite.T(), models.TransactionDebit, got.TransactionType)
}

func (suite *DBTestSuite) TestListExpensesByUserOrder() {
	suite.createExpense(20.00, "2024-05-01", "transport", "u1", models.TransactionDebit)
	suite.createExpense(5.00, "2024-05-03", "food", "u1", models.TransactionDebit)
	suite.createExpense(15.00, "2024-05-02", "food", "u2", models.TransactionDebit)

	result, err := suite.db.ListExpensesByUser("u1")
	require.NoError(suite.T(), err)
	require.Len(suite.T(), result, 2, "expected only u1's expenses")

	// Newest date first
	assert.Equal(suite.T(), "2024-05-03", result[0].Date)
	assert.Equal(suite.T(), "2024-05-01", result[1].Date)
}

func (suite *DBTestSuite) TestUpdateExpense() {
	created := suite.createExpense(10.00, "2024-05-01", "food", "u1", models.TransactionDebit)

	created.Amount = 12.50
	created.Category = "travel"
	require.NoError(suite.T(), suite.db.UpdateExpense(created))

	got, err := suite.db.GetExpense(created.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 12.50, got.Amount)
	assert.Equal(suite.T(), "travel", got.Category)
}

func (suite *DBTestSuite) TestDeleteExpenses() {
	e1 := suite.createExpense(1, "2024-05-01", "food", "u1", models.TransactionDebit)
	e2 := suite.createExpense(2, "2024-05-02", "food", "u1", models.TransactionDebit)
	e3 := suite.createExpense(3, "2024-05-03", "food", "u1", models.TransactionDebit)

	require.NoError(suite.T(), suite.db.DeleteExpenses([]string{e1.ID, e3.ID}))

	remaining, err := suite.db.ListExpensesByUser("u1")
	require.NoError(suite.T(), err)
	require.Len(suite.T(), remaining, 1)
	assert.Equal(suite.T(), e2.ID, remaining[0].ID)
}

func (suite *DBTestSuite) TestTransactionTotals() {
	suite.createExpense(100, "2024-05-01", "salary", "u1", models.TransactionCredit)
	suite.createExpense(50, "2024-05-02", "refund", "u1", models.TransactionCredit)
	suite.createExpense(30, "2024-05-03", "food", "u1", models.TransactionDebit)
	suite.createExpense(999, "2024-05-03", "food", "other", models.TransactionDebit)

	credit, debit, err := suite.db.TransactionTotals("u1")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 150.0, credit)
	assert.Equal(suite.T(), 30.0, debit)
}

func (suite *DBTestSuite) TestCategoryTotalsSortedDescending() {
	suite.createExpense(40, "2024-05-01", "food", "u1", models.TransactionDebit)
	suite.createExpense(10, "2024-05-02", "food", "u1", models.TransactionDebit)
	suite.createExpense(25, "2024-05-03", "travel", "u1", models.TransactionDebit)

	totals, err := suite.db.CategoryTotals("u1")
	require.NoError(suite.T(), err)
	require.Len(suite.T(), totals, 2)
	assert.Equal(suite.T(), models.CategoryTotal{Category: "food", TotalSpent: 50}, totals[0])
	assert.Equal(suite.T(), models.CategoryTotal{Category: "travel", TotalSpent: 25}, totals[1])
}

func (suite *DBTestSuite) TestUserLifecycle() {
	user, err := suite.db.CreateUser("Test User", "testuser", "test@example.com", "hash1")
	require.NoError(suite.T(), err)
	require.NotEmpty(suite.T(), user.ID)

	byName, err := suite.db.GetUserByUsername("testuser")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), user.ID, byName.ID)

	byEmail, err := suite.db.GetUserByEmail("test@example.com")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), user.ID, byEmail.ID)

	// Duplicate usernames are rejected
	_, err = suite.db.CreateUser("Other", "testuser", "other@example.com", "hash2")
	assert.Error(suite.T(), err)

	updated, err := suite.db.UpdateUserPassword("test@example.com", "hash3")
	require.NoError(suite.T(), err)
	assert.True(suite.T(), updated)

	reloaded, err := suite.db.GetUserByID(user.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "hash3", reloaded.PasswordHash)

	updated, err = suite.db.UpdateUserPassword("unknown@example.com", "hash4")
	require.NoError(suite.T(), err)
	assert.False(suite.T(), updated)
}

// OtpTestSuite provides a test suite for OTP record operations
type OtpTestSuite struct {
	suite.Suite
	db *DB
}

func (suite *OtpTestSuite) SetupTest() {
	db, err := NewDB(":memory:")
	require.NoError(suite.T(), err, "failed to create test database")
	suite.db = db
}

func (suite *OtpTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *OtpTestSuite) TestLatestUnusedOtp() {
	_, err := suite.db.LatestUnusedOtp("a@example.com")
	assert.ErrorIs(suite.T(), err, sql.ErrNoRows)

	first, err := suite.db.CreateOtp("a@example.com", "hash1", time.Now().Add(10*time.Minute))
	require.NoError(suite.T(), err)

	// Ensure distinct created_at timestamps
	time.Sleep(5 * time.Millisecond)

	second, err := suite.db.CreateOtp("a@example.com", "hash2", time.Now().Add(10*time.Minute))
	require.NoError(suite.T(), err)

	latest, err := suite.db.LatestUnusedOtp("a@example.com")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), second.ID, latest.ID)
	assert.NotEqual(suite.T(), first.ID, latest.ID)
}

func (suite *OtpTestSuite) TestSupersedeOtps() {
	_, err := suite.db.CreateOtp("a@example.com", "hash1", time.Now().Add(10*time.Minute))
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), suite.db.SupersedeOtps("a@example.com"))

	_, err = suite.db.LatestUnusedOtp("a@example.com")
	assert.ErrorIs(suite.T(), err, sql.ErrNoRows)
}

func (suite *OtpTestSuite) TestMarkOtpUsed() {
	otp, err := suite.db.CreateOtp("a@example.com", "hash1", time.Now().Add(10*time.Minute))
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), suite.db.MarkOtpUsed(otp.ID))

	_, err = suite.db.LatestUnusedOtp("a@example.com")
	assert.ErrorIs(suite.T(), err, sql.ErrNoRows)
}

func (suite *OtpTestSuite) TestIncrementOtpAttemptsStopsAtCap() {
	otp, err := suite.db.CreateOtp("a@example.com", "hash1", time.Now().Add(10*time.Minute))
	require.NoError(suite.T(), err)

	for i := 0; i < 5; i++ {
		ok, err := suite.db.IncrementOtpAttempts(otp.ID, 5)
		require.NoError(suite.T(), err)
		assert.True(suite.T(), ok, "increment %d should count", i+1)
	}

	// Counter is at the cap; further increments are refused
	ok, err := suite.db.IncrementOtpAttempts(otp.ID, 5)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), ok)

	latest, err := suite.db.LatestUnusedOtp("a@example.com")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 5, latest.Attempts)
}

func (suite *OtpTestSuite) TestOtpActiveWindow() {
	otp, err := suite.db.CreateOtp("a@example.com", "hash1", time.Now().Add(10*time.Minute))
	require.NoError(suite.T(), err)

	assert.True(suite.T(), otp.Active(time.Now()))
	assert.False(suite.T(), otp.Active(time.Now().Add(11*time.Minute)))

	otp.Used = true
	assert.False(suite.T(), otp.Active(time.Now()))
}

func (suite *OtpTestSuite) TestIncrementOtpAttemptsRefusedWhenUsed() {
	otp, err := suite.db.CreateOtp("a@example.com", "hash1", time.Now().Add(10*time.Minute))
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), suite.db.MarkOtpUsed(otp.ID))

	ok, err := suite.db.IncrementOtpAttempts(otp.ID, 5)
	require.NoError(suite.T(), err)
	assert.False(suite.T(), ok)
}

func TestDBSuite(t *testing.T) {
	suite.Run(t, new(DBTestSuite))
}

func TestOtpSuite(t *testing.T) {
	suite.Run(t, new(OtpTestSuite))
}
