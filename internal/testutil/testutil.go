package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eventra/eventra/internal/auth"
	"github.com/eventra/eventra/internal/database/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// Run migrations
	err = db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.BudgetItem{},
		&models.Expense{},
		&models.ChecklistItem{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// CleanupTestDB closes the test database connection
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Logf("warning: failed to get sql.DB: %v", err)
		return
	}
	sqlDB.Close()
}

// CreateTestUser creates a test user in the given organization with the given role
func CreateTestUser(t *testing.T, db *gorm.DB, org string, role models.Role) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("testpassword123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Base: models.Base{
			ID: uuid.New(),
		},
		Email:        "test-" + uuid.New().String()[:8] + "@example.com",
		PasswordHash: hash,
		Name:         "Test User",
		Organization: org,
		Role:         role,
		IsActive:     true,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateTestEvent creates a test event owned by the given creator
func CreateTestEvent(t *testing.T, db *gorm.DB, creator *models.User, expectedBudget string) *models.Event {
	t.Helper()

	budget, err := decimal.NewFromString(expectedBudget)
	if err != nil {
		t.Fatalf("invalid budget %q: %v", expectedBudget, err)
	}

	event := &models.Event{
		Base: models.Base{
			ID: uuid.New(),
		},
		Name:           "Test Event " + uuid.New().String()[:8],
		Location:       "Test Venue",
		EventDate:      time.Now().AddDate(0, 1, 0),
		ExpectedBudget: budget,
		Status:         models.EventStatusPending,
		Organization:   creator.Organization,
		CreatedByID:    creator.ID,
	}

	if err := db.Create(event).Error; err != nil {
		t.Fatalf("failed to create test event: %v", err)
	}

	return event
}

// CreateTestBudgetItem creates a budget item for the given event
func CreateTestBudgetItem(t *testing.T, db *gorm.DB, eventID uuid.UUID, category, name, estimatedCost string) *models.BudgetItem {
	t.Helper()

	cost, err := decimal.NewFromString(estimatedCost)
	if err != nil {
		t.Fatalf("invalid cost %q: %v", estimatedCost, err)
	}

	item := &models.BudgetItem{
		Base: models.Base{
			ID: uuid.New(),
		},
		EventID:       eventID,
		Category:      category,
		Name:          name,
		EstimatedCost: cost,
		Status:        models.BudgetItemNotPaid,
	}

	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to create test budget item: %v", err)
	}

	return item
}

// CreateTestExpense creates an expense for the given event, optionally linked to a budget item
func CreateTestExpense(t *testing.T, db *gorm.DB, eventID uuid.UUID, itemID *uuid.UUID, name, amount string) *models.Expense {
	t.Helper()

	amt, err := decimal.NewFromString(amount)
	if err != nil {
		t.Fatalf("invalid amount %q: %v", amount, err)
	}

	expense := &models.Expense{
		Base: models.Base{
			ID: uuid.New(),
		},
		EventID:      eventID,
		BudgetItemID: itemID,
		Name:         name,
		Amount:       amt,
		ExpenseDate:  time.Now(),
	}

	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}

	return expense
}

// CreateTestChecklistItem creates a checklist item for the given event
func CreateTestChecklistItem(t *testing.T, db *gorm.DB, eventID uuid.UUID, title string, assignedTo *uuid.UUID) *models.ChecklistItem {
	t.Helper()

	item := &models.ChecklistItem{
		Base: models.Base{
			ID: uuid.New(),
		},
		EventID:    eventID,
		Title:      title,
		AssignedTo: assignedTo,
		Status:     models.ChecklistPending,
	}

	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to create test checklist item: %v", err)
	}

	return item
}

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", 24*time.Hour)
}

// GenerateTestToken generates a valid JWT token for the given user
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, user *models.User) string {
	t.Helper()

	token, err := jwtService.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	return token
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// AssertStatus checks if the response has the expected status code
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rr.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, rr.Code, rr.Body.String())
	}
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}

// TestContext creates a context with a timeout for tests
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// TestSetup holds the common test dependencies
type TestSetup struct {
	DB         *gorm.DB
	JWTService *auth.JWTService
	Manager    *models.User
	Token      string
}

// NewTestContext creates a complete test setup with DB, an account manager, and a token
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	db := SetupTestDB(t)
	jwtService := CreateTestJWTService()
	manager := CreateTestUser(t, db, "Acme Events", models.RoleAccountManager)
	token := GenerateTestToken(t, jwtService, manager)

	return &TestSetup{
		DB:         db,
		JWTService: jwtService,
		Manager:    manager,
		Token:      token,
	}
}

// Cleanup closes the test database
func (ts *TestSetup) Cleanup() {
	if ts.DB != nil {
		sqlDB, err := ts.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}
