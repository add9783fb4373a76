package cert

import (
	"sync"
	"testing"

	"qurotech/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the shared in-memory database alive and
	// serializes concurrent transactions the way a server pool would
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Profile{}, &models.Order{}, &models.Certificate{}))
	return db
}

func intPtr(v int) *int {
	return &v
}

func createOrder(t *testing.T, db *gorm.DB, id, userID, gateway string, items []models.LineItem) *models.Order {
	t.Helper()

	itemsJSON, err := models.MarshalLineItems(items)
	require.NoError(t, err)

	order := &models.Order{
		ID:          id,
		UserID:      userID,
		Items:       itemsJSON,
		TotalAmount: 40000,
		Currency:    "INR",
		Status:      models.OrderStatusPending,
		Gateway:     gateway,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestIssueForOrderCreatesCertificatePerItem(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.Profile{UserID: "user-1", FullName: "Asha Rao", Email: "asha@example.com"}).Error)

	order := createOrder(t, db, "order-1", "user-1", models.GatewayRazorpay, []models.LineItem{
		{Internship: "frontend", Duration: "1-month", Price: 400},
		{Title: "Data Analytics", Duration: "2-months", Price: 600},
	})

	issuer := NewIssuer(db)
	result, err := issuer.IssueForOrder(order, "pay_123")
	require.NoError(t, err)
	require.Len(t, result.Certificates, 2)
	assert.False(t, result.AlreadyCompleted)
	assert.Zero(t, result.Skipped)

	first := result.Certificates[0]
	assert.Equal(t, "Frontend Developer Internship", first.Internship)
	assert.Equal(t, "1 Month", first.DurationLabel)
	assert.Equal(t, 400.0, first.Price)
	assert.Equal(t, "Asha Rao", first.FullName)
	assert.NotEmpty(t, first.Serial)

	second := result.Certificates[1]
	assert.Equal(t, "Data Science Internship", second.Internship)
	assert.Equal(t, "2 Months", second.DurationLabel)
	assert.NotEqual(t, first.Serial, second.Serial)

	var stored models.Order
	require.NoError(t, db.First(&stored, "id = ?", "order-1").Error)
	assert.Equal(t, models.OrderStatusCompleted, stored.Status)
}

func TestIssueForOrderCustomDuration(t *testing.T) {
	db := setupTestDB(t)
	order := createOrder(t, db, "order-custom", "user-1", models.GatewayStripe, []models.LineItem{
		{Internship: "devops", Duration: "custom", Price: 700, CustomHours: intPtr(120), CustomWeeks: intPtr(6)},
	})

	result, err := NewIssuer(db).IssueForOrder(order, "pi_1")
	require.NoError(t, err)
	require.Len(t, result.Certificates, 1)

	certificate := result.Certificates[0]
	assert.Equal(t, "120 hrs, 6 weeks", certificate.DurationLabel)
	require.NotNil(t, certificate.CustomHours)
	assert.Equal(t, 120, *certificate.CustomHours)
	require.NotNil(t, certificate.CustomWeeks)
	assert.Equal(t, 6, *certificate.CustomWeeks)
}

func TestIssueForOrderIdempotent(t *testing.T) {
	db := setupTestDB(t)
	order := createOrder(t, db, "order-2", "user-1", models.GatewayStripe, []models.LineItem{
		{Internship: "backend", Duration: "1-month", Price: 400},
	})

	issuer := NewIssuer(db)
	first, err := issuer.IssueForOrder(order, "pi_once")
	require.NoError(t, err)
	require.Len(t, first.Certificates, 1)

	second, err := issuer.IssueForOrder(order, "pi_once")
	require.NoError(t, err)
	assert.True(t, second.AlreadyCompleted)
	require.Len(t, second.Certificates, 1)
	assert.Equal(t, first.Certificates[0].Serial, second.Certificates[0].Serial)

	var count int64
	db.Model(&models.Certificate{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestIssueForOrderUnknownOrder(t *testing.T) {
	db := setupTestDB(t)

	ghost := &models.Order{ID: "missing", Status: models.OrderStatusPending}
	_, err := NewIssuer(db).IssueForOrder(ghost, "pay_x")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestIssueForOrderSerialCollisionRetries(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.Certificate{Serial: "QT-TAKEN", FullName: "Existing"}).Error)

	order := createOrder(t, db, "order-3", "user-1", models.GatewayStripe, []models.LineItem{
		{Internship: "frontend", Duration: "1-month", Price: 400},
	})

	issuer := NewIssuer(db)
	calls := 0
	issuer.GenerateSerial = func() string {
		calls++
		if calls == 1 {
			return "QT-TAKEN"
		}
		return "QT-FRESH"
	}

	result, err := issuer.IssueForOrder(order, "pi_retry")
	require.NoError(t, err)
	require.Len(t, result.Certificates, 1)
	assert.Equal(t, "QT-FRESH", result.Certificates[0].Serial)
	assert.Equal(t, 2, calls)
}

func TestIssueForOrderSerialExhaustedSkipsItemOnly(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.Certificate{Serial: "QT-TAKEN", FullName: "Existing"}).Error)

	order := createOrder(t, db, "order-4", "user-1", models.GatewayStripe, []models.LineItem{
		{Internship: "frontend", Duration: "1-month", Price: 400},
	})

	issuer := NewIssuer(db)
	issuer.GenerateSerial = func() string { return "QT-TAKEN" }

	result, err := issuer.IssueForOrder(order, "pi_exhausted")
	require.NoError(t, err)
	assert.Empty(t, result.Certificates)
	assert.Equal(t, 1, result.Skipped)

	// The order still completes: partial issuance is reported, not fatal
	var stored models.Order
	require.NoError(t, db.First(&stored, "id = ?", "order-4").Error)
	assert.Equal(t, models.OrderStatusCompleted, stored.Status)

	var count int64
	db.Model(&models.Certificate{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestIssueForOrderConcurrentDuplicates(t *testing.T) {
	db := setupTestDB(t)
	order := createOrder(t, db, "order-5", "user-1", models.GatewayStripe, []models.LineItem{
		{Internship: "backend", Duration: "1-month", Price: 400},
	})

	issuer := NewIssuer(db)
	results := make([]*IssueResult, 2)
	errs := make([]error, 2)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = issuer.IssueForOrder(order, "pi_race")
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	issued := 0
	for _, result := range results {
		if !result.AlreadyCompleted {
			issued++
		}
		// Winner and loser both see the full certificate set
		require.Len(t, result.Certificates, 1)
	}
	assert.Equal(t, 1, issued, "exactly one invocation should win the claim")
	assert.Equal(t, results[0].Certificates[0].Serial, results[1].Certificates[0].Serial)

	var count int64
	db.Model(&models.Certificate{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestIssueForOrderPlaceholderNames(t *testing.T) {
	db := setupTestDB(t)

	stripeOrder := createOrder(t, db, "order-6", "no-profile", models.GatewayStripe, []models.LineItem{
		{Internship: "frontend", Duration: "1-month", Price: 400},
	})
	result, err := NewIssuer(db).IssueForOrder(stripeOrder, "pi_anon")
	require.NoError(t, err)
	require.Len(t, result.Certificates, 1)
	assert.Equal(t, "Student", result.Certificates[0].FullName)

	razorpayOrder := createOrder(t, db, "order-7", "no-profile", models.GatewayRazorpay, []models.LineItem{
		{Internship: "frontend", Duration: "1-month", Price: 400},
	})
	result, err = NewIssuer(db).IssueForOrder(razorpayOrder, "pay_anon")
	require.NoError(t, err)
	require.Len(t, result.Certificates, 1)
	assert.Equal(t, "Participant", result.Certificates[0].FullName)
}

func TestIssueDirect(t *testing.T) {
	db := setupTestDB(t)
	issuer := NewIssuer(db)

	certificate, err := issuer.IssueDirect("user-9", DirectIssue{
		FullName:         "Ravi Kumar",
		Internship:       "frontend",
		DurationLabel:    DurationOneMonth,
		PaymentReference: "pay_direct_1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Frontend Developer Internship", certificate.Internship)
	assert.Equal(t, 400.0, certificate.Price)
	assert.Nil(t, certificate.CustomHours)
	assert.NotEmpty(t, certificate.Serial)
}

func TestIssueDirectCustomKeepsAbsentFieldsUnset(t *testing.T) {
	db := setupTestDB(t)

	certificate, err := NewIssuer(db).IssueDirect("user-9", DirectIssue{
		FullName:         "Ravi Kumar",
		Internship:       "Cloud Computing",
		DurationLabel:    DurationCustom,
		PaymentReference: "pay_direct_2",
	})
	require.NoError(t, err)
	assert.Equal(t, 700.0, certificate.Price)
	assert.Nil(t, certificate.CustomHours)
	assert.Nil(t, certificate.CustomWeeks)

	certificate, err = NewIssuer(db).IssueDirect("user-9", DirectIssue{
		FullName:         "Ravi Kumar",
		Internship:       "Cloud Computing",
		DurationLabel:    DurationCustom,
		PaymentReference: "pay_direct_3",
		CustomHours:      intPtr(80),
		CustomWeeks:      intPtr(4),
	})
	require.NoError(t, err)
	require.NotNil(t, certificate.CustomHours)
	assert.Equal(t, 80, *certificate.CustomHours)
	require.NotNil(t, certificate.CustomWeeks)
	assert.Equal(t, 4, *certificate.CustomWeeks)
}
