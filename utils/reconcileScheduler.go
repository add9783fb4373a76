package utils

import (
	"log"
	"time"

	"qurotech/cert"
	"qurotech/database"
	"qurotech/models"
	"qurotech/payment"

	"github.com/robfig/cron/v3"
)

// InitializeReconcileScheduler sets up the pending-order reconciliation job.
// It catches orders whose payment succeeded but whose confirmation callback
// never reached us (dropped webhook, closed browser tab).
func InitializeReconcileScheduler() {
	log.Println("[RECONCILE-SCHEDULER] Initializing order reconciliation scheduler...")

	c := cron.New()

	c.AddFunc("*/10 * * * *", func() {
		ReconcilePendingOrders()
	})

	c.Start()
	log.Println("[RECONCILE-SCHEDULER] Order reconciliation scheduler started - runs every 10 minutes")
}

// ReconcilePendingOrders re-verifies stale pending orders against their
// gateway and issues certificates for the ones that actually got paid.
// Issuance is idempotent, so racing a late webhook here is harmless.
func ReconcilePendingOrders() {
	db := database.Database.Db
	cutoff := time.Now().Add(-15 * time.Minute)

	var orders []models.Order
	if err := db.
		Where("status = ? AND created_at < ?", models.OrderStatusPending, cutoff).
		Order("created_at asc").
		Limit(50).
		Find(&orders).Error; err != nil {
		log.Printf("[RECONCILE-SCHEDULER] Error fetching pending orders: %v", err)
		return
	}

	if len(orders) == 0 {
		return
	}
	log.Printf("[RECONCILE-SCHEDULER] Checking %d stale pending orders", len(orders))

	razorpay := payment.NewRazorpayService()
	stripe := payment.NewStripeService()
	issuer := cert.NewIssuer(db)

	recovered := 0
	for idx := range orders {
		order := &orders[idx]

		var reference string
		switch order.Gateway {
		case models.GatewayRazorpay:
			if order.RazorpayOrderID == nil {
				continue
			}
			gatewayOrder, err := razorpay.FetchOrder(*order.RazorpayOrderID)
			if err != nil {
				log.Printf("[RECONCILE-SCHEDULER] Razorpay fetch failed for order %s: %v", order.ID, err)
				continue
			}
			if gatewayOrder.Status != "paid" {
				continue
			}
			reference = order.RazorpayPaymentID
			if reference == "" {
				reference = *order.RazorpayOrderID
			}
		case models.GatewayStripe:
			if order.PaymentIntentID == nil {
				continue
			}
			intent, err := stripe.RetrievePaymentIntent(*order.PaymentIntentID)
			if err != nil {
				log.Printf("[RECONCILE-SCHEDULER] Stripe retrieve failed for order %s: %v", order.ID, err)
				continue
			}
			if intent.Status != "succeeded" {
				continue
			}
			reference = intent.ID
		default:
			continue
		}

		result, err := issuer.IssueForOrder(order, reference)
		if err != nil {
			log.Printf("[RECONCILE-SCHEDULER] Issuance failed for order %s: %v", order.ID, err)
			continue
		}
		if !result.AlreadyCompleted {
			recovered++
			log.Printf("[RECONCILE-SCHEDULER] Recovered order %s: issued %d certificate(s), skipped %d",
				order.ID, len(result.Certificates), result.Skipped)
		}
	}

	if recovered > 0 {
		log.Printf("[RECONCILE-SCHEDULER] Recovered %d orders", recovered)
	}
}
