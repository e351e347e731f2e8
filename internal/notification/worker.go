package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"foodtruck-market-backend/internal/model"
	"foodtruck-market-backend/internal/store"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real Sender implementation using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// StatusChange is one unit of notification work: an order that just
// entered a new status.
type StatusChange struct {
	OrderID int64
	Status  model.OrderStatus
}

// WorkerPool fans order status changes out to the customer's push
// subscriptions.
type WorkerPool struct {
	size    int
	jobs    chan StatusChange
	store   store.Store
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan StatusChange, size),
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("notification worker %d started", id)
	for {
		select {
		case change := <-wp.jobs:
			wp.notifyForOrder(ctx, change)
		case <-ctx.Done():
			log.Printf("notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a status change for delivery. It satisfies the lifecycle
// tracker's Dispatcher interface.
func (wp *WorkerPool) Dispatch(orderID int64, status model.OrderStatus) {
	wp.jobs <- StatusChange{OrderID: orderID, Status: status}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan StatusChange {
	return wp.jobs
}

// notifyForOrder fetches the order's customer subscriptions and sends one
// push per subscription.
func (wp *WorkerPool) notifyForOrder(ctx context.Context, change StatusChange) {
	order, err := wp.store.GetOrder(ctx, change.OrderID)
	if err != nil {
		log.Printf("error fetching order %d for notification: %v", change.OrderID, err)
		return
	}

	subscriptions, err := wp.store.ListSubscriptionsByCustomer(ctx, order.CustomerID)
	if err != nil {
		log.Printf("error fetching subscriptions for customer %d: %v", order.CustomerID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	var message string
	switch change.Status {
	case model.StatusPreparing:
		message = fmt.Sprintf("Your order #%d is being prepared.", order.ID)
	case model.StatusReady:
		message = fmt.Sprintf("Your order #%d is ready for pickup!", order.ID)
	case model.StatusCompleted:
		message = fmt.Sprintf("Your order #%d is complete. Enjoy!", order.ID)
	default:
		message = fmt.Sprintf("Your order #%d is now %s.", order.ID, change.Status)
	}

	log.Printf("sending %d notifications for order %d (%s)", len(subscriptions), order.ID, change.Status)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

// sendNotification sends a single web push notification, pruning
// subscriptions the push service reports as expired.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		log.Printf("subscription for endpoint %s is expired, deleting", sub.Endpoint)
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			log.Printf("failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
