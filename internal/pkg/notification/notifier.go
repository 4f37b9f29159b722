package notification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/bewear-pt/storefront/app/models"
	"github.com/bewear-pt/storefront/app/repository"
	"github.com/bewear-pt/storefront/internal/pkg/jobqueue"
	"github.com/bewear-pt/storefront/internal/pkg/mail"
	"github.com/bewear-pt/storefront/internal/pkg/s3archive"
	"github.com/bewear-pt/storefront/views/email"
)

const (
	// SweepAfter is how long a paid order may stay without email before the sweeper re-enqueues it.
	SweepAfter    = 30 * time.Minute
	sweepInterval = 10 * time.Minute
	sweepBatch    = 50
	sendTimeout   = 30 * time.Second
)

// Enqueuer is the part of the job queue the notifier needs.
type Enqueuer interface {
	Enqueue(ctx context.Context, jobType jobqueue.JobType, payload interface{}, opts ...jobqueue.EnqueueOption) (*jobqueue.Job, error)
}

// orderPaidKey limits the queue to one pending email job per order.
func orderPaidKey(orderID string) string {
	return "order-paid:" + orderID
}

// Options configures a Notifier. Zero values disable the optional parts.
type Options struct {
	Recipient string
	OrdersURL string
	Queue     Enqueuer
	Archiver  s3archive.Archiver
}

// Notifier sends the paid-order email and archives the receipt.
type Notifier struct {
	orders    repository.OrderRepository
	sender    mail.Sender
	queue     Enqueuer
	archiver  s3archive.Archiver
	recipient string
	ordersURL string
	now       func() time.Time
}

func NewNotifier(orders repository.OrderRepository, sender mail.Sender, opts Options) *Notifier {
	return &Notifier{
		orders:    orders,
		sender:    sender,
		queue:     opts.Queue,
		archiver:  opts.Archiver,
		recipient: opts.Recipient,
		ordersURL: opts.OrdersURL,
		now:       time.Now,
	}
}

// NotifyOrderPaid schedules the email for a paid order. It never fails the
// caller: when the queue is unavailable the email is sent in the background.
func (n *Notifier) NotifyOrderPaid(ctx context.Context, orderID, eventID string) error {
	if n.queue != nil {
		payload := jobqueue.OrderNotification{OrderID: orderID, EventID: eventID}
		job, err := n.queue.Enqueue(ctx, jobqueue.JobTypeOrderNotification, payload, jobqueue.WithUniqueKey(orderPaidKey(orderID)))
		switch {
		case err == nil:
			log.Infof("[Notification] Enqueued job %s for order %s", job.ID, orderID)
			return nil
		case errors.Is(err, jobqueue.ErrDuplicateJob):
			log.Debugf("[Notification] Email for order %s is already queued", orderID)
			return nil
		}
		log.Errorf("[Notification] Failed to enqueue job for order %s: %v", orderID, err)
	}

	go func() {
		bg, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := n.SendOrderPaid(bg, orderID); err != nil {
			log.Errorf("[Notification] Background send for order %s failed: %v", orderID, err)
		}
	}()
	return nil
}

// SendOrderPaid emails the summary of a paid order once. Orders that are not
// paid or were already notified are skipped. The order is claimed before the
// send and released again if the send fails.
func (n *Notifier) SendOrderPaid(ctx context.Context, orderID string) error {
	order, err := n.orders.GetByID(orderID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", orderID, err)
	}
	if !order.IsPaid() {
		log.Warnf("[Notification] Order %s is %s, skipping email", orderID, order.Status)
		return nil
	}
	if order.NotifiedAt != nil {
		log.Debugf("[Notification] Order %s already notified at %s", orderID, order.NotifiedAt.Format(time.RFC3339))
		return nil
	}

	html, err := n.renderHTML(ctx, order)
	if err != nil {
		return err
	}

	to := n.recipient
	if to == "" {
		to = order.Email
	}
	msg := mail.Message{
		To:       to,
		Subject:  Subject(order),
		HTMLBody: string(html),
		TextBody: FormatOrderSummary(order),
	}

	claimed, err := n.orders.ClaimNotification(orderID, time.Now())
	if err != nil {
		return fmt.Errorf("claim order %s: %w", orderID, err)
	}
	if !claimed {
		log.Debugf("[Notification] Order %s claimed by another sender", orderID)
		return nil
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		if relErr := n.orders.ReleaseNotification(orderID); relErr != nil {
			log.Errorf("[Notification] Failed to release claim on order %s: %v", orderID, relErr)
		}
		return fmt.Errorf("send email for order %s: %w", orderID, err)
	}
	log.Infof("[Notification] Sent paid-order email for %s to %s", orderID, to)

	n.scheduleArchive(ctx, order)
	return nil
}

func (n *Notifier) scheduleArchive(ctx context.Context, order *models.Order) {
	if n.archiver == nil || n.queue == nil {
		return
	}
	payload := jobqueue.ArchiveReceipt{
		OrderID:   order.ID,
		ObjectKey: s3archive.ReceiptObjectKey(order.ID, order.UpdatedAt),
	}
	if _, err := n.queue.Enqueue(ctx, jobqueue.JobTypeArchiveReceipt, payload); err != nil {
		log.Errorf("[Notification] Failed to enqueue receipt archive for %s: %v", order.ID, err)
	}
}

// ArchiveReceipt stores the rendered receipt of an order under objectKey.
func (n *Notifier) ArchiveReceipt(ctx context.Context, orderID, objectKey string) error {
	if n.archiver == nil {
		return errors.New("receipt archive not configured")
	}
	order, err := n.orders.GetByID(orderID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", orderID, err)
	}
	html, err := n.renderHTML(ctx, order)
	if err != nil {
		return err
	}
	if err := n.archiver.PutReceipt(ctx, objectKey, html); err != nil {
		return fmt.Errorf("archive receipt %s: %w", objectKey, err)
	}
	log.Infof("[Notification] Archived receipt of %s at %s", orderID, objectKey)
	return nil
}

func (n *Notifier) renderHTML(ctx context.Context, order *models.Order) ([]byte, error) {
	var buf bytes.Buffer
	if err := email.OrderPaid(EmailData(order, n.ordersURL)).Render(ctx, &buf); err != nil {
		return nil, fmt.Errorf("render email for order %s: %w", order.ID, err)
	}
	return buf.Bytes(), nil
}

// SweepUnnotified re-enqueues paid orders whose email never went out.
func (n *Notifier) SweepUnnotified(ctx context.Context) error {
	orders, err := n.orders.ListPaidUnnotified(n.now().Add(-SweepAfter), sweepBatch)
	if err != nil {
		return err
	}
	for _, o := range orders {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := n.NotifyOrderPaid(ctx, o.ID, ""); err != nil {
			log.Errorf("[Notification] Sweep failed for order %s: %v", o.ID, err)
		}
	}
	if len(orders) > 0 {
		log.Infof("[Notification] Sweep re-scheduled %d paid orders", len(orders))
	}
	return nil
}

// HandleOrderNotification is the job handler for JobTypeOrderNotification.
func (n *Notifier) HandleOrderNotification(ctx context.Context, job *jobqueue.Job) error {
	var payload jobqueue.OrderNotification
	if err := job.Decode(&payload); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	if err := payload.Validate(); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return n.SendOrderPaid(ctx, payload.OrderID)
}

// HandleArchiveReceipt is the job handler for JobTypeArchiveReceipt.
func (n *Notifier) HandleArchiveReceipt(ctx context.Context, job *jobqueue.Job) error {
	var payload jobqueue.ArchiveReceipt
	if err := job.Decode(&payload); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	if err := payload.Validate(); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return n.ArchiveReceipt(ctx, payload.OrderID, payload.ObjectKey)
}

// Register wires the job handlers and the sweeper into the manager.
func (n *Notifier) Register(m *jobqueue.Manager) {
	q := m.GetQueue()
	q.RegisterHandler(jobqueue.JobTypeOrderNotification, n.HandleOrderNotification)
	q.RegisterHandler(jobqueue.JobTypeArchiveReceipt, n.HandleArchiveReceipt)
	m.AddPeriodicTask(jobqueue.PeriodicTask{
		Name:     "order notification sweeper",
		Interval: sweepInterval,
		Timeout:  2 * time.Minute,
		Run:      n.SweepUnnotified,
	})
}
