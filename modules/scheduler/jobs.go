package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	domain "github.com/example/crm-backend/domain/crm"
	"golang.org/x/sync/errgroup"
)

// Job names accepted by Run.
const (
	JobHeartbeat      = "heartbeat"
	JobLowStock       = "low-stock"
	JobOrderReminders = "order-reminders"
)

const (
	heartbeatLayout = "02/01/2006-15:04:05"
	entryLayout     = "2006-01-02 15:04:05"
)

// StockPort is the part of the CRM API the jobs need.
type StockPort interface {
	UpdateLowStockProducts(ctx context.Context, threshold, increment int) ([]domain.Product, error)
	RecentOrders(ctx context.Context, days int) ([]domain.Order, error)
}

// Config configures job intervals, thresholds and log destinations.
// A zero interval disables the job's ticker.
type Config struct {
	HeartbeatInterval time.Duration
	LowStockInterval  time.Duration
	RemindersInterval time.Duration

	HeartbeatLog string
	LowStockLog  string
	RemindersLog string

	LowStockThreshold int
	RestockAmount     int
	ReminderDays      int
}

// DefaultConfig returns the production schedule.
func DefaultConfig() Config {
	return Config{
		HeartbeatInterval: 5 * time.Minute,
		LowStockInterval:  12 * time.Hour,
		RemindersInterval: 24 * time.Hour,
		HeartbeatLog:      "/tmp/crm_heartbeat_log.txt",
		LowStockLog:       "/tmp/low_stock_updates_log.txt",
		RemindersLog:      "/tmp/order_reminders_log.txt",
		LowStockThreshold: 10,
		RestockAmount:     10,
		ReminderDays:      7,
	}
}

// Jobs holds the periodic CRM jobs. Each job can also be run once by name.
type Jobs struct {
	cfg       Config
	port      StockPort
	heartbeat *LogFile
	lowStock  *LogFile
	reminders *LogFile
	now       func() time.Time
}

// NewJobs creates the job set. port may be nil when only the heartbeat runs.
func NewJobs(cfg Config, port StockPort) *Jobs {
	return &Jobs{
		cfg:       cfg,
		port:      port,
		heartbeat: NewLogFile(cfg.HeartbeatLog),
		lowStock:  NewLogFile(cfg.LowStockLog),
		reminders: NewLogFile(cfg.RemindersLog),
		now:       time.Now,
	}
}

// Names lists the known jobs.
func Names() []string {
	return []string{JobHeartbeat, JobLowStock, JobOrderReminders}
}

// Run executes the named job once.
func (j *Jobs) Run(ctx context.Context, name string) error {
	switch name {
	case JobHeartbeat:
		return j.Heartbeat(ctx)
	case JobLowStock:
		return j.LowStock(ctx)
	case JobOrderReminders:
		return j.OrderReminders(ctx)
	default:
		return fmt.Errorf("unknown job %q (known: %v)", name, Names())
	}
}

// LogPaths maps each job to the file it appends to.
func (j *Jobs) LogPaths() map[string]string {
	return map[string]string{
		JobHeartbeat:      j.heartbeat.Path(),
		JobLowStock:       j.lowStock.Path(),
		JobOrderReminders: j.reminders.Path(),
	}
}

// RunAll executes every job once, concurrently, and returns the first error.
func (j *Jobs) RunAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, name := range Names() {
		g.Go(func() error {
			return j.Run(ctx, name)
		})
	}
	return g.Wait()
}

// Heartbeat records that the process is alive.
func (j *Jobs) Heartbeat(_ context.Context) error {
	line := j.now().Format(heartbeatLayout) + " CRM is alive"
	return j.heartbeat.Append(line)
}

// LowStock restocks products below the threshold and logs each update.
func (j *Jobs) LowStock(ctx context.Context) error {
	if j.port == nil {
		return fmt.Errorf("low-stock job requires a CRM port")
	}
	products, err := j.port.UpdateLowStockProducts(ctx, j.cfg.LowStockThreshold, j.cfg.RestockAmount)
	if err != nil {
		return fmt.Errorf("low-stock update failed: %w", err)
	}

	stamp := j.now().Format(entryLayout)
	lines := make([]string, len(products))
	for i, p := range products {
		lines[i] = fmt.Sprintf("%s - Updated %s to stock %d", stamp, p.Name, p.Stock)
	}
	if err := j.lowStock.Append(lines...); err != nil {
		return err
	}
	log.Printf("[scheduler] Low-stock job restocked %d products", len(products))
	return nil
}

// OrderReminders logs a reminder for every recent order.
func (j *Jobs) OrderReminders(ctx context.Context) error {
	if j.port == nil {
		return fmt.Errorf("order-reminders job requires a CRM port")
	}
	orders, err := j.port.RecentOrders(ctx, j.cfg.ReminderDays)
	if err != nil {
		return fmt.Errorf("recent orders query failed: %w", err)
	}

	stamp := j.now().Format(entryLayout)
	lines := make([]string, 0, len(orders))
	for _, o := range orders {
		email := ""
		if o.Customer != nil {
			email = o.Customer.Email
		}
		lines = append(lines, fmt.Sprintf("%s - Reminder for Order %s to %s", stamp, o.ID, email))
	}
	if err := j.reminders.Append(lines...); err != nil {
		return err
	}
	log.Printf("[scheduler] Order reminders processed: %d", len(orders))
	return nil
}
