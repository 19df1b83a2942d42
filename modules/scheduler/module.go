package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/example/crm-backend/modules/crm"
	"github.com/go-monolith/mono"
)

// SchedulerModule runs the CRM jobs on tickers.
type SchedulerModule struct {
	cfg  Config
	port StockPort
	jobs *Jobs

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
	mu       sync.RWMutex
	runs     map[string]int
	lastErr  map[string]string
}

// Compile-time interface checks.
var _ mono.Module = (*SchedulerModule)(nil)
var _ mono.DependentModule = (*SchedulerModule)(nil)
var _ mono.HealthCheckableModule = (*SchedulerModule)(nil)

// NewModule creates a new SchedulerModule.
func NewModule(cfg Config) *SchedulerModule {
	return &SchedulerModule{
		cfg:     cfg,
		runs:    make(map[string]int),
		lastErr: make(map[string]string),
	}
}

// Name returns the module name.
func (m *SchedulerModule) Name() string {
	return "scheduler"
}

// Dependencies returns the list of module dependencies.
func (m *SchedulerModule) Dependencies() []string {
	return []string{"crm"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *SchedulerModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "crm" {
		m.port = crm.NewCRMAdapter(container)
	}
}

// Start launches one ticker goroutine per enabled job.
func (m *SchedulerModule) Start(_ context.Context) error {
	if m.port == nil {
		return fmt.Errorf("crm port dependency not set")
	}

	m.jobs = NewJobs(m.cfg, m.port)
	m.stopChan = make(chan struct{})

	schedule := map[string]time.Duration{
		JobHeartbeat:      m.cfg.HeartbeatInterval,
		JobLowStock:       m.cfg.LowStockInterval,
		JobOrderReminders: m.cfg.RemindersInterval,
	}
	for _, name := range Names() {
		interval := schedule[name]
		if interval <= 0 {
			log.Printf("[scheduler] Job %s disabled", name)
			continue
		}
		m.wg.Add(1)
		go m.run(name, interval)
		log.Printf("[scheduler] Job %s scheduled every %s", name, interval)
	}

	log.Println("[scheduler] Module started (depends on: crm)")
	return nil
}

func (m *SchedulerModule) run(name string, interval time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.runOnce(name)
		}
	}
}

// runOnce executes a job with a context that is cancelled on Stop.
func (m *SchedulerModule) runOnce(name string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-m.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	err := m.jobs.Run(ctx, name)

	m.mu.Lock()
	m.runs[name]++
	if err != nil {
		m.lastErr[name] = err.Error()
	} else {
		delete(m.lastErr, name)
	}
	m.mu.Unlock()

	if err != nil {
		log.Printf("[scheduler] Job %s failed: %v", name, err)
	}
}

// Stop signals all job goroutines and waits for them to finish.
func (m *SchedulerModule) Stop(ctx context.Context) error {
	if m.stopChan == nil {
		return nil
	}

	log.Println("[scheduler] Stopping jobs...")
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[scheduler] Jobs stopped gracefully")
	case <-ctx.Done():
		log.Println("[scheduler] Shutdown timeout exceeded")
		return ctx.Err()
	}
	return nil
}

// Health reports run counts and the last error of each job.
func (m *SchedulerModule) Health(_ context.Context) mono.HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := make(map[string]int, len(m.runs))
	for k, v := range m.runs {
		runs[k] = v
	}
	failing := make(map[string]string, len(m.lastErr))
	for k, v := range m.lastErr {
		failing[k] = v
	}

	status := mono.HealthStatus{
		Healthy: m.jobs != nil && len(failing) == 0,
		Message: "operational",
		Details: map[string]any{
			"runs":    runs,
			"failing": failing,
		},
	}
	if m.jobs == nil {
		status.Message = "not started"
		return status
	}
	status.Details["logs"] = m.jobs.LogPaths()
	if len(failing) > 0 {
		status.Message = fmt.Sprintf("%d jobs failing", len(failing))
	}
	return status
}
