package reminders

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/m04kA/SMC-WellnessBooking/internal/domain"
)

// Dispatcher по расписанию выбирает наступившие напоминания и отправляет их.
// Выборка, отправка и отметка статуса выполняются в одной транзакции,
// строки заблокированы до коммита.
type Dispatcher struct {
	repo         ReminderRepository
	notifier     Notifier
	txManager    TransactionManager
	batchSize    int
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// Stats итог одного прохода
type Stats struct {
	Sent   int
	Failed int
}

// NewDispatcher создает диспетчер напоминаний
func NewDispatcher(
	repo ReminderRepository,
	notifier Notifier,
	txManager TransactionManager,
	batchSize int,
	metrics Metrics,
	logger Logger,
) *Dispatcher {
	return &Dispatcher{
		repo:         repo,
		notifier:     notifier,
		txManager:    txManager,
		batchSize:    batchSize,
		metrics:      metrics,
		timeProvider: realTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (d *Dispatcher) WithTimeProvider(tp TimeProvider) *Dispatcher {
	d.timeProvider = tp
	return d
}

// Start регистрирует DispatchDue в cron и запускает планировщик.
// Если предыдущий проход еще не закончился, следующий пропускается.
func (d *Dispatcher) Start(ctx context.Context, schedule string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cron != nil {
		return ErrAlreadyStarted
	}

	logger := cronLogger{logger: d.logger}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	_, err := c.AddFunc(schedule, func() {
		if _, err := d.DispatchDue(ctx); err != nil {
			d.logger.Error("DispatchDue: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidSchedule, schedule, err)
	}

	c.Start()
	d.cron = c
	d.logger.Info("Reminder dispatcher started with schedule %q, batch size %d", schedule, d.batchSize)
	return nil
}

// Stop останавливает планировщик и ждет завершения текущего прохода
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	c := d.cron
	d.cron = nil
	d.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
	d.logger.Info("Reminder dispatcher stopped")
}

// DispatchDue отправляет до batchSize наступивших напоминаний.
// Ошибка доставки помечает напоминание failed и не прерывает проход.
func (d *Dispatcher) DispatchDue(ctx context.Context) (Stats, error) {
	var stats Stats
	now := d.timeProvider.Now()

	err := d.txManager.Do(ctx, func(txCtx context.Context) error {
		stats = Stats{}

		// 1. Выбираем наступившие pending напоминания
		due, err := d.repo.ListDue(txCtx, now, d.batchSize)
		if err != nil {
			return fmt.Errorf("%w: list due: %w", ErrDispatch, err)
		}

		// 2. Отправляем и фиксируем результат
		for _, r := range due {
			if sendErr := d.notifier.Send(txCtx, r); sendErr != nil {
				d.logger.Warn("DispatchDue: reminder id=%d (%s) failed: %v", r.ID, r.Type, sendErr)
				if err := d.repo.MarkFailed(txCtx, r.ID, sendErr.Error()); err != nil {
					return fmt.Errorf("%w: mark failed id=%d: %w", ErrDispatch, r.ID, err)
				}
				stats.Failed++
				continue
			}

			if err := d.repo.MarkSent(txCtx, r.ID, now); err != nil {
				return fmt.Errorf("%w: mark sent id=%d: %w", ErrDispatch, r.ID, err)
			}
			stats.Sent++
		}
		return nil
	})
	if err != nil {
		return Stats{}, err
	}

	// 3. Метрики только после коммита
	for i := 0; i < stats.Sent; i++ {
		d.metrics.IncReminder(string(domain.ReminderStatusSent))
	}
	for i := 0; i < stats.Failed; i++ {
		d.metrics.IncReminder(string(domain.ReminderStatusFailed))
	}

	if stats.Sent+stats.Failed > 0 {
		d.logger.Info("DispatchDue: sent=%d, failed=%d", stats.Sent, stats.Failed)
	}
	return stats, nil
}

// cronLogger адаптер Logger под интерфейс cron.Logger
type cronLogger struct {
	logger Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	// запуски и пропуски не логируем
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: %s: %v %v", msg, err, keysAndValues)
}
