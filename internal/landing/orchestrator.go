package landing

import (
	"context"
	"log/slog"
	"sync"
)

// Runner - секция страницы, которую можно запустить один раз.
// Run должен сам переводить секцию в конечное состояние при любой ошибке и не паниковать;
// recover в оркестраторе только не даёт панике уронить процесс.
type Runner interface {
	Name() string
	Run(ctx context.Context)
}

// Orchestrator запускает все секции одновременно и независимо друг от друга.
// Итоги секций не агрегируются: каждая сама отражает свой результат в своей области страницы.
type Orchestrator struct {
	sections []Runner
	log      *slog.Logger
}

// NewOrchestrator создает оркестратор для переданных секций.
func NewOrchestrator(log *slog.Logger, sections ...Runner) *Orchestrator {
	return &Orchestrator{
		sections: sections,
		log:      log.With(slog.String("component", "orchestrator")),
	}
}

// Load отслеживает завершение запущенных секций.
type Load struct {
	done chan struct{}
}

// Wait блокируется, пока все секции не перейдут в конечное состояние.
func (l *Load) Wait() { <-l.done }

// Done закрывается, когда все секции завершились.
func (l *Load) Done() <-chan struct{} { return l.done }

// Start запускает каждую секцию в своей горутине и сразу возвращает управление.
func (o *Orchestrator) Start(ctx context.Context) *Load {
	load := &Load{done: make(chan struct{})}
	var wg sync.WaitGroup
	for _, s := range o.sections {
		wg.Add(1)
		go func(s Runner) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					o.log.Error("Section panicked", slog.String("section", s.Name()), slog.Any("panic", r))
				}
			}()
			s.Run(ctx)
		}(s)
	}
	o.log.Debug("Sections started", slog.Int("count", len(o.sections)))
	go func() {
		wg.Wait()
		close(load.done)
	}()
	return load
}
