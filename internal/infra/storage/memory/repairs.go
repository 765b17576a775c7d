package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/SMC-ClinicBooking/internal/domain"
	"github.com/m04kA/SMC-ClinicBooking/internal/infra/storage/repair"
	"github.com/m04kA/SMC-ClinicBooking/pkg/ptr"
)

// Repairs очередь задач восстановления в памяти
type Repairs struct {
	s *Store
}

func (r *Repairs) Enqueue(ctx context.Context, task *domain.RepairTask) (*domain.RepairTask, error) {
	err := r.s.write(ctx, func() error {
		r.s.nextRepairID++
		now := r.s.now()
		task.ID = r.s.nextRepairID
		if task.NextAttemptAt.IsZero() {
			task.NextAttemptAt = now
		}
		task.CreatedAt = now
		task.UpdatedAt = now
		stored := *task
		r.s.repairs[task.ID] = &stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *Repairs) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*domain.RepairTask, error) {
	tasks := make([]*domain.RepairTask, 0)
	r.s.read(func() {
		for _, t := range r.s.repairs {
			if !t.Done && !t.NextAttemptAt.After(now) {
				copied := *t
				tasks = append(tasks, &copied)
			}
		}
	})
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].NextAttemptAt.Equal(tasks[j].NextAttemptAt) {
			return tasks[i].NextAttemptAt.Before(tasks[j].NextAttemptAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
	if limit > 0 && len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks, nil
}

func (r *Repairs) MarkDone(ctx context.Context, id int64) error {
	return r.s.write(ctx, func() error {
		t, ok := r.s.repairs[id]
		if !ok {
			return repair.ErrTaskNotFound
		}
		t.Done = true
		t.Attempts++
		t.LastError = nil
		t.UpdatedAt = r.s.now()
		return nil
	})
}

func (r *Repairs) MarkFailed(ctx context.Context, id int64, lastError string, nextAttemptAt time.Time, giveUp bool) error {
	return r.s.write(ctx, func() error {
		t, ok := r.s.repairs[id]
		if !ok {
			return repair.ErrTaskNotFound
		}
		t.Attempts++
		t.LastError = ptr.Ptr(lastError)
		t.NextAttemptAt = nextAttemptAt
		t.Done = giveUp
		t.UpdatedAt = r.s.now()
		return nil
	})
}

// PendingRepairs возвращает незавершенные задачи (для диагностики и тестов)
func (s *Store) PendingRepairs() []domain.RepairTask {
	result := make([]domain.RepairTask, 0)
	s.read(func() {
		for _, t := range s.repairs {
			if !t.Done {
				result = append(result, *t)
			}
		}
	})
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}
