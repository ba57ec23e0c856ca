package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"keyword_bot/config"
	"keyword_bot/logger"
	"keyword_bot/models"
	"keyword_bot/repository"
)

// 将秒数转换为时间间隔
func secondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

// 验证小时和分钟是否有效
func validateHourMinute(hour, minute int) (int, int) {
	if hour < 0 || hour > 23 {
		logger.Warn("Invalid schedule hour, using 0", "hour", hour)
		hour = 0
	}
	if minute < 0 || minute > 59 {
		logger.Warn("Invalid schedule minute, using 0", "minute", minute)
		minute = 0
	}
	return hour, minute
}

// 计算下一个指定时间点
func getNextTimePoint(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if next.Before(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

// 任务类型
type TaskType int

const (
	TaskWatchRefresh TaskType = iota
	TaskHistoryCleanup
)

// 任务状态
type TaskStatus struct {
	LastRun     time.Time
	NextRun     time.Time
	IsRunning   bool
	Description string
}

// Recommender 调度器需要的推荐能力
type Recommender interface {
	Recommend(ctx context.Context, query string, maxResults int) (*models.Recommendation, error)
}

// 任务调度器
type Scheduler struct {
	cfg     *config.Config
	svc     Recommender
	queries []string
	tasks   map[TaskType]*TaskStatus
	mutex   sync.Mutex
	wg      sync.WaitGroup
	started bool          // set before run starts; never changed afterwards
	done    chan struct{} // closed when run returns
	// cleanup deletes runs older than the cutoff; defaults to the repository.
	cleanup func(ctx context.Context, cutoff time.Time) (int64, error)
}

// 创建新的调度器
func NewScheduler(cfg *config.Config, svc Recommender) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		svc:     svc,
		queries: cfg.Scheduler.Queries,
		tasks:   make(map[TaskType]*TaskStatus),
		done:    make(chan struct{}),
		cleanup: repository.DeleteRecommendationsBefore,
	}
}

// 启动调度器；ctx 结束时主循环退出
func Start(ctx context.Context, cfg *config.Config, svc Recommender) *Scheduler {
	scheduler := NewScheduler(cfg, svc)

	if !cfg.Scheduler.Enabled || len(scheduler.queries) == 0 {
		logger.Info("Scheduler disabled", "enabled", cfg.Scheduler.Enabled, "queries", len(scheduler.queries))
		return scheduler
	}

	// 初始化任务
	scheduler.initTasks(time.Now())

	// 启动主循环
	scheduler.started = true
	go scheduler.run(ctx)

	logger.Info("Scheduler started", "check_interval_sec", cfg.Scheduler.CheckIntervalSec, "queries", len(scheduler.queries))
	return scheduler
}

// refreshInterval debug 模式下的刷新间隔
func (s *Scheduler) refreshInterval() time.Duration {
	freqSeconds := s.cfg.Debug.RefreshFreqSec
	if freqSeconds <= 0 {
		freqSeconds = 1800
	}
	return secondsToDuration(freqSeconds)
}

// nextDaily 正常模式下一次运行时间
func (s *Scheduler) nextDaily(now time.Time) time.Time {
	hour, minute := validateHourMinute(s.cfg.Scheduler.DefaultHour, s.cfg.Scheduler.DefaultMinute)
	return getNextTimePoint(now, hour, minute)
}

// 初始化任务
func (s *Scheduler) initTasks(now time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.cfg.Debug.Enabled {
		// Debug模式：按配置的秒数间隔刷新
		interval := s.refreshInterval()
		s.tasks[TaskWatchRefresh] = &TaskStatus{
			LastRun:     now.Add(-interval),
			NextRun:     now.Add(interval),
			Description: fmt.Sprintf("watch-list refresh (debug: every %s)", interval),
		}
		logger.Info("Debug mode enabled", "frequency_seconds", int(interval.Seconds()), "queries", s.queries)
	} else {
		// 正常模式：每天在指定时间点刷新
		next := s.nextDaily(now)
		s.tasks[TaskWatchRefresh] = &TaskStatus{
			LastRun:     next.Add(-24 * time.Hour),
			NextRun:     next,
			Description: fmt.Sprintf("watch-list refresh (%s)", next.Format("15:04")),
		}
		logger.Info("Normal mode", "schedule_time", next.Format("15:04"), "queries", s.queries)
	}

	if s.cfg.Scheduler.RetentionDays > 0 {
		next := s.nextDaily(now)
		s.tasks[TaskHistoryCleanup] = &TaskStatus{
			LastRun:     next.Add(-24 * time.Hour),
			NextRun:     next,
			Description: fmt.Sprintf("history cleanup (keep %d days)", s.cfg.Scheduler.RetentionDays),
		}
	}

	logger.Info("Scheduled tasks initialized", "task_count", len(s.tasks))
}

// 主循环
func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	checkInterval := s.cfg.Scheduler.CheckIntervalSec
	if checkInterval <= 0 {
		checkInterval = 60 // 默认值
	}
	ticker := time.NewTicker(secondsToDuration(checkInterval))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Scheduler stopping", "reason", ctx.Err())
			s.wg.Wait()
			return
		case now := <-ticker.C:
			s.checkTasks(ctx, now)
		}
	}
}

// 检查任务
func (s *Scheduler) checkTasks(ctx context.Context, now time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for taskType, status := range s.tasks {
		// 如果任务正在运行，跳过
		if status.IsRunning {
			continue
		}

		// 如果任务的NextRun为零值，跳过（表示不需要定期调度）
		if status.NextRun.IsZero() {
			continue
		}

		// 如果到达或超过下次运行时间，执行任务
		if !now.Before(status.NextRun) {
			status.IsRunning = true
			s.wg.Add(1)
			go func(t TaskType) {
				defer s.wg.Done()
				s.runTask(ctx, t, now)
			}(taskType)
		}
	}
}

// 运行任务
func (s *Scheduler) runTask(ctx context.Context, taskType TaskType, now time.Time) {
	defer func() {
		s.mutex.Lock()
		defer s.mutex.Unlock()

		status := s.tasks[taskType]
		status.IsRunning = false
		status.LastRun = now

		// 更新下次运行时间
		if taskType == TaskWatchRefresh && s.cfg.Debug.Enabled {
			status.NextRun = now.Add(s.refreshInterval())
		} else {
			status.NextRun = s.nextDaily(now.Add(time.Minute))
		}

		logger.Info("Task finished", "task", status.Description, "next_run", status.NextRun.Format("2006-01-02 15:04:05"))
	}()

	switch taskType {
	case TaskWatchRefresh:
		s.Refresh(ctx)
	case TaskHistoryCleanup:
		cutoff := now.AddDate(0, 0, -s.cfg.Scheduler.RetentionDays)
		n, err := s.cleanup(ctx, cutoff)
		if err != nil {
			logger.Error("History cleanup failed", "error", err)
			return
		}
		logger.Info("History cleanup finished", "deleted", n, "cutoff", cutoff.Format("2006-01-02"))
	}
}

// Refresh 依次为监控列表中的每个检索词运行一次推荐，返回成功次数
func (s *Scheduler) Refresh(ctx context.Context) int {
	logger.Info("Watch-list refresh started", "queries", len(s.queries))
	ok := 0
	for i, q := range s.queries {
		if ctx.Err() != nil {
			logger.Warn("Watch-list refresh cancelled", "done", i, "total", len(s.queries))
			break
		}
		rec, err := s.svc.Recommend(ctx, q, 0)
		if err != nil {
			logger.Error("Watch-list refresh failed", "query", q, "error", err)
			continue
		}
		ok++
		logger.Info("Watch-list query refreshed", "query", q, "run_id", rec.RunID, "results", len(rec.Keywords))
	}
	logger.Info("Watch-list refresh finished", "success", ok, "failed", len(s.queries)-ok)
	return ok
}

// Status 返回任务状态快照
func (s *Scheduler) Status() map[TaskType]TaskStatus {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	out := make(map[TaskType]TaskStatus, len(s.tasks))
	for t, st := range s.tasks {
		out[t] = *st
	}
	return out
}

// Wait 等待主循环退出（若已启动）以及正在运行的任务结束
func (s *Scheduler) Wait() {
	if s.started {
		<-s.done
	}
	s.wg.Wait()
}
