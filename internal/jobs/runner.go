package jobs

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	cron "github.com/robfig/cron"
	"github.com/sirupsen/logrus"
)

type Job interface {
	Run()
}

// CronJob is a Job with its own schedule expression.
type CronJob interface {
	Schedule() string
	Job
}

// TaskExecutor runs maintenance jobs inside a cron. A job that is still
// running when its next tick fires is skipped, not run concurrently.
type TaskExecutor struct {
	cron     *cron.Cron
	jobs     []Job
	cronJobs []CronJob
	running  mapset.Set[Job]
	mu       sync.Mutex
}

func NewTaskExecutor(jobs []Job, cronJobs []CronJob) *TaskExecutor {
	return &TaskExecutor{
		cron:     cron.New(),
		jobs:     jobs,
		cronJobs: cronJobs,
		running:  mapset.NewSet[Job](),
	}
}

// Run schedules the jobs in the cron. Plain jobs tick every second;
// cron jobs use their own schedule.
func (t *TaskExecutor) Run() {
	for _, job := range t.cronJobs {
		if err := t.cron.AddFunc(job.Schedule(), t.guarded(job)); err != nil {
			logrus.Errorf("failed to add task to cron: %v", err)
			panic(err)
		}
	}

	for _, job := range t.jobs {
		if err := t.cron.AddFunc("@every 1s", t.guarded(job)); err != nil {
			logrus.Errorf("failed to add task to cron: %v", err)
			panic(err)
		}
	}

	t.cron.Start()
}

func (t *TaskExecutor) guarded(job Job) func() {
	return func() {
		t.mu.Lock()
		if t.running.Contains(job) {
			t.mu.Unlock()
			logrus.Warn("task is already running")
			return
		}
		t.running.Add(job)
		t.mu.Unlock()

		defer func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			t.running.Remove(job)
		}()

		job.Run()
	}
}

func (t *TaskExecutor) Stop() {
	logrus.Infof("stopping all tasks")
	t.cron.Stop()
}
