package cron

import (
	"context"
	"log"
	"time"

	"scms/metrics"
	"scms/repository"
	"scms/scoring"

	"gorm.io/gorm"
)

const (
	repairInterval    = 1 * time.Minute
	repairMaxAttempts = 10
)

// ScoreRepairJob drains the rating repair queue: every interval it re-runs
// the scoring engine for each subcontractor whose last recalculation failed.
// Jobs that keep failing are retried until the attempt cap and then left in
// the table for inspection.
type ScoreRepairJob struct {
	repairJobRepository *repository.RepairJobRepository
	engine              *scoring.Engine
	cancel              context.CancelFunc
}

func NewScoreRepairJob(db *gorm.DB) *ScoreRepairJob {
	return &ScoreRepairJob{
		repairJobRepository: repository.NewRepairJobRepository(db),
		engine:              scoring.NewEngine(db),
	}
}

func (j *ScoreRepairJob) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	j.cancel = cancel
	go j.run(ctx)
}

func (j *ScoreRepairJob) Stop() {
	if j.cancel != nil {
		j.cancel()
	}
}

func (j *ScoreRepairJob) run(ctx context.Context) {
	ticker := time.NewTicker(repairInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.runOnce()
		}
	}
}

func (j *ScoreRepairJob) runOnce() {
	jobs, err := j.repairJobRepository.GetPendingJobs(repairMaxAttempts)
	if err != nil {
		log.Printf("failed to load rating repair jobs: %v", err)
		return
	}
	for _, job := range jobs {
		if _, err := j.engine.Repair(job.SubcontractorId); err != nil {
			log.Printf("rating repair for subcontractor %s failed: %v", job.SubcontractorId, err)
			metrics.RepairJobsProcessedCounter.WithLabelValues("failure").Inc()
			if err := j.repairJobRepository.MarkFailed(job, err); err != nil {
				log.Printf("failed to update rating repair job for subcontractor %s: %v", job.SubcontractorId, err)
			}
			continue
		}
		metrics.RepairJobsProcessedCounter.WithLabelValues("success").Inc()
		if err := j.repairJobRepository.Complete(job.SubcontractorId); err != nil {
			log.Printf("failed to complete rating repair job for subcontractor %s: %v", job.SubcontractorId, err)
		}
	}
}
