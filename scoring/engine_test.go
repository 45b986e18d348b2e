package scoring

import (
	"fmt"
	"log"
	"strings"
	"testing"

	"scms/repository"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/google/uuid"
	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/assert"
)

var db *gorm.DB
var enumQueries = []string{
	`CREATE TYPE scms.user_role AS ENUM ('admin', 'internal')`,
	`CREATE TYPE scms.account_status AS ENUM ('active', 'inactive')`,
	`CREATE TYPE scms.letter_grade AS ENUM ('A', 'B', 'C', 'D', 'F')`,
	`CREATE TYPE scms.document_category AS ENUM ('certification', 'license', 'insurance', 'other')`,
}

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}

	// uses pool to try to connect to Docker
	err = pool.Client.Ping()
	if err != nil {
		log.Fatalf("Could not connect to Docker: %s", err)
	}

	// pulls an image, creates a container based on it and runs it
	resource, err := pool.Run("postgres", "17.2-alpine", []string{"POSTGRES_USER=postgres", "POSTGRES_PASSWORD=postgres", "DATABASE_NAME=postgres"})
	if err != nil {
		log.Fatalf("Could not start resource: %s", err)
	}
	resource.Expire(600) // Tell docker to hard kill the container in 10 minutes
	sqlInfo := fmt.Sprintf(
		"host=localhost port=%s user=postgres password=postgres dbname=postgres sslmode=disable search_path=scms",
		resource.GetPort("5432/tcp"))

	// exponential backoff-retry, because the application in the container might not be ready to accept connections yet
	if err := pool.Retry(func() error {
		var err error
		db, err = gorm.Open(postgres.Open(sqlInfo), &gorm.Config{
			NamingStrategy: schema.NamingStrategy{
				TablePrefix:   "scms.",
				SingularTable: false,
			},
			Logger: logger.Default.LogMode(logger.Silent),
		})

		if err != nil {
			return err
		}
		db.Exec(`CREATE SCHEMA IF NOT EXISTS scms`)
		for _, query := range enumQueries {
			x := db.Exec(query)
			if x.Error != nil {
				if strings.Contains(x.Error.Error(), "already exists") {
					continue
				}
			}
		}
		return db.AutoMigrate(
			&repository.User{},
			&repository.Subcontractor{},
			&repository.Document{},
			&repository.QuestionCategory{},
			&repository.Question{},
			&repository.Review{},
			&repository.ReviewResponse{},
			&repository.ReviewAttachment{},
			&repository.RatingRepairJob{},
		)

	}); err != nil {
		log.Fatalf("Could not connect to database: %s", err)
	}

	defer func() {
		if err := pool.Purge(resource); err != nil {
			log.Fatalf("Could not purge resource: %s", err)
		}
	}()
	m.Run()
}

func TearDown() {
	db.Exec("DELETE FROM scms.review_responses")
	db.Exec("DELETE FROM scms.review_attachments")
	db.Exec("DELETE FROM scms.reviews")
	db.Exec("DELETE FROM scms.rating_repair_jobs")
	db.Exec("DELETE FROM scms.questions")
	db.Exec("DELETE FROM scms.question_categories")
	db.Exec("DELETE FROM scms.subcontractors")
	db.Exec("DELETE FROM scms.users")
}

type fixture struct {
	subcontractor *repository.Subcontractor
	reviewer      *repository.User
	questions     []*repository.Question
}

// SetUp seeds a subcontractor with factory defaults, a reviewer and two
// questions with weights 2 and 1.
func SetUp(t *testing.T) *fixture {
	subcontractor := &repository.Subcontractor{
		Name:          "Acme Electrical",
		AverageRating: 0,
		LetterGrade:   repository.LetterGradeC,
		ReviewCount:   0,
	}
	assert.NoError(t, db.Create(subcontractor).Error)

	reviewer := &repository.User{
		Username:     "reviewer",
		Email:        "reviewer@example.com",
		PasswordHash: "x",
		Role:         repository.UserRoleInternal,
		Status:       repository.AccountStatusActive,
	}
	assert.NoError(t, db.Create(reviewer).Error)

	category := &repository.QuestionCategory{Name: "Quality"}
	assert.NoError(t, db.Create(category).Error)

	questions := []*repository.Question{
		{CategoryId: category.Id, Text: "Workmanship", Weight: 2},
		{CategoryId: category.Id, Text: "Timeliness", Weight: 1},
	}
	for _, question := range questions {
		assert.NoError(t, db.Create(question).Error)
	}

	return &fixture{subcontractor: subcontractor, reviewer: reviewer, questions: questions}
}

func (f *fixture) createReview(t *testing.T, scores ...int) *repository.Review {
	review := &repository.Review{
		SubcontractorId: f.subcontractor.Id,
		ReviewerId:      f.reviewer.Id,
		OverallRating:   3,
	}
	assert.NoError(t, db.Create(review).Error)
	for i, score := range scores {
		response := &repository.ReviewResponse{
			ReviewId:   review.Id,
			QuestionId: f.questions[i].Id,
			Score:      score,
		}
		assert.NoError(t, db.Create(response).Error)
	}
	return review
}

func storedAggregate(t *testing.T, subcontractorId uuid.UUID) *repository.RatingAggregate {
	aggregate, err := repository.NewSubcontractorRepository(db).GetAggregate(subcontractorId)
	assert.NoError(t, err)
	return aggregate
}

func TestRecalculateRatingPersistsWeightedAggregate(t *testing.T) {
	defer TearDown()
	f := SetUp(t)
	engine := NewEngine(db)

	// scores 5 (weight 2) and 2 (weight 1): (10 + 2) / 3 = 4.0
	f.createReview(t, 5, 2)

	aggregate := engine.RecalculateRating(f.subcontractor.Id)
	assert.NotNil(t, aggregate)
	assert.InDelta(t, 4.0, aggregate.AverageRating, 1e-9)
	assert.Equal(t, repository.LetterGradeB, aggregate.LetterGrade)
	assert.Equal(t, 1, aggregate.ReviewCount)

	stored := storedAggregate(t, f.subcontractor.Id)
	assert.InDelta(t, 4.0, stored.AverageRating, 1e-9)
	assert.Equal(t, repository.LetterGradeB, stored.LetterGrade)
	assert.Equal(t, 1, stored.ReviewCount)
}

func TestRecalculateRatingIsIdempotent(t *testing.T) {
	defer TearDown()
	f := SetUp(t)
	engine := NewEngine(db)

	f.createReview(t, 4, 4)

	first := engine.RecalculateRating(f.subcontractor.Id)
	second := engine.RecalculateRating(f.subcontractor.Id)
	assert.NotNil(t, first)
	assert.Equal(t, first, second)

	stored := storedAggregate(t, f.subcontractor.Id)
	assert.Equal(t, first.AverageRating, stored.AverageRating)
	assert.Equal(t, first.LetterGrade, stored.LetterGrade)
	assert.Equal(t, first.ReviewCount, stored.ReviewCount)
}

func TestRecalculateRatingKeepsDefaultsWithoutReviews(t *testing.T) {
	defer TearDown()
	f := SetUp(t)
	engine := NewEngine(db)

	aggregate := engine.RecalculateRating(f.subcontractor.Id)
	assert.Nil(t, aggregate)

	stored := storedAggregate(t, f.subcontractor.Id)
	assert.Equal(t, 0.0, stored.AverageRating)
	assert.Equal(t, repository.LetterGradeC, stored.LetterGrade)
	assert.Equal(t, 0, stored.ReviewCount)
}

func TestRecalculateRatingIgnoresSoftDeletedReviews(t *testing.T) {
	defer TearDown()
	f := SetUp(t)
	engine := NewEngine(db)

	f.createReview(t, 5, 5)
	deleted := f.createReview(t, 1, 1)
	assert.NoError(t, db.Delete(&repository.Review{}, "id = ?", deleted.Id).Error)

	aggregate := engine.RecalculateRating(f.subcontractor.Id)
	assert.NotNil(t, aggregate)
	assert.InDelta(t, 5.0, aggregate.AverageRating, 1e-9)
	assert.Equal(t, repository.LetterGradeA, aggregate.LetterGrade)
	assert.Equal(t, 1, aggregate.ReviewCount)
}

func TestRecalculateRatingTracksReviewLifecycle(t *testing.T) {
	defer TearDown()
	f := SetUp(t)
	engine := NewEngine(db)
	reviewRepository := repository.NewReviewRepository(db)

	f.createReview(t, 5, 5)
	aggregate := engine.RecalculateRating(f.subcontractor.Id)
	assert.InDelta(t, 5.0, aggregate.AverageRating, 1e-9)
	assert.Equal(t, repository.LetterGradeA, aggregate.LetterGrade)
	assert.Equal(t, 1, aggregate.ReviewCount)

	second := f.createReview(t, 3, 3)
	aggregate = engine.RecalculateRating(f.subcontractor.Id)
	assert.InDelta(t, 4.0, aggregate.AverageRating, 1e-9)
	assert.Equal(t, repository.LetterGradeB, aggregate.LetterGrade)
	assert.Equal(t, 2, aggregate.ReviewCount)

	assert.NoError(t, reviewRepository.Delete(second.Id))
	aggregate = engine.RecalculateRating(f.subcontractor.Id)
	assert.InDelta(t, 5.0, aggregate.AverageRating, 1e-9)
	assert.Equal(t, repository.LetterGradeA, aggregate.LetterGrade)
	assert.Equal(t, 1, aggregate.ReviewCount)
}

func TestRecalculateRatingEnqueuesRepairJobOnFailure(t *testing.T) {
	defer TearDown()
	f := SetUp(t)
	engine := NewEngine(db)

	// break the reviews relation so the recalculation fails
	assert.NoError(t, db.Exec("ALTER TABLE scms.reviews RENAME TO reviews_broken").Error)
	aggregate := engine.RecalculateRating(f.subcontractor.Id)
	assert.NoError(t, db.Exec("ALTER TABLE scms.reviews_broken RENAME TO reviews").Error)
	assert.Nil(t, aggregate)

	jobs, err := repository.NewRepairJobRepository(db).GetPendingJobs(10)
	assert.NoError(t, err)
	assert.Len(t, jobs, 1)
	assert.Equal(t, f.subcontractor.Id, jobs[0].SubcontractorId)
	assert.Equal(t, 0, jobs[0].Attempts)
	assert.NotEmpty(t, jobs[0].LastError)

	// the repair path succeeds once the cause is gone
	f.createReview(t, 4, 4)
	repaired, err := engine.Repair(f.subcontractor.Id)
	assert.NoError(t, err)
	assert.Equal(t, 1, repaired.ReviewCount)
}
