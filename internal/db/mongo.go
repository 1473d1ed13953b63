package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/saswatsam786/raise.info/internal/models"
)

const (
	collCompanies     = "companies"
	collScrapeHistory = "scrape_history"
	collSalaries      = "salaries"
	collDataSources   = "data_sources"
)

const opTimeout = 15 * time.Second

// Store wraps the MongoDB collections backing the scraper's
// bookkeeping: companies, scrape history, the salary dedup mirror and
// per-source state.
type Store struct {
	client        *mongo.Client
	companies     *mongo.Collection
	scrapeHistory *mongo.Collection
	salaries      *mongo.Collection
	dataSources   *mongo.Collection
}

func New(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("can't ping MongoDB: %w", err)
	}

	database = strings.TrimSpace(database)
	d := client.Database(database)

	s := &Store{
		client:        client,
		companies:     d.Collection(collCompanies),
		scrapeHistory: d.Collection(collScrapeHistory),
		salaries:      d.Collection(collSalaries),
		dataSources:   d.Collection(collDataSources),
	}

	if err := s.createIndexes(ctx); err != nil {
		return nil, fmt.Errorf("can't create indexes: %w", err)
	}

	return s, nil
}

func (s *Store) createIndexes(ctx context.Context) error {
	_, err := s.companies.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = s.scrapeHistory.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "company_name", Value: 1},
			{Key: "source_platform", Value: 1},
			{Key: "status", Value: 1},
			{Key: "completed_at", Value: -1},
		},
	})
	if err != nil {
		return err
	}

	// Dedup key: exact match on the 4-tuple, case sensitive.
	_, err = s.salaries.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "company_name", Value: 1},
			{Key: "designation", Value: 1},
			{Key: "location", Value: 1},
			{Key: "source_platform", Value: 1},
		},
	})
	return err
}

func (s *Store) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// GetOrCreateCompany returns the company row for name, inserting it on
// first reference. Companies are never deleted by this tool.
func (s *Store) GetOrCreateCompany(ctx context.Context, name string) (models.Company, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var company models.Company
	err := s.companies.FindOne(ctx, bson.M{"name": name}).Decode(&company)
	if err == nil {
		return company, nil
	}
	if err != mongo.ErrNoDocuments {
		return models.Company{}, err
	}

	company = models.Company{
		ID:          primitive.NewObjectID().Hex(),
		Name:        name,
		Slug:        strings.ReplaceAll(strings.ToLower(name), " ", "-"),
		DisplayName: name,
		IsActive:    true,
	}
	if _, err := s.companies.InsertOne(ctx, company); err != nil {
		return models.Company{}, err
	}
	return company, nil
}

// LatestSuccessfulAttempt returns the most recent successful attempt for
// the (company, source) pair, or nil when none exists.
func (s *Store) LatestSuccessfulAttempt(ctx context.Context, companyName, sourcePlatform string) (*models.ScrapeAttempt, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{
		"company_name":    companyName,
		"source_platform": sourcePlatform,
		"status":          models.StatusSuccess,
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "completed_at", Value: -1}})

	var attempt models.ScrapeAttempt
	err := s.scrapeHistory.FindOne(ctx, filter, opts).Decode(&attempt)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// StartAttempt records the beginning of a scrape and returns the
// attempt id used to complete it later.
func (s *Store) StartAttempt(ctx context.Context, company models.Company, sourcePlatform string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	attempt := models.ScrapeAttempt{
		ID:             primitive.NewObjectID().Hex(),
		CompanyID:      company.ID,
		CompanyName:    company.Name,
		SourcePlatform: sourcePlatform,
		Status:         models.StatusInProgress,
		StartedAt:      time.Now().UTC(),
	}
	if _, err := s.scrapeHistory.InsertOne(ctx, attempt); err != nil {
		return "", err
	}
	return attempt.ID, nil
}

// CompleteAttempt moves an attempt to its terminal status. Called
// exactly once per attempt; a crash before this leaves it in_progress.
func (s *Store) CompleteAttempt(ctx context.Context, attemptID string, status models.ScrapeStatus, recordsScraped int, errorMessage string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	update := bson.M{
		"status":          status,
		"records_scraped": recordsScraped,
		"completed_at":    time.Now().UTC(),
	}
	if errorMessage != "" {
		update["error_message"] = errorMessage
	}

	_, err := s.scrapeHistory.UpdateOne(ctx, bson.M{"_id": attemptID}, bson.M{"$set": update})
	return err
}

// SalaryExists checks the dedup mirror for an exact match on the
// 4-tuple. No fuzzy matching: designations differing by case or
// whitespace are distinct rows.
func (s *Store) SalaryExists(ctx context.Context, companyName, designation, location, sourcePlatform string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{
		"company_name":    companyName,
		"designation":     designation,
		"location":        location,
		"source_platform": sourcePlatform,
	}
	err := s.salaries.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// InsertSalary mirrors a record accepted by the write API so later runs
// can deduplicate against it.
func (s *Store) InsertSalary(ctx context.Context, record models.SalaryRecord) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	doc := bson.M{
		"_id": primitive.NewObjectID().Hex(),
	}
	data, err := bson.Marshal(record)
	if err != nil {
		return err
	}
	var fields bson.M
	if err := bson.Unmarshal(data, &fields); err != nil {
		return err
	}
	for k, v := range fields {
		doc[k] = v
	}

	_, err = s.salaries.InsertOne(ctx, doc)
	return err
}

// TouchDataSource bumps last_scraped_at for a source platform. Only
// called after a successful non-empty scrape.
func (s *Store) TouchDataSource(ctx context.Context, sourcePlatform string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := s.dataSources.UpdateOne(ctx,
		bson.M{"name": sourcePlatform},
		bson.M{"$set": bson.M{"last_scraped_at": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	return err
}

// DeleteOldSalaries removes mirrored records older than the given age
// for one (company, source) pair. Maintenance path only; the live flow
// never deletes.
func (s *Store) DeleteOldSalaries(ctx context.Context, companyName, sourcePlatform string, days int) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	res, err := s.salaries.DeleteMany(ctx, bson.M{
		"company_name":    companyName,
		"source_platform": sourcePlatform,
		"scraped_at":      bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
