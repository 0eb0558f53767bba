package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/intelligrit/histmap/internal/model"
)

// Store manages all data persistence via DuckDB. It holds four independent
// keyed namespaces: landmarks, historical texts (by landmark id), generated
// answers (by landmark id + question + year) and append-only evaluation
// results. No business logic lives here.
type Store struct {
	DB      *sql.DB
	DataDir string
}

// New opens (or creates) a DuckDB database in the given data directory.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "histmap.duckdb")
	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening duckdb: %w", err)
	}

	s := &Store{DB: db, DataDir: dataDir}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) migrate() error {
	seqs := []string{
		"CREATE SEQUENCE IF NOT EXISTS generated_answers_seq",
		"CREATE SEQUENCE IF NOT EXISTS evaluation_results_seq",
	}
	for _, seq := range seqs {
		if _, err := s.DB.Exec(seq); err != nil {
			return fmt.Errorf("creating sequence: %w", err)
		}
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS landmarks (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			lat DOUBLE NOT NULL,
			lon DOUBLE NOT NULL,
			distance_km DOUBLE NOT NULL,
			kind TEXT NOT NULL,
			upstream_id BIGINT NOT NULL,
			tags TEXT,
			wikidata_id TEXT,
			wikipedia TEXT,
			retrieved_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS historical_texts (
			landmark_id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			body TEXT,
			source TEXT,
			source_url TEXT,
			error TEXT,
			retrieved_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS generated_answers (
			id INTEGER PRIMARY KEY DEFAULT nextval('generated_answers_seq'),
			landmark_id TEXT NOT NULL,
			question TEXT NOT NULL,
			year INTEGER,
			answer TEXT,
			status TEXT NOT NULL,
			error TEXT,
			model TEXT,
			temperature DOUBLE,
			generated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS evaluation_results (
			id INTEGER PRIMARY KEY DEFAULT nextval('evaluation_results_seq'),
			test_name TEXT NOT NULL,
			category TEXT NOT NULL,
			landmark_id TEXT,
			question TEXT,
			passed BOOLEAN NOT NULL,
			error TEXT,
			ts TEXT NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.DB.Exec(stmt); err != nil {
			return fmt.Errorf("executing migration %q: %w", stmt[:40], err)
		}
	}

	return nil
}

// PutLandmarks inserts or replaces a batch of landmarks. Discovery replaces
// result sets wholesale, so repeat ids from a later query overwrite.
func (s *Store) PutLandmarks(landmarks []model.Landmark, retrievedAt string) error {
	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO landmarks
		(id, name, lat, lon, distance_km, kind, upstream_id, tags, wikidata_id, wikipedia, retrieved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, lm := range landmarks {
		tags, err := json.Marshal(lm.Tags)
		if err != nil {
			return fmt.Errorf("encoding tags for %s: %w", lm.ID, err)
		}
		if _, err := stmt.Exec(lm.ID, lm.Name, lm.Lat, lm.Lon, lm.DistanceKm, string(lm.Kind),
			lm.UpstreamID, string(tags), lm.WikidataID, lm.WikipediaRef, retrievedAt); err != nil {
			return fmt.Errorf("inserting landmark %s: %w", lm.ID, err)
		}
	}

	return tx.Commit()
}

// GetLandmark loads one landmark by id, or nil when absent.
func (s *Store) GetLandmark(id string) (*model.Landmark, error) {
	row := s.DB.QueryRow(`SELECT id, name, lat, lon, distance_km, kind, upstream_id, tags, wikidata_id, wikipedia
		FROM landmarks WHERE id = ?`, id)

	lm, err := scanLandmark(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return lm, err
}

// ListLandmarks loads all stored landmarks, nearest first.
func (s *Store) ListLandmarks() ([]model.Landmark, error) {
	rows, err := s.DB.Query(`SELECT id, name, lat, lon, distance_km, kind, upstream_id, tags, wikidata_id, wikipedia
		FROM landmarks ORDER BY distance_km, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var landmarks []model.Landmark
	for rows.Next() {
		lm, err := scanLandmark(rows)
		if err != nil {
			return nil, err
		}
		landmarks = append(landmarks, *lm)
	}
	return landmarks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLandmark(row rowScanner) (*model.Landmark, error) {
	var lm model.Landmark
	var kind string
	var tags, wikidata, wikipedia sql.NullString
	if err := row.Scan(&lm.ID, &lm.Name, &lm.Lat, &lm.Lon, &lm.DistanceKm, &kind,
		&lm.UpstreamID, &tags, &wikidata, &wikipedia); err != nil {
		return nil, err
	}
	lm.Kind = model.GeometryKind(kind)
	lm.WikidataID = wikidata.String
	lm.WikipediaRef = wikipedia.String

	lm.Tags = model.NewTagMap()
	if tags.Valid && tags.String != "" && tags.String != "null" {
		if err := json.Unmarshal([]byte(tags.String), lm.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags for %s: %w", lm.ID, err)
		}
	}
	return &lm, nil
}

// PutHistoricalText inserts or replaces the text record for a landmark.
// Records are written whole; a later resolution overwrites, never patches.
func (s *Store) PutHistoricalText(rec *model.HistoricalTextRecord) error {
	_, err := s.DB.Exec(`INSERT OR REPLACE INTO historical_texts
		(landmark_id, status, body, source, source_url, error, retrieved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.LandmarkID, string(rec.Status), rec.Text, rec.Source, rec.SourceURL, rec.Error, rec.RetrievedAt)
	return err
}

// GetHistoricalText loads the text record for a landmark, or nil when the
// landmark has never been resolved.
func (s *Store) GetHistoricalText(landmarkID string) (*model.HistoricalTextRecord, error) {
	var rec model.HistoricalTextRecord
	var status string
	err := s.DB.QueryRow(`SELECT landmark_id, status, body, source, source_url, error, retrieved_at
		FROM historical_texts WHERE landmark_id = ?`, landmarkID).
		Scan(&rec.LandmarkID, &status, &rec.Text, &rec.Source, &rec.SourceURL, &rec.Error, &rec.RetrievedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec.Status = model.Status(status)
	return &rec, nil
}

// PutAnswer stores one generated answer, replacing any previous entry for
// the same (landmark, question, year) key. Last write wins on a racing key.
func (s *Store) PutAnswer(ans *model.GeneratedAnswer) error {
	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM generated_answers
		WHERE landmark_id = ? AND question = ? AND year IS NOT DISTINCT FROM ?`,
		ans.LandmarkID, ans.Question, yearArg(ans.Year)); err != nil {
		return err
	}

	if _, err := tx.Exec(`INSERT INTO generated_answers
		(landmark_id, question, year, answer, status, error, model, temperature, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ans.LandmarkID, ans.Question, yearArg(ans.Year), ans.Answer, string(ans.Status),
		ans.Error, ans.Model, ans.Temperature, ans.GeneratedAt); err != nil {
		return err
	}

	return tx.Commit()
}

// GetAnswer loads the cached answer for a key, or nil on a miss. The
// question matches exactly; a nil year only matches entries stored without
// a year.
func (s *Store) GetAnswer(landmarkID, question string, year *int) (*model.GeneratedAnswer, error) {
	var ans model.GeneratedAnswer
	var status string
	var yr sql.NullInt64
	err := s.DB.QueryRow(`SELECT landmark_id, question, year, answer, status, error, model, temperature, generated_at
		FROM generated_answers
		WHERE landmark_id = ? AND question = ? AND year IS NOT DISTINCT FROM ?`,
		landmarkID, question, yearArg(year)).
		Scan(&ans.LandmarkID, &ans.Question, &yr, &ans.Answer, &status,
			&ans.Error, &ans.Model, &ans.Temperature, &ans.GeneratedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ans.Status = model.Status(status)
	if yr.Valid {
		y := int(yr.Int64)
		ans.Year = &y
	}
	return &ans, nil
}

func yearArg(year *int) any {
	if year == nil {
		return nil
	}
	return *year
}

// AppendEvaluation appends one evaluation record. Evaluation results are
// never updated or deleted.
func (s *Store) AppendEvaluation(rec *model.EvaluationRecord) error {
	_, err := s.DB.Exec(`INSERT INTO evaluation_results
		(test_name, category, landmark_id, question, passed, error, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.TestName, rec.Category, rec.LandmarkID, rec.Question, rec.Passed, rec.Error, rec.Timestamp)
	return err
}

// ListEvaluations loads evaluation records, optionally filtered by test
// name, oldest first.
func (s *Store) ListEvaluations(testName string) ([]model.EvaluationRecord, error) {
	query := `SELECT test_name, category, landmark_id, question, passed, error, ts
		FROM evaluation_results`
	args := []any{}
	if testName != "" {
		query += " WHERE test_name = ?"
		args = append(args, testName)
	}
	query += " ORDER BY id"

	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.EvaluationRecord
	for rows.Next() {
		var rec model.EvaluationRecord
		var landmarkID, question, errDetail sql.NullString
		if err := rows.Scan(&rec.TestName, &rec.Category, &landmarkID, &question,
			&rec.Passed, &errDetail, &rec.Timestamp); err != nil {
			return nil, err
		}
		rec.LandmarkID = landmarkID.String
		rec.Question = question.String
		rec.Error = errDetail.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// LandmarkCount returns the number of stored landmarks.
func (s *Store) LandmarkCount() int {
	return s.count("landmarks")
}

// TextCount returns the number of cached historical text records.
func (s *Store) TextCount() int {
	return s.count("historical_texts")
}

// AnswerCount returns the number of cached generated answers.
func (s *Store) AnswerCount() int {
	return s.count("generated_answers")
}

// EvaluationCount returns the number of evaluation records.
func (s *Store) EvaluationCount() int {
	return s.count("evaluation_results")
}

func (s *Store) count(table string) int {
	var n int
	s.DB.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)
	return n
}
