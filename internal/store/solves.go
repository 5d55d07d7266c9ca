package store

import (
	"database/sql"
	"encoding/json"

	_ "github.com/glebarez/go-sqlite"
	"github.com/nkapur/solvent/internal/solver"
)

// SolveStore persists one row per completed solve so past answers can
// be reviewed. The solve loop itself stays stateless; surfaces write
// here after the result is built.
type SolveStore struct {
	DB *sql.DB
}

// SolveRecord is one persisted solve outcome.
type SolveRecord struct {
	ID        int
	Source    string
	Question  string
	Answer    string
	Status    string
	Retries   int
	Checks    []solver.CheckItem
	CreatedAt string
}

func NewSolveStore(dbPath string) (*SolveStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Create tables if not exist
	query := `CREATE TABLE IF NOT EXISTS solves (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT,
		question TEXT,
		answer TEXT,
		status TEXT,
		retries INTEGER,
		checks TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err = db.Exec(query); err != nil {
		return nil, err
	}

	return &SolveStore{DB: db}, nil
}

func (s *SolveStore) RecordSolve(source, question string, res solver.SolveResult) error {
	checks, err := json.Marshal(res.Metadata.Checks)
	if err != nil {
		return err
	}
	query := `INSERT INTO solves (source, question, answer, status, retries, checks) VALUES (?, ?, ?, ?, ?, ?)`
	_, err = s.DB.Exec(query, source, question, res.Answer, string(res.Status), res.Metadata.Retries, string(checks))
	return err
}

// RecentSolves returns the newest solves first, up to limit.
func (s *SolveStore) RecentSolves(limit int) ([]SolveRecord, error) {
	query := `SELECT id, source, question, answer, status, retries, checks, timestamp
		FROM solves ORDER BY timestamp DESC, id DESC LIMIT ?`
	rows, err := s.DB.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []SolveRecord
	for rows.Next() {
		var r SolveRecord
		var checks string
		if err := rows.Scan(&r.ID, &r.Source, &r.Question, &r.Answer, &r.Status, &r.Retries, &checks, &r.CreatedAt); err != nil {
			return nil, err
		}
		if checks != "" {
			if err := json.Unmarshal([]byte(checks), &r.Checks); err != nil {
				return nil, err
			}
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SolveStore) Close() error {
	return s.DB.Close()
}
