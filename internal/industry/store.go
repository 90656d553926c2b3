package industry

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/skillforge/backend/internal/models"
)

var ErrPostingNotFound = errors.New("posting not found")

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreatePosting(posterID int64, req models.CreatePostingRequest) (*models.Posting, error) {
	skillsJSON, err := json.Marshal(req.RequiredSkills)
	if err != nil {
		return nil, fmt.Errorf("marshal required skills: %w", err)
	}

	p := models.Posting{
		PosterID:       posterID,
		Type:           req.Type,
		Title:          req.Title,
		Company:        req.Company,
		Description:    req.Description,
		RequiredSkills: req.RequiredSkills,
		Open:           true,
	}
	err = s.db.QueryRow(
		`INSERT INTO postings (poster_id, type, title, company, description, required_skills, open)
		 VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		 RETURNING id, created_at`,
		posterID, req.Type, req.Title, req.Company, req.Description, string(skillsJSON),
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert posting: %w", err)
	}
	return &p, nil
}

func (s *Store) GetPosting(postingID int64) (*models.Posting, error) {
	var p models.Posting
	var skillsJSON []byte
	err := s.db.QueryRow(
		`SELECT p.id, p.poster_id, u.name, p.type, p.title, p.company,
		        p.description, p.required_skills, p.open, p.created_at
		 FROM postings p
		 JOIN users u ON u.id = p.poster_id
		 WHERE p.id = $1`,
		postingID,
	).Scan(&p.ID, &p.PosterID, &p.PosterName, &p.Type, &p.Title, &p.Company,
		&p.Description, &skillsJSON, &p.Open, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrPostingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get posting: %w", err)
	}
	if err := decodeRequiredSkills(&p, skillsJSON); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListPostings(postingType string, limit, offset int) ([]models.Posting, int, error) {
	var total int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM postings WHERE open AND ($1 = '' OR type = $1)`, postingType,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count postings: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT p.id, p.poster_id, u.name, p.type, p.title, p.company,
		        p.description, p.required_skills, p.open, p.created_at
		 FROM postings p
		 JOIN users u ON u.id = p.poster_id
		 WHERE p.open AND ($1 = '' OR p.type = $1)
		 ORDER BY p.created_at DESC
		 LIMIT $2 OFFSET $3`,
		postingType, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list postings: %w", err)
	}
	defer rows.Close()

	var postings []models.Posting
	for rows.Next() {
		var p models.Posting
		var skillsJSON []byte
		err := rows.Scan(&p.ID, &p.PosterID, &p.PosterName, &p.Type, &p.Title,
			&p.Company, &p.Description, &skillsJSON, &p.Open, &p.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("scan posting: %w", err)
		}
		if err := decodeRequiredSkills(&p, skillsJSON); err != nil {
			return nil, 0, err
		}
		postings = append(postings, p)
	}
	return postings, total, rows.Err()
}

func decodeRequiredSkills(p *models.Posting, skillsJSON []byte) error {
	if len(skillsJSON) > 0 {
		if err := json.Unmarshal(skillsJSON, &p.RequiredSkills); err != nil {
			return fmt.Errorf("decode required skills: %w", err)
		}
	}
	if p.RequiredSkills == nil {
		p.RequiredSkills = []string{}
	}
	return nil
}

func (s *Store) ClosePosting(postingID, posterID int64) error {
	res, err := s.db.Exec(
		`UPDATE postings SET open = FALSE WHERE id = $1 AND poster_id = $2`,
		postingID, posterID,
	)
	if err != nil {
		return fmt.Errorf("close posting: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrPostingNotFound
	}
	return nil
}

// GetSkillRecords aggregates every student's completed dungeon runs into one
// skill record per student: mastered skills are unioned, failure counters are
// summed. Runs still in progress contribute nothing.
func (s *Store) GetSkillRecords() ([]models.SkillRecord, error) {
	rows, err := s.db.Query(
		`SELECT r.user_id, u.name, r.mastered_skills, r.failed_skills, r.score
		 FROM dungeon_runs r
		 JOIN users u ON u.id = r.user_id
		 WHERE r.status = 'completed' AND u.role = 'student'`,
	)
	if err != nil {
		return nil, fmt.Errorf("query completed runs: %w", err)
	}
	defer rows.Close()

	byUser := make(map[int64]*models.SkillRecord)
	masteredSets := make(map[int64]map[string]bool)

	for rows.Next() {
		var userID int64
		var name string
		var masteredJSON, failedJSON []byte
		var score int
		if err := rows.Scan(&userID, &name, &masteredJSON, &failedJSON, &score); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}

		rec, ok := byUser[userID]
		if !ok {
			rec = &models.SkillRecord{
				UserID:       userID,
				DisplayName:  models.User{Name: name}.DisplayName(),
				FailedSkills: make(map[string]int),
			}
			byUser[userID] = rec
			masteredSets[userID] = make(map[string]bool)
		}

		var mastered []string
		if len(masteredJSON) > 0 {
			if err := json.Unmarshal(masteredJSON, &mastered); err != nil {
				return nil, fmt.Errorf("decode mastered skills: %w", err)
			}
		}
		for _, skill := range mastered {
			masteredSets[userID][skill] = true
		}

		var failed map[string]int
		if len(failedJSON) > 0 {
			if err := json.Unmarshal(failedJSON, &failed); err != nil {
				return nil, fmt.Errorf("decode failed skills: %w", err)
			}
		}
		for skill, n := range failed {
			rec.FailedSkills[skill] += n
		}

		rec.RunsCompleted++
		rec.TotalScore += score
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	records := make([]models.SkillRecord, 0, len(byUser))
	for userID, rec := range byUser {
		skills := make([]string, 0, len(masteredSets[userID]))
		for skill := range masteredSets[userID] {
			skills = append(skills, skill)
		}
		sort.Strings(skills)
		rec.MasteredSkills = skills
		records = append(records, *rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].UserID < records[j].UserID })
	return records, nil
}
