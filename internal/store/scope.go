package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/FermatTheorem/NoShitProxy/internal/models"
)

// GetScope loads the persisted scope config, or the match-everything default
// when none has been saved yet.
func (s *FlowStore) GetScope() (models.ScopeConfig, error) {
	row := s.db.QueryRow("SELECT include_json, exclude_json, drop_out_of_scope FROM scope WHERE id = 1")

	var includeJSON, excludeJSON string
	var drop bool
	if err := row.Scan(&includeJSON, &excludeJSON, &drop); err == sql.ErrNoRows {
		return models.DefaultScope(), nil
	} else if err != nil {
		return models.ScopeConfig{}, fmt.Errorf("error loading scope: %v", err)
	}

	cfg := models.ScopeConfig{Drop: drop}
	if err := json.Unmarshal([]byte(includeJSON), &cfg.Include); err != nil {
		return models.DefaultScope(), nil
	}
	if err := json.Unmarshal([]byte(excludeJSON), &cfg.Exclude); err != nil {
		cfg.Exclude = []string{}
	}
	if len(cfg.Include) == 0 {
		cfg.Include = []string{"*"}
	}
	return cfg, nil
}

// SetScope persists the scope config as the single current version.
func (s *FlowStore) SetScope(cfg models.ScopeConfig) error {
	includeJSON, err := json.Marshal(cfg.Include)
	if err != nil {
		return fmt.Errorf("error encoding include patterns: %v", err)
	}
	excludeJSON, err := json.Marshal(cfg.Exclude)
	if err != nil {
		return fmt.Errorf("error encoding exclude patterns: %v", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO scope (id, include_json, exclude_json, drop_out_of_scope)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			include_json=excluded.include_json,
			exclude_json=excluded.exclude_json,
			drop_out_of_scope=excluded.drop_out_of_scope`,
		string(includeJSON), string(excludeJSON), cfg.Drop,
	)
	if err != nil {
		return fmt.Errorf("error saving scope: %v", err)
	}
	return nil
}
