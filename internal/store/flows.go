package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/FermatTheorem/NoShitProxy/internal/constants"
	"github.com/FermatTheorem/NoShitProxy/internal/models"
)

// FlowStore is the durable, queryable table of captured flows. The capture
// bridge is its only appender; reads run concurrently with appends (WAL).
type FlowStore struct {
	db      *sql.DB
	maxRows int
}

func NewFlowStore(db *sql.DB, maxRows int) *FlowStore {
	return &FlowStore{db: db, maxRows: maxRows}
}

// Append inserts a fully-formed flow and returns its seq. Re-reports of the
// same id upsert in place and keep the original seq, so duplicate engine
// deliveries never produce duplicate rows. Seq is strictly increasing and
// never reused, even across Clear (AUTOINCREMENT keeps counting past the
// historical maximum).
func (s *FlowStore) Append(flow *models.Flow, respBodyB64, respBodyText *string) (int64, error) {
	reqHeaders, err := json.Marshal(flow.ReqHeaders)
	if err != nil {
		return 0, fmt.Errorf("error encoding request headers: %v", err)
	}
	respHeaders, err := json.Marshal(flow.RespHeaders)
	if err != nil {
		return 0, fmt.Errorf("error encoding response headers: %v", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO flows (
			id, ts, method, url, host, path, status, duration,
			req_headers_json, resp_headers_json,
			req_size, resp_size, req_body_b64,
			req_preview, resp_preview,
			resp_body_b64, resp_body_text
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ts=excluded.ts,
			method=excluded.method,
			url=excluded.url,
			host=excluded.host,
			path=excluded.path,
			status=excluded.status,
			duration=excluded.duration,
			req_headers_json=excluded.req_headers_json,
			resp_headers_json=excluded.resp_headers_json,
			req_size=excluded.req_size,
			resp_size=excluded.resp_size,
			req_body_b64=excluded.req_body_b64,
			req_preview=excluded.req_preview,
			resp_preview=excluded.resp_preview,
			resp_body_b64=excluded.resp_body_b64,
			resp_body_text=excluded.resp_body_text`,
		flow.ID, flow.TS, flow.Method, flow.URL, flow.Host, flow.Path,
		flow.Status, flow.Duration,
		string(reqHeaders), string(respHeaders),
		flow.ReqSize, flow.RespSize, flow.ReqBodyB64,
		flow.ReqPreview, flow.RespPreview,
		respBodyB64, respBodyText,
	)
	if err != nil {
		return 0, fmt.Errorf("error storing flow: %v", err)
	}

	var seq int64
	if err := s.db.QueryRow("SELECT seq FROM flows WHERE id = ?", flow.ID).Scan(&seq); err != nil {
		return 0, fmt.Errorf("error reading seq: %v", err)
	}

	if err := s.pruneIfNeeded(); err != nil {
		// Pruning is housekeeping; the append itself succeeded.
		log.Printf("Warning: prune failed: %v", err)
	}

	return seq, nil
}

func (s *FlowStore) pruneIfNeeded() error {
	if s.maxRows <= 0 {
		return nil
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM flows").Scan(&total); err != nil {
		return err
	}
	if total <= s.maxRows {
		return nil
	}

	_, err := s.db.Exec(`
		DELETE FROM flows
		WHERE seq IN (
			SELECT seq FROM flows
			ORDER BY ts ASC
			LIMIT ?
		)`, total-s.maxRows)
	return err
}

// List returns flow summaries matching the operator's WHERE text, sorted and
// paginated. Bad filter text comes back as InvalidFilterError; an offset past
// the end yields an empty slice.
func (s *FlowStore) List(q models.FlowQuery) ([]models.FlowSummary, error) {
	if err := validateWhere(q.Where); err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit < 1 {
		limit = constants.DefaultListLimit
	}
	if limit > constants.MaxListLimit {
		limit = constants.MaxListLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
		SELECT seq, id, ts, method, url, host, path, status, duration,
		       req_size, resp_size
		FROM flows
		WHERE %s
		%s
		LIMIT ? OFFSET ?`, combinedWhere(q.Where, q.Extra), orderBySQL(q.Sort, q.Order))

	stmt, err := s.db.Prepare(query)
	if err != nil {
		return nil, &InvalidFilterError{Detail: err.Error()}
	}
	defer stmt.Close()

	rows, err := stmt.Query(limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error executing flow query: %v", err)
	}
	defer rows.Close()

	flows := []models.FlowSummary{}
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning flow row: %v", err)
		}
		flows = append(flows, summary)
	}
	return flows, rows.Err()
}

// Count returns the total rows matching the WHERE text, pagination aside.
func (s *FlowStore) Count(where, extra string) (int64, error) {
	if err := validateWhere(where); err != nil {
		return 0, err
	}

	stmt, err := s.db.Prepare("SELECT COUNT(*) FROM flows WHERE " + combinedWhere(where, extra))
	if err != nil {
		return 0, &InvalidFilterError{Detail: err.Error()}
	}
	defer stmt.Close()

	var count int64
	if err := stmt.QueryRow().Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting flows: %v", err)
	}
	return count, nil
}

// Get returns the full record for id, previews included.
func (s *FlowStore) Get(id string) (*models.Flow, error) {
	row := s.db.QueryRow(`
		SELECT seq, id, ts, method, url, host, path, status, duration,
		       req_headers_json, resp_headers_json,
		       req_size, resp_size, req_body_b64,
		       req_preview, resp_preview
		FROM flows
		WHERE id = ?`, id)

	var flow models.Flow
	var host, path, reqHeaders, respHeaders, reqBody, reqPreview, respPreview sql.NullString
	var status sql.NullInt64
	var duration sql.NullFloat64

	err := row.Scan(
		&flow.Seq, &flow.ID, &flow.TS, &flow.Method, &flow.URL,
		&host, &path, &status, &duration,
		&reqHeaders, &respHeaders,
		&flow.ReqSize, &flow.RespSize, &reqBody,
		&reqPreview, &respPreview,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("error fetching flow: %v", err)
	}

	flow.Host = nullableString(host)
	flow.Path = nullableString(path)
	flow.Status = nullableInt(status)
	flow.Duration = nullableFloat(duration)
	flow.ReqBodyB64 = nullableString(reqBody)
	flow.ReqPreview = nullableString(reqPreview)
	flow.RespPreview = nullableString(respPreview)
	flow.ReqHeaders = decodeHeaders(reqHeaders)
	flow.RespHeaders = decodeHeaders(respHeaders)

	return &flow, nil
}

// GetResponseBody returns the retained full response body for id. ErrNotFound
// covers both an unknown id and a flow whose body was not kept.
func (s *FlowStore) GetResponseBody(id string) (bodyB64 string, contentType *string, size int64, err error) {
	row := s.db.QueryRow(`
		SELECT resp_body_b64, resp_headers_json, resp_size
		FROM flows
		WHERE id = ?`, id)

	var body, respHeaders sql.NullString
	if err := row.Scan(&body, &respHeaders, &size); err == sql.ErrNoRows {
		return "", nil, 0, ErrNotFound
	} else if err != nil {
		return "", nil, 0, fmt.Errorf("error fetching response body: %v", err)
	}

	if !body.Valid || body.String == "" {
		return "", nil, 0, ErrNotFound
	}

	headers := decodeHeaders(respHeaders)
	if ct := headers.Get("content-type"); ct != "" {
		contentType = &ct
	}
	return body.String, contentType, size, nil
}

// MatchIDs returns the subset of ids matching the WHERE text, so paginated
// or filtered live views can resolve visibility of a batch of just-arrived
// flows without re-running their whole query.
func (s *FlowStore) MatchIDs(where, extra string, ids []string) ([]string, error) {
	if err := validateWhere(where); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []string{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf("SELECT id FROM flows WHERE %s AND id IN (%s)",
		combinedWhere(where, extra), strings.Join(placeholders, ","))

	stmt, err := s.db.Prepare(query)
	if err != nil {
		return nil, &InvalidFilterError{Detail: err.Error()}
	}
	defer stmt.Close()

	rows, err := stmt.Query(args...)
	if err != nil {
		return nil, fmt.Errorf("error matching flow ids: %v", err)
	}
	defer rows.Close()

	matches := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning match row: %v", err)
		}
		matches = append(matches, id)
	}
	return matches, rows.Err()
}

// Clear removes every flow. The seq counter is not reset, so later appends
// continue from the historical maximum.
func (s *FlowStore) Clear() error {
	if _, err := s.db.Exec("DELETE FROM flows"); err != nil {
		return fmt.Errorf("error clearing flows: %v", err)
	}
	return nil
}

func scanSummary(rows *sql.Rows) (models.FlowSummary, error) {
	var summary models.FlowSummary
	var host, path sql.NullString
	var status sql.NullInt64
	var duration sql.NullFloat64

	err := rows.Scan(
		&summary.Seq, &summary.ID, &summary.TS, &summary.Method, &summary.URL,
		&host, &path, &status, &duration,
		&summary.ReqSize, &summary.RespSize,
	)
	if err != nil {
		return summary, err
	}

	summary.Host = nullableString(host)
	summary.Path = nullableString(path)
	summary.Status = nullableInt(status)
	summary.Duration = nullableFloat(duration)
	return summary, nil
}

func decodeHeaders(raw sql.NullString) models.HeaderPairs {
	headers := models.HeaderPairs{}
	if !raw.Valid || raw.String == "" {
		return headers
	}
	if err := json.Unmarshal([]byte(raw.String), &headers); err != nil {
		return models.HeaderPairs{}
	}
	return headers
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
