package store

import (
	"path/filepath"
	"testing"

	"github.com/FermatTheorem/NoShitProxy/internal/models"
	"github.com/FermatTheorem/NoShitProxy/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FlowStore {
	t.Helper()

	db, err := storage.NewDB(storage.Config{Path: filepath.Join(t.TempDir(), "test.sqlite3")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.RunMigrations(db))
	return NewFlowStore(db, 0)
}

func testFlow(id, url string) *models.Flow {
	status := 200
	return &models.Flow{
		ID:          id,
		TS:          1700000000.5,
		Method:      "GET",
		URL:         url,
		Status:      &status,
		ReqHeaders:  models.HeaderPairs{{"Accept", "*/*"}},
		RespHeaders: models.HeaderPairs{{"Content-Type", "text/html"}},
	}
}

func TestAppendAssignsIncreasingSeq(t *testing.T) {
	s := newTestStore(t)

	seq1, err := s.Append(testFlow("a", "https://example.com/1"), nil, nil)
	require.NoError(t, err)
	seq2, err := s.Append(testFlow("b", "https://example.com/2"), nil, nil)
	require.NoError(t, err)

	assert.Greater(t, seq2, seq1)
}

func TestAppendSameIDKeepsSeq(t *testing.T) {
	s := newTestStore(t)

	seq1, err := s.Append(testFlow("a", "https://example.com/1"), nil, nil)
	require.NoError(t, err)

	// A duplicate engine delivery updates in place.
	updated := testFlow("a", "https://example.com/1")
	status := 404
	updated.Status = &status
	seq2, err := s.Append(updated, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, seq1, seq2)

	count, err := s.Count("", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	flow, err := s.Get("a")
	require.NoError(t, err)
	require.NotNil(t, flow.Status)
	assert.Equal(t, 404, *flow.Status)
}

func TestSeqNotReusedAfterClear(t *testing.T) {
	s := newTestStore(t)

	seq1, err := s.Append(testFlow("a", "https://example.com/1"), nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.Clear())

	count, err := s.Count("", "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	seq2, err := s.Append(testFlow("b", "https://example.com/2"), nil, nil)
	require.NoError(t, err)
	assert.Greater(t, seq2, seq1)
}

func TestListFiltersAndPaginates(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Append(testFlow("a", "https://api.example.com/users"), nil, nil)
	require.NoError(t, err)
	_, err = s.Append(testFlow("b", "https://api.example.com/orders"), nil, nil)
	require.NoError(t, err)
	_, err = s.Append(testFlow("c", "https://other.test/"), nil, nil)
	require.NoError(t, err)

	flows, err := s.List(models.FlowQuery{Where: "url LIKE '%api.example.com%'"})
	require.NoError(t, err)
	assert.Len(t, flows, 2)

	count, err := s.Count("url LIKE '%api.example.com%'", "")
	require.NoError(t, err)
	assert.Equal(t, int64(len(flows)), count)

	// An offset past the end is an empty page, not an error.
	flows, err = s.List(models.FlowQuery{Offset: 100})
	require.NoError(t, err)
	assert.Empty(t, flows)
}

func TestListDefaultOrderIsNewestFirst(t *testing.T) {
	s := newTestStore(t)

	first := testFlow("a", "https://example.com/1")
	first.TS = 100
	second := testFlow("b", "https://example.com/2")
	second.TS = 200

	_, err := s.Append(first, nil, nil)
	require.NoError(t, err)
	_, err = s.Append(second, nil, nil)
	require.NoError(t, err)

	flows, err := s.List(models.FlowQuery{})
	require.NoError(t, err)
	require.Len(t, flows, 2)
	assert.Equal(t, "b", flows[0].ID)
	assert.Equal(t, "a", flows[1].ID)
}

func TestSortStatusNullsLast(t *testing.T) {
	s := newTestStore(t)

	withStatus := testFlow("a", "https://example.com/1")
	noStatus := testFlow("b", "https://example.com/2")
	noStatus.Status = nil

	_, err := s.Append(withStatus, nil, nil)
	require.NoError(t, err)
	_, err = s.Append(noStatus, nil, nil)
	require.NoError(t, err)

	for _, order := range []string{"asc", "desc"} {
		flows, err := s.List(models.FlowQuery{Sort: "status", Order: order})
		require.NoError(t, err)
		require.Len(t, flows, 2)
		assert.Equal(t, "a", flows[0].ID, "order %s", order)
		assert.Nil(t, flows[1].Status, "order %s", order)
	}
}

func TestInvalidFilterRejected(t *testing.T) {
	s := newTestStore(t)

	cases := []string{
		"1=1; DROP TABLE flows",
		"status = 200 -- comment",
		"status = 200 /* comment */",
		"attach database 'x' as y",
		"DELETE FROM flows",
		"no_such_column = 5",
	}
	for _, where := range cases {
		_, err := s.List(models.FlowQuery{Where: where})
		assert.True(t, IsInvalidFilter(err), "where %q: got %v", where, err)

		_, err = s.Count(where, "")
		assert.True(t, IsInvalidFilter(err), "count where %q: got %v", where, err)
	}
}

func TestExtraClauseNotGuarded(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Append(testFlow("a", "https://api.example.com/users"), nil, nil)
	require.NoError(t, err)
	_, err = s.Append(testFlow("b", "https://other.test/"), nil, nil)
	require.NoError(t, err)

	// Server-built clauses may use constructs the operator guard rejects.
	flows, err := s.List(models.FlowQuery{Extra: "(instr(url, 'api.example.com') > 0)"})
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, "a", flows[0].ID)
}

func TestMatchIDs(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Append(testFlow("a", "https://api.example.com/users"), nil, nil)
	require.NoError(t, err)
	_, err = s.Append(testFlow("b", "https://other.test/"), nil, nil)
	require.NoError(t, err)

	matches, err := s.MatchIDs("url LIKE '%api.example.com%'", "", []string{"a", "b", "ghost"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, matches)

	matches, err = s.MatchIDs("", "", nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetResponseBody(t *testing.T) {
	s := newTestStore(t)

	body := "PGh0bWw+"
	text := "<html>"
	_, err := s.Append(testFlow("a", "https://example.com/"), &body, &text)
	require.NoError(t, err)
	_, err = s.Append(testFlow("b", "https://example.com/empty"), nil, nil)
	require.NoError(t, err)

	got, contentType, _, err := s.GetResponseBody("a")
	require.NoError(t, err)
	assert.Equal(t, body, got)
	require.NotNil(t, contentType)
	assert.Equal(t, "text/html", *contentType)

	// A flow whose body was not retained reads as not found.
	_, _, _, err = s.GetResponseBody("b")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, _, err = s.GetResponseBody("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBodySearchableThroughWhere(t *testing.T) {
	s := newTestStore(t)

	body := "eyJvayI6dHJ1ZX0="
	text := `{"ok":true}`
	_, err := s.Append(testFlow("a", "https://example.com/api"), &body, &text)
	require.NoError(t, err)

	flows, err := s.List(models.FlowQuery{Where: "resp_body_text LIKE '%\"ok\":true%'"})
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, "a", flows[0].ID)
}

func TestPruneKeepsNewest(t *testing.T) {
	db, err := storage.NewDB(storage.Config{Path: filepath.Join(t.TempDir(), "test.sqlite3")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.RunMigrations(db))

	s := NewFlowStore(db, 2)

	for i, id := range []string{"a", "b", "c"} {
		flow := testFlow(id, "https://example.com/"+id)
		flow.TS = float64(100 + i)
		_, err := s.Append(flow, nil, nil)
		require.NoError(t, err)
	}

	count, err := s.Count("", "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = s.Get("a")
	assert.ErrorIs(t, err, ErrNotFound)
}
