package rewrite

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewritePostgres(t *testing.T) {
	out, n, err := Rewrite("SELECT * FROM t WHERE a = ? AND b = ?", Postgres)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", out)
}

func TestRewriteOracle(t *testing.T) {
	out, n, err := Rewrite("INSERT INTO t VALUES(?, ?, ?)", Oracle)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "INSERT INTO t VALUES(:1, :2, :3)", out)
}

func TestRewriteNoPlaceholders(t *testing.T) {
	out, n, err := Rewrite("SELECT 1", Postgres)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, "SELECT 1", out)
}

func TestRewriteSkipsQuotedLiterals(t *testing.T) {
	out, n, err := Rewrite(`SELECT '?' , "also ?" , ? FROM t`, Postgres)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, `SELECT '?' , "also ?" , $1 FROM t`, out)
}

func TestRewriteSkipsLineComment(t *testing.T) {
	sql := "SELECT ? -- what about ?\nFROM t WHERE x = ?"
	out, n, err := Rewrite(sql, Postgres)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "SELECT $1 -- what about ?\nFROM t WHERE x = $2", out)
}

func TestRewriteSkipsBlockComment(t *testing.T) {
	sql := "SELECT ? /* ?, ? */ , ?"
	out, n, err := Rewrite(sql, Postgres)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "SELECT $1 /* ?, ? */ , $2", out)
}

func TestRewriteEscapedQuote(t *testing.T) {
	sql := `SELECT 'it''s ?' , ?`
	out, n, err := Rewrite(sql, Postgres)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, `SELECT 'it''s ?' , $1`, out)
}

func TestRewriteMaxParameters(t *testing.T) {
	sql := "SELECT " + strings.Repeat("?,", MaxParameters-1) + "?"
	out, n, err := Rewrite(sql, Postgres)
	require.NoError(t, err)
	assert.Equal(t, MaxParameters, n)
	assert.True(t, strings.HasSuffix(out, "$"+strconv.Itoa(MaxParameters)))
}

func TestRewriteTooManyParameters(t *testing.T) {
	sql := "SELECT " + strings.Repeat("?,", MaxParameters) + "?"
	_, _, err := Rewrite(sql, Postgres)
	require.Error(t, err)
}

// TestRewriteLawProperty checks that for any SQL containing exactly
// k <= 99 question marks (none in literals), the i-th `?` is replaced by
// the rewritten form of i, and the returned count equals k.
func TestRewriteLawProperty(t *testing.T) {
	for k := 0; k <= MaxParameters; k++ {
		sql := "X " + strings.Repeat("? ", k)
		out, n, err := Rewrite(sql, Postgres)
		require.NoError(t, err)
		assert.Equal(t, k, n)
		want := "X "
		for i := 1; i <= k; i++ {
			want += "$" + strconv.Itoa(i) + " "
		}
		assert.Equal(t, want, out)
	}
}
