package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	models "github.com/fatflowers/pledge/internal/models"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=pledge dbname=pledge sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db
}

func TestToCommonFilters_BuildsSQL(t *testing.T) {
	db := dryRunDB(t)
	filters := toCommonFilters(TransactionFilter{SubscriptionIDs: []string{"s1", "s2"}, DonorID: "d1"})

	var txns []*models.Transaction
	stmt := db.Where(clause.Where{Exprs: []clause.Expression{filters}}).Find(&txns).Statement

	sql := stmt.SQL.String()
	require.Contains(t, sql, `"subscription_id" IN ($1,$2)`)
	require.Contains(t, sql, `"donor_id" = $3`)
	require.Equal(t, []any{"s1", "s2", "d1"}, stmt.Vars)
}

func TestToCommonFilters_NoRestriction(t *testing.T) {
	db := dryRunDB(t)
	var txns []*models.Transaction
	stmt := db.Where(clause.Where{Exprs: []clause.Expression{toCommonFilters(TransactionFilter{})}}).Find(&txns).Statement
	require.Contains(t, stmt.SQL.String(), "1=1")
	require.Empty(t, stmt.Vars)
}
