package query

import (
	"errors"
	"testing"

	"anoa.com/tradesphere/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conditionSQL(q *Query) []string {
	out := make([]string, 0, len(q.Conditions))
	for _, c := range q.Conditions {
		out = append(out, c.SQL)
	}
	return out
}

func TestBuildDefaults(t *testing.T) {
	q, err := Build(Params{}, Caller{}, Options{DefaultStatus: "active"})
	require.NoError(t, err)

	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultLimit, q.Limit)
	assert.Equal(t, 0, q.Offset)
	assert.Equal(t, []string{"listings.status = ?"}, conditionSQL(q))
	assert.Equal(t, []any{"active"}, q.Conditions[0].Args)
	assert.Equal(t, []string{"listings.created_at DESC", "listings.id ASC"}, q.Order)
}

func TestBuildPageWindow(t *testing.T) {
	q, err := Build(Params{Page: "3", Limit: "12"}, Caller{}, Options{DefaultStatus: "active"})
	require.NoError(t, err)
	assert.Equal(t, 24, q.Offset)
	assert.Equal(t, 12, q.Limit)

	q, err = Build(Params{Limit: "500"}, Caller{}, Options{DefaultStatus: "active"})
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, q.Limit)

	q, err = Build(Params{}, Caller{}, Options{DefaultLimit: 8, DefaultStatus: "active"})
	require.NoError(t, err)
	assert.Equal(t, 8, q.Limit)
}

func TestBuildLargestPageKeepsOffsetPositive(t *testing.T) {
	q, err := Build(Params{Page: "42949672", Limit: "50"}, Caller{}, Options{DefaultStatus: "active"})
	require.NoError(t, err)
	assert.Positive(t, q.Offset)
	assert.Equal(t, (q.Page-1)*q.Limit, q.Offset)
}

func TestBuildRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		field  string
	}{
		{"page zero", Params{Page: "0"}, "page"},
		{"page text", Params{Page: "two"}, "page"},
		{"page past int range", Params{Page: "9223372036854775807"}, "page"},
		{"page offset overflow", Params{Page: "100000000", Limit: "50"}, "page"},
		{"negative limit", Params{Limit: "-5"}, "limit"},
		{"min price garbage", Params{MinPrice: "cheap"}, "minPrice"},
		{"max price NaN", Params{MaxPrice: "NaN"}, "maxPrice"},
		{"max price Inf", Params{MaxPrice: "Inf"}, "maxPrice"},
		{"negative min price", Params{MinPrice: "-1"}, "minPrice"},
		{"inverted range", Params{MinPrice: "500", MaxPrice: "100"}, "maxPrice"},
		{"unknown condition", Params{Condition: "mint"}, "condition"},
		{"unknown status", Params{Status: "archived"}, "status"},
		{"bad user id", Params{User: "bob"}, "user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.params, Caller{}, Options{DefaultStatus: "active"})
			require.Error(t, err)

			var verr *apperror.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tt.field)
			assert.ErrorIs(t, err, apperror.ErrInvalidInput)
		})
	}
}

func TestBuildPriceRangeInclusive(t *testing.T) {
	q, err := Build(Params{MinPrice: "1000", MaxPrice: "10000"}, Caller{}, Options{DefaultStatus: "active"})
	require.NoError(t, err)

	assert.Equal(t, []string{"listings.price >= ?", "listings.price <= ?", "listings.status = ?"}, conditionSQL(q))
	assert.Equal(t, []any{1000.0}, q.Conditions[0].Args)
	assert.Equal(t, []any{10000.0}, q.Conditions[1].Args)
}

func TestBuildSearchIsEscaped(t *testing.T) {
	q, err := Build(Params{Search: `50%_off\`, Location: "New_York"}, Caller{}, Options{DefaultStatus: "active"})
	require.NoError(t, err)

	assert.Equal(t, "(listings.title ILIKE ? OR listings.description ILIKE ?)", q.Conditions[0].SQL)
	assert.Equal(t, []any{`%50\%\_off\\%`, `%50\%\_off\\%`}, q.Conditions[0].Args)
	assert.Equal(t, []any{`%New\_York%`}, q.Conditions[1].Args)
}

func TestBuildFeaturedOnlyWhenTrue(t *testing.T) {
	q, err := Build(Params{Featured: "true"}, Caller{}, Options{DefaultStatus: "active"})
	require.NoError(t, err)
	assert.Contains(t, conditionSQL(q), "listings.featured = ?")

	q, err = Build(Params{Featured: "false"}, Caller{}, Options{DefaultStatus: "active"})
	require.NoError(t, err)
	assert.NotContains(t, conditionSQL(q), "listings.featured = ?")
}

func TestBuildKeepsCategoryRefsForResolution(t *testing.T) {
	q, err := Build(Params{Category: " vehicles ", Subcategory: "cars"}, Caller{}, Options{DefaultStatus: "active"})
	require.NoError(t, err)
	assert.Equal(t, "vehicles", q.CategoryRef)
	assert.Equal(t, "cars", q.SubcategoryRef)

	id := uuid.New()
	q.FilterCategory(id, false)
	q.FilterCategory(id, true)
	sqls := conditionSQL(q)
	assert.Contains(t, sqls, "listings.category_id = ?")
	assert.Contains(t, sqls, "listings.subcategory_id = ?")
}

func TestBuildStatusGating(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()

	t.Run("anonymous cannot list sold", func(t *testing.T) {
		_, err := Build(Params{Status: "sold"}, Caller{}, Options{DefaultStatus: "active"})
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("stranger cannot list another user's drafts", func(t *testing.T) {
		_, err := Build(Params{Status: "draft", User: owner.String()}, Caller{UserID: &stranger}, Options{DefaultStatus: "active"})
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("owner can list own sold", func(t *testing.T) {
		q, err := Build(Params{Status: "sold", User: owner.String()}, Caller{UserID: &owner}, Options{DefaultStatus: "active"})
		require.NoError(t, err)
		assert.Contains(t, conditionSQL(q), "listings.user_id = ?")
		assert.Contains(t, conditionSQL(q), "listings.status = ?")
	})

	t.Run("admin can list anything", func(t *testing.T) {
		_, err := Build(Params{Status: "pending"}, Caller{UserID: &stranger, IsAdmin: true}, Options{DefaultStatus: "active"})
		assert.NoError(t, err)
	})

	t.Run("owner route without status sees every status", func(t *testing.T) {
		q, err := Build(Params{}, Caller{UserID: &owner}, Options{Owner: &owner})
		require.NoError(t, err)
		assert.Equal(t, []string{"listings.user_id = ?"}, conditionSQL(q))
	})

	t.Run("owner option ignores user param", func(t *testing.T) {
		q, err := Build(Params{User: stranger.String()}, Caller{}, Options{Owner: &owner, DefaultStatus: "active"})
		require.NoError(t, err)
		assert.Equal(t, []any{owner}, q.Conditions[0].Args)
	})
}

func TestOrder(t *testing.T) {
	tests := []struct {
		sort string
		want []string
	}{
		{"", []string{"listings.created_at DESC", "listings.id ASC"}},
		{"oldest", []string{"listings.created_at ASC", "listings.id ASC"}},
		{"price-asc", []string{"listings.price ASC", "listings.id ASC"}},
		{"price-low", []string{"listings.price ASC", "listings.id ASC"}},
		{"price-desc", []string{"listings.price DESC", "listings.id ASC"}},
		{"price-high", []string{"listings.price DESC", "listings.id ASC"}},
		{"popular", []string{"listings.views DESC", "listings.created_at DESC", "listings.id ASC"}},
		{"views", []string{"listings.views DESC", "listings.created_at DESC", "listings.id ASC"}},
		{"random; DROP TABLE listings", []string{"listings.created_at DESC", "listings.id ASC"}},
	}

	for _, tt := range tests {
		t.Run(tt.sort, func(t *testing.T) {
			assert.Equal(t, tt.want, Order(tt.sort))
		})
	}
}

func TestOrderDoesNotAliasSharedSlices(t *testing.T) {
	a := Order("newest")
	a[0] = "mutated"
	assert.Equal(t, "listings.created_at DESC", Order("newest")[0])
}
