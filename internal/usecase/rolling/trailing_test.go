package rolling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/wealthflow-returns/internal/domain"
)

func TestTrailing(t *testing.T) {
	s := series(t,
		point("2019-01-02", 100),
		point("2021-01-04", 121),
		point("2023-01-02", 146.41),
		point("2024-01-02", 161.051),
	)

	got := Trailing(s, domain.MustParseDate("2024-01-05"), 1, 3, 5, 10)

	require.Len(t, got, 3)

	assert.Equal(t, 1, got[0].Years)
	assert.Equal(t, "2023-01-02", got[0].From.String())
	assert.Equal(t, "2024-01-02", got[0].To.String())
	assert.InDelta(t, 0.10, got[0].Return, 1e-9)

	assert.Equal(t, 3, got[1].Years)
	assert.Equal(t, "2021-01-04", got[1].From.String())
	assert.InDelta(t, 0.10, got[1].Return, 1e-2)

	assert.Equal(t, 5, got[2].Years)
	assert.InDelta(t, 0.10, got[2].Return, 1e-3)
}

func TestTrailing_DefaultsAndEmpty(t *testing.T) {
	s := series(t,
		point("2023-01-02", 100),
		point("2024-01-02", 90),
	)

	got := Trailing(s, domain.MustParseDate("2024-01-02"))
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Years)
	assert.InDelta(t, -0.10, got[0].Return, 1e-9)

	assert.Empty(t, Trailing(s, domain.MustParseDate("2022-01-01")))
	assert.Empty(t, Trailing(nil, domain.MustParseDate("2024-01-02")))
}
