package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogSizes(t *testing.T) {
	assert.Len(t, CoursesFor(GroupPPL), 9)
	assert.Len(t, CoursesFor(GroupATPL), 14)
	assert.Nil(t, CoursesFor("CPL"))
}

func TestCatalogCodesUnique(t *testing.T) {
	for _, group := range []Group{GroupPPL, GroupATPL} {
		seen := make(map[string]bool)
		for _, c := range CoursesFor(group) {
			assert.Falsef(t, seen[c.Code], "duplicate code %s in %s", c.Code, group)
			seen[c.Code] = true
			assert.NotEmpty(t, c.Label)
		}
	}
}

func TestCatalogReturnsCopies(t *testing.T) {
	first := CoursesFor(GroupPPL)
	first[0].Label = "mutated"
	assert.Equal(t, "010 - Hava Hukuku", CoursesFor(GroupPPL)[0].Label)

	periods := PeriodOptionsFor(GroupATPL)
	periods[0] = "mutated"
	assert.Equal(t, "ATPL aktif", PeriodOptionsFor(GroupATPL)[0])
}

func TestCatalogOrderStable(t *testing.T) {
	codes := CourseCodesFor(GroupATPL)
	require.NotEmpty(t, codes)
	assert.Equal(t, "10", codes[0])
	assert.Equal(t, "92", codes[len(codes)-1])
}

func TestCourseLabelFallback(t *testing.T) {
	assert.Equal(t, "050 - Meteoroloji", CourseLabel(GroupPPL, "50"))
	assert.Equal(t, "99", CourseLabel(GroupPPL, "99"))
}

func TestValidPeriodPerGroup(t *testing.T) {
	assert.True(t, ValidPeriod(GroupPPL, "PPL aktif"))
	assert.False(t, ValidPeriod(GroupPPL, "ATPL aktif"))
	assert.True(t, ValidPeriod(GroupATPL, "ATPL akademik tamamlamış"))
	assert.False(t, ValidPeriod(GroupATPL, "PPL aktif"))
}
