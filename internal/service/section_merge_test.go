package service_test

import (
	"testing"
	"time"

	"edu-game-server/internal/service"
	"edu-game-server/shared/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeSectionCandidates(t *testing.T) {
	t.Run("archived signal from any store wins, count is max", func(t *testing.T) {
		roster := []models.SectionCandidate{{Section: "7-A", StudentCount: 5, IsArchived: false, HasArchivedFlag: true}}
		assignments := []models.SectionCandidate{{Section: "7-A", StudentCount: 3, IsArchived: true, HasArchivedFlag: true}}
		log := []models.ArchiveLogEntry{{TeacherID: "T1", Section: "7-A", ArchivedAt: time.Now()}}

		views := service.MergeSectionCandidates(roster, assignments, log)
		require.Len(t, views, 1)
		assert.Equal(t, models.SectionView{Section: "7-A", StudentCount: 5, IsArchived: true}, views[0])
	})

	t.Run("names are deduplicated after trimming", func(t *testing.T) {
		roster := []models.SectionCandidate{{Section: " 7-B ", StudentCount: 2, HasArchivedFlag: true}}
		assignments := []models.SectionCandidate{{Section: "7-B", StudentCount: 4, HasArchivedFlag: true}}

		views := service.MergeSectionCandidates(roster, assignments, nil)
		require.Len(t, views, 1)
		assert.Equal(t, "7-B", views[0].Section)
		assert.Equal(t, 4, views[0].StudentCount)
		assert.False(t, views[0].IsArchived)
	})

	t.Run("single-source entries are kept", func(t *testing.T) {
		roster := []models.SectionCandidate{{Section: "A", StudentCount: 1, HasArchivedFlag: true}}
		assignments := []models.SectionCandidate{{Section: "B", StudentCount: 0, HasArchivedFlag: true}}
		log := []models.ArchiveLogEntry{{Section: "C"}}

		views := service.MergeSectionCandidates(roster, assignments, log)
		require.Len(t, views, 3)
		assert.True(t, views[2].IsArchived)
		assert.Equal(t, 0, views[2].StudentCount)
	})

	t.Run("store without the flag column contributes no archived signal", func(t *testing.T) {
		roster := []models.SectionCandidate{{Section: "A", StudentCount: 1, IsArchived: true, HasArchivedFlag: false}}

		views := service.MergeSectionCandidates(roster, nil, nil)
		require.Len(t, views, 1)
		assert.False(t, views[0].IsArchived)
	})

	t.Run("empty names are ignored", func(t *testing.T) {
		views := service.MergeSectionCandidates([]models.SectionCandidate{{Section: "   ", StudentCount: 9}}, nil, nil)
		assert.Empty(t, views)
	})
}

func TestFilterAndSortSections(t *testing.T) {
	views := []models.SectionView{
		{Section: "C", IsArchived: false},
		{Section: "B", IsArchived: true},
		{Section: "A", IsArchived: false},
		{Section: "D", IsArchived: true},
	}

	t.Run("archived excluded by default, name ascending", func(t *testing.T) {
		out := service.FilterAndSortSections(views, models.ListSectionsOptions{})
		assert.Equal(t, []string{"A", "C"}, sectionNames(out))
	})

	t.Run("include archived, name ascending", func(t *testing.T) {
		out := service.FilterAndSortSections(views, models.ListSectionsOptions{IncludeArchived: true})
		assert.Equal(t, []string{"A", "B", "C", "D"}, sectionNames(out))
	})

	t.Run("include archived, archived first", func(t *testing.T) {
		out := service.FilterAndSortSections(views, models.ListSectionsOptions{IncludeArchived: true, ArchivedFirst: true})
		assert.Equal(t, []string{"B", "D", "A", "C"}, sectionNames(out))
	})

	t.Run("archived first ignored without include archived", func(t *testing.T) {
		out := service.FilterAndSortSections(views, models.ListSectionsOptions{ArchivedFirst: true})
		assert.Equal(t, []string{"A", "C"}, sectionNames(out))
	})
}

func sectionNames(views []models.SectionView) []string {
	names := make([]string, 0, len(views))
	for _, v := range views {
		names = append(names, v.Section)
	}
	return names
}
