package service

import (
	"sort"

	"edu-game-server/shared/models"
)

// MergeSectionCandidates сводит то, что знают три стора, в одно представление на секцию.
// Ключ - имя секции без пробелов по краям; student_count - максимум по сторам;
// секция в архиве, если об этом говорит хотя бы один источник.
func MergeSectionCandidates(roster, assignments []models.SectionCandidate, archiveLog []models.ArchiveLogEntry) []models.SectionView {
	merged := make(map[string]*models.SectionView)
	order := make([]string, 0, len(roster)+len(assignments))

	upsert := func(c models.SectionCandidate) {
		key := models.SectionKey(c.Section)
		if key == "" {
			return
		}
		v, ok := merged[key]
		if !ok {
			v = &models.SectionView{Section: key}
			merged[key] = v
			order = append(order, key)
		}
		if c.StudentCount > v.StudentCount {
			v.StudentCount = c.StudentCount
		}
		if c.HasArchivedFlag && c.IsArchived {
			v.IsArchived = true
		}
	}
	for _, c := range roster {
		upsert(c)
	}
	for _, c := range assignments {
		upsert(c)
	}
	// строка в журнале архивации - самостоятельный сигнал, даже без строк в других сторах
	for _, e := range archiveLog {
		upsert(models.SectionCandidate{Section: e.Section, IsArchived: true, HasArchivedFlag: true})
	}

	views := make([]models.SectionView, 0, len(order))
	for _, key := range order {
		views = append(views, *merged[key])
	}
	return views
}

// FilterAndSortSections применяет опции выдачи ListSections.
func FilterAndSortSections(views []models.SectionView, opts models.ListSectionsOptions) []models.SectionView {
	out := make([]models.SectionView, 0, len(views))
	for _, v := range views {
		if v.IsArchived && !opts.IncludeArchived {
			continue
		}
		out = append(out, v)
	}

	archivedFirst := opts.IncludeArchived && opts.ArchivedFirst
	sort.SliceStable(out, func(i, j int) bool {
		if archivedFirst && out[i].IsArchived != out[j].IsArchived {
			return out[i].IsArchived
		}
		return out[i].Section < out[j].Section
	})
	return out
}
