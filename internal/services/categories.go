package services

import (
	"context"
	"fmt"

	"gofinances/internal/core"
	"gofinances/internal/store"
)

// resolveCategory is the single find-or-create rule for category
// titles: exact case-sensitive match wins, otherwise a new row is
// created. Both transaction creation and bulk import go through here so
// their dedup semantics cannot drift apart.
func resolveCategory(ctx context.Context, categories store.CategoryStore, title string) (core.Category, error) {
	existing, err := categories.FindByTitle(ctx, title)
	if err != nil {
		return core.Category{}, fmt.Errorf("find category %q: %w", title, err)
	}
	if existing != nil {
		return *existing, nil
	}

	created, err := categories.Create(ctx, title)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category %q: %w", title, err)
	}
	return created, nil
}

// resolveCategories is the batch form used by bulk import. Titles are
// deduplicated in first-appearance order, existing rows are reused and
// only genuinely new titles are created, each at most once per batch.
// Returns the title mapping plus every category the batch references.
func resolveCategories(ctx context.Context, categories store.CategoryStore, titles []string) (map[string]core.Category, []core.Category, error) {
	seen := make(map[string]struct{}, len(titles))
	distinct := make([]string, 0, len(titles))
	for _, t := range titles {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		distinct = append(distinct, t)
	}

	existing, err := categories.FindManyByTitle(ctx, distinct)
	if err != nil {
		return nil, nil, fmt.Errorf("find categories: %w", err)
	}

	byTitle := make(map[string]core.Category, len(distinct))
	for _, c := range existing {
		byTitle[c.Title] = c
	}

	var missing []string
	for _, t := range distinct {
		if _, ok := byTitle[t]; !ok {
			missing = append(missing, t)
		}
	}

	if len(missing) > 0 {
		created, err := categories.CreateMany(ctx, missing)
		if err != nil {
			return nil, nil, fmt.Errorf("create categories: %w", err)
		}
		for _, c := range created {
			byTitle[c.Title] = c
		}
	}

	resolved := make([]core.Category, 0, len(distinct))
	for _, t := range distinct {
		resolved = append(resolved, byTitle[t])
	}
	return byTitle, resolved, nil
}
