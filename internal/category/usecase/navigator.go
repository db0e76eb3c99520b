package usecase

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
)

func (uc *categoryUseCase) MaxDepth() int {
	return uc.maxDepth
}

func (uc *categoryUseCase) ResolveByCode(ctx context.Context, code string) (*model.Category, error) {
	cat, err := uc.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("find category %s: %w", code, err)
	}
	if cat == nil || !cat.IsActive {
		return nil, apperror.NotFound("category %s not found", code)
	}
	return cat, nil
}

// GetAncestors returns the parent chain root-first. The walk is bounded by the
// depth cap so a corrupt parent cycle cannot loop forever.
func (uc *categoryUseCase) GetAncestors(ctx context.Context, node *model.Category) ([]model.Category, error) {
	var chain []model.Category
	seen := map[string]struct{}{node.ID: {}}

	parentID := node.ParentID
	for steps := 0; parentID != nil && steps <= uc.maxDepth; steps++ {
		if _, ok := seen[*parentID]; ok {
			break
		}
		parent, err := uc.repo.FindByID(ctx, *parentID)
		if err != nil {
			return nil, fmt.Errorf("find parent %s: %w", *parentID, err)
		}
		if parent == nil {
			break
		}
		seen[parent.ID] = struct{}{}
		chain = append(chain, *parent)
		parentID = parent.ParentID
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

func (uc *categoryUseCase) Breadcrumb(ctx context.Context, node *model.Category) ([]model.Breadcrumb, error) {
	ancestors, err := uc.GetAncestors(ctx, node)
	if err != nil {
		return nil, err
	}
	crumbs := make([]model.Breadcrumb, 0, len(ancestors)+1)
	for i := range ancestors {
		crumbs = append(crumbs, ancestors[i].Breadcrumb())
	}
	return append(crumbs, node.Breadcrumb()), nil
}

// walk expands active children level by level. leaves reports which of the
// returned nodes had no active child.
func (uc *categoryUseCase) walk(ctx context.Context, node *model.Category) (descendants []model.Category, leaves map[string]bool, err error) {
	visited := map[string]struct{}{node.ID: {}}
	hasChild := map[string]bool{}
	frontier := []string{node.ID}

	for len(frontier) > 0 {
		children, err := uc.repo.FindActiveChildren(ctx, frontier)
		if err != nil {
			return nil, nil, fmt.Errorf("find children: %w", err)
		}

		next := make([]string, 0, len(children))
		for _, child := range children {
			if child.ParentID != nil {
				hasChild[*child.ParentID] = true
			}
			if _, ok := visited[child.ID]; ok {
				continue
			}
			visited[child.ID] = struct{}{}
			descendants = append(descendants, child)
			next = append(next, child.ID)
		}
		frontier = next
	}

	leaves = make(map[string]bool, len(descendants))
	for _, d := range descendants {
		leaves[d.ID] = !hasChild[d.ID]
	}
	return descendants, leaves, nil
}

func (uc *categoryUseCase) GetDescendants(ctx context.Context, node *model.Category) ([]model.Category, error) {
	descendants, _, err := uc.walk(ctx, node)
	return descendants, err
}

// GetAllDescendantIDs includes node itself.
func (uc *categoryUseCase) GetAllDescendantIDs(ctx context.Context, node *model.Category) (map[string]struct{}, error) {
	descendants, _, err := uc.walk(ctx, node)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, len(descendants)+1)
	ids[node.ID] = struct{}{}
	for _, d := range descendants {
		ids[d.ID] = struct{}{}
	}
	return ids, nil
}

// IsLeaf always hits the store: leaf status changes when a sibling is added.
func (uc *categoryUseCase) IsLeaf(ctx context.Context, node *model.Category) (bool, error) {
	has, err := uc.repo.HasActiveChildren(ctx, node.ID)
	if err != nil {
		return false, fmt.Errorf("check children of %s: %w", node.Code, err)
	}
	return !has, nil
}

// ListChildren returns the active children of node, or nothing once node sits
// on the last navigable level.
func (uc *categoryUseCase) ListChildren(ctx context.Context, node *model.Category) ([]model.Category, error) {
	if node.Level >= uc.maxDepth-1 {
		return []model.Category{}, nil
	}
	children, err := uc.repo.FindActiveChildren(ctx, []string{node.ID})
	if err != nil {
		return nil, fmt.Errorf("find children of %s: %w", node.Code, err)
	}
	if children == nil {
		children = []model.Category{}
	}
	return children, nil
}

func (uc *categoryUseCase) LeafDescendants(ctx context.Context, node *model.Category) ([]model.Category, error) {
	descendants, leaves, err := uc.walk(ctx, node)
	if err != nil {
		return nil, err
	}
	out := make([]model.Category, 0, len(descendants))
	for _, d := range descendants {
		if leaves[d.ID] {
			out = append(out, d)
		}
	}
	return out, nil
}
