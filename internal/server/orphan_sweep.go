package server

import (
	"context"
	"os"
	"sort"

	"gifstash/internal/api"
)

// SweepOrphans finds blobs with no clip row, the leftovers of an AddClip whose
// metadata insert failed. With dryRun set nothing is deleted. It waits for
// in-flight adds, deletes and imports to finish and blocks new ones meanwhile.
func (s *CollectionService) SweepOrphans(ctx context.Context, dryRun bool) (api.OrphanSweepResponse, error) {
	resp := api.OrphanSweepResponse{OrphanIDs: []string{}, DryRun: dryRun}

	s.blobMu.Lock()
	defer s.blobMu.Unlock()

	blobIDs, err := s.blobs.List(ctx)
	if err != nil {
		return resp, mapBlobError(err)
	}
	clipIDs, err := s.store.ClipIDs(ctx)
	if err != nil {
		return resp, mapStoreError(err)
	}
	known := make(map[string]struct{}, len(clipIDs))
	for _, id := range clipIDs {
		known[id] = struct{}{}
	}

	for _, id := range blobIDs {
		if _, ok := known[id]; !ok {
			resp.OrphanIDs = append(resp.OrphanIDs, id)
		}
	}
	sort.Strings(resp.OrphanIDs)

	for _, id := range resp.OrphanIDs {
		if err := ctx.Err(); err != nil {
			return resp, err
		}
		var size int64
		if info, err := os.Stat(s.blobs.Path(id)); err == nil {
			size = info.Size()
		}
		if dryRun {
			resp.ReclaimedBytes += size
			continue
		}
		if err := s.blobs.Delete(ctx, id); err != nil {
			resp.FailedCount++
			continue
		}
		resp.DeletedCount++
		resp.ReclaimedBytes += size
	}
	return resp, nil
}
