package usecase

import (
	"context"
	"fmt"
)

// ReserveOrder is the synchronous ingress path: archive the request body and
// report where it landed. No canonical record is written here.
type ReserveOrder struct {
	archiver  Archiver
	container string
}

func NewReserveOrder(archiver Archiver, container string) *ReserveOrder {
	return &ReserveOrder{
		archiver:  archiver,
		container: container,
	}
}

type ReserveResult struct {
	Container string
	BlobName  string
}

func (uc *ReserveOrder) Execute(ctx context.Context, raw []byte) (*ReserveResult, error) {
	blobName, err := uc.archiver.Archive(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("archive payload: %w", err)
	}

	return &ReserveResult{
		Container: uc.container,
		BlobName:  blobName,
	}, nil
}
