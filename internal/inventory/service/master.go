package service

import (
	"context"

	"github.com/smartextemp/extemp-backend/pkg/messaging"
	"github.com/smartextemp/extemp-backend/pkg/tablestore"
)

// Raw table access for the admin edit surface. Writes go back verbatim
// under the snapshot's revision, so a concurrent lifecycle operation makes
// the admin save fail with a conflict instead of silently clobbering it.

// RawStock returns the stock tab exactly as stored
func (s *Service) RawStock(ctx context.Context) (*tablestore.Snapshot, error) {
	return s.lots.RawSnapshot(ctx)
}

// ReplaceRawStock writes an admin-edited stock tab back
func (s *Service) ReplaceRawStock(ctx context.Context, snap *tablestore.Snapshot, actor string) error {
	if err := s.lots.ReplaceRaw(ctx, snap); err != nil {
		return err
	}

	s.logger.Info().Int("rows", len(snap.Rows)).Str("actor", actor).Msg("stock tab replaced")
	return nil
}

// RawDrugs returns the drug master exactly as stored
func (s *Service) RawDrugs(ctx context.Context) (*tablestore.Snapshot, error) {
	return s.drugs.RawSnapshot(ctx)
}

// ReplaceRawDrugs writes an admin-edited drug master back
func (s *Service) ReplaceRawDrugs(ctx context.Context, snap *tablestore.Snapshot, actor string) error {
	if err := s.drugs.ReplaceRaw(ctx, snap); err != nil {
		return err
	}

	s.logger.Info().Int("rows", len(snap.Rows)).Str("actor", actor).Msg("drug master replaced")
	s.events.MasterDataReplaced(ctx, &messaging.MasterDataReplacedEvent{
		Table:      "drugs",
		RowCount:   len(snap.Rows),
		ReplacedBy: actor,
	})
	return nil
}

// RawLocations returns the locations tab exactly as stored
func (s *Service) RawLocations(ctx context.Context) (*tablestore.Snapshot, error) {
	return s.locations.RawSnapshot(ctx)
}

// ReplaceRawLocations writes an admin-edited locations tab back
func (s *Service) ReplaceRawLocations(ctx context.Context, snap *tablestore.Snapshot, actor string) error {
	if err := s.locations.ReplaceRaw(ctx, snap); err != nil {
		return err
	}

	s.logger.Info().Int("rows", len(snap.Rows)).Str("actor", actor).Msg("locations tab replaced")
	s.events.MasterDataReplaced(ctx, &messaging.MasterDataReplacedEvent{
		Table:      "locations",
		RowCount:   len(snap.Rows),
		ReplacedBy: actor,
	})
	return nil
}
