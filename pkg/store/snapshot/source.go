package snapshot

import (
	"context"
	"fmt"

	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"github.com/de-tools/traffic-atlas/pkg/services/report"
	"github.com/rs/zerolog"
)

// Mode selects how a profile's sources interact with the snapshot store.
type Mode string

const (
	ModeOff    Mode = "off"
	ModeRecord Mode = "record"
	ModeReplay Mode = "replay"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case "", ModeOff:
		return ModeOff, nil
	case ModeRecord, ModeReplay:
		return m, nil
	default:
		return "", fmt.Errorf("unknown snapshot mode %q", s)
	}
}

// Wrap applies mode to source. Replay never touches source.
func Wrap(mode Mode, source report.Source, st Store, profile string) report.Source {
	switch mode {
	case ModeRecord:
		return NewRecorder(source, st, profile)
	case ModeReplay:
		return NewReplay(st, profile, source.Name())
	default:
		return source
	}
}

// Recorder passes queries through to a live source and saves what came back.
// A failed save is logged; the live rows are still returned.
type Recorder struct {
	source  report.Source
	store   Store
	profile string
}

func NewRecorder(source report.Source, st Store, profile string) *Recorder {
	return &Recorder{source: source, store: st, profile: profile}
}

func (r *Recorder) Name() string {
	return r.source.Name()
}

func (r *Recorder) RunReport(ctx context.Context, q domain.RangeQuery) ([]domain.RawRow, error) {
	rows, err := r.source.RunReport(ctx, q)
	if err != nil {
		return nil, err
	}

	if err := r.store.Save(ctx, r.profile, r.source.Name(), q, rows); err != nil {
		zerolog.Ctx(ctx).Warn().
			Err(err).
			Str("profile", r.profile).
			Str("label", q.Label).
			Msg("failed to record snapshot")
	}
	return rows, nil
}

// Replay serves previously recorded rows.
type Replay struct {
	store   Store
	profile string
	name    string
}

func NewReplay(st Store, profile, name string) *Replay {
	return &Replay{store: st, profile: profile, name: name}
}

func (r *Replay) Name() string {
	return r.name
}

func (r *Replay) RunReport(ctx context.Context, q domain.RangeQuery) ([]domain.RawRow, error) {
	rows, err := r.store.Load(ctx, r.profile, r.name, q)
	if err != nil {
		return nil, fmt.Errorf("replay %s %s..%s: %w", r.name, q.StartDate(), q.EndDate(), err)
	}
	return rows, nil
}
