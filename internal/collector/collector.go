// Package collector runs the fetch-correct-store cycle against the hydro
// controller.
package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/robfig/cron/v3"

	"github.com/raccog/HydroManager/internal/device"
	"github.com/raccog/HydroManager/internal/deviceclock"
	"github.com/raccog/HydroManager/internal/modules/hydro/types"
)

// Fetcher is the device side of a cycle, satisfied by *device.Client.
type Fetcher interface {
	Fetch(ctx context.Context) (device.Snapshot, error)
}

// Repository is the store side of a cycle, satisfied by the hydro repository.
type Repository interface {
	InsertPoll(ctx context.Context, reading types.SensorReading, pulses []types.PumpPulse) error
}

// Publisher forwards committed snapshots to MQTT. Optional.
type Publisher interface {
	Publish(ctx context.Context, v any) error
}

type Service struct {
	fetcher   Fetcher
	repo      Repository
	publisher Publisher

	fetchRetries  int
	retryInterval time.Duration
}

// NewService wires one collection pipeline. publisher may be nil.
func NewService(fetcher Fetcher, repo Repository, publisher Publisher, fetchRetries int) *Service {
	return &Service{
		fetcher:       fetcher,
		repo:          repo,
		publisher:     publisher,
		fetchRetries:  fetchRetries,
		retryInterval: 500 * time.Millisecond,
	}
}

// CollectOnce runs one fetch-correct-store cycle. Transient fetch failures
// are retried with exponential backoff up to the configured limit; a bad
// payload aborts immediately. The store sees either the whole poll or
// nothing.
func (s *Service) CollectOnce(ctx context.Context) error {
	snap, err := s.fetch(ctx)
	if err != nil {
		if errors.Is(err, device.ErrBadPayload) {
			return fmt.Errorf("device sent unusable payload: %w", err)
		}
		return fmt.Errorf("fetch device snapshot: %w", err)
	}

	slog.Info("payload decoded",
		"device_time", snap.Time,
		"ph", snap.PH,
		"pulse_events", len(snap.PulseEvents),
	)

	reading := types.SensorReading{
		Time:      deviceclock.Correct(snap.Time),
		SensorID:  types.PHSensorID,
		Value:     snap.PH,
		TypeIndex: types.PHTypeIndex,
	}
	pulses := make([]types.PumpPulse, 0, len(snap.PulseEvents))
	for _, ev := range snap.PulseEvents {
		pulses = append(pulses, types.PumpPulse{
			Time:        deviceclock.Correct(ev.Time),
			PumpID:      ev.Type,
			Length:      ev.Len,
			Interrupted: ev.Interrupt,
		})
	}

	if err := s.repo.InsertPoll(ctx, reading, pulses); err != nil {
		return fmt.Errorf("store poll: %w", err)
	}
	slog.Info("reading committed",
		"timestamp", reading.Time,
		"ph", reading.Value,
		"pulses", len(pulses),
	)

	// Rows are already committed; a publish failure must not fail the cycle.
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, snap); err != nil {
			slog.Warn("publish snapshot failed", "error", err)
		}
	}

	return nil
}

func (s *Service) fetch(ctx context.Context) (device.Snapshot, error) {
	var snap device.Snapshot

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.retryInterval

	op := func() error {
		var err error
		snap, err = s.fetcher.Fetch(ctx)
		if errors.Is(err, device.ErrBadPayload) {
			return backoff.Permanent(err)
		}
		if err != nil {
			slog.Warn("device fetch failed, will retry", "error", err)
		}
		return err
	}

	err := backoff.Retry(op, backoff.WithContext(
		backoff.WithMaxRetries(bo, uint64(s.fetchRetries)), ctx,
	))
	return snap, err
}

// RunSchedule runs CollectOnce immediately, then on the given cron spec,
// until ctx is canceled. Cycle failures are logged; the next tick retries.
func (s *Service) RunSchedule(ctx context.Context, spec string) error {
	if err := s.CollectOnce(ctx); err != nil {
		slog.Error("initial collection failed", "error", err)
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if err := s.CollectOnce(ctx); err != nil {
			slog.Error("scheduled collection failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	slog.Info("collector scheduled", "spec", spec)
	c.Start()

	<-ctx.Done()

	stopCtx := c.Stop()
	// Let an in-flight cycle finish before returning.
	<-stopCtx.Done()
	return ctx.Err()
}
