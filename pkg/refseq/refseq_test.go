package refseq

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeStore struct {
	values map[string]int64
	err    error
}

func (s *fakeStore) Next(_ context.Context, key string) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	if s.values == nil {
		s.values = make(map[string]int64)
	}
	s.values[key]++
	return s.values[key], nil
}

func TestNext_Format(t *testing.T) {
	g := New(&fakeStore{})
	ctx := context.Background()
	date := time.Date(2026, 8, 20, 15, 30, 0, 0, time.UTC)

	ref, err := g.Next(ctx, DefaultConfig("ENT"), date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref != "ENT-20260820-0001" {
		t.Errorf("expected ENT-20260820-0001, got %s", ref)
	}

	ref, err = g.Next(ctx, DefaultConfig("ENT"), date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref != "ENT-20260820-0002" {
		t.Errorf("expected ENT-20260820-0002, got %s", ref)
	}
}

func TestNext_SequenceResetsPerDay(t *testing.T) {
	g := New(&fakeStore{})
	ctx := context.Background()
	cfg := DefaultConfig("EXT")

	day1 := time.Date(2026, 8, 20, 23, 0, 0, 0, time.UTC)
	day2 := day1.Add(2 * time.Hour)

	ref1, err := g.Next(ctx, cfg, day1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ref2, err := g.Next(ctx, cfg, day2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ref1 != "EXT-20260820-0001" {
		t.Errorf("expected EXT-20260820-0001, got %s", ref1)
	}
	if ref2 != "EXT-20260821-0001" {
		t.Errorf("expected EXT-20260821-0001, got %s", ref2)
	}
}

func TestNext_SequenceResetsPerPrefix(t *testing.T) {
	g := New(&fakeStore{})
	ctx := context.Background()
	date := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	if _, err := g.Next(ctx, DefaultConfig("ENT"), date); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ref, err := g.Next(ctx, DefaultConfig("EXT"), date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref != "EXT-20260820-0001" {
		t.Errorf("prefixes must not share sequences, got %s", ref)
	}
}

func TestNext_PadWidth(t *testing.T) {
	g := New(&fakeStore{values: map[string]int64{"ENT_20260820": 99998}})
	ctx := context.Background()
	date := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	// values beyond the pad width widen instead of truncating
	ref, err := g.Next(ctx, DefaultConfig("ENT"), date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref != "ENT-20260820-99999" {
		t.Errorf("expected ENT-20260820-99999, got %s", ref)
	}

	ref, err = g.Next(ctx, Config{Prefix: "ENT", PadWidth: 6}, date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref != "ENT-20260820-100000" {
		t.Errorf("expected ENT-20260820-100000, got %s", ref)
	}
}

func TestNext_Errors(t *testing.T) {
	ctx := context.Background()

	if _, err := New(&fakeStore{}).Next(ctx, Config{}, time.Now()); err == nil {
		t.Error("expected error for empty prefix")
	}

	storeErr := errors.New("store down")
	if _, err := New(&fakeStore{err: storeErr}).Next(ctx, DefaultConfig("ENT"), time.Now()); !errors.Is(err, storeErr) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}
