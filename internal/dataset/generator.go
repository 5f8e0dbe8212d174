package dataset

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/splitstat/splitstat/internal/config"
)

// Timestamps are spread over the 30 days ending at this fixed reference so
// the same seed always produces the same byte-identical dataset.
var referenceDate = time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)

const timestampWindowDays = 30

// Generate synthesizes a two-group experiment dataset with a planted effect.
// Users are split 50/50 into control and variant; the variant draws come from
// distributions with strictly higher means, so downstream tests have a known
// ground truth to detect. Same config and seed yield the identical sequence.
func Generate(cfg config.GeneratorConfig) ([]Record, error) {
	if cfg.Users < 2 {
		return nil, fmt.Errorf("invalid parameter: users must be at least 2, got %d", cfg.Users)
	}
	if cfg.ControlConversionRate < 0 || cfg.ControlConversionRate > 1 ||
		cfg.VariantConversionRate < 0 || cfg.VariantConversionRate > 1 {
		return nil, fmt.Errorf("invalid parameter: conversion rates must be in [0, 1]")
	}

	src := rand.NewSource(cfg.Seed)
	rng := rand.New(src)

	nControl := cfg.Users / 2
	nVariant := cfg.Users - nControl

	records := make([]Record, 0, cfg.Users)
	records = appendGroup(records, GroupControl, nControl, groupParams{
		conversionRate: cfg.ControlConversionRate,
		timeShape:      cfg.ControlTimeShape,
		timeScale:      cfg.ControlTimeScale,
		clicksRate:     cfg.ControlClicksRate,
		sessionsRate:   cfg.ControlSessionsRate,
	}, src, rng)
	records = appendGroup(records, GroupVariant, nVariant, groupParams{
		conversionRate: cfg.VariantConversionRate,
		timeShape:      cfg.VariantTimeShape,
		timeScale:      cfg.VariantTimeScale,
		clicksRate:     cfg.VariantClicksRate,
		sessionsRate:   cfg.VariantSessionsRate,
	}, src, rng)

	// Interleave the groups so a persisted dataset does not look block-sorted,
	// then assign sequential user IDs over the shuffled order.
	rng.Shuffle(len(records), func(i, j int) {
		records[i], records[j] = records[j], records[i]
	})
	for i := range records {
		records[i].UserID = int64(i + 1)
	}

	return records, nil
}

type groupParams struct {
	conversionRate float64
	timeShape      float64
	timeScale      float64
	clicksRate     float64
	sessionsRate   float64
}

func appendGroup(records []Record, group Group, n int, p groupParams, src rand.Source, rng *rand.Rand) []Record {
	converted := distuv.Bernoulli{P: p.conversionRate, Src: src}
	// distuv.Gamma takes a rate, not a scale.
	timeSpent := distuv.Gamma{Alpha: p.timeShape, Beta: 1 / p.timeScale, Src: src}
	clicks := distuv.Poisson{Lambda: p.clicksRate, Src: src}
	sessions := distuv.Poisson{Lambda: p.sessionsRate, Src: src}

	for i := 0; i < n; i++ {
		t := timeSpent.Rand()
		if t < 0 {
			t = 0
		}

		records = append(records, Record{
			Group:     group,
			Converted: converted.Rand() == 1,
			TimeSpent: math.Round(t*100) / 100,
			Clicks:    int(clicks.Rand()),
			Sessions:  int(sessions.Rand()) + 1,
			Timestamp: referenceDate.AddDate(0, 0, -rng.Intn(timestampWindowDays)),
		})
	}
	return records
}
