// Package config loads tunable DEM/traversability parameters from a JSON
// defaults file, following the same pointer-optional-field pattern the
// rest of the pipeline uses for runtime-adjustable knobs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the canonical tuning defaults file. Its values
// match the factory defaults the Get* accessors return for nil fields.
const DefaultConfigPath = "config/dem.defaults.json"

// GridConfig mirrors the DEM raster geometry and fusion/prediction
// constants. Fields are pointers so a partial JSON document only
// overrides the knobs it mentions; Get* accessors supply the factory
// defaults for anything left nil.
type GridConfig struct {
	WidthMeters       *float64 `json:"width_meters,omitempty"`
	LengthMeters      *float64 `json:"length_meters,omitempty"`
	PixelSizeMeters   *float64 `json:"pixel_size_meters,omitempty"`
	PosObsMinHeightM  *float64 `json:"pos_obs_min_height_meters,omitempty"`
	VehicleHeightM    *float64 `json:"vehicle_height_meters,omitempty"`
	NearVehicleDisM   *float64 `json:"near_vehicle_distance_meters,omitempty"`
	VMaxAngDeg        *float64 `json:"v_max_angle_degrees,omitempty"`
	VMinAngDeg        *float64 `json:"v_min_angle_degrees,omitempty"`
	VerticalRingCount *int     `json:"vertical_ring_count,omitempty"`

	// Prediction
	PredictConfidenceDecay *float64 `json:"predict_confidence_decay,omitempty"`
	PredictMinConfidence   *float64 `json:"predict_min_confidence,omitempty"`

	// Fusion
	FuseBlindOutsideMeters     *float64 `json:"fuse_blind_outside_meters,omitempty"`
	FuseNearRingMeters         *float64 `json:"fuse_near_ring_meters,omitempty"`
	FuseOccludedNearFactor     *float64 `json:"fuse_occluded_near_factor,omitempty"`
	FuseOccludedFarFactor      *float64 `json:"fuse_occluded_far_factor,omitempty"`
	FuseDisagreeDecayFactor    *float64 `json:"fuse_disagree_decay_factor,omitempty"`
	FuseFlipConfidenceFloor    *float64 `json:"fuse_flip_confidence_floor,omitempty"`
	CounterSaturation          *int     `json:"counter_saturation,omitempty"`

	// Obstacle sublabeler
	ObstacleGapSearchRows *int     `json:"obstacle_gap_search_rows,omitempty"`
	ObstacleMinGapMeters  *float64 `json:"obstacle_min_gap_meters,omitempty"`
}

// EmptyGridConfig returns a GridConfig with every field nil; LoadGridConfig
// should be preferred for production code.
func EmptyGridConfig() *GridConfig { return &GridConfig{} }

// LoadGridConfig loads a GridConfig from a JSON file, validating the path
// and size before parsing.
func LoadGridConfig(path string) (*GridConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyGridConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults file, searching
// upward from the current directory so it works from both a package
// test directory and a cmd/ binary's working directory. Panics if not
// found; intended for tests and binaries that have already validated
// config availability.
func MustLoadDefaultConfig() *GridConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadGridConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run from repository root")
}

// Validate checks that any supplied values are within sane ranges.
func (c *GridConfig) Validate() error {
	if c.PixelSizeMeters != nil && *c.PixelSizeMeters <= 0 {
		return fmt.Errorf("pixel_size_meters must be positive, got %f", *c.PixelSizeMeters)
	}
	if c.WidthMeters != nil && *c.WidthMeters <= 0 {
		return fmt.Errorf("width_meters must be positive, got %f", *c.WidthMeters)
	}
	if c.LengthMeters != nil && *c.LengthMeters <= 0 {
		return fmt.Errorf("length_meters must be positive, got %f", *c.LengthMeters)
	}
	if c.PredictConfidenceDecay != nil && (*c.PredictConfidenceDecay <= 0 || *c.PredictConfidenceDecay > 1) {
		return fmt.Errorf("predict_confidence_decay must be in (0,1], got %f", *c.PredictConfidenceDecay)
	}
	if c.PredictMinConfidence != nil && (*c.PredictMinConfidence < 0 || *c.PredictMinConfidence > 1) {
		return fmt.Errorf("predict_min_confidence must be in [0,1], got %f", *c.PredictMinConfidence)
	}
	if c.VerticalRingCount != nil && *c.VerticalRingCount < 2 {
		return fmt.Errorf("vertical_ring_count must be >= 2, got %d", *c.VerticalRingCount)
	}
	return nil
}

func (c *GridConfig) GetWidthMeters() float64 {
	if c.WidthMeters == nil {
		return 80.0
	}
	return *c.WidthMeters
}

func (c *GridConfig) GetLengthMeters() float64 {
	if c.LengthMeters == nil {
		return 80.0
	}
	return *c.LengthMeters
}

func (c *GridConfig) GetPixelSizeMeters() float64 {
	if c.PixelSizeMeters == nil {
		return 0.2
	}
	return *c.PixelSizeMeters
}

func (c *GridConfig) GetPosObsMinHeightMeters() float64 {
	if c.PosObsMinHeightM == nil {
		return 0.3
	}
	return *c.PosObsMinHeightM
}

func (c *GridConfig) GetVehicleHeightMeters() float64 {
	if c.VehicleHeightM == nil {
		return 1.8
	}
	return *c.VehicleHeightM
}

func (c *GridConfig) GetNearVehicleDistanceMeters() float64 {
	if c.NearVehicleDisM == nil {
		return 2.0
	}
	return *c.NearVehicleDisM
}

func (c *GridConfig) GetVMaxAngDeg() float64 {
	if c.VMaxAngDeg == nil {
		return 2.0
	}
	return *c.VMaxAngDeg
}

func (c *GridConfig) GetVMinAngDeg() float64 {
	if c.VMinAngDeg == nil {
		return -24.9
	}
	return *c.VMinAngDeg
}

func (c *GridConfig) GetVerticalRingCount() int {
	if c.VerticalRingCount == nil {
		return 64
	}
	return *c.VerticalRingCount
}

func (c *GridConfig) GetPredictConfidenceDecay() float64 {
	if c.PredictConfidenceDecay == nil {
		return 0.92
	}
	return *c.PredictConfidenceDecay
}

func (c *GridConfig) GetPredictMinConfidence() float64 {
	if c.PredictMinConfidence == nil {
		return 0.2
	}
	return *c.PredictMinConfidence
}

func (c *GridConfig) GetFuseBlindOutsideMeters() float64 {
	if c.FuseBlindOutsideMeters == nil {
		return 60.0
	}
	return *c.FuseBlindOutsideMeters
}

func (c *GridConfig) GetFuseNearRingMeters() float64 {
	if c.FuseNearRingMeters == nil {
		return 10.0
	}
	return *c.FuseNearRingMeters
}

func (c *GridConfig) GetFuseOccludedNearFactor() float64 {
	if c.FuseOccludedNearFactor == nil {
		return 1.8
	}
	return *c.FuseOccludedNearFactor
}

func (c *GridConfig) GetFuseOccludedFarFactor() float64 {
	if c.FuseOccludedFarFactor == nil {
		return 1.1
	}
	return *c.FuseOccludedFarFactor
}

func (c *GridConfig) GetFuseDisagreeDecayFactor() float64 {
	if c.FuseDisagreeDecayFactor == nil {
		return 2.5
	}
	return *c.FuseDisagreeDecayFactor
}

func (c *GridConfig) GetFuseFlipConfidenceFloor() float64 {
	if c.FuseFlipConfidenceFloor == nil {
		return 0.2
	}
	return *c.FuseFlipConfidenceFloor
}

func (c *GridConfig) GetCounterSaturation() int {
	if c.CounterSaturation == nil {
		return 9999
	}
	return *c.CounterSaturation
}

func (c *GridConfig) GetObstacleGapSearchRows() int {
	if c.ObstacleGapSearchRows == nil {
		return 10
	}
	return *c.ObstacleGapSearchRows
}

func (c *GridConfig) GetObstacleMinGapMeters() float64 {
	if c.ObstacleMinGapMeters == nil {
		return 2.0
	}
	return *c.ObstacleMinGapMeters
}
