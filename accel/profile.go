package accel

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProfileConfig is one power state's configuration in physical units, the way
// it is written down in a profile file.
type ProfileConfig struct {
	ODR int64  `yaml:"odr_mhz"`
	FSR int64  `yaml:"fsr_mg"`
	Ths int64  `yaml:"threshold_mg"`
	Dur int64  `yaml:"duration_ms"`
	IRQ string `yaml:"irq"`
}

// Profile is a declarative dual-state device configuration. Values are
// requests; the driver clamps and rounds them to what the device supports.
type Profile struct {
	Suspend ProfileConfig `yaml:"suspend"`
	Resume  ProfileConfig `yaml:"resume"`
}

// LoadProfile reads a YAML profile from disk.
func LoadProfile(path string) (*Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("could not parse profile: %w", err)
	}
	return &p, nil
}

// ParseIRQType resolves the textual interrupt mode used in profiles and on
// the CLI. An empty string means none.
func ParseIRQType(s string) (IRQType, error) {
	switch s {
	case "", "none":
		return IRQNone, nil
	case "motion":
		return IRQMotion, nil
	case "data_ready":
		return IRQDataReady, nil
	default:
		return IRQNone, fmt.Errorf("%w: unknown irq mode %q", ErrInvalidParameter, s)
	}
}

// Apply stages the whole profile on dev. With apply set every value is also
// pushed to the device as it is staged; errors stop the remaining stages.
func (p *Profile) Apply(ctx context.Context, dev *LSM303DLx, apply bool) error {
	if dev == nil {
		return fmt.Errorf("%w: nil device", ErrInvalidParameter)
	}
	states := []struct {
		cfg  ProfileConfig
		odr  ConfigKey
		fsr  ConfigKey
		ths  ConfigKey
		dur  ConfigKey
		irq  ConfigKey
		name string
	}{
		{p.Suspend, ODRSuspend, FSRSuspend, MotThs, MotDur, IRQSuspend, "suspend"},
		{p.Resume, ODRResume, FSRResume, NMotThs, NMotDur, IRQResume, "resume"},
	}
	for _, s := range states {
		irq, err := ParseIRQType(s.cfg.IRQ)
		if err != nil {
			return fmt.Errorf("%s profile: %w", s.name, err)
		}
		stages := []struct {
			key   ConfigKey
			value int64
		}{
			{s.odr, s.cfg.ODR},
			{s.fsr, s.cfg.FSR},
			{s.ths, s.cfg.Ths},
			{s.dur, s.cfg.Dur},
			{s.irq, int64(irq)},
		}
		for _, stage := range stages {
			if err := dev.SetConfig(ctx, stage.key, apply, stage.value); err != nil {
				return fmt.Errorf("%s profile: set %s: %w", s.name, stage.key, err)
			}
		}
	}
	return nil
}
