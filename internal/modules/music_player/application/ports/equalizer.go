package ports

// EqualizerBands holds per-band gains (-0.25 to 1.0) for the 15 bands the
// relay node exposes.
type EqualizerBands [15]float64

// EqualizerFlat resets all bands.
func EqualizerFlat() EqualizerBands {
	return EqualizerBands{}
}

// EqualizerBoost emphasizes the low end.
func EqualizerBoost() EqualizerBands {
	return EqualizerBands{
		0.08, 0.12, 0.2, 0.18, 0.15, 0.1, 0.05, 0.0,
		0.02, -0.04, -0.06, -0.08, -0.10, -0.12, -0.14,
	}
}

// EqualizerMetal emphasizes mids and highs.
func EqualizerMetal() EqualizerBands {
	return EqualizerBands{
		0.0, 0.1, 0.1, 0.15, 0.13, 0.1, 0.0, 0.125,
		0.175, 0.175, 0.125, 0.125, 0.1, 0.075, 0.0,
	}
}

// EqualizerPiano suits acoustic tracks.
func EqualizerPiano() EqualizerBands {
	return EqualizerBands{
		-0.25, -0.25, -0.125, 0.0, 0.25, 0.25, 0.0, -0.25,
		-0.25, 0.0, 0.0, 0.5, 0.25, -0.025, 0.0,
	}
}

// EqualizerPreset returns the named preset, defaulting to flat.
func EqualizerPreset(name string) EqualizerBands {
	switch name {
	case "boost":
		return EqualizerBoost()
	case "metal":
		return EqualizerMetal()
	case "piano":
		return EqualizerPiano()
	default:
		return EqualizerFlat()
	}
}
