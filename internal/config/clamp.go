package config

import "fmt"

const minDelay = 1.0 / 96000.0 // shortest delay worth a single sample even at a high sample rate

func clampRefl(field string, v float32) float32 {
	switch {
	case v > 1:
		logger.Warnf("%s: reflectivity %v out of range, clamped to 1", field, v)
		return 1
	case v < -1:
		logger.Warnf("%s: reflectivity %v out of range, clamped to -1", field, v)
		return -1
	default:
		return v
	}
}

func clampDelay(field string, v float64) float64 {
	if v <= 0 {
		logger.Warnf("%s: delay %v out of range, clamped to %v", field, v, minDelay)
		return minDelay
	}
	return v
}

func clampWaveGuide(field string, c *WaveGuideConfig) {
	c.Delay = clampDelay(field+".delay", c.Delay)
	c.Alpha = clampRefl(field+".alpha", c.Alpha)
	c.Beta = clampRefl(field+".beta", c.Beta)
}

// clamp validates and corrects every out-of-range field in doc in place,
// per spec §7: reflectivities outside [-1,1], RPM <= 0, and delays <= 0
// are clamped rather than rejected.
func clamp(doc *Document) {
	if doc.RPM <= 0 {
		logger.Warnf("rpm: %v out of range, clamped to 1", doc.RPM)
		doc.RPM = 1
	}

	for i := range doc.Cylinders {
		cc := &doc.Cylinders[i]
		clampWaveGuide(fmtField(i, "intake_waveguide"), &cc.IntakeWaveguide)
		clampWaveGuide(fmtField(i, "exhaust_waveguide"), &cc.ExhaustWaveguide)
		clampWaveGuide(fmtField(i, "extractor_waveguide"), &cc.ExtractorWaveguide)
		cc.IntakeOpenRefl = clampRefl(fmtField(i, "intake_open_refl"), cc.IntakeOpenRefl)
		cc.IntakeClosedRefl = clampRefl(fmtField(i, "intake_closed_refl"), cc.IntakeClosedRefl)
		cc.ExhaustOpenRefl = clampRefl(fmtField(i, "exhaust_open_refl"), cc.ExhaustOpenRefl)
		cc.ExhaustClosedRefl = clampRefl(fmtField(i, "exhaust_closed_refl"), cc.ExhaustClosedRefl)
	}

	clampWaveGuide("muffler.straight_pipe", &doc.Muffler.StraightPipe)
	for i := range doc.Muffler.MufflerElements {
		clampWaveGuide(fmtField(i, "muffler.muffler_elements"), &doc.Muffler.MufflerElements[i])
	}

	doc.IntakeNoiseLPDelay = clampDelay("intake_noise_lp_delay", doc.IntakeNoiseLPDelay)
	doc.EngineVibrationFilterDelay = clampDelay("engine_vibration_filter_delay", doc.EngineVibrationFilterDelay)
	doc.CrankshaftFluctuationLPDelay = clampDelay("crankshaft_fluctuation_lp_delay", doc.CrankshaftFluctuationLPDelay)
}

func fmtField(index int, name string) string {
	return fmt.Sprintf("%s#%d", name, index)
}
