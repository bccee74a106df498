// Package analysis provides frequency-domain tools for simulation results.
//
// The package includes two complementary views of a system:
//
//   - [NewSpectrum]: single-sided amplitude spectrum of a sampled series
//   - [NaturalModes]: undamped natural frequencies and mode shapes
//
// # Spectra
//
// A spectrum identifies the frequency content of a simulated response:
//
//	spec, err := analysis.NewSpectrum(result.Body(1), cfg.Dt)
//	freq, _ := spec.Dominant()
//
// # Modal Analysis
//
// Natural modes come straight from the assembled matrices, no time
// integration involved:
//
//	modes, err := analysis.NaturalModes(mats)
//	fmt.Println(modes.OmegaN) // rad/s, ascending
package analysis
