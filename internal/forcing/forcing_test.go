package forcing_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pavshv/mdof/internal/forcing"
	"github.com/pavshv/mdof/internal/model"
)

func uniformGrid(tMax, dt float64) []float64 {
	var grid []float64
	for t := 0.0; t < tMax; t += dt {
		grid = append(grid, t)
	}
	return grid
}

var _ = Describe("Sample", func() {
	var grid []float64

	BeforeEach(func() {
		grid = uniformGrid(1.0, 0.01)
	})

	Context("with no excitation", func() {
		It("returns the zero function", func() {
			f, err := forcing.Sample(model.ForceSpec{}, grid, 1)
			Expect(err).NotTo(HaveOccurred())
			for _, v := range f.Values() {
				Expect(v).To(BeZero())
			}
		})
	})

	Context("with a random excitation", func() {
		It("fails fast as not implemented", func() {
			spec := model.ForceSpec{Kind: model.ForceRandom}
			_, err := forcing.Sample(spec, grid, 1)
			Expect(err).To(MatchError(forcing.ErrNotImplemented))
		})
	})

	Context("with an incomplete periodic definition", func() {
		It("rejects a sine without omega", func() {
			spec := model.ForceSpec{
				Kind:      model.ForceSine,
				Amplitude: 2.0, HasAmplitude: true,
			}
			_, err := forcing.Sample(spec, grid, 3)
			Expect(err).To(MatchError(forcing.ErrIncompleteForce))
		})

		It("rejects a cosine without amplitude", func() {
			spec := model.ForceSpec{
				Kind:  model.ForceCosine,
				Omega: 5.0, HasOmega: true,
			}
			_, err := forcing.Sample(spec, grid, 3)
			Expect(err).To(MatchError(forcing.ErrIncompleteForce))
		})
	})

	Context("with a complete sine definition", func() {
		var spec model.ForceSpec

		BeforeEach(func() {
			spec = model.ForceSpec{
				Kind:      model.ForceSine,
				Amplitude: 3.0, HasAmplitude: true,
				Omega: 2 * math.Pi, HasOmega: true,
				Start: 0.2, HasStart: true,
				Stop: 0.7, HasStop: true,
			}
		})

		It("is exactly zero outside the window", func() {
			f, err := forcing.Sample(spec, grid, 1)
			Expect(err).NotTo(HaveOccurred())
			for i, t := range grid {
				if t < 0.2 || t > 0.7 {
					Expect(f.Values()[i]).To(BeZero(), "t=%g", t)
				}
			}
		})

		It("matches the analytic wave inside the window", func() {
			f, err := forcing.Sample(spec, grid, 1)
			Expect(err).NotTo(HaveOccurred())
			for i, t := range grid {
				if t >= 0.2 && t <= 0.7 {
					want := 3.0 * math.Sin(2*math.Pi*(t-0.2))
					Expect(f.Values()[i]).To(BeNumerically("~", want, 1e-9))
				}
			}
		})

		It("defaults a missing window to the whole grid", func() {
			spec.HasStart = false
			spec.HasStop = false
			f, err := forcing.Sample(spec, grid, 1)
			Expect(err).NotTo(HaveOccurred())
			// Phase is now relative to grid start.
			want := 3.0 * math.Sin(2*math.Pi*grid[10])
			Expect(f.Values()[10]).To(BeNumerically("~", want, 1e-9))
		})
	})

	Context("with a window outside the grid", func() {
		It("rejects a start before the grid", func() {
			spec := model.ForceSpec{
				Kind:      model.ForceSine,
				Amplitude: 1, HasAmplitude: true,
				Omega: 1, HasOmega: true,
				Start: -0.5, HasStart: true,
			}
			_, err := forcing.Sample(spec, grid, 1)
			Expect(err).To(MatchError(forcing.ErrWindowOutOfRange))
		})

		It("rejects a stop beyond the grid", func() {
			spec := model.ForceSpec{
				Kind:      model.ForceCosine,
				Amplitude: 1, HasAmplitude: true,
				Omega: 1, HasOmega: true,
				Stop: 2.5, HasStop: true,
			}
			_, err := forcing.Sample(spec, grid, 1)
			Expect(err).To(MatchError(forcing.ErrWindowOutOfRange))
		})

		It("rejects start after stop", func() {
			spec := model.ForceSpec{
				Kind:      model.ForceSine,
				Amplitude: 1, HasAmplitude: true,
				Omega: 1, HasOmega: true,
				Start: 0.8, HasStart: true,
				Stop: 0.3, HasStop: true,
			}
			_, err := forcing.Sample(spec, grid, 1)
			Expect(err).To(MatchError(forcing.ErrWindowOutOfRange))
		})
	})

	Context("with a degenerate grid", func() {
		It("rejects fewer than two points", func() {
			_, err := forcing.Sample(model.ForceSpec{}, []float64{0}, 1)
			Expect(err).To(MatchError(forcing.ErrShortGrid))
		})
	})
})

var _ = Describe("At", func() {
	It("interpolates linearly between samples", func() {
		grid := []float64{0, 1, 2}
		spec := model.ForceSpec{
			Kind:      model.ForceSine,
			Amplitude: 1, HasAmplitude: true,
			Omega: 1, HasOmega: true,
		}
		f, err := forcing.Sample(spec, grid, 1)
		Expect(err).NotTo(HaveOccurred())

		v0, v1 := f.Values()[0], f.Values()[1]
		Expect(f.At(0.5)).To(BeNumerically("~", (v0+v1)/2, 1e-12))
	})

	It("clamps beyond either end", func() {
		grid := []float64{0, 1, 2}
		spec := model.ForceSpec{
			Kind:      model.ForceCosine,
			Amplitude: 2, HasAmplitude: true,
			Omega: 3, HasOmega: true,
		}
		f, err := forcing.Sample(spec, grid, 1)
		Expect(err).NotTo(HaveOccurred())

		Expect(f.At(-5)).To(Equal(f.Values()[0]))
		Expect(f.At(99)).To(Equal(f.Values()[2]))
	})

	It("returns exact samples at grid points", func() {
		grid := uniformGrid(1.0, 0.25)
		spec := model.ForceSpec{
			Kind:      model.ForceSine,
			Amplitude: 4, HasAmplitude: true,
			Omega: 2, HasOmega: true,
		}
		f, err := forcing.Sample(spec, grid, 1)
		Expect(err).NotTo(HaveOccurred())

		for i, t := range grid {
			Expect(f.At(t)).To(Equal(f.Values()[i]))
		}
	})
})

var _ = Describe("BuildAll", func() {
	var (
		reg  *model.Registry
		grid []float64
	)

	BeforeEach(func() {
		grid = uniformGrid(1.0, 0.01)
		reg = model.NewRegistry()

		b1, err := model.FromArrays(1, 1.0, []float64{10}, []float64{0}, []int{0})
		Expect(err).NotTo(HaveOccurred())
		b1.Force = model.ForceSpec{
			Kind:      model.ForceSine,
			Amplitude: 1, HasAmplitude: true,
			Omega: 1, HasOmega: true,
		}
		Expect(reg.Add(b1)).To(Succeed())

		b2, err := model.FromArrays(2, 1.0, []float64{5}, []float64{0}, []int{1})
		Expect(err).NotTo(HaveOccurred())
		Expect(reg.Add(b2)).To(Succeed())
	})

	It("returns one function per body in order", func() {
		funcs, err := forcing.BuildAll(reg, grid)
		Expect(err).NotTo(HaveOccurred())
		Expect(funcs).To(HaveLen(2))
		Expect(funcs[0].At(0.5)).NotTo(BeZero())
		Expect(funcs[1].At(0.5)).To(BeZero())
	})

	It("degrades an incomplete definition to zero force", func() {
		reg.Body(2).Force = model.ForceSpec{Kind: model.ForceCosine}
		funcs, err := forcing.BuildAll(reg, grid)
		Expect(err).NotTo(HaveOccurred())
		for _, v := range funcs[1].Values() {
			Expect(v).To(BeZero())
		}
	})

	It("aborts on a window error", func() {
		reg.Body(1).Force.Start = 5.0
		reg.Body(1).Force.HasStart = true
		_, err := forcing.BuildAll(reg, grid)
		Expect(err).To(MatchError(forcing.ErrWindowOutOfRange))
	})
})
