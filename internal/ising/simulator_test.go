package ising_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/isingsim/internal/ising"
)

var _ = Describe("Simulator", func() {
	var (
		ctx context.Context
		sim *ising.Simulator
	)

	BeforeEach(func() {
		ctx = context.Background()
		sim = ising.New()
	})

	newLattice := func(n, m int, seed int64) (*ising.Lattice, ising.Source) {
		src := ising.NewSource(seed)
		lat, err := ising.NewLattice(n, m, src)
		Expect(err).NotTo(HaveOccurred())
		return lat, src
	}

	Describe("end-to-end on a 4x4 lattice at T=2", func() {
		It("returns a non-empty trajectory with a mean strictly inside the ground-state bound of 16", func() {
			lat, src := newLattice(4, 4, 42)
			p := ising.DefaultParams(2.0)

			res, err := sim.Run(ctx, lat, src, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Energies).NotTo(BeEmpty())
			Expect(res.Cycles).To(Equal(len(res.Energies)))
			Expect(res.Steps).To(Equal(res.Cycles * p.StepsPerCycle))
			Expect(res.Magnetizations).To(BeNil())

			// ground state of the /4-normalised energy is -n*m
			Expect(math.Abs(res.Mean)).To(BeNumerically(">", 0))
			Expect(math.Abs(res.Mean)).To(BeNumerically("<", 16))
			Expect(res.FinalEnergy).To(BeNumerically("~", lat.TotalEnergy(0), 1e-9))
		})
	})

	DescribeTable("terminates within the cycle cap",
		func(temperature float64) {
			lat, src := newLattice(4, 4, 7)
			p := ising.DefaultParams(temperature)
			p.MaxCycles = 200_000

			res, err := sim.Run(ctx, lat, src, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Cycles).To(BeNumerically("<", p.MaxCycles))
		},
		Entry("T=0.5", 0.5),
		Entry("T=1.0", 1.0),
		Entry("T=2.27", 2.27),
		Entry("T=3.5", 3.5),
		Entry("T=5.0", 5.0),
	)

	It("satisfies the convergence recurrence", func() {
		lat, src := newLattice(4, 4, 3)
		p := ising.DefaultParams(2.5)

		res, err := sim.Run(ctx, lat, src, p)
		Expect(err).NotTo(HaveOccurred())

		cum, prev := 0.0, 0.0
		for k, e := range res.Energies {
			prev = cum
			cum = (cum*float64(k) + e) / float64(k+1)
		}
		Expect(res.Mean).To(BeNumerically("~", cum, 1e-9))
		Expect(math.Abs(cum - prev)).To(BeNumerically("<=", p.Tolerance))
	})

	It("tracks M/H per cycle when a field is applied", func() {
		lat, src := newLattice(6, 6, 5)
		p := ising.DefaultParams(1.5)
		p.Field = 1

		res, err := sim.Run(ctx, lat, src, p)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Magnetizations).To(HaveLen(len(res.Energies)))
		for _, xi := range res.Magnetizations {
			Expect(math.Abs(xi)).To(BeNumerically("<=", 36))
		}
		Expect(res.FinalEnergy).To(BeNumerically("~", lat.TotalEnergy(1), 1e-9))
	})

	It("notifies observers once per cycle", func() {
		lat, src := newLattice(4, 4, 9)
		var seen []ising.CycleStats
		sim.AddObserver(ising.ObserverFunc(func(s ising.CycleStats) {
			seen = append(seen, s)
		}))

		res, err := sim.Run(ctx, lat, src, ising.DefaultParams(2.0))
		Expect(err).NotTo(HaveOccurred())
		Expect(seen).To(HaveLen(res.Cycles))
		Expect(seen[len(seen)-1].Cumulative).To(Equal(res.Mean))
		Expect(seen[0].Cycle).To(Equal(0))
	})

	It("converges on a single site whose energy cannot change", func() {
		lat, src := newLattice(1, 1, 5)
		res, err := sim.Run(ctx, lat, src, ising.DefaultParams(2.0))
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Cycles).To(Equal(2))
		for _, e := range res.Energies {
			Expect(e).To(BeNumerically("~", -1, 1e-9))
		}
		Expect(res.Mean).To(BeNumerically("~", -1, 1e-9))
		Expect(res.FinalEnergy).To(Equal(lat.TotalEnergy(0)))
	})

	It("reports non-convergence with the partial trajectory", func() {
		lat, src := newLattice(4, 4, 1)
		p := ising.DefaultParams(2.0)
		p.MaxCycles = 1

		res, err := sim.Run(ctx, lat, src, p)
		Expect(err).To(MatchError(ising.ErrNonConvergence))

		var nc *ising.NonConvergenceError
		Expect(errors.As(err, &nc)).To(BeTrue())
		Expect(nc.Cycles).To(Equal(1))
		Expect(nc.Energies).To(HaveLen(1))
		Expect(res).NotTo(BeNil())
		Expect(res.Energies).To(Equal(nc.Energies))
	})

	It("stops between cycles when the context is canceled", func() {
		lat, src := newLattice(4, 4, 1)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		res, err := sim.Run(cctx, lat, src, ising.DefaultParams(2.0))
		Expect(err).To(MatchError(context.Canceled))
		Expect(res.Cycles).To(Equal(0))
		Expect(res.Energies).To(BeEmpty())
	})

	DescribeTable("rejects invalid parameters before touching the lattice",
		func(mutate func(*ising.Params), want error) {
			lat, src := newLattice(4, 4, 1)
			before := lat.String()
			p := ising.DefaultParams(2.0)
			mutate(&p)

			_, err := sim.Run(ctx, lat, src, p)
			Expect(err).To(MatchError(want))
			Expect(lat.String()).To(Equal(before))
		},
		Entry("zero temperature", func(p *ising.Params) { p.Temperature = 0 }, ising.ErrInvalidTemperature),
		Entry("negative temperature", func(p *ising.Params) { p.Temperature = -1 }, ising.ErrInvalidTemperature),
		Entry("NaN temperature", func(p *ising.Params) { p.Temperature = math.NaN() }, ising.ErrInvalidTemperature),
		Entry("infinite temperature", func(p *ising.Params) { p.Temperature = math.Inf(1) }, ising.ErrInvalidTemperature),
		Entry("NaN field", func(p *ising.Params) { p.Field = math.NaN() }, ising.ErrInvalidParams),
		Entry("infinite field", func(p *ising.Params) { p.Field = math.Inf(-1) }, ising.ErrInvalidParams),
		Entry("zero tolerance", func(p *ising.Params) { p.Tolerance = 0 }, ising.ErrInvalidParams),
		Entry("zero steps", func(p *ising.Params) { p.StepsPerCycle = 0 }, ising.ErrInvalidParams),
		Entry("zero cap", func(p *ising.Params) { p.MaxCycles = 0 }, ising.ErrInvalidParams),
	)

	It("is reproducible for a fixed seed", func() {
		run := func() *ising.Result {
			lat, src := newLattice(5, 5, 1234)
			res, err := sim.Run(ctx, lat, src, ising.DefaultParams(2.2))
			Expect(err).NotTo(HaveOccurred())
			return res
		}
		Expect(run().Energies).To(Equal(run().Energies))
	})

	It("keeps every spin binary across a run", func() {
		lat, src := newLattice(7, 5, 77)
		_, err := sim.Run(ctx, lat, src, ising.DefaultParams(3.0))
		Expect(err).NotTo(HaveOccurred())
		for i := 0; i < lat.Rows(); i++ {
			for j := 0; j < lat.Cols(); j++ {
				Expect(lat.Spin(i, j)).To(Or(Equal(int8(1)), Equal(int8(-1))))
			}
		}
	})
})
