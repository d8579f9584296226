package solver_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/verletsim/internal/solver"
	"github.com/san-kum/verletsim/internal/vmath"
)

const frame = float32(1.0 / 60)

func run(s *solver.Solver, frames int) {
	for i := 0; i < frames; i++ {
		s.UpdateWithSubsteps(frame, 8)
	}
}

var _ = Describe("Solver pipeline", func() {
	var (
		cfg solver.Config
		s   *solver.Solver
	)

	BeforeEach(func() {
		cfg = solver.DefaultConfig()
		cfg.Width, cfg.Height = 400, 300
		cfg.Seed = 7
	})

	JustBeforeEach(func() {
		var err error
		s, err = solver.New(cfg)
		Expect(err).NotTo(HaveOccurred())
	})

	Context("in a closed box", func() {
		It("keeps every particle finite and alive", func() {
			s.SpawnBatch(200)
			run(s, 180)

			Expect(s.Particles()).To(HaveLen(200))
			for _, p := range s.Particles() {
				Expect(p.IsFinite()).To(BeTrue())
			}
			Expect(s.Stats().Culled).To(Equal(0))
			Expect(s.Stats().Passes).To(Equal(8))
		})

		It("settles particles onto the floor", func() {
			s.Spawn(vmath.V(200, 50), 5)
			run(s, 120)

			p := s.Particles()[0]
			Expect(p.Pos.Y).To(BeNumerically("~", cfg.Height-5, 1))
		})
	})

	Context("with an open floor", func() {
		BeforeEach(func() {
			cfg.Sides.Bottom.Constrain = false
		})

		It("culls particles that fall through", func() {
			s.Spawn(vmath.V(200, 280), 5)
			run(s, 60)

			Expect(s.Len()).To(BeZero())
		})

		It("refills to the minimum population", func() {
			s.Config.EnforceMin = true
			s.Config.MinParticles = 25
			run(s, 90)

			Expect(s.Len()).To(BeNumerically(">=", 25))
		})
	})

	Context("with a heated floor and buoyancy", func() {
		BeforeEach(func() {
			cfg.Sides.Bottom.Heat = true
			cfg.Sides.Bottom.HeatLevel = 5
			cfg.Buoyancy = true
			cfg.HeatLoss = 0.1
		})

		It("warms particles that reach the floor", func() {
			s.SpawnBatch(60)
			run(s, 120)

			var hottest float32
			for _, p := range s.Particles() {
				hottest = max(hottest, p.Temperature)
			}
			Expect(hottest).To(BeNumerically(">", 0))
		})
	})

	Describe("SetParam", func() {
		It("applies valid changes and rejects invalid ones", func() {
			Expect(s.Config.SetParam("gravity_y", 0)).To(Succeed())
			Expect(s.Config.Gravity).To(Equal(vmath.Zero()))

			err := s.Config.SetParam("spawn_safety_iterations", 0)
			Expect(err).To(MatchError(solver.ErrInvalidSpawnSafety))
			Expect(s.Config.SpawnSafetyIterations).To(Equal(solver.DefaultSafetyIters))
		})
	})
})
